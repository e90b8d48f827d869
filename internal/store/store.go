// Package store owns the in-memory application state. Every mutation is
// persisted locally, announced to listeners and, when auto-sync is on,
// pushed to the gist backup after a quiet interval.
package store

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"gtodo/internal/backend/gist"
	"gtodo/internal/notify"
	"gtodo/internal/service"
	"gtodo/internal/storage"
	"gtodo/internal/views"
)

const (
	// DefaultDebounce is the quiet interval before a scheduled push fires.
	DefaultDebounce = 500 * time.Millisecond

	// DefaultPullInterval is the minimum age of the last pull before an
	// unforced pull is attempted again.
	DefaultPullInterval = 60 * time.Second

	// FallbackListID is used for new tasks when no list exists.
	FallbackListID = "inbox"
)

// Remote is the backup endpoint the store synchronizes with.
type Remote interface {
	Push(ctx context.Context, state service.State, creds gist.Credentials) error
	Pull(ctx context.Context, creds gist.Credentials) (service.State, error)
}

// Options configures a Store.
type Options struct {
	Adapter *storage.Adapter
	Remote  Remote

	// Users maps usernames to bcrypt password hashes.
	Users map[string]string

	Debounce     time.Duration
	PullInterval time.Duration
	Logger       *slog.Logger

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// Store implements service.Service.
type Store struct {
	adapter      *storage.Adapter
	remote       Remote
	users        map[string]string
	debounce     time.Duration
	pullInterval time.Duration
	log          *slog.Logger
	now          func() time.Time
	newID        func() string

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    service.State
	user     string
	autoSync bool
	status   service.SyncStatus
	closed   bool

	// syncing gates push and pull; syncDone is closed when it clears.
	syncing  bool
	syncDone chan struct{}
	lastPull time.Time

	// timer is the pending debounced push; timerSeq invalidates fires of
	// timers that were reset after they already expired.
	timer    *time.Timer
	timerSeq uint64

	stateBus notify.Bus[struct{}]
	syncBus  notify.Bus[service.SyncStatus]
}

var _ service.Service = (*Store)(nil)

// New loads the persisted state, or the initial state when nothing usable
// is stored, and writes it back without syncing.
func New(opts Options) *Store {
	s := &Store{
		adapter:      opts.Adapter,
		remote:       opts.Remote,
		users:        opts.Users,
		debounce:     opts.Debounce,
		pullInterval: opts.PullInterval,
		log:          opts.Logger,
		now:          opts.Now,
		newID:        opts.NewID,
		status:       service.SyncStatus{Status: service.StatusDisabled, Message: "not configured"},
	}
	if s.debounce <= 0 {
		s.debounce = DefaultDebounce
	}
	if s.pullInterval <= 0 {
		s.pullInterval = DefaultPullInterval
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	state, ok := s.adapter.Load(s.ctx)
	if !ok {
		state = s.initialState()
	}
	s.state = state
	s.user = s.adapter.LoadUser(s.ctx)

	s.mu.Lock()
	if err := s.commitLocked(false); err != nil {
		s.log.Warn("failed to persist initial state", "err", err)
	}
	return s
}

func (s *Store) initialState() service.State {
	return service.State{
		Lists: []service.TaskList{
			{ID: "list-1", Title: "Work", Color: "blue"},
			{ID: "list-2", Title: "Personal", Color: "green"},
		},
		Tasks: []service.Task{
			{
				ID:        "task-1",
				ListID:    "list-1",
				Title:     "Welcome to your private to-do list",
				Priority:  service.PriorityMedium,
				CreatedAt: s.now().UnixMilli(),
			},
		},
	}
}

// commitLocked persists the state, releases s.mu, notifies state listeners
// and, if requested and enabled, schedules a debounced push. It must be
// called with s.mu held. A persistence error is returned after listeners
// have been notified; the in-memory mutation stands.
func (s *Store) commitLocked(shouldSync bool) error {
	err := s.adapter.Save(s.ctx, s.state)
	schedule := s.autoSync && shouldSync && !s.closed
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("failed to persist state", "err", err)
	}
	s.stateBus.Publish(struct{}{})
	if schedule {
		s.schedulePush()
	}
	return err
}

// Subscribe implements service.Service.
func (s *Store) Subscribe(listener func()) func() {
	return s.stateBus.Subscribe(func(struct{}) { listener() })
}

// SubscribeSyncStatus implements service.Service.
func (s *Store) SubscribeSyncStatus(listener func(service.SyncStatus)) func() {
	return s.syncBus.Subscribe(listener)
}

// SyncStatus implements service.Service.
func (s *Store) SyncStatus() service.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Store) broadcast(status service.Status, msg string) {
	st := service.SyncStatus{Status: status, Message: msg}
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
	s.syncBus.Publish(st)
}

// State returns a copy of the whole state.
func (s *Store) State() service.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Lists implements service.Service.
func (s *Store) Lists() []service.TaskList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]service.TaskList(nil), s.state.Lists...)
}

// Settings implements service.Service.
func (s *Store) Settings() service.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// Dates returns today's, tomorrow's and yesterday's local dates.
func (s *Store) Dates() views.Dates {
	return views.DatesAt(s.now())
}

// Close cancels pending pushes and closes the storage backend. It does not
// wait for an in-flight request; call Flush first for that.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerSeq++
	s.mu.Unlock()

	s.cancel()
	return s.adapter.Close()
}
