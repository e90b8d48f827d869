package store

import (
	"context"
	"fmt"
	"time"

	"gtodo/internal/backend/gist"
	"gtodo/internal/service"
)

// Status messages broadcast with each sync phase.
const (
	msgPending     = "waiting to save..."
	msgSyncing     = "syncing..."
	msgPulling     = "pulling..."
	msgSynced      = "synced"
	msgDisabled    = "disabled"
	msgUnavailable = "not configured"
)

// beginSync takes the sync gate. It reports false if it is already held.
func (s *Store) beginSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.takeGateLocked()
}

// takeGateLocked is beginSync for callers already holding s.mu.
func (s *Store) takeGateLocked() bool {
	if s.syncing {
		return false
	}
	s.syncing = true
	s.syncDone = make(chan struct{})
	return true
}

// endSync releases the gate taken by beginSync.
func (s *Store) endSync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncing = false
	close(s.syncDone)
}

// schedulePush (re)starts the debounce timer. Only the latest timer fires.
func (s *Store) schedulePush() {
	s.broadcast(service.StatusPending, msgPending)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timerSeq++
	seq := s.timerSeq
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(seq) })
}

func (s *Store) fire(seq uint64) {
	s.mu.Lock()
	if seq != s.timerSeq {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	// The gate is taken before s.mu is released so Flush never observes
	// a fired timer with no push in flight.
	held := s.takeGateLocked()
	s.mu.Unlock()

	if !held {
		s.log.Debug("scheduled push skipped: sync in progress")
		return
	}
	s.scheduledPushHeld()
}

// runScheduledPush performs one debounced push. If a push or pull holds the
// gate the attempt is dropped, not queued: the state pushed next will
// contain everything committed meanwhile. Failures are only broadcast.
func (s *Store) runScheduledPush() {
	if !s.beginSync() {
		s.log.Debug("scheduled push skipped: sync in progress")
		return
	}
	s.scheduledPushHeld()
}

// scheduledPushHeld is the body of runScheduledPush. The caller holds the
// gate; it is released on return.
func (s *Store) scheduledPushHeld() {
	defer s.endSync()

	s.broadcast(service.StatusSyncing, msgSyncing)
	if err := s.pushHeld(s.ctx); err != nil {
		s.log.Warn("auto-sync failed", "err", err)
		s.broadcast(service.StatusError, err.Error())
		return
	}
	s.broadcast(service.StatusSynced, msgSynced)
}

// pushHeld sends the state as it is now. The caller holds the gate.
func (s *Store) pushHeld(ctx context.Context) error {
	s.mu.Lock()
	state := s.state.Clone()
	s.mu.Unlock()

	creds := gist.CredentialsFrom(state.Settings)
	if creds.Token == "" || creds.DocumentID == "" {
		return gist.ErrNotConfigured
	}
	return s.remote.Push(ctx, state, creds)
}

// SyncToGist implements service.Service. It returns ErrNotConfigured
// without making a request when credentials are missing, and
// service.ErrSyncInProgress while another push or pull runs.
func (s *Store) SyncToGist(ctx context.Context) error {
	if !s.Settings().Configured() {
		return gist.ErrNotConfigured
	}
	if !s.beginSync() {
		return service.ErrSyncInProgress
	}
	defer s.endSync()

	s.broadcast(service.StatusSyncing, msgSyncing)
	if err := s.pushHeld(ctx); err != nil {
		s.log.Error("sync failed", "err", err)
		s.broadcast(service.StatusError, err.Error())
		return err
	}
	s.broadcast(service.StatusSynced, msgSynced)
	return nil
}

// ForceSync pushes immediately; it is SyncToGist under the name used by
// maintenance tooling.
func (s *Store) ForceSync(ctx context.Context) error {
	return s.SyncToGist(ctx)
}

// PullFromGist implements service.Service. A successful pull replaces
// lists and tasks and keeps the local settings.
func (s *Store) PullFromGist(ctx context.Context, force bool) error {
	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return service.ErrSyncInProgress
	}
	now := s.now()
	if last := s.lastPull; !force && !last.IsZero() && now.Sub(last) < s.pullInterval {
		s.mu.Unlock()
		s.log.Debug("pull throttled", "last", last)
		return nil
	}
	creds := gist.CredentialsFrom(s.state.Settings)
	if creds.Token == "" || creds.DocumentID == "" {
		s.mu.Unlock()
		return gist.ErrNotConfigured
	}
	s.takeGateLocked()
	s.lastPull = now
	s.mu.Unlock()
	defer s.endSync()

	s.broadcast(service.StatusSyncing, msgPulling)

	remote, err := s.remote.Pull(ctx, creds)
	if err != nil {
		s.log.Error("pull failed", "err", err)
		s.broadcast(service.StatusError, err.Error())
		return err
	}

	s.mu.Lock()
	s.state = service.State{
		Lists:    remote.Lists,
		Tasks:    remote.Tasks,
		Settings: s.state.Settings,
	}
	if err := s.commitLocked(false); err != nil {
		s.broadcast(service.StatusError, err.Error())
		return err
	}
	s.broadcast(service.StatusSynced, msgSynced)
	return nil
}

// InitAutoSync implements service.Service.
func (s *Store) InitAutoSync(ctx context.Context) {
	if !s.Settings().Configured() {
		s.mu.Lock()
		s.autoSync = false
		s.mu.Unlock()
		s.broadcast(service.StatusDisabled, msgUnavailable)
		return
	}

	s.mu.Lock()
	s.autoSync = true
	s.mu.Unlock()

	if err := s.PullFromGist(ctx, false); err != nil {
		// Keep working offline on the local copy.
		s.log.Warn("initial pull failed", "err", err)
	}
}

// SetAutoSync implements service.Service. Disabling also drops a pending
// debounced push.
func (s *Store) SetAutoSync(enabled bool) {
	s.mu.Lock()
	s.autoSync = enabled
	if !enabled && s.timer != nil {
		s.timer.Stop()
		s.timer = nil
		s.timerSeq++
	}
	s.mu.Unlock()

	if !enabled {
		s.broadcast(service.StatusDisabled, msgDisabled)
	}
}

// AutoSync reports whether debounced pushes are enabled.
func (s *Store) AutoSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoSync
}

// RunMaintenanceMigration implements service.Service.
func (s *Store) RunMaintenanceMigration(ctx context.Context, defaultOwner string) (int, error) {
	s.log.Info("starting maintenance migration")

	if err := s.PullFromGist(ctx, true); err != nil {
		return 0, fmt.Errorf("failed to pull latest state: %w", err)
	}

	s.mu.Lock()
	count := 0
	for i := range s.state.Tasks {
		if s.state.Tasks[i].Owner == "" {
			s.state.Tasks[i].Owner = defaultOwner
			count++
		}
	}
	if count == 0 {
		s.mu.Unlock()
		return 0, nil
	}
	if err := s.commitLocked(false); err != nil {
		return count, err
	}
	if err := s.SyncToGist(ctx); err != nil {
		return count, err
	}
	s.log.Info("maintenance migration done", "assigned", count, "owner", defaultOwner)
	return count, nil
}

// Flush fires a pending debounced push immediately, waiting first for a
// running push or pull to finish, then waits until the gate is free.
// Push failures are reported through the sync-status broadcast only.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	pending := s.timer != nil
	if pending {
		s.timer.Stop()
		s.timer = nil
		s.timerSeq++
	}
	s.mu.Unlock()

	if pending {
		if err := s.waitIdle(ctx); err != nil {
			return err
		}
		s.runScheduledPush()
	}
	return s.waitIdle(ctx)
}

func (s *Store) waitIdle(ctx context.Context) error {
	for {
		s.mu.Lock()
		if !s.syncing {
			s.mu.Unlock()
			return nil
		}
		done := s.syncDone
		s.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
