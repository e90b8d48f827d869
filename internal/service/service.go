// Package service defines the task data model and the store interface
// consumed by the presentation layer.
package service

import "context"

// Service is the store surface the presentation layer talks to.
// Commands never import the store or the storage packages directly.
type Service interface {
	// Subscribe registers a state-change listener.
	// The returned function removes it.
	Subscribe(listener func()) (unsubscribe func())

	// SubscribeSyncStatus registers a sync-status listener.
	SubscribeSyncStatus(listener func(SyncStatus)) (unsubscribe func())

	// SyncStatus returns the most recently broadcast sync status.
	SyncStatus() SyncStatus

	// CurrentUser returns the logged-in owner, or "" if nobody is.
	CurrentUser() string

	// Login checks credentials against the user table and makes user
	// the current owner.
	Login(user, password string) error

	// Logout forgets the current owner.
	Logout() error

	// Lists returns all lists in state order.
	Lists() []TaskList

	// Settings returns the current settings.
	Settings() Settings

	// GetTasks returns the current owner's tasks, filtered by pred when
	// it is non-nil. Tasks of other owners are never returned.
	GetTasks(pred func(Task) bool) []Task

	// AddTask creates a task owned by the current user.
	AddTask(t NewTask) (Task, error)

	// AddTaskInView creates a task with defaults derived from a view.
	AddTaskInView(view, title string, due Date) (Task, error)

	// UpdateTask merges patch into the task. Unknown ids are a no-op.
	UpdateTask(id string, patch TaskPatch) error

	// DeleteTask removes the task. Unknown ids are a no-op.
	DeleteTask(id string) error

	// DeferToday moves open tasks due today to tomorrow.
	// Returns the number of tasks moved.
	DeferToday() (int, error)

	// AddList appends a new list.
	AddList(title string) (TaskList, error)

	// DeleteList removes a list. Without cascade it refuses while any
	// task still references the list.
	DeleteList(id string, cascade bool) error

	// UpdateSettings merges patch into the settings.
	UpdateSettings(patch SettingsPatch) error

	// InitAutoSync enables auto-sync when credentials are configured and
	// performs the startup pull. Pull failures are logged, not returned.
	InitAutoSync(ctx context.Context)

	// SetAutoSync turns debounced pushes on or off.
	SetAutoSync(enabled bool)

	// SyncToGist pushes the whole state now.
	SyncToGist(ctx context.Context) error

	// PullFromGist replaces lists and tasks with the remote copy.
	// Unless force is set, a pull within the throttle interval is skipped.
	PullFromGist(ctx context.Context, force bool) error

	// RunMaintenanceMigration assigns defaultOwner to ownerless tasks
	// after a forced pull, then persists and pushes. Returns the count.
	RunMaintenanceMigration(ctx context.Context, defaultOwner string) (int, error)

	// Flush fires any pending debounced push and waits for it.
	Flush(ctx context.Context) error

	// Close stops pending pushes and releases the storage backend.
	Close() error
}
