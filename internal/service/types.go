// Package service defines the task data model and the store interface
// consumed by the presentation layer.
package service

import (
	"bytes"
	"encoding/json"
	"time"
)

// Priority is a task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DateLayout is the wire and display layout of a due date.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component, formatted as
// YYYY-MM-DD. The zero value means no date and is encoded as JSON null.
type Date string

// DateOf returns the local calendar date of t.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates s and returns it as a Date. An empty string is the
// absent date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return "", nil
	}
	if _, err := time.ParseInLocation(DateLayout, s, time.Local); err != nil {
		return "", err
	}
	return Date(s), nil
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool { return d == "" }

// AddDays returns the date n days after d. A malformed date is returned
// unchanged.
func (d Date) AddDays(n int) Date {
	t, err := time.ParseInLocation(DateLayout, string(d), time.Local)
	if err != nil {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = Date(s)
	return nil
}

// Task represents a single task item.
type Task struct {
	ID        string   `json:"id"`
	Owner     string   `json:"owner,omitempty"`
	ListID    string   `json:"listId"`
	Title     string   `json:"title"`
	Completed bool     `json:"completed"`
	Priority  Priority `json:"priority"`
	DueDate   Date     `json:"dueDate"`
	Notes     string   `json:"notes"`
	CreatedAt int64    `json:"createdAt"` // unix milliseconds
}

// TaskList represents a task list.
type TaskList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
}

// Settings holds the remote backup credentials. There is one Settings
// value per application instance.
type Settings struct {
	GistToken string `json:"gistToken"`
	GistID    string `json:"gistId"`
}

// Configured reports whether both the token and the document id are set.
func (s Settings) Configured() bool {
	return s.GistToken != "" && s.GistID != ""
}

// MaskedToken returns the token with everything after the first eight
// characters replaced.
func (s Settings) MaskedToken() string {
	if s.GistToken == "" {
		return ""
	}
	if len(s.GistToken) <= 8 {
		return s.GistToken + "****"
	}
	return s.GistToken[:8] + "****"
}

// State is the whole application state. It is the unit of local
// persistence and of remote synchronization.
type State struct {
	Lists    []TaskList `json:"lists"`
	Tasks    []Task     `json:"tasks"`
	Settings Settings   `json:"settings"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{Settings: s.Settings}
	if s.Lists != nil {
		out.Lists = append([]TaskList(nil), s.Lists...)
	}
	if s.Tasks != nil {
		out.Tasks = append([]Task(nil), s.Tasks...)
	}
	return out
}

// NewTask carries the caller-supplied fields of a task being created.
// Zero fields take the store defaults.
type NewTask struct {
	ListID   string
	Title    string
	Priority Priority
	DueDate  Date
	Notes    string
}

// TaskPatch is a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	ListID    *string
	Title     *string
	Completed *bool
	Priority  *Priority
	DueDate   *Date
	Notes     *string
}

// Apply merges the non-nil fields of p into t.
func (p TaskPatch) Apply(t Task) Task {
	if p.ListID != nil {
		t.ListID = *p.ListID
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	return t
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.ListID == nil && p.Title == nil && p.Completed == nil &&
		p.Priority == nil && p.DueDate == nil && p.Notes == nil
}

// SettingsPatch is a partial settings update.
type SettingsPatch struct {
	GistToken *string
	GistID    *string
}

// Apply merges the non-nil fields of p into s.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.GistToken != nil {
		s.GistToken = *p.GistToken
	}
	if p.GistID != nil {
		s.GistID = *p.GistID
	}
	return s
}

// Status is a sync status kind.
type Status string

const (
	StatusDisabled Status = "disabled"
	StatusPending  Status = "pending"
	StatusSyncing  Status = "syncing"
	StatusSynced   Status = "synced"
	StatusError    Status = "error"
)

// SyncStatus is a transient sync signal broadcast to listeners.
type SyncStatus struct {
	Status  Status
	Message string
}
