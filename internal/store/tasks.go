package store

import (
	"fmt"

	"gtodo/internal/service"
	"gtodo/internal/views"
)

// GetTasks implements service.Service. With nobody logged in it returns
// nothing, including ownerless tasks.
func (s *Store) GetTasks(pred func(service.Task) bool) []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == "" {
		return nil
	}
	var out []service.Task
	for _, t := range s.state.Tasks {
		if t.Owner != s.user {
			continue
		}
		if pred != nil && !pred(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// indexOwned returns the index of the current owner's task id, or -1.
func (s *Store) indexOwned(id string) int {
	if s.user == "" {
		return -1
	}
	for i, t := range s.state.Tasks {
		if t.ID == id && t.Owner == s.user {
			return i
		}
	}
	return -1
}

func (s *Store) defaultListIDLocked() string {
	if len(s.state.Lists) > 0 {
		return s.state.Lists[0].ID
	}
	return FallbackListID
}

// AddTask implements service.Service.
func (s *Store) AddTask(nt service.NewTask) (service.Task, error) {
	if nt.Priority != "" && !nt.Priority.Valid() {
		return service.Task{}, fmt.Errorf("%w: %s", service.ErrInvalidPriority, nt.Priority)
	}

	s.mu.Lock()
	if s.user == "" {
		s.mu.Unlock()
		return service.Task{}, service.ErrNotLoggedIn
	}

	task := service.Task{
		ID:        "task-" + s.newID(),
		Owner:     s.user,
		ListID:    nt.ListID,
		Title:     nt.Title,
		Completed: false,
		Priority:  nt.Priority,
		DueDate:   nt.DueDate,
		Notes:     nt.Notes,
		CreatedAt: s.now().UnixMilli(),
	}
	if task.ListID == "" {
		task.ListID = s.defaultListIDLocked()
	}
	if task.Priority == "" {
		task.Priority = service.PriorityMedium
	}
	s.state.Tasks = append(s.state.Tasks, task)

	return task, s.commitLocked(true)
}

// AddTaskInView implements service.Service. A list view files the task in
// that list, any other view in the first list. The today view sets the due
// date to today regardless of due.
func (s *Store) AddTaskInView(view, title string, due service.Date) (service.Task, error) {
	nt := service.NewTask{Title: title, DueDate: due}

	if view != "" && !views.IsSmart(view) {
		s.mu.Lock()
		for _, l := range s.state.Lists {
			if l.ID == view {
				nt.ListID = l.ID
				break
			}
		}
		s.mu.Unlock()
	}
	if view == views.Today {
		nt.DueDate = s.Dates().Today
	}
	return s.AddTask(nt)
}

// UpdateTask implements service.Service. Only the current owner's tasks
// can be updated; any other id is a no-op that writes nothing.
func (s *Store) UpdateTask(id string, patch service.TaskPatch) error {
	if patch.Priority != nil && !patch.Priority.Valid() {
		return fmt.Errorf("%w: %s", service.ErrInvalidPriority, *patch.Priority)
	}

	s.mu.Lock()
	i := s.indexOwned(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.state.Tasks[i] = patch.Apply(s.state.Tasks[i])
	return s.commitLocked(true)
}

// DeleteTask implements service.Service.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	i := s.indexOwned(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	tasks := make([]service.Task, 0, len(s.state.Tasks)-1)
	tasks = append(tasks, s.state.Tasks[:i]...)
	tasks = append(tasks, s.state.Tasks[i+1:]...)
	s.state.Tasks = tasks
	return s.commitLocked(true)
}

// DeferToday implements service.Service. Each move is an ordinary update,
// so the burst collapses into one push.
func (s *Store) DeferToday() (int, error) {
	d := s.Dates()
	due := s.GetTasks(views.Filter(views.Today, d, false))
	tomorrow := d.Tomorrow
	for _, t := range due {
		if err := s.UpdateTask(t.ID, service.TaskPatch{DueDate: &tomorrow}); err != nil {
			return 0, err
		}
	}
	return len(due), nil
}

// AddList implements service.Service.
func (s *Store) AddList(title string) (service.TaskList, error) {
	list := service.TaskList{
		ID:    "list-" + s.newID(),
		Title: title,
		Color: "indigo",
	}

	s.mu.Lock()
	s.state.Lists = append(s.state.Lists, list)
	return list, s.commitLocked(true)
}

// DeleteList implements service.Service. Lists are shared by all owners,
// so the emptiness check and the cascade cover every owner's tasks.
func (s *Store) DeleteList(id string, cascade bool) error {
	s.mu.Lock()
	idx := -1
	for i, l := range s.state.Lists {
		if l.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	kept := make([]service.Task, 0, len(s.state.Tasks))
	for _, t := range s.state.Tasks {
		if t.ListID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) != len(s.state.Tasks) && !cascade {
		s.mu.Unlock()
		return service.ErrListNotEmpty
	}

	lists := make([]service.TaskList, 0, len(s.state.Lists)-1)
	lists = append(lists, s.state.Lists[:idx]...)
	lists = append(lists, s.state.Lists[idx+1:]...)
	s.state.Lists = lists
	s.state.Tasks = kept
	return s.commitLocked(true)
}

// UpdateSettings implements service.Service.
func (s *Store) UpdateSettings(patch service.SettingsPatch) error {
	s.mu.Lock()
	s.state.Settings = patch.Apply(s.state.Settings)
	return s.commitLocked(true)
}
