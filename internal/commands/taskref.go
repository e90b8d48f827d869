package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"gtodo/internal/exitcode"
	"gtodo/internal/service"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based position in the all view, 0 if ID is set
	ID  string // task id
}

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
// 1. If first arg is all digits → position in the all view (gtodo list)
// 2. Otherwise → task id, taken verbatim
// Extra args are not allowed.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || args[0] == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := args[0]
	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
		}
		if num < 1 {
			return TaskRef{}, fmt.Errorf("task number out of range: %d", num)
		}
		return TaskRef{Num: num}, nil
	}
	return TaskRef{ID: ref}, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ResolveTask finds the current owner's task a reference points at.
func ResolveTask(svc service.Service, ref TaskRef) (service.Task, error) {
	if ref.ID != "" {
		tasks := svc.GetTasks(func(t service.Task) bool { return t.ID == ref.ID })
		if len(tasks) == 0 {
			return service.Task{}, fmt.Errorf("task not found: %s", ref.ID)
		}
		return tasks[0], nil
	}

	tasks := svc.GetTasks(nil)
	if ref.Num > len(tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", ref.Num)
	}
	return tasks[ref.Num-1], nil
}

// resolveTaskArgs parses args and resolves the task, printing any error.
// The returned code is meaningful only when ok is false.
func resolveTaskArgs(svc service.Service, args []string, errOut io.Writer) (service.Task, int, bool) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError, false
	}
	task, err := ResolveTask(svc, ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError, false
	}
	return task, exitcode.Success, true
}

// resolveList finds a list by id, or by case-insensitive title when
// exactly one list has it.
func resolveList(svc service.Service, ref string) (service.TaskList, error) {
	lists := svc.Lists()
	for _, l := range lists {
		if l.ID == ref {
			return l, nil
		}
	}
	var found []service.TaskList
	for _, l := range lists {
		if strings.EqualFold(l.Title, ref) {
			found = append(found, l)
		}
	}
	switch len(found) {
	case 0:
		return service.TaskList{}, fmt.Errorf("list not found: %s", ref)
	case 1:
		return found[0], nil
	default:
		return service.TaskList{}, fmt.Errorf("ambiguous list name: %s", ref)
	}
}
