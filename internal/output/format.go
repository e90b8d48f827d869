// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"gtodo/internal/service"
)

const (
	// ListSeparator is the separator line for view sections.
	ListSeparator = "------------"
)

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TITLE}{ (due DATE)}{ !PRIORITY}\n"
// Medium priority is not shown.
func FormatTask(w io.Writer, num int, task service.Task) {
	box := "[ ]"
	if task.Completed {
		box = "[x]"
	}
	line := fmt.Sprintf("%4d  %s %s", num, box, normalizeTitle(task.Title))
	if !task.DueDate.IsZero() {
		line += fmt.Sprintf(" (due %s)", task.DueDate)
	}
	if task.Priority != "" && task.Priority != service.PriorityMedium {
		line += " !" + string(task.Priority)
	}
	fmt.Fprintln(w, line)
}

// FormatNotes prints a task's notes indented under its line.
func FormatNotes(w io.Writer, task service.Task) {
	notes := strings.TrimSpace(task.Notes)
	if notes == "" {
		return
	}
	for _, l := range strings.Split(notes, "\n") {
		fmt.Fprintf(w, "        %s\n", strings.TrimRight(l, "\r"))
	}
}

// FormatViewHeader formats a view section header.
func FormatViewHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, normalizeListTitle(title))
	fmt.Fprintln(w, ListSeparator)
}

// FormatList formats a list line for the lists command.
// Format: "{ID}  {TITLE} ({COUNT})\n"
func FormatList(w io.Writer, list service.TaskList, count int) {
	fmt.Fprintf(w, "%s  %s (%d)\n", list.ID, normalizeListTitle(list.Title), count)
}

// FormatViewCount formats a smart view line for the lists command.
func FormatViewCount(w io.Writer, name string, count int) {
	fmt.Fprintf(w, "%s (%d)\n", name, count)
}

// FormatSyncStatus formats a sync status line.
func FormatSyncStatus(w io.Writer, st service.SyncStatus) {
	if st.Message == "" || st.Message == string(st.Status) {
		fmt.Fprintf(w, "sync: %s\n", st.Status)
		return
	}
	fmt.Fprintf(w, "sync: %s (%s)\n", st.Status, st.Message)
}

// FormatSettings formats the settings with the token masked.
func FormatSettings(w io.Writer, s service.Settings) {
	token := s.MaskedToken()
	if token == "" {
		token = "(not set)"
	}
	id := s.GistID
	if id == "" {
		id = "(not set)"
	}
	fmt.Fprintf(w, "token:   %s\n", token)
	fmt.Fprintf(w, "gist id: %s\n", id)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListTitle normalizes a list title for display.
// Empty or whitespace-only titles become "(untitled)".
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
