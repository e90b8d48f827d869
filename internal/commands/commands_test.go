package commands_test

import (
	"bytes"
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gtodo/internal/commands"
	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
	"gtodo/internal/storage"
	"gtodo/internal/store"
	"gtodo/internal/testutil"
)

var testUsers = map[string]string{"alice": "secret"}

// newService returns a store with alice logged in.
func newService(t *testing.T) *store.Store {
	t.Helper()
	svc := newLoggedOut(t)
	if err := svc.Login("alice", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return svc
}

// newLoggedOut returns a store nobody is logged in to.
func newLoggedOut(t *testing.T) *store.Store {
	t.Helper()
	return testutil.NewStore(t, testutil.StoreConfig{Users: testUsers})
}

// newSynced returns a logged-in store configured against a fake gist server.
func newSynced(t *testing.T) (*store.Store, *testutil.GistServer) {
	t.Helper()
	srv := testutil.NewGistServer(t)
	svc := testutil.NewStore(t, testutil.StoreConfig{Users: testUsers, Server: srv})
	if err := svc.Login("alice", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	token, id := "0123456789abcdef", "doc42"
	if err := svc.UpdateSettings(service.SettingsPatch{GistToken: &token, GistID: &id}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	return svc, srv
}

func testConfig(t *testing.T, quiet bool) *config.Config {
	t.Helper()
	cfg := config.Default(t.TempDir())
	cfg.Quiet = quiet
	return cfg
}

// runCommand is a helper to run a command against a service.
func runCommand(t *testing.T, cmd commands.Command, svc service.Service, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	return runWithConfig(t, cmd, testConfig(t, quiet), svc, args)
}

// runWithConfig registers the command's flags, parses args and runs it.
func runWithConfig(t *testing.T, cmd commands.Command, cfg *config.Config, svc service.Service, args []string) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("flag parse failed: %v", err)
	}

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), cfg, svc, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func mustAdd(t *testing.T, svc service.Service, nt service.NewTask) service.Task {
	t.Helper()
	task, err := svc.AddTask(nt)
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	return task
}

func findTask(t *testing.T, svc service.Service, id string) service.Task {
	t.Helper()
	tasks := svc.GetTasks(func(task service.Task) bool { return task.ID == id })
	if len(tasks) != 1 {
		t.Fatalf("task %s not found", id)
	}
	return tasks[0]
}

func expectCode(t *testing.T, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("expected exit code %d, got %d", want, got)
	}
}

func expectOutput(t *testing.T, what, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("expected %s %q, got %q", what, want, got)
	}
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "gtodo 0.1.0\n", stdout)
}

func TestVersionCommand_Build(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.VersionCmd{}, nil, []string{"--build"}, false)

	expectCode(t, exitcode.Success, code)
	if !strings.HasPrefix(stdout, "gtodo 0.1.0\n") {
		t.Fatalf("expected version first, got %q", stdout)
	}
	rest := strings.TrimPrefix(stdout, "gtodo 0.1.0\n")
	if !strings.HasPrefix(rest, "go ") && rest != "build info unavailable\n" {
		t.Errorf("expected build details, got %q", rest)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	for _, want := range []string{"Usage:", "gtodo add", "gtodo sync", "--quiet"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

// Tests for list command
func TestListCommand_Empty(t *testing.T) {
	svc := newService(t)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "no tasks found\n", stdout)
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	svc := newService(t)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, svc, nil, true)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "", stdout)
}

func TestListCommand_AllView(t *testing.T) {
	svc := newService(t)
	mustAdd(t, svc, service.NewTask{Title: "Buy milk", Priority: service.PriorityHigh, DueDate: "2024-05-10"})
	done := mustAdd(t, svc, service.NewTask{Title: "Call mom"})
	completed := true
	svc.UpdateTask(done.ID, service.TaskPatch{Completed: &completed})
	mustAdd(t, svc, service.NewTask{Title: "Water plants", Priority: service.PriorityLow})

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expected := "   1  [ ] Buy milk (due 2024-05-10) !high\n" +
		"   2  [x] Call mom\n" +
		"   3  [ ] Water plants !low\n"
	expectOutput(t, "stdout", expected, stdout)
}

func TestListCommand_HideCompletedKeepsNumbers(t *testing.T) {
	svc := newService(t)
	first := mustAdd(t, svc, service.NewTask{Title: "First"})
	mustAdd(t, svc, service.NewTask{Title: "Second"})
	completed := true
	svc.UpdateTask(first.ID, service.TaskPatch{Completed: &completed})

	cmd := &commands.ListCmd{}
	stdout, _, code := runCommand(t, cmd, svc, []string{"--hide-completed"}, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "   2  [ ] Second\n", stdout)
}

func TestListCommand_ListView(t *testing.T) {
	svc := newService(t)
	mustAdd(t, svc, service.NewTask{Title: "Report"})
	mustAdd(t, svc, service.NewTask{Title: "Groceries", ListID: "list-2"})

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--view", "personal"}, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expected := "------------\nPersonal\n------------\n   2  [ ] Groceries\n"
	expectOutput(t, "stdout", expected, stdout)
}

func TestListCommand_SmartView(t *testing.T) {
	svc := newService(t)
	today := service.DateOf(time.Now())
	mustAdd(t, svc, service.NewTask{Title: "Later"})
	mustAdd(t, svc, service.NewTask{Title: "Now", DueDate: today})

	cmd := &commands.ListCmd{}
	cmd.SetView("today")
	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), testConfig(t, false), svc, nil, &outBuf, &errBuf)

	expectCode(t, exitcode.Success, code)
	expected := "------------\nToday\n------------\n   2  [ ] Now (due " + string(today) + ")\n"
	expectOutput(t, "stdout", expected, outBuf.String())
}

func TestListCommand_Notes(t *testing.T) {
	svc := newService(t)
	mustAdd(t, svc, service.NewTask{Title: "Report", Notes: "draft\nreview"})

	stdout, _, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--notes"}, false)

	expectCode(t, exitcode.Success, code)
	expected := "   1  [ ] Report\n        draft\n        review\n"
	expectOutput(t, "stdout", expected, stdout)
}

func TestListCommand_ListNotFound(t *testing.T) {
	svc := newService(t)

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--view", "Nope"}, false)

	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: list not found: Nope\n", stderr)
}

func TestListCommand_UnexpectedArgument(t *testing.T) {
	svc := newService(t)

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"extra"}, false)

	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: unexpected argument: extra\n", stderr)
}

// Tests for lists command
func TestListsCommand(t *testing.T) {
	svc := newService(t)
	mustAdd(t, svc, service.NewTask{Title: "Report"})
	mustAdd(t, svc, service.NewTask{Title: "Taxes", DueDate: "2999-01-01", ListID: "list-2"})
	doneTask := mustAdd(t, svc, service.NewTask{Title: "Old"})
	completed := true
	svc.UpdateTask(doneTask.ID, service.TaskPatch{Completed: &completed})

	stdout, stderr, code := runCommand(t, &commands.ListsCmd{}, svc, nil, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expected := "tomorrow (0)\n" +
		"today (0)\n" +
		"yesterday (0)\n" +
		"all (2)\n" +
		"scheduled (1)\n" +
		"completed (1)\n" +
		"------------\n" +
		"list-1  Work (1)\n" +
		"list-2  Personal (1)\n"
	expectOutput(t, "stdout", expected, stdout)
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := newService(t)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Buy", "milk"}, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)

	tasks := svc.GetTasks(nil)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	expectOutput(t, "stdout", "ok "+task.ID+"\n", stdout)
	if task.Title != "Buy milk" || task.ListID != "list-1" || task.Priority != service.PriorityMedium {
		t.Errorf("unexpected task %+v", task)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	svc := newService(t)

	stdout, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Task"}, true)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "", stdout)
}

func TestAddCommand_NoTitle(t *testing.T) {
	svc := newService(t)

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"  "}, false)

	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: title required\n", stderr)
}

func TestAddCommand_Fields(t *testing.T) {
	svc := newService(t)

	args := []string{"--list", "Personal", "--due", "2024-05-10", "--priority", "high", "--notes", "two cartons", "Milk"}
	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, args, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	task := svc.GetTasks(nil)[0]
	want := service.Task{ListID: "list-2", Title: "Milk", Priority: service.PriorityHigh, DueDate: "2024-05-10", Notes: "two cartons"}
	if task.ListID != want.ListID || task.Priority != want.Priority || task.DueDate != want.DueDate || task.Notes != want.Notes {
		t.Errorf("expected %+v, got %+v", want, task)
	}
}

func TestAddCommand_ToSpecificList(t *testing.T) {
	svc := newService(t)

	cmd := &commands.AddCmd{}
	cmd.SetListName("personal")
	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), testConfig(t, false), svc, []string{"Groceries"}, &outBuf, &errBuf)

	expectCode(t, exitcode.Success, code)
	if got := svc.GetTasks(nil)[0].ListID; got != "list-2" {
		t.Errorf("expected list-2, got %s", got)
	}
}

func TestAddCommand_TodayView(t *testing.T) {
	svc := newService(t)

	cmd := &commands.AddCmd{}
	cmd.SetView("today")
	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), testConfig(t, false), svc, []string{"Call", "bank"}, &outBuf, &errBuf)

	expectCode(t, exitcode.Success, code)
	task := svc.GetTasks(nil)[0]
	if task.DueDate != service.DateOf(time.Now()) {
		t.Errorf("expected due today, got %q", task.DueDate)
	}
}

func TestAddCommand_ListViewWithExtras(t *testing.T) {
	svc := newService(t)

	args := []string{"--view", "Personal", "--priority", "low", "--notes", "n", "Garden"}
	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, args, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	task := svc.GetTasks(nil)[0]
	if task.ListID != "list-2" || task.Priority != service.PriorityLow || task.Notes != "n" {
		t.Errorf("unexpected task %+v", task)
	}
}

func TestAddCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"invalid date", []string{"--due", "tomorrow", "x"}, "error: invalid date: tomorrow (want YYYY-MM-DD)\n"},
		{"invalid priority", []string{"--priority", "urgent", "x"}, "error: invalid priority: urgent (want low, medium or high)\n"},
		{"list and view", []string{"--list", "Work", "--view", "today", "x"}, "error: cannot use both --list and --view\n"},
		{"unknown list", []string{"--list", "Nope", "x"}, "error: list not found: Nope\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)
			_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, tt.args, false)

			expectCode(t, exitcode.UserError, code)
			expectOutput(t, "stderr", tt.want, stderr)
			if n := len(svc.GetTasks(nil)); n != 0 {
				t.Errorf("expected no task created, got %d", n)
			}
		})
	}
}

func TestAddCommand_NotLoggedIn(t *testing.T) {
	svc := newLoggedOut(t)

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Task"}, false)

	expectCode(t, exitcode.AuthError, code)
	expectOutput(t, "stderr", commands.NotLoggedInMessage+"\n", stderr)
}

// Tests for done and undone commands
func TestDoneCommand_Success(t *testing.T) {
	svc := newService(t)
	mustAdd(t, svc, service.NewTask{Title: "First"})
	second := mustAdd(t, svc, service.NewTask{Title: "Second"})

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"2"}, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "ok\n", stdout)
	if !findTask(t, svc, second.ID).Completed {
		t.Error("expected task completed")
	}
}

func TestDoneCommand_ByID(t *testing.T) {
	svc := newService(t)
	task := mustAdd(t, svc, service.NewTask{Title: "First"})

	_, _, code := runCommand(t, &commands.DoneCmd{}, svc, []string{task.ID}, false)

	expectCode(t, exitcode.Success, code)
	if !findTask(t, svc, task.ID).Completed {
		t.Error("expected task completed")
	}
}

func TestDoneCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no ref", nil, "error: task reference required\n"},
		{"unknown id", []string{"task-nope"}, "error: task not found: task-nope\n"},
		{"out of range", []string{"5"}, "error: task number out of range: 5\n"},
		{"zero", []string{"0"}, "error: task number out of range: 0\n"},
		{"extra arg", []string{"1", "2"}, "error: unexpected argument: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)
			mustAdd(t, svc, service.NewTask{Title: "Only"})

			_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, tt.args, false)

			expectCode(t, exitcode.UserError, code)
			expectOutput(t, "stderr", tt.want, stderr)
		})
	}
}

func TestUndoneCommand_Success(t *testing.T) {
	svc := newService(t)
	task := mustAdd(t, svc, service.NewTask{Title: "First"})
	completed := true
	svc.UpdateTask(task.ID, service.TaskPatch{Completed: &completed})

	stdout, _, code := runCommand(t, &commands.UndoneCmd{}, svc, []string{"1"}, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "ok\n", stdout)
	if findTask(t, svc, task.ID).Completed {
		t.Error("expected task open")
	}
}

// Tests for rm command
func TestRmCommand_Success(t *testing.T) {
	svc := newService(t)
	mustAdd(t, svc, service.NewTask{Title: "Keep"})
	mustAdd(t, svc, service.NewTask{Title: "Drop"})

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"2"}, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "ok\n", stdout)
	tasks := svc.GetTasks(nil)
	if len(tasks) != 1 || tasks[0].Title != "Keep" {
		t.Errorf("unexpected tasks %+v", tasks)
	}
}

func TestRmCommand_NoRef(t *testing.T) {
	svc := newService(t)

	_, stderr, code := runCommand(t, &commands.RmCmd{}, svc, nil, false)

	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: task reference required\n", stderr)
}

// Tests for edit command
func TestEditCommand_Success(t *testing.T) {
	svc := newService(t)
	task := mustAdd(t, svc, service.NewTask{Title: "Old", DueDate: "2024-05-10", Notes: "keep"})

	args := []string{"--title", "New", "--due", "", "--priority", "high", "--list", "Personal", "1"}
	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, svc, args, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "ok\n", stdout)

	got := findTask(t, svc, task.ID)
	if got.Title != "New" || !got.DueDate.IsZero() || got.Priority != service.PriorityHigh || got.ListID != "list-2" {
		t.Errorf("unexpected task %+v", got)
	}
	if got.Notes != "keep" {
		t.Errorf("expected notes untouched, got %q", got.Notes)
	}
}

func TestEditCommand_ClearNotes(t *testing.T) {
	svc := newService(t)
	task := mustAdd(t, svc, service.NewTask{Title: "T", Notes: "gone"})

	_, _, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--notes", "", "1"}, false)

	expectCode(t, exitcode.Success, code)
	if got := findTask(t, svc, task.ID).Notes; got != "" {
		t.Errorf("expected notes cleared, got %q", got)
	}
}

func TestEditCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"nothing to change", []string{"1"}, "error: nothing to change\n"},
		{"empty title", []string{"--title", " ", "1"}, "error: title required\n"},
		{"invalid date", []string{"--due", "soon", "1"}, "error: invalid date: soon (want YYYY-MM-DD)\n"},
		{"invalid priority", []string{"--priority", "urgent", "1"}, "error: invalid priority: urgent (want low, medium or high)\n"},
		{"unknown list", []string{"--list", "Nope", "1"}, "error: list not found: Nope\n"},
		{"no ref", []string{"--title", "x"}, "error: task reference required\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)
			mustAdd(t, svc, service.NewTask{Title: "T"})

			_, stderr, code := runCommand(t, &commands.EditCmd{}, svc, tt.args, false)

			expectCode(t, exitcode.UserError, code)
			expectOutput(t, "stderr", tt.want, stderr)
		})
	}
}

// Tests for defer command
func TestDeferCommand(t *testing.T) {
	svc := newService(t)
	now := time.Now()
	today, tomorrow := service.DateOf(now), service.DateOf(now.AddDate(0, 0, 1))
	due := mustAdd(t, svc, service.NewTask{Title: "Due", DueDate: today})
	later := mustAdd(t, svc, service.NewTask{Title: "Later", DueDate: tomorrow})

	stdout, stderr, code := runCommand(t, &commands.DeferCmd{}, svc, nil, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "ok 1 deferred\n", stdout)
	if got := findTask(t, svc, due.ID).DueDate; got != tomorrow {
		t.Errorf("expected due %s, got %s", tomorrow, got)
	}
	if got := findTask(t, svc, later.ID).DueDate; got != tomorrow {
		t.Errorf("expected untouched task due %s, got %s", tomorrow, got)
	}
}

// Tests for createlist command
func TestCreateListCommand_Success(t *testing.T) {
	svc := newService(t)

	stdout, stderr, code := runCommand(t, &commands.CreateListCmd{}, svc, []string{"Side", "projects"}, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	lists := svc.Lists()
	if len(lists) != 3 {
		t.Fatalf("expected 3 lists, got %d", len(lists))
	}
	created := lists[2]
	if created.Title != "Side projects" {
		t.Errorf("expected title 'Side projects', got %q", created.Title)
	}
	expectOutput(t, "stdout", "ok "+created.ID+"\n", stdout)
}

func TestCreateListCommand_NoName(t *testing.T) {
	svc := newService(t)

	_, stderr, code := runCommand(t, &commands.CreateListCmd{}, svc, nil, false)

	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: list name required\n", stderr)
}

func TestCreateListCommand_Duplicate(t *testing.T) {
	svc := newService(t)

	_, stderr, code := runCommand(t, &commands.CreateListCmd{}, svc, []string{"work"}, false)

	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: list already exists: work\n", stderr)
	if len(svc.Lists()) != 2 {
		t.Error("expected no list created")
	}
}

// Tests for rmlist command
func TestRmListCommand_EmptyListSuccess(t *testing.T) {
	svc := newService(t)

	stdout, stderr, code := runCommand(t, &commands.RmListCmd{}, svc, []string{"Personal"}, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "ok\n", stdout)
	if lists := svc.Lists(); len(lists) != 1 || lists[0].ID != "list-1" {
		t.Errorf("unexpected lists %+v", lists)
	}
}

func TestRmListCommand_NonEmptyListNoForce(t *testing.T) {
	svc := newService(t)
	mustAdd(t, svc, service.NewTask{Title: "Groceries", ListID: "list-2"})

	_, stderr, code := runCommand(t, &commands.RmListCmd{}, svc, []string{"Personal"}, false)

	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: list not empty (use --force)\n", stderr)
	if len(svc.Lists()) != 2 {
		t.Error("expected list kept")
	}
}

func TestRmListCommand_NonEmptyListWithForce(t *testing.T) {
	svc := newService(t)
	mustAdd(t, svc, service.NewTask{Title: "Groceries", ListID: "list-2"})
	mustAdd(t, svc, service.NewTask{Title: "Report"})

	cmd := &commands.RmListCmd{}
	cmd.SetForce(true)
	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), testConfig(t, false), svc, []string{"list-2"}, &outBuf, &errBuf)

	expectCode(t, exitcode.Success, code)
	tasks := svc.GetTasks(nil)
	if len(tasks) != 1 || tasks[0].Title != "Report" {
		t.Errorf("expected list's tasks removed, got %+v", tasks)
	}
}

func TestRmListCommand_Errors(t *testing.T) {
	svc := newService(t)

	_, stderr, code := runCommand(t, &commands.RmListCmd{}, svc, []string{"Nope"}, false)
	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: list not found: Nope\n", stderr)

	_, stderr, code = runCommand(t, &commands.RmListCmd{}, svc, nil, false)
	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: list name required\n", stderr)
}

// Tests for settings command
func TestSettingsCommand_Show(t *testing.T) {
	svc := newService(t)

	stdout, _, code := runCommand(t, &commands.SettingsCmd{}, svc, nil, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "token:   (not set)\ngist id: (not set)\n", stdout)
}

func TestSettingsCommand_Update(t *testing.T) {
	svc := newService(t)

	args := []string{"--token", "0123456789abcdef", "--gist-id", "doc42"}
	stdout, stderr, code := runCommand(t, &commands.SettingsCmd{}, svc, args, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "ok\n", stdout)

	stdout, _, _ = runCommand(t, &commands.SettingsCmd{}, svc, nil, false)
	expectOutput(t, "stdout", "token:   01234567****\ngist id: doc42\n", stdout)

	// Clearing one field keeps the other.
	runCommand(t, &commands.SettingsCmd{}, svc, []string{"--token", ""}, false)
	if s := svc.Settings(); s.GistToken != "" || s.GistID != "doc42" {
		t.Errorf("unexpected settings %+v", s)
	}
}

// Tests for sync, pull and migrate commands
func TestSyncCommand_NotConfigured(t *testing.T) {
	svc := newService(t)
	want := "error: sync not configured (run: gtodo settings --token <token> --gist-id <id>)\n"

	_, stderr, code := runCommand(t, &commands.SyncCmd{}, svc, nil, false)
	expectCode(t, exitcode.AuthError, code)
	expectOutput(t, "stderr", want, stderr)

	_, stderr, code = runCommand(t, &commands.PullCmd{}, svc, nil, false)
	expectCode(t, exitcode.AuthError, code)
	expectOutput(t, "stderr", want, stderr)
}

func TestSyncCommand_Success(t *testing.T) {
	svc, srv := newSynced(t)
	mustAdd(t, svc, service.NewTask{Title: "Backed up"})

	stdout, stderr, code := runCommand(t, &commands.SyncCmd{}, svc, nil, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "ok\n", stdout)
	if n := srv.Count(http.MethodPatch); n != 1 {
		t.Errorf("expected 1 push, got %d", n)
	}
	content, _ := srv.File(testutil.Filename)
	if !strings.Contains(content, "Backed up") {
		t.Errorf("expected task in backup, got %s", content)
	}
}

func TestSyncCommand_RemoteErrors(t *testing.T) {
	tests := []struct {
		status int
		code   int
		want   string
	}{
		{http.StatusForbidden, exitcode.BackendError, "error: backend error: push failed: 403 Forbidden\n"},
		{http.StatusUnauthorized, exitcode.AuthError, "error: auth error: push failed: 401 Unauthorized\n"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			svc, srv := newSynced(t)
			srv.Fail(tt.status, http.StatusText(tt.status))

			_, stderr, code := runCommand(t, &commands.SyncCmd{}, svc, nil, false)

			expectCode(t, tt.code, code)
			expectOutput(t, "stderr", tt.want, stderr)
		})
	}
}

func TestPullCommand_Success(t *testing.T) {
	svc, srv := newSynced(t)
	mustAdd(t, svc, service.NewTask{Title: "Local only"})
	remote := service.State{
		Lists: []service.TaskList{{ID: "list-9", Title: "Remote", Color: "red"}},
		Tasks: []service.Task{{ID: "task-9", Owner: "alice", ListID: "list-9", Title: "From remote", Priority: service.PriorityLow}},
	}
	data, _ := storage.Encode(remote)
	srv.SetFile(testutil.Filename, string(data))

	stdout, stderr, code := runCommand(t, &commands.PullCmd{}, svc, nil, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "ok\n", stdout)
	tasks := svc.GetTasks(nil)
	if len(tasks) != 1 || tasks[0].Title != "From remote" {
		t.Errorf("expected remote tasks, got %+v", tasks)
	}
	if svc.Settings().GistID != "doc42" {
		t.Error("expected local settings kept")
	}
}

func TestPullCommand_EmptyRemote(t *testing.T) {
	svc, _ := newSynced(t)

	cmd := &commands.PullCmd{}
	cmd.SetForce(true)
	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), testConfig(t, false), svc, nil, &outBuf, &errBuf)

	expectCode(t, exitcode.BackendError, code)
	expectOutput(t, "stderr", "error: backend error: remote backup is empty\n", errBuf.String())
}

func TestMigrateCommand(t *testing.T) {
	svc, srv := newSynced(t)
	remote := service.State{
		Lists: []service.TaskList{{ID: "list-1", Title: "Work"}},
		Tasks: []service.Task{
			{ID: "a", ListID: "list-1", Title: "Legacy"},
			{ID: "b", Owner: "alice", ListID: "list-1", Title: "Owned"},
		},
	}
	data, _ := storage.Encode(remote)
	srv.SetFile(testutil.Filename, string(data))

	stdout, stderr, code := runCommand(t, &commands.MigrateCmd{}, svc, []string{"--owner", "alice"}, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "ok 1 assigned to alice\n", stdout)
	if n := len(svc.GetTasks(nil)); n != 2 {
		t.Errorf("expected 2 tasks owned by alice, got %d", n)
	}
	if n := srv.Count(http.MethodPatch); n != 1 {
		t.Errorf("expected 1 push, got %d", n)
	}
}

func TestMigrateCommand_DefaultOwner(t *testing.T) {
	svc, srv := newSynced(t)
	data, _ := storage.Encode(service.State{Tasks: []service.Task{{ID: "a", ListID: "list-1", Title: "Legacy"}}})
	srv.SetFile(testutil.Filename, string(data))

	stdout, _, code := runCommand(t, &commands.MigrateCmd{}, svc, nil, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "ok 1 assigned to "+config.DefaultOwner+"\n", stdout)
}

// Tests for status command
func TestStatusCommand(t *testing.T) {
	svc := newService(t)

	stdout, _, code := runCommand(t, &commands.StatusCmd{}, svc, nil, false)

	expectCode(t, exitcode.Success, code)
	expected := "user:    alice\n" +
		"token:   (not set)\n" +
		"gist id: (not set)\n" +
		"sync: disabled (not configured)\n"
	expectOutput(t, "stdout", expected, stdout)
}

func TestStatusCommand_NotLoggedIn(t *testing.T) {
	svc := newLoggedOut(t)

	stdout, _, code := runCommand(t, &commands.StatusCmd{}, svc, nil, false)

	expectCode(t, exitcode.Success, code)
	if !strings.HasPrefix(stdout, "user:    (not logged in)\n") {
		t.Errorf("unexpected output %q", stdout)
	}
}

// Tests for login, whoami and logout commands
func loginConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testConfig(t, false)
	cfg.Users = testutil.HashUsers(t, testUsers)
	return cfg
}

func TestLoginCommand_Success(t *testing.T) {
	svc := newLoggedOut(t)

	stdout, stderr, code := runWithConfig(t, &commands.LoginCmd{}, loginConfig(t), svc, []string{"alice", "secret"})

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "ok\n", stdout)
	if svc.CurrentUser() != "alice" {
		t.Errorf("expected alice logged in, got %q", svc.CurrentUser())
	}
}

func TestLoginCommand_WrongPassword(t *testing.T) {
	svc := newLoggedOut(t)

	_, stderr, code := runWithConfig(t, &commands.LoginCmd{}, loginConfig(t), svc, []string{"alice", "nope"})

	expectCode(t, exitcode.AuthError, code)
	expectOutput(t, "stderr", "error: invalid username or password\n", stderr)
	if svc.CurrentUser() != "" {
		t.Error("expected nobody logged in")
	}
}

func TestLoginCommand_MissingArgs(t *testing.T) {
	svc := newLoggedOut(t)

	_, stderr, code := runWithConfig(t, &commands.LoginCmd{}, loginConfig(t), svc, []string{"alice"})

	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: user and password required\n", stderr)
}

func TestLoginCommand_NoUsers(t *testing.T) {
	svc := newLoggedOut(t)
	cfg := testConfig(t, false)

	_, stderr, code := runWithConfig(t, &commands.LoginCmd{}, cfg, svc, []string{"alice", "secret"})

	expectCode(t, exitcode.AuthError, code)
	expected := "error: no users configured in " + cfg.FilePath() + " (see: gtodo hashpw)\n"
	expectOutput(t, "stderr", expected, stderr)
}

func TestWhoamiCommand(t *testing.T) {
	svc := newService(t)

	stdout, _, code := runCommand(t, &commands.WhoamiCmd{}, svc, nil, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "alice\n", stdout)
}

func TestLogoutCommand(t *testing.T) {
	svc := newService(t)

	stdout, _, code := runCommand(t, &commands.LogoutCmd{}, svc, nil, false)
	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "ok\n", stdout)
	if svc.CurrentUser() != "" {
		t.Error("expected nobody logged in")
	}

	stdout, _, code = runCommand(t, &commands.LogoutCmd{}, svc, nil, false)
	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "not logged in\n", stdout)
}

// Tests for hashpw command
func TestHashPwCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HashPwCmd{}, nil, []string{"--cost", "4", "s3cret"}, false)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	hash := strings.TrimSuffix(stdout, "\n")
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
		t.Errorf("printed hash does not match: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != 4 {
		t.Errorf("expected cost 4, got %d", cost)
	}
}

func TestHashPwCommand_Errors(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.HashPwCmd{}, nil, nil, false)
	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: password required\n", stderr)

	_, stderr, code = runCommand(t, &commands.HashPwCmd{}, nil, []string{"--cost", "99", "pw"}, false)
	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: invalid cost: 99\n", stderr)
}

// Tests for config command
func TestConfigCommand_Print(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.OAuth.ClientSecret = "hidden"

	stdout, _, code := runWithConfig(t, &commands.ConfigCmd{}, cfg, nil, nil)

	expectCode(t, exitcode.Success, code)
	if !strings.HasPrefix(stdout, "# "+cfg.FilePath()+"\n") {
		t.Errorf("expected path header, got %q", stdout)
	}
	if !strings.Contains(stdout, "backend: file") {
		t.Errorf("expected storage backend in output, got %q", stdout)
	}
	if strings.Contains(stdout, "hidden") {
		t.Error("client secret printed")
	}
}

func TestConfigCommand_Init(t *testing.T) {
	cfg := testConfig(t, false)

	cmd := &commands.ConfigCmd{}
	cmd.SetInit(true)
	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "ok "+cfg.FilePath()+"\n", outBuf.String())
	if _, err := os.Stat(cfg.FilePath()); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	errBuf.Reset()
	code = cmd.Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)
	expectCode(t, exitcode.UserError, code)
	if !strings.Contains(errBuf.String(), "already exists") {
		t.Errorf("expected already exists error, got %q", errBuf.String())
	}
}

// Tests for connect command
func TestConnectCommand_NoOAuthClient(t *testing.T) {
	svc := newService(t)

	_, stderr, code := runCommand(t, &commands.ConnectCmd{}, svc, nil, false)

	expectCode(t, exitcode.AuthError, code)
	if !strings.HasPrefix(stderr, "error: oauth client not configured in ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if !strings.Contains(stderr, "gtodo settings --token <token> --gist-id <id>") {
		t.Errorf("expected manual fallback in instructions, got %q", stderr)
	}
	if svc.Settings().GistToken != "" {
		t.Error("expected settings untouched")
	}
}
