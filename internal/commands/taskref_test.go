package commands

import (
	"testing"
)

func TestParseTaskRef_NumericOnly(t *testing.T) {
	ref, err := ParseTaskRef([]string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != "" {
		t.Errorf("expected no ID, got %q", ref.ID)
	}
	if ref.Num != 5 {
		t.Errorf("expected Num 5, got %d", ref.Num)
	}
}

func TestParseTaskRef_ID(t *testing.T) {
	ref, err := ParseTaskRef([]string{"task-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != "task-1" {
		t.Errorf("expected ID task-1, got %q", ref.ID)
	}
	if ref.Num != 0 {
		t.Errorf("expected Num 0, got %d", ref.Num)
	}
}

func TestParseTaskRef_Zero_Error(t *testing.T) {
	_, err := ParseTaskRef([]string{"0"})
	if err == nil {
		t.Fatal("expected error for zero")
	}
	expectedMsg := "task number out of range: 0"
	if err.Error() != expectedMsg {
		t.Errorf("expected %q, got %q", expectedMsg, err.Error())
	}
}

func TestParseTaskRef_ExtraArg_Error(t *testing.T) {
	_, err := ParseTaskRef([]string{"1", "2"})
	if err == nil {
		t.Fatal("expected error for extra arg")
	}
	expectedMsg := "unexpected argument: 2"
	if err.Error() != expectedMsg {
		t.Errorf("expected %q, got %q", expectedMsg, err.Error())
	}
}

func TestParseTaskRef_NoArgs_Error(t *testing.T) {
	_, err := ParseTaskRef([]string{})
	if err == nil {
		t.Fatal("expected error for no args")
	}
	if err != ErrTaskRefRequired {
		t.Errorf("expected ErrTaskRefRequired, got %v", err)
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"0", true},
		{"123", true},
		{"12a", false},
		{"-1", false},
		{"١٢", false}, // non-ASCII digits
	}
	for _, tt := range tests {
		if got := isAllDigits(tt.input); got != tt.want {
			t.Errorf("isAllDigits(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
