package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTitleViolations(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"valid", "Buy milk", ""},
		{"padded", "  Buy milk  ", ""},
		{"empty", "", MsgTitleRequired},
		{"whitespace", " \t\n ", MsgTitleEmpty},
		{"max length", strings.Repeat("a", MaxTitleLength), ""},
		{"max length padded", "  " + strings.Repeat("a", MaxTitleLength) + "  ", ""},
		{"too long", strings.Repeat("a", MaxTitleLength+1), MsgTitleTooLong},
		{"multibyte max", strings.Repeat("é", MaxTitleLength), ""},
		{"multibyte too long", strings.Repeat("é", MaxTitleLength+1), MsgTitleTooLong},
		{"emoji max", strings.Repeat("📝", MaxTitleLength), ""},
	}

	for _, tc := range cases {
		got := TitleViolations(tc.title)
		if tc.want == "" {
			if len(got) != 0 {
				t.Fatalf("%s: unexpected violations %v", tc.name, got)
			}
			continue
		}
		if len(got) != 1 || got[0] != tc.want {
			t.Fatalf("%s: got %v; want [%s]", tc.name, got, tc.want)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	got, err := NormalizeTitle("  Deploy  ")
	if err != nil || got != "Deploy" {
		t.Fatalf("NormalizeTitle = %q, %v", got, err)
	}

	_, err = NormalizeTitle("   ")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Error() != MsgTitleEmpty {
		t.Fatalf("unexpected message %q", verr.Error())
	}
}

func TestValidationError_JoinsViolations(t *testing.T) {
	verr := &ValidationError{}
	if !verr.Empty() {
		t.Fatalf("new error should be empty")
	}
	verr.Add(MsgTitleRequired, MsgCompletedNotBool)
	if verr.Error() != "Title is required, Completed must be a boolean" {
		t.Fatalf("unexpected message %q", verr.Error())
	}
}

func TestTodoPriorityAndOverdue(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		age       time.Duration
		completed bool
		priority  Priority
		overdue   bool
	}{
		{time.Hour, false, PriorityLow, false},
		{4 * day, false, PriorityMedium, false},
		{8 * day, false, PriorityHigh, true},
		{8 * day, true, PriorityNone, false},
	}

	for _, tc := range cases {
		todo := Todo{Completed: tc.completed, CreatedAt: now.Add(-tc.age)}
		if got := todo.Priority(now); got != tc.priority {
			t.Fatalf("age %v completed %v: priority %s; want %s", tc.age, tc.completed, got, tc.priority)
		}
		if got := todo.IsOverdue(now, 7); got != tc.overdue {
			t.Fatalf("age %v completed %v: overdue %v; want %v", tc.age, tc.completed, got, tc.overdue)
		}
	}
}
