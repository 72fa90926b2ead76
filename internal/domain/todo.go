package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxTitleLength is counted in characters on the trimmed title
const MaxTitleLength = 200

// Validation messages returned to API clients
const (
	MsgTitleRequired    = "Title is required"
	MsgTitleNotString   = "Title must be a string"
	MsgTitleEmpty       = "Title cannot be empty"
	MsgTitleTooLong     = "Title must be less than 200 characters"
	MsgCompletedNotBool = "Completed must be a boolean"
)

var ErrTodoNotFound = errors.New("todo not found")

// Todo is a single task record
type Todo struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TodoInput carries the optional fields of a create or update request.
// A nil field was not provided.
type TodoInput struct {
	Title     *string
	Completed *bool
}

// ValidationError lists every violated rule of one input
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, ", ")
}

// Add appends violations
func (e *ValidationError) Add(msgs ...string) {
	e.Violations = append(e.Violations, msgs...)
}

// Empty reports whether no rule was violated
func (e *ValidationError) Empty() bool {
	return len(e.Violations) == 0
}

var (
	validate   = validator.New()
	titleRules = fmt.Sprintf("required,max=%d", MaxTitleLength)
)

// TitleViolations checks a raw title. The empty string counts as missing;
// the remaining rules run on the trimmed title.
func TitleViolations(title string) []string {
	if title == "" {
		return []string{MsgTitleRequired}
	}

	err := validate.Var(strings.TrimSpace(title), titleRules)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			violations = append(violations, MsgTitleEmpty)
		case "max":
			violations = append(violations, MsgTitleTooLong)
		default:
			violations = append(violations, fe.Error())
		}
	}
	return violations
}

// NormalizeTitle returns the trimmed title or a *ValidationError
func NormalizeTitle(title string) (string, error) {
	if v := TitleViolations(title); len(v) > 0 {
		return "", &ValidationError{Violations: v}
	}
	return strings.TrimSpace(title), nil
}

// Priority buckets open todos by age
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const day = 24 * time.Hour

// Age returns how long ago the todo was created
func (t Todo) Age(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}

// IsOverdue reports whether an open todo is older than days
func (t Todo) IsOverdue(now time.Time, days int) bool {
	if t.Completed {
		return false
	}
	return t.Age(now) > time.Duration(days)*day
}

func (t Todo) Priority(now time.Time) Priority {
	if t.Completed {
		return PriorityNone
	}
	age := t.Age(now)
	switch {
	case age > 7*day:
		return PriorityHigh
	case age > 3*day:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
