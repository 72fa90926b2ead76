package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"todo_api/internal/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestRepo() (*TodoRepository, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	return NewTodoRepositoryWithClock(clock.Now), clock
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func mustCreate(t *testing.T, r *TodoRepository, title string) domain.Todo {
	t.Helper()
	todo, err := r.Create(context.Background(), domain.TodoInput{Title: strPtr(title)})
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return todo
}

func titles(todos []domain.Todo) []string {
	var out []string
	for _, t := range todos {
		out = append(out, t.Title)
	}
	return out
}

func TestCreate_ValidTitles(t *testing.T) {
	r, clock := newTestRepo()
	seen := map[int64]bool{}

	for _, title := range []string{"a", "  Learn CI/CD  ", strings.Repeat("x", domain.MaxTitleLength)} {
		todo := mustCreate(t, r, title)
		if todo.Title != strings.TrimSpace(title) {
			t.Fatalf("title = %q; want trimmed %q", todo.Title, title)
		}
		if todo.Completed {
			t.Fatalf("new todo should not be completed")
		}
		if !todo.CreatedAt.Equal(todo.UpdatedAt) || !todo.CreatedAt.Equal(clock.Now()) {
			t.Fatalf("timestamps not set to now: %+v", todo)
		}
		if todo.ID <= 0 || seen[todo.ID] {
			t.Fatalf("id %d not fresh", todo.ID)
		}
		seen[todo.ID] = true
	}
}

func TestCreate_CompletedFlag(t *testing.T) {
	r, _ := newTestRepo()
	todo, err := r.Create(context.Background(), domain.TodoInput{Title: strPtr("done already"), Completed: boolPtr(true)})
	if err != nil || !todo.Completed {
		t.Fatalf("create completed = %+v, %v", todo, err)
	}
}

func TestCreate_InvalidDoesNotMutate(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()

	inputs := []domain.TodoInput{
		{},
		{Title: strPtr("")},
		{Title: strPtr("   ")},
		{Title: strPtr(strings.Repeat("x", domain.MaxTitleLength+1))},
	}
	for _, in := range inputs {
		_, err := r.Create(ctx, in)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}

	all, _ := r.List(ctx, nil)
	if len(all) != 0 {
		t.Fatalf("store mutated by invalid creates: %v", all)
	}
	// failed creates do not consume ids
	if todo := mustCreate(t, r, "first"); todo.ID != 1 {
		t.Fatalf("expected id 1, got %d", todo.ID)
	}
}

func TestDelete_IDsNeverReused(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()

	a := mustCreate(t, r, "A")
	b := mustCreate(t, r, "B")
	if err := r.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.Get(ctx, b.ID); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := r.Delete(ctx, b.ID); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}

	c := mustCreate(t, r, "C")
	if c.ID == a.ID || c.ID == b.ID {
		t.Fatalf("id %d reused", c.ID)
	}
	if c.ID != 3 {
		t.Fatalf("expected id 3, got %d", c.ID)
	}
}

func TestUpdate(t *testing.T) {
	r, clock := newTestRepo()
	ctx := context.Background()
	orig := mustCreate(t, r, "Build pipeline")

	clock.Advance(time.Minute)
	got, err := r.Update(ctx, orig.ID, domain.TodoInput{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != orig.Title || !got.Completed {
		t.Fatalf("unexpected update result %+v", got)
	}
	if !got.CreatedAt.Equal(orig.CreatedAt) || got.UpdatedAt.Before(got.CreatedAt) || !got.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("unexpected timestamps %+v", got)
	}

	got, err = r.Update(ctx, orig.ID, domain.TodoInput{Title: strPtr("  Renamed ")})
	if err != nil || got.Title != "Renamed" || !got.Completed {
		t.Fatalf("rename = %+v, %v", got, err)
	}
}

func TestUpdate_Errors(t *testing.T) {
	r, clock := newTestRepo()
	ctx := context.Background()
	orig := mustCreate(t, r, "keep me")

	if _, err := r.Update(ctx, 9999, domain.TodoInput{Completed: boolPtr(true)}); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	clock.Advance(time.Minute)
	_, err := r.Update(ctx, orig.ID, domain.TodoInput{Title: strPtr("  "), Completed: boolPtr(true)})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	got, _ := r.Get(ctx, orig.ID)
	if got != orig {
		t.Fatalf("failed update was partially applied: %+v", got)
	}
}

func TestUpdate_ClockSkewKeepsOrdering(t *testing.T) {
	r, clock := newTestRepo()
	orig := mustCreate(t, r, "skew")

	clock.Advance(-time.Hour)
	got, err := r.Update(context.Background(), orig.ID, domain.TodoInput{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Fatalf("updatedAt %v before createdAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestList_FilterKeepsInsertionOrder(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three", "four"} {
		mustCreate(t, r, title)
	}
	_, _ = r.Update(ctx, 1, domain.TodoInput{Completed: boolPtr(true)})
	_, _ = r.Update(ctx, 3, domain.TodoInput{Completed: boolPtr(true)})

	done, _ := r.List(ctx, boolPtr(true))
	if got := strings.Join(titles(done), ","); got != "one,three" {
		t.Fatalf("completed = %s", got)
	}
	open, _ := r.List(ctx, boolPtr(false))
	if got := strings.Join(titles(open), ","); got != "two,four" {
		t.Fatalf("active = %s", got)
	}
	all, _ := r.List(ctx, nil)
	if got := strings.Join(titles(all), ","); got != "one,two,three,four" {
		t.Fatalf("all = %s", got)
	}

	// callers get copies
	all[0].Title = "mutated"
	again, _ := r.Get(ctx, 1)
	if again.Title != "one" {
		t.Fatalf("list leaked internal state")
	}
}

func TestDeleteCompleted(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()

	a := mustCreate(t, r, "A")
	mustCreate(t, r, "B")
	if a.ID != 1 {
		t.Fatalf("expected id 1, got %d", a.ID)
	}
	if _, err := r.Update(ctx, a.ID, domain.TodoInput{Completed: boolPtr(true)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	removed, err := r.DeleteCompleted(ctx)
	if err != nil || len(removed) != 1 || removed[0] != a.ID {
		t.Fatalf("DeleteCompleted = %v, %v", removed, err)
	}
	all, _ := r.List(ctx, nil)
	if got := strings.Join(titles(all), ","); got != "B" {
		t.Fatalf("remaining = %s", got)
	}

	removed, _ = r.DeleteCompleted(ctx)
	if len(removed) != 0 {
		t.Fatalf("second DeleteCompleted removed %v", removed)
	}
}

func TestConcurrentCreatesGetDistinctIDs(t *testing.T) {
	r := NewTodoRepository()
	ctx := context.Background()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			todo, err := r.Create(ctx, domain.TodoInput{Title: strPtr("task")})
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			ids <- todo.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d ids, got %d", n, len(seen))
	}
}
