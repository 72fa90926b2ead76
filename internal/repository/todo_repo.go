package repository

import (
	"context"
	"sync"
	"time"

	"todo_api/internal/domain"
)

// TodoRepository keeps todos in process memory, in insertion order.
// Ids come from a counter that never goes back, so deleted ids are not reused.
type TodoRepository struct {
	mu     sync.RWMutex
	todos  []domain.Todo
	nextID int64
	now    func() time.Time
}

func NewTodoRepository() *TodoRepository {
	return NewTodoRepositoryWithClock(time.Now)
}

// NewTodoRepositoryWithClock creates a repository stamping records with now()
func NewTodoRepositoryWithClock(now func() time.Time) *TodoRepository {
	return &TodoRepository{nextID: 1, now: now}
}

// List returns a copy of all todos, or only those whose completed flag equals *completed
func (r *TodoRepository) List(ctx context.Context, completed *bool) ([]domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]domain.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		if completed != nil && t.Completed != *completed {
			continue
		}
		res = append(res, t)
	}
	return res, nil
}

func (r *TodoRepository) Get(ctx context.Context, id int64) (domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Todo{}, domain.ErrTodoNotFound
	}
	return r.todos[i], nil
}

func (r *TodoRepository) Create(ctx context.Context, in domain.TodoInput) (domain.Todo, error) {
	if in.Title == nil {
		return domain.Todo{}, &domain.ValidationError{Violations: []string{domain.MsgTitleRequired}}
	}
	title, err := domain.NormalizeTitle(*in.Title)
	if err != nil {
		return domain.Todo{}, err
	}
	completed := false
	if in.Completed != nil {
		completed = *in.Completed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	t := domain.Todo{
		ID:        r.nextID,
		Title:     title,
		Completed: completed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.todos = append(r.todos, t)
	return t, nil
}

// Update applies the provided fields. Nothing changes when validation fails.
func (r *TodoRepository) Update(ctx context.Context, id int64, in domain.TodoInput) (domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	t := r.todos[i]
	if in.Title != nil {
		title, err := domain.NormalizeTitle(*in.Title)
		if err != nil {
			return domain.Todo{}, err
		}
		t.Title = title
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}

	t.UpdatedAt = r.now()
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}
	r.todos[i] = t
	return t, nil
}

func (r *TodoRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrTodoNotFound
	}
	r.todos = append(r.todos[:i], r.todos[i+1:]...)
	return nil
}

// DeleteCompleted removes every completed todo and returns the removed ids
func (r *TodoRepository) DeleteCompleted(ctx context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := []int64{}
	kept := r.todos[:0]
	for _, t := range r.todos {
		if t.Completed {
			removed = append(removed, t.ID)
			continue
		}
		kept = append(kept, t)
	}
	// drop stale tail references
	for i := len(kept); i < len(r.todos); i++ {
		r.todos[i] = domain.Todo{}
	}
	r.todos = kept
	return removed, nil
}

// caller holds r.mu
func (r *TodoRepository) indexOf(id int64) int {
	for i := range r.todos {
		if r.todos[i].ID == id {
			return i
		}
	}
	return -1
}
