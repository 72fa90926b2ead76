package service

import (
	"context"
	"errors"
	"time"

	"todo_api/internal/domain"
	"todo_api/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation results recorded in TodoOperations
const (
	resultOK       = "ok"
	resultInvalid  = "invalid"
	resultNotFound = "not_found"
	resultError    = "error"
)

var TodoOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "todo_operations_total",
		Help: "Todo store operations by outcome",
	},
	[]string{"operation", "result"},
)

func init() {
	prometheus.MustRegister(TodoOperations)
}

// SampleTitles seed an empty store when SEED_SAMPLE_TODOS is set
var SampleTitles = []string{
	"Set up CI/CD pipeline",
	"Add security scanning",
	"Deploy to production",
}

// TodoStore is the storage contract the service needs
type TodoStore interface {
	List(ctx context.Context, completed *bool) ([]domain.Todo, error)
	Get(ctx context.Context, id int64) (domain.Todo, error)
	Create(ctx context.Context, in domain.TodoInput) (domain.Todo, error)
	Update(ctx context.Context, id int64, in domain.TodoInput) (domain.Todo, error)
	Delete(ctx context.Context, id int64) error
	DeleteCompleted(ctx context.Context) ([]int64, error)
}

// EventPublisher receives an event after every successful mutation
type EventPublisher interface {
	Publish(event domain.TodoEvent)
}

// TodoService handles todo use cases on top of a TodoStore
type TodoService struct {
	store       TodoStore
	events      EventPublisher
	overdueDays int
	now         func() time.Time
}

// NewTodoService creates a new todo service. events may be nil.
func NewTodoService(store TodoStore, events EventPublisher, overdueDays int) *TodoService {
	if overdueDays <= 0 {
		overdueDays = 7
	}
	return &TodoService{
		store:       store,
		events:      events,
		overdueDays: overdueDays,
		now:         time.Now,
	}
}

func (s *TodoService) List(ctx context.Context, completed *bool) ([]domain.Todo, error) {
	todos, err := s.store.List(ctx, completed)
	s.record("list", err)
	return todos, err
}

func (s *TodoService) Get(ctx context.Context, id int64) (domain.Todo, error) {
	todo, err := s.store.Get(ctx, id)
	s.record("get", err)
	return todo, err
}

// Exists reports whether id is stored. It is a precondition check and is not
// recorded in TodoOperations.
func (s *TodoService) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.store.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrTodoNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *TodoService) Create(ctx context.Context, in domain.TodoInput) (domain.Todo, error) {
	todo, err := s.store.Create(ctx, in)
	s.record("create", err)
	if err != nil {
		return domain.Todo{}, err
	}

	logger.WithContext(ctx).Info("todo created", "id", todo.ID)
	s.publish(domain.TodoEvent{Type: domain.EventTodoCreated, Todo: &todo, ID: todo.ID})
	return todo, nil
}

func (s *TodoService) Update(ctx context.Context, id int64, in domain.TodoInput) (domain.Todo, error) {
	todo, err := s.store.Update(ctx, id, in)
	s.record("update", err)
	if err != nil {
		return domain.Todo{}, err
	}

	logger.WithContext(ctx).Info("todo updated", "id", todo.ID, "completed", todo.Completed)
	s.publish(domain.TodoEvent{Type: domain.EventTodoUpdated, Todo: &todo, ID: todo.ID})
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	s.record("delete", err)
	if err != nil {
		return err
	}

	logger.WithContext(ctx).Info("todo deleted", "id", id)
	s.publish(domain.TodoEvent{Type: domain.EventTodoDeleted, ID: id})
	return nil
}

// DeleteCompleted removes all completed todos and returns how many were removed
func (s *TodoService) DeleteCompleted(ctx context.Context) (int, error) {
	ids, err := s.store.DeleteCompleted(ctx)
	s.record("delete_completed", err)
	if err != nil {
		return 0, err
	}

	n := len(ids)
	logger.WithContext(ctx).Info("completed todos deleted", "count", n)
	if n > 0 {
		s.publish(domain.TodoEvent{Type: domain.EventTodosCleared, IDs: ids, DeletedCount: &n})
	}
	return n, nil
}

// Stats counts todos by state, overdue flag and priority
func (s *TodoService) Stats(ctx context.Context) (domain.TodoStats, error) {
	todos, err := s.store.List(ctx, nil)
	if err != nil {
		return domain.TodoStats{}, err
	}

	now := s.now()
	stats := domain.TodoStats{
		Total: len(todos),
		ByPriority: map[domain.Priority]int{
			domain.PriorityHigh:   0,
			domain.PriorityMedium: 0,
			domain.PriorityLow:    0,
			domain.PriorityNone:   0,
		},
	}
	for _, t := range todos {
		if t.Completed {
			stats.Completed++
		} else {
			stats.Active++
		}
		if t.IsOverdue(now, s.overdueDays) {
			stats.Overdue++
		}
		stats.ByPriority[t.Priority(now)]++
	}
	return stats, nil
}

// SeedSamples fills an empty store with the sample todos
func (s *TodoService) SeedSamples(ctx context.Context) error {
	existing, err := s.store.List(ctx, nil)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, title := range SampleTitles {
		if _, err := s.store.Create(ctx, domain.TodoInput{Title: &title}); err != nil {
			return err
		}
	}
	logger.Info("sample todos seeded", "count", len(SampleTitles))
	return nil
}

func (s *TodoService) publish(ev domain.TodoEvent) {
	if s.events == nil {
		return
	}
	ev.At = s.now().UTC()
	s.events.Publish(ev)
}

func (s *TodoService) record(op string, err error) {
	var verr *domain.ValidationError
	result := resultOK
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrTodoNotFound):
		result = resultNotFound
	case errors.As(err, &verr):
		result = resultInvalid
	default:
		result = resultError
	}
	TodoOperations.WithLabelValues(op, result).Inc()
}
