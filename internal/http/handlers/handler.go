package handlers

import (
	"context"
	"time"

	"todo_api/internal/domain"
)

// TodoService is what the todo endpoints need from the service layer
type TodoService interface {
	List(ctx context.Context, completed *bool) ([]domain.Todo, error)
	Get(ctx context.Context, id int64) (domain.Todo, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, in domain.TodoInput) (domain.Todo, error)
	Update(ctx context.Context, id int64, in domain.TodoInput) (domain.Todo, error)
	Delete(ctx context.Context, id int64) error
	DeleteCompleted(ctx context.Context) (int, error)
	Stats(ctx context.Context) (domain.TodoStats, error)
}

// HandlerConfig holds configuration for handler
type HandlerConfig struct {
	Environment string
	Version     string
	// include internal error text in 500 responses
	ExposeErrors bool
	// optional, reported by /status
	ClientCount func() int
}

type Handler struct {
	Todos     TodoService
	cfg       HandlerConfig
	startTime time.Time
}

func NewHandler(todos TodoService, cfg HandlerConfig) *Handler {
	return &Handler{
		Todos:     todos,
		cfg:       cfg,
		startTime: time.Now(),
	}
}
