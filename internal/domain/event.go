package domain

import "time"

// Todo change event types
const (
	EventTodoCreated  = "todo.created"
	EventTodoUpdated  = "todo.updated"
	EventTodoDeleted  = "todo.deleted"
	EventTodosCleared = "todos.cleared"
)

// TodoEvent describes one successful mutation of the todo list
type TodoEvent struct {
	Type         string    `json:"type"`
	Todo         *Todo     `json:"todo,omitempty"`
	ID           int64     `json:"id,omitempty"`
	IDs          []int64   `json:"ids,omitempty"`
	DeletedCount *int      `json:"deletedCount,omitempty"`
	At           time.Time `json:"at"`
}

// TodoStats summarizes the current todo list
type TodoStats struct {
	Total      int              `json:"total"`
	Completed  int              `json:"completed"`
	Active     int              `json:"active"`
	Overdue    int              `json:"overdue"`
	ByPriority map[Priority]int `json:"byPriority"`
}
