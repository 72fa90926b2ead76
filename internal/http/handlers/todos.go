package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"todo_api/internal/domain"

	"github.com/gin-gonic/gin"
)

// ListTodos returns all todos in insertion order.
// ?completed=true selects completed ones; any other value selects open ones.
func (h *Handler) ListTodos(c *gin.Context) {
	var filter *bool
	if v, ok := c.GetQuery("completed"); ok {
		completed := v == "true"
		filter = &completed
	}

	todos, err := h.Todos.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, "list", err)
		return
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	c.JSON(http.StatusOK, todos)
}

func (h *Handler) GetTodo(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	todo, err := h.Todos.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// CreateTodo expects {title, completed?}
func (h *Handler) CreateTodo(c *gin.Context) {
	req, ok := bindTodoRequest(c)
	if !ok {
		return
	}
	in, err := req.toInput(true)
	if err != nil {
		h.respondError(c, "create", err)
		return
	}

	todo, err := h.Todos.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, "create", err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

// UpdateTodo expects {title?, completed?}. An unknown id wins over an invalid body.
func (h *Handler) UpdateTodo(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	exists, err := h.Todos.Exists(ctx, id)
	if err != nil {
		h.respondError(c, "update", err)
		return
	}
	if !exists {
		h.respondError(c, "update", domain.ErrTodoNotFound)
		return
	}

	req, ok := bindTodoRequest(c)
	if !ok {
		return
	}
	in, err := req.toInput(false)
	if err != nil {
		h.respondError(c, "update", err)
		return
	}

	todo, err := h.Todos.Update(ctx, id, in)
	if err != nil {
		h.respondError(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *Handler) DeleteTodo(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	if err := h.Todos.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, "delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteCompletedTodos removes every completed todo
func (h *Handler) DeleteCompletedTodos(c *gin.Context) {
	n, err := h.Todos.DeleteCompleted(c.Request.Context())
	if err != nil {
		h.respondError(c, "delete_completed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      fmt.Sprintf("Deleted %d completed todos", n),
		"deletedCount": n,
	})
}

// todoID parses :id. Malformed ids answer 404 like unknown ones.
func todoID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": msgTodoNotFound})
		return 0, false
	}
	return id, true
}
