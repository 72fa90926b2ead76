package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"todo_api/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// todoRequest is the body of POST and PUT /todos. Fields stay raw so that
// a missing field, a null and a value of the wrong JSON type can be told apart.
type todoRequest struct {
	Title     json.RawMessage `json:"title"`
	Completed json.RawMessage `json:"completed"`
}

// bindTodoRequest decodes the body; an empty body counts as {}.
// Anything other than exactly one JSON value, such as trailing data, is malformed.
// It writes the 400 response itself and returns false on malformed JSON.
func bindTodoRequest(c *gin.Context) (todoRequest, bool) {
	var req todoRequest
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidJSON})
		return todoRequest{}, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, true
	}
	if !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidJSON})
		return todoRequest{}, false
	}
	if err := binding.JSON.BindBody(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidJSON})
		return todoRequest{}, false
	}
	return req, true
}

// toInput validates every field and reports all violations at once.
// requireTitle is set for create.
func (r todoRequest) toInput(requireTitle bool) (domain.TodoInput, error) {
	var in domain.TodoInput
	verr := &domain.ValidationError{}

	if provided(r.Title) {
		var title string
		if err := json.Unmarshal(r.Title, &title); err != nil {
			verr.Add(domain.MsgTitleNotString)
		} else if v := domain.TitleViolations(title); len(v) > 0 {
			verr.Add(v...)
		} else {
			in.Title = &title
		}
	} else if requireTitle {
		verr.Add(domain.MsgTitleRequired)
	}

	if provided(r.Completed) {
		var completed bool
		if err := json.Unmarshal(r.Completed, &completed); err != nil {
			verr.Add(domain.MsgCompletedNotBool)
		} else {
			in.Completed = &completed
		}
	}

	if !verr.Empty() {
		return domain.TodoInput{}, verr
	}
	return in, nil
}

// null is treated like an absent field
func provided(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
