package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const todoPath = "/todos/todo"

// ListTodos returns every todo of the current user.
func (c *Client) ListTodos(ctx context.Context) ([]Todo, error) {
	resp, err := c.do(ctx, c.authed, http.MethodGet, todoPath, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Todo](c.logger, resp.body, "todoAllData", "todos"), nil
}

// CreateTodo submits a new todo and returns what the backend stored.
func (c *Client) CreateTodo(ctx context.Context, t Todo) (Todo, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return Todo{}, validationError("title is required")
	}
	if !t.DueDate.Valid {
		return Todo{}, validationError("due date is required")
	}
	if t.Status == "" {
		t.Status = StatusNotDone
	}
	t.ID = ""

	resp, err := c.do(ctx, c.authed, http.MethodPost, todoPath, t)
	if err != nil {
		return Todo{}, err
	}
	if created, ok := decodeOne(resp.body, func(v Todo) bool { return v.ID != "" }, "todo", "data", "newTodo"); ok {
		return created, nil
	}
	return t, nil
}

// UpdateTodo applies a partial update.
func (c *Client) UpdateTodo(ctx context.Context, id string, p TodoPatch) (Todo, error) {
	if id == "" {
		return Todo{}, validationError("todo id is required")
	}
	resp, err := c.do(ctx, c.authed, http.MethodPatch, todoPath+"/"+url.PathEscape(id), p)
	if err != nil {
		return Todo{}, err
	}
	updated, _ := decodeOne(resp.body, func(v Todo) bool { return v.ID != "" }, "todo", "data", "updatedTodo")
	return updated, nil
}

// SetTodoStatus is UpdateTodo for the status field only.
func (c *Client) SetTodoStatus(ctx context.Context, id string, completed bool) (Todo, error) {
	status := StatusNotDone
	if completed {
		status = StatusCompleted
	}
	return c.UpdateTodo(ctx, id, TodoPatch{Status: &status})
}

// DeleteTodo removes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	if id == "" {
		return validationError("todo id is required")
	}
	_, err := c.do(ctx, c.authed, http.MethodDelete, todoPath+"/"+url.PathEscape(id), nil)
	return err
}
