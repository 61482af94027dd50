package swclient

import (
	"context"
	"net/http"
	"strconv"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

// Task mirrors the backend task resource. Dates stay strings because the
// backend emits them without a zone offset.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     string     `json:"due_date,omitempty"`
	AssignedTo  *int64     `json:"assigned_to,omitempty"`
	CreatedBy   *int64     `json:"created_by,omitempty"`
	CreatedAt   string     `json:"created_at,omitempty"`
	UpdatedAt   string     `json:"updated_at,omitempty"`
}

// TaskInput is the payload for creating or updating a task.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	AssignedTo  *int64 `json:"assigned_to,omitempty"`
}

// TasksService manages tasks.
type TasksService struct {
	client *Client
}

func taskPath(id int64) string {
	return apiPrefix + "/tasks/" + strconv.FormatInt(id, 10)
}

// List returns the tasks visible to the Session's user.
func (s *TasksService) List(ctx context.Context) ([]Task, error) {
	return getJSON[[]Task](ctx, s.client, apiPrefix+"/tasks")
}

// Get fetches one task.
func (s *TasksService) Get(ctx context.Context, id int64) (*Task, error) {
	t, err := getJSON[Task](ctx, s.client, taskPath(id))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create adds a task; the backend fills in status and timestamps.
func (s *TasksService) Create(ctx context.Context, in TaskInput) (*Task, error) {
	t, err := sendJSON[Task](ctx, s.client, http.MethodPost, apiPrefix+"/tasks", in)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update replaces the task's editable fields. fields may be a TaskInput or
// any partial JSON object.
func (s *TasksService) Update(ctx context.Context, id int64, fields any) (*Task, error) {
	t, err := sendJSON[Task](ctx, s.client, http.MethodPut, taskPath(id), fields)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a task.
func (s *TasksService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.Delete(ctx, taskPath(id))
	return err
}

// UpdateStatus moves a task to status via PATCH /tasks/{id}/status.
func (s *TasksService) UpdateStatus(ctx context.Context, id int64, status TaskStatus) (*Task, error) {
	body := map[string]TaskStatus{"status": status}
	t, err := sendJSON[Task](ctx, s.client, http.MethodPatch, taskPath(id)+"/status", body)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
