package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/layer-3/taskboard/core"
	"github.com/layer-3/taskboard/internal/logctx"
	"github.com/layer-3/taskboard/ports"
)

type CreateTaskInput struct {
	Title       string            `json:"title" validate:"min=3,max=100"`
	Description string            `json:"description" validate:"min=1,max=500"`
	Priority    core.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// UpdateTaskInput is a partial update: absent fields stay as they are.
type UpdateTaskInput struct {
	Title       *string            `json:"title" validate:"omitempty,min=3,max=100"`
	Description *string            `json:"description" validate:"omitempty,min=1,max=500"`
	Status      *core.TaskStatus   `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    *core.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// TaskService implements per-user task management and the admin listing.
type TaskService struct {
	tasks ports.TaskRepository
	users ports.UserRepository
}

func NewTaskService(tasks ports.TaskRepository, users ports.UserRepository) *TaskService {
	return &TaskService{tasks: tasks, users: users}
}

// List returns the owner's tasks, newest first.
func (s *TaskService) List(ctx context.Context, ownerID string, filter core.TaskFilter) ([]core.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, core.ErrInvalidStatus
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, core.ErrInvalidPriority
	}

	tasks, err := s.tasks.ListTasks(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("service/tasks: list: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*core.Task, error) {
	task, err := s.tasks.TaskByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("service/tasks: get: %w", err)
	}
	return task, nil
}

// Create stores a new task. Status always starts as pending whatever the
// client asked for.
func (s *TaskService) Create(ctx context.Context, ownerID string, in CreateTaskInput) (*core.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	task := &core.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      core.StatusPending,
		Priority:    in.Priority,
		UserID:      ownerID,
	}
	if task.Priority == "" {
		task.Priority = core.PriorityMedium
	}

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("service/tasks: create: %w", err)
	}

	logctx.From(ctx).Info("task_created", "task_id", task.ID, "user_id", ownerID)
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, ownerID, id string, in UpdateTaskInput) (*core.Task, error) {
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		in.Description = &d
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	patch := core.TaskPatch{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
	}
	if patch.Empty() {
		return s.Get(ctx, ownerID, id)
	}

	task, err := s.tasks.UpdateTask(ctx, ownerID, id, patch)
	if err != nil {
		return nil, fmt.Errorf("service/tasks: update: %w", err)
	}

	logctx.From(ctx).Info("task_updated", "task_id", task.ID, "user_id", ownerID)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.tasks.DeleteTask(ctx, ownerID, id); err != nil {
		return fmt.Errorf("service/tasks: delete: %w", err)
	}

	logctx.From(ctx).Info("task_deleted", "task_id", id, "user_id", ownerID)
	return nil
}

// ListAll returns every task with its owner attached. Tasks whose owner has
// been deleted carry a nil owner.
func (s *TaskService) ListAll(ctx context.Context) ([]core.OwnedTask, error) {
	tasks, err := s.tasks.ListAllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/tasks: list all: %w", err)
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/tasks: list owners: %w", err)
	}
	owners := make(map[string]core.Identity, len(users))
	for _, u := range users {
		owners[u.ID] = u.Identity()
	}

	out := make([]core.OwnedTask, 0, len(tasks))
	for _, t := range tasks {
		owned := core.OwnedTask{Task: t}
		if owner, ok := owners[t.UserID]; ok {
			owned.Owner = &owner
		}
		out = append(out, owned)
	}
	return out, nil
}
