package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/taskboard/core"
	"github.com/layer-3/taskboard/ports"
)

// TaskRepository is an in-memory ports.TaskRepository.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]core.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]core.Task)}
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func (r *TaskRepository) CreateTask(_ context.Context, task *core.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	r.tasks[task.ID] = *task
	return nil
}

func (r *TaskRepository) TaskByID(_ context.Context, userID, id string) (*core.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, core.ErrTaskNotFound
	}
	return &t, nil
}

func (r *TaskRepository) ListTasks(_ context.Context, userID string, filter core.TaskFilter) ([]core.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.Task, 0)
	for _, t := range r.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		out = append(out, t)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *TaskRepository) ListAllTasks(_ context.Context) ([]core.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *TaskRepository) UpdateTask(_ context.Context, userID, id string, patch core.TaskPatch) (*core.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, core.ErrTaskNotFound
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	t.UpdatedAt = time.Now().UTC()

	r.tasks[id] = t
	return &t, nil
}

func (r *TaskRepository) DeleteTask(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return core.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func sortNewestFirst(tasks []core.Task) {
	slices.SortStableFunc(tasks, func(a, b core.Task) int { return b.CreatedAt.Compare(a.CreatedAt) })
}
