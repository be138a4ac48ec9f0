package ports

import (
	"context"

	"github.com/layer-3/taskboard/core"
)

// UserRepository persists accounts. Lookups of missing records return
// core.ErrUserNotFound.
type UserRepository interface {
	CreateUser(ctx context.Context, user *core.User) error
	UserByID(ctx context.Context, id string) (*core.User, error)
	UserByEmail(ctx context.Context, email string) (*core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
	UpdateUser(ctx context.Context, user *core.User) error
	DeleteUser(ctx context.Context, id string) (*core.User, error)
}

// TaskRepository persists tasks. Owner-scoped operations treat a task owned
// by someone else exactly like a missing one: core.ErrTaskNotFound.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *core.Task) error
	TaskByID(ctx context.Context, userID, id string) (*core.Task, error)
	ListTasks(ctx context.Context, userID string, filter core.TaskFilter) ([]core.Task, error)
	ListAllTasks(ctx context.Context) ([]core.Task, error)
	UpdateTask(ctx context.Context, userID, id string, patch core.TaskPatch) (*core.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}
