package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/layer-3/taskboard/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateTaskForcesPendingAndDefaultsPriority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.task.Create(ctx, "u1", CreateTaskInput{Title: "  Write report  ", Description: " quarterly numbers "})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, "quarterly numbers", task.Description)
	assert.Equal(t, core.StatusPending, task.Status)
	assert.Equal(t, core.PriorityMedium, task.Priority)
	assert.Equal(t, "u1", task.UserID)

	task, err = f.task.Create(ctx, "u1", CreateTaskInput{Title: "Ship", Description: "v2", Priority: core.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, core.PriorityHigh, task.Priority)
	assert.Equal(t, core.StatusPending, task.Status)
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.task.Create(context.Background(), "u1", CreateTaskInput{
		Title:       "  ab ",
		Description: strings.Repeat("x", 501),
		Priority:    "urgent",
	})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []core.FieldError{
		{Field: "title", Message: "Title must be between 3 and 100 characters"},
		{Field: "description", Message: "Description must be between 1 and 500 characters"},
		{Field: "priority", Message: "Invalid priority"},
	}, verr.Fields)
}

func TestListTasksFiltersByOwnerAndFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.task.Create(ctx, "u1", CreateTaskInput{Title: "first", Description: "d", Priority: core.PriorityLow})
	require.NoError(t, err)
	_, err = f.task.Create(ctx, "u1", CreateTaskInput{Title: "second", Description: "d"})
	require.NoError(t, err)
	_, err = f.task.Create(ctx, "u2", CreateTaskInput{Title: "theirs", Description: "d"})
	require.NoError(t, err)

	all, err := f.task.List(ctx, "u1", core.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	low, err := f.task.List(ctx, "u1", core.TaskFilter{Priority: core.PriorityLow})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, a.ID, low[0].ID)

	done, err := f.task.List(ctx, "u1", core.TaskFilter{Status: core.StatusCompleted})
	require.NoError(t, err)
	assert.Empty(t, done)

	_, err = f.task.List(ctx, "u1", core.TaskFilter{Status: "archived"})
	assert.ErrorIs(t, err, core.ErrInvalidStatus)
	_, err = f.task.List(ctx, "u1", core.TaskFilter{Priority: "urgent"})
	assert.ErrorIs(t, err, core.ErrInvalidPriority)
}

func TestUpdateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.task.Create(ctx, "u1", CreateTaskInput{Title: "draft", Description: "d"})
	require.NoError(t, err)

	updated, err := f.task.Update(ctx, "u1", task.ID, UpdateTaskInput{
		Title:  ptr("  final  "),
		Status: ptr(core.StatusInProgress),
	})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "d", updated.Description)
	assert.Equal(t, core.StatusInProgress, updated.Status)
	assert.Equal(t, core.PriorityMedium, updated.Priority)

	same, err := f.task.Update(ctx, "u1", task.ID, UpdateTaskInput{})
	require.NoError(t, err)
	assert.Equal(t, updated.Title, same.Title)

	_, err = f.task.Update(ctx, "u2", task.ID, UpdateTaskInput{Title: ptr("stolen")})
	assert.ErrorIs(t, err, core.ErrTaskNotFound)

	_, err = f.task.Update(ctx, "u1", task.ID, UpdateTaskInput{
		Description: ptr("   "),
		Status:      ptr(core.TaskStatus("archived")),
	})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []core.FieldError{
		{Field: "description", Message: "Description must be between 1 and 500 characters"},
		{Field: "status", Message: "Invalid status"},
	}, verr.Fields)
}

func TestGetAndDeleteTaskAreOwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.task.Create(ctx, "u1", CreateTaskInput{Title: "mine", Description: "d"})
	require.NoError(t, err)

	_, err = f.task.Get(ctx, "u2", task.ID)
	assert.ErrorIs(t, err, core.ErrTaskNotFound)
	assert.ErrorIs(t, f.task.Delete(ctx, "u2", task.ID), core.ErrTaskNotFound)

	got, err := f.task.Get(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	require.NoError(t, f.task.Delete(ctx, "u1", task.ID))
	_, err = f.task.Get(ctx, "u1", task.ID)
	assert.ErrorIs(t, err, core.ErrTaskNotFound)
}

func TestListAllAttachesOwners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ada := f.register(t, "Ada", "ada@example.com")
	bob := f.register(t, "Bob", "bob@example.com")

	_, err := f.task.Create(ctx, ada.User.ID, CreateTaskInput{Title: "ada task", Description: "d"})
	require.NoError(t, err)
	_, err = f.task.Create(ctx, bob.User.ID, CreateTaskInput{Title: "bob task", Description: "d"})
	require.NoError(t, err)
	require.NoError(t, f.admin.DeleteUser(ctx, bob.User.ID))

	all, err := f.task.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	owners := map[string]*core.Identity{}
	for _, task := range all {
		owners[task.Title] = task.Owner
	}
	require.NotNil(t, owners["ada task"])
	assert.Equal(t, ada.User, *owners["ada task"])
	assert.Nil(t, owners["bob task"])
}
