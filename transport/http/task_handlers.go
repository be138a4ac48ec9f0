package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/taskboard/core"
	"github.com/layer-3/taskboard/service"
)

type TaskHandlers struct {
	tasks *service.TaskService
}

func NewTaskHandlers(tasks *service.TaskService) *TaskHandlers {
	return &TaskHandlers{tasks: tasks}
}

func (h *TaskHandlers) List(c *gin.Context) {
	filter := core.TaskFilter{
		Status:   core.TaskStatus(c.Query("status")),
		Priority: core.TaskPriority(c.Query("priority")),
	}

	tasks, err := h.tasks.List(c.Request.Context(), mustPrincipal(c).Identity.ID, filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	respondList(c, len(tasks), gin.H{"tasks": tasks})
}

func (h *TaskHandlers) Get(c *gin.Context) {
	task, err := h.tasks.Get(c.Request.Context(), mustPrincipal(c).Identity.ID, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{"task": task})
}

// Create ignores any status in the body: new tasks start pending.
func (h *TaskHandlers) Create(c *gin.Context) {
	var req service.CreateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), mustPrincipal(c).Identity.ID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Task created successfully", gin.H{"task": task})
}

func (h *TaskHandlers) Update(c *gin.Context) {
	var req service.UpdateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), mustPrincipal(c).Identity.ID, c.Param("id"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task updated successfully", gin.H{"task": task})
}

func (h *TaskHandlers) Delete(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), mustPrincipal(c).Identity.ID, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task deleted successfully", nil)
}

// ListAll is the admin view across every owner.
func (h *TaskHandlers) ListAll(c *gin.Context) {
	tasks, err := h.tasks.ListAll(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	respondList(c, len(tasks), gin.H{"tasks": tasks})
}
