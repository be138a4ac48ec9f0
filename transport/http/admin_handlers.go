package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/taskboard/core"
	"github.com/layer-3/taskboard/service"
)

type AdminHandlers struct {
	admin *service.AdminService
}

func NewAdminHandlers(admin *service.AdminService) *AdminHandlers {
	return &AdminHandlers{admin: admin}
}

// userView is a stored account without its password hash.
type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      core.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newUserView(u core.User) userView {
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (h *AdminHandlers) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	respondList(c, len(views), gin.H{"users": views})
}

func (h *AdminHandlers) UpdateRole(c *gin.Context) {
	var req struct {
		Role *core.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Role == nil {
		abortWithError(c, &core.ValidationError{Fields: []core.FieldError{{Field: "role", Message: "Role is required"}}})
		return
	}

	user, err := h.admin.UpdateRole(c.Request.Context(), c.Param("id"), *req.Role)
	if err != nil {
		abortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "User role updated successfully", gin.H{"user": user.Identity()})
}

func (h *AdminHandlers) DeleteUser(c *gin.Context) {
	if err := h.admin.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "User deleted successfully", nil)
}
