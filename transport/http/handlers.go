package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/taskboard/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// Register handles account creation
func (h *AuthHandlers) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", session)
}

// Login handles the login request
func (h *AuthHandlers) Login(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", session)
}

// Logout revokes the token the request was authenticated with
func (h *AuthHandlers) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), mustPrincipal(c)); err != nil {
		abortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "Logout successful", nil)
}

// Me returns information about the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	respond(c, http.StatusOK, "", gin.H{"user": mustPrincipal(c).Identity})
}

// Health reports that the process is serving.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
