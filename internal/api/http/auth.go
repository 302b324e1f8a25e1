package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostPilot/internal/auth"
	"github.com/GriffinCanCode/PostPilot/internal/shared/utils"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Register creates an account and logs it in
func (h *Handlers) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := utils.ValidateUsername(req.Username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateEmail(req.Email, false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	done := h.metrics.TrackAccountOperation("register")
	user, sess, err := h.accounts.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	done(err)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		}
		h.logger.Error("Registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	http.SetCookie(c.Writer, h.authn.Cookie(sess.ID))
	c.JSON(http.StatusCreated, user)
}

// Login checks credentials and sets the session cookie
func (h *Handlers) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	done := h.metrics.TrackAccountOperation("login")
	user, sess, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	done(err)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	http.SetCookie(c.Writer, h.authn.Cookie(sess.ID))
	c.JSON(http.StatusOK, user)
}

// Logout deletes the session and clears the cookie
func (h *Handlers) Logout(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	done := h.metrics.TrackAccountOperation("logout")
	err := h.accounts.Logout(c.Request.Context(), ident.SessionID)
	done(err)
	if err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
		h.logger.Error("Logout failed", zap.Error(err), zap.Int64("user_id", ident.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}

	http.SetCookie(c.Writer, h.authn.ClearCookie())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CurrentUser returns the logged in user
func (h *Handlers) CurrentUser(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	done := h.metrics.TrackStoreOperation("get_user")
	user, err := h.accounts.CurrentUser(c.Request.Context(), ident)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, user)
}
