package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostPilot/internal/api/middleware"
	"github.com/GriffinCanCode/PostPilot/internal/auth"
	"github.com/GriffinCanCode/PostPilot/internal/generation"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostPilot/internal/shared/utils"
	"github.com/GriffinCanCode/PostPilot/internal/storage"
)

// Generator produces post content and metadata for a platform
type Generator interface {
	Generate(ctx context.Context, prompt, platform string) (*generation.Result, error)
}

// Deps wires a Handlers set
type Deps struct {
	Store         storage.Store
	Accounts      *auth.Service
	Authenticator *auth.Authenticator
	Generator     Generator
	Metrics       *HandlerMetrics
	Logger        *logging.Logger
}

// Handlers contains all REST handlers
type Handlers struct {
	store     storage.Store
	accounts  *auth.Service
	authn     *auth.Authenticator
	generator Generator
	metrics   *HandlerMetrics
	logger    *logging.Logger
	sanitizer *bluemonday.Policy
	hasher    *utils.Hasher
	now       func() time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = NewHandlerMetrics(nil)
	}
	return &Handlers{
		store:     d.Store,
		accounts:  d.Accounts,
		authn:     d.Authenticator,
		generator: d.Generator,
		metrics:   d.Metrics,
		logger:    d.Logger.Named("http"),
		sanitizer: bluemonday.StrictPolicy(),
		hasher:    utils.DefaultHasher(),
		now:       time.Now,
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "PostPilot",
		"version": "1.0.0",
	})
}

// Health reports which backends are serving
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"store":    h.store.Name(),
		"sessions": h.authn.Sessions().Name(),
	})
}

// identity returns the caller or writes a 401
func (h *Handlers) identity(c *gin.Context) (*auth.Identity, bool) {
	ident, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return ident, true
}

// pathID parses the :id parameter or writes a 400
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

// clean strips markup from user supplied text
func (h *Handlers) clean(s string) string {
	return strings.TrimSpace(h.sanitizer.Sanitize(s))
}

// storeError maps a storage failure to a response
func (h *Handlers) storeError(c *gin.Context, err error, msg string) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	h.logger.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// generationError maps a generation failure to a response
func (h *Handlers) generationError(c *gin.Context, err error, msg string) {
	if genErr, ok := generation.AsError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": genErr.Message, "code": genErr.Code})
		return
	}
	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
