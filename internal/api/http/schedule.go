package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PostPilot/internal/generation"
	"github.com/GriffinCanCode/PostPilot/internal/shared/utils"
	"github.com/GriffinCanCode/PostPilot/internal/storage"
)

type scheduleRequest struct {
	Content       string `json:"content"`
	Platform      string `json:"platform"`
	ScheduledTime string `json:"scheduled_time"`
}

// SchedulePost queues a post. Hashtags, tone and the engagement prediction
// come from the generator for the post's platform.
func (h *Handlers) SchedulePost(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	content := h.clean(req.Content)
	if err := utils.ValidateContent(content, utils.MaxPostLength); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if !generation.IsKnownPlatform(platform) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Platform must be one of " + strings.Join(generation.Platforms, ", ")})
		return
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_time must be an RFC3339 timestamp"})
		return
	}
	if !at.After(h.now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_time must be in the future"})
		return
	}

	done := h.metrics.TrackGeneration("schedule")
	result, err := h.generator.Generate(c.Request.Context(), content, platform)
	done(err)
	if err != nil {
		h.generationError(c, err, "Failed to schedule post")
		return
	}

	engagement := result.EngagementPrediction
	post := storage.ScheduledPost{
		UserID:               ident.UserID,
		Content:              content,
		Platform:             platform,
		ScheduledTime:        at.UTC(),
		Status:               storage.StatusPending,
		Hashtags:             storage.StringList(result.Hashtags),
		EngagementPrediction: &engagement,
		Tone:                 result.Tone,
		CreatedAt:            h.now().UTC(),
	}

	done = h.metrics.TrackStoreOperation("create_scheduled")
	err = h.store.CreateScheduled(c.Request.Context(), &post)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to schedule post")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// ListScheduledPosts returns the caller's posts ordered by scheduled time
func (h *Handlers) ListScheduledPosts(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	done := h.metrics.TrackStoreOperation("list_scheduled")
	posts, err := h.store.ListScheduled(c.Request.Context(), ident.UserID)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to fetch scheduled posts")
		return
	}
	if posts == nil {
		posts = []storage.ScheduledPost{}
	}
	c.JSON(http.StatusOK, posts)
}
