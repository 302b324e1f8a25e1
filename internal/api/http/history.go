package http

import (
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostPilot/internal/shared/utils"
	"github.com/GriffinCanCode/PostPilot/internal/storage"
)

type historyRequest struct {
	Content              string   `json:"content"`
	Platform             string   `json:"platform"`
	Hashtags             []string `json:"hashtags"`
	EngagementPrediction *float64 `json:"engagement_prediction"`
	Tone                 string   `json:"tone"`
}

// ListHistory returns the caller's content history, newest first
func (h *Handlers) ListHistory(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	done := h.metrics.TrackStoreOperation("list_history")
	entries, err := h.store.ListHistory(c.Request.Context(), ident.UserID)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to fetch content history")
		return
	}
	if entries == nil {
		entries = []storage.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// CreateHistory stores a generated post
func (h *Handlers) CreateHistory(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	entry := storage.HistoryEntry{
		UserID:               ident.UserID,
		Content:              h.clean(req.Content),
		Platform:             strings.ToLower(strings.TrimSpace(req.Platform)),
		Hashtags:             storage.StringList(req.Hashtags),
		EngagementPrediction: req.EngagementPrediction,
		Tone:                 h.clean(req.Tone),
		GeneratedAt:          h.now().UTC(),
	}
	if err := utils.ValidateContent(entry.Content, utils.MaxPostLength); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateString(entry.Platform, "platform", 1, utils.MaxAccountField, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateHashtags(entry.Hashtags); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p := entry.EngagementPrediction; p != nil && (*p < 0 || *p > 100) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "engagement_prediction must be between 0 and 100"})
		return
	}

	done := h.metrics.TrackStoreOperation("create_history")
	err := h.store.CreateHistory(c.Request.Context(), &entry)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to create content history")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// DeleteHistory removes one of the caller's history entries
func (h *Handlers) DeleteHistory(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	done := h.metrics.TrackStoreOperation("delete_history")
	err := h.store.DeleteHistory(c.Request.Context(), ident.UserID, id)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to delete content history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExportHistory streams the caller's history as gzip compressed JSON
func (h *Handlers) ExportHistory(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	done := h.metrics.TrackStoreOperation("list_history")
	entries, err := h.store.ListHistory(c.Request.Context(), ident.UserID)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to export content history")
		return
	}
	if entries == nil {
		entries = []storage.HistoryEntry{}
	}

	data, err := sonic.Marshal(entries)
	if err != nil {
		h.logger.Error("Failed to encode export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export content history"})
		return
	}

	etag := utils.ETag(h.hasher.Hash(data))
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Header("Content-Type", "application/json")
	c.Header("Content-Encoding", "gzip")
	c.Header("Content-Disposition", `attachment; filename="content-history.json"`)
	c.Status(http.StatusOK)

	gz := gzip.NewWriter(c.Writer)
	if _, err := gz.Write(data); err != nil {
		h.logger.Warn("Export write failed", zap.Error(err))
	}
	if err := gz.Close(); err != nil {
		h.logger.Warn("Export flush failed", zap.Error(err))
	}
}
