package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PostPilot/internal/analytics"
	"github.com/GriffinCanCode/PostPilot/internal/generation"
	"github.com/GriffinCanCode/PostPilot/internal/shared/utils"
	"github.com/GriffinCanCode/PostPilot/internal/storage"
)

type analyzeRequest struct {
	Content string `json:"content"`
}

// Analyze scores content through the generator and stores the analysis
func (h *Handlers) Analyze(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analysis data"})
		return
	}
	content := h.clean(req.Content)
	if err := utils.ValidateContent(content, utils.MaxContentLength); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analysis data", "details": err.Error()})
		return
	}

	done := h.metrics.TrackGeneration("analyze")
	result, err := h.generator.Generate(c.Request.Context(), content, generation.PlatformTwitter)
	done(err)
	if err != nil {
		h.generationError(c, err, "Failed to analyze content")
		return
	}

	analysis := storage.Analysis{
		UserID:  ident.UserID,
		Content: content,
		Sentiment: storage.Sentiment{
			Label: result.Tone,
			Score: result.QualityMetrics.Clarity,
		},
		EngagementScore: result.EngagementPrediction,
		Hashtags:        storage.StringList(result.Hashtags),
		CreatedAt:       h.now().UTC(),
	}

	done = h.metrics.TrackStoreOperation("create_analysis")
	err = h.store.CreateAnalysis(c.Request.Context(), &analysis)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to analyze content")
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// ListAnalyses returns the caller's analyses, newest first
func (h *Handlers) ListAnalyses(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	done := h.metrics.TrackStoreOperation("list_analyses")
	analyses, err := h.store.ListAnalyses(c.Request.Context(), ident.UserID)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to fetch analyses")
		return
	}
	if analyses == nil {
		analyses = []storage.Analysis{}
	}
	c.JSON(http.StatusOK, analyses)
}

// DeleteAnalysis removes one of the caller's analyses
func (h *Handlers) DeleteAnalysis(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	done := h.metrics.TrackStoreOperation("delete_analysis")
	err := h.store.DeleteAnalysis(c.Request.Context(), ident.UserID, id)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to delete analysis")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AnalysesSummary aggregates the caller's analyses. ?top=N sets the hashtag count.
func (h *Handlers) AnalysesSummary(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	top := analytics.DefaultTopHashtags
	if raw := c.Query("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > utils.MaxHashtagCount {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid top parameter"})
			return
		}
		top = n
	}

	done := h.metrics.TrackStoreOperation("list_analyses")
	analyses, err := h.store.ListAnalyses(c.Request.Context(), ident.UserID)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to summarize analyses")
		return
	}
	c.JSON(http.StatusOK, analytics.Summarize(analyses, top))
}
