package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PostPilot/internal/storage"
)

var (
	validThemes    = map[string]bool{"light": true, "dark": true, "system": true}
	validLanguages = map[string]bool{"en": true, "es": true, "fr": true, "de": true}
)

// settingsPatch is a partial update; nil fields are left alone
type settingsPatch struct {
	Theme              *string `json:"theme"`
	EmailNotifications *bool   `json:"email_notifications"`
	PushNotifications  *bool   `json:"push_notifications"`
	WeeklyDigest       *bool   `json:"weekly_digest"`
	ContentLanguage    *string `json:"content_language"`
	AutoSchedule       *bool   `json:"auto_schedule"`
}

func (p settingsPatch) valid() bool {
	if p.Theme != nil && !validThemes[*p.Theme] {
		return false
	}
	if p.ContentLanguage != nil && !validLanguages[*p.ContentLanguage] {
		return false
	}
	return true
}

func (p settingsPatch) apply(s *storage.Settings) {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.EmailNotifications != nil {
		s.EmailNotifications = *p.EmailNotifications
	}
	if p.PushNotifications != nil {
		s.PushNotifications = *p.PushNotifications
	}
	if p.WeeklyDigest != nil {
		s.WeeklyDigest = *p.WeeklyDigest
	}
	if p.ContentLanguage != nil {
		s.ContentLanguage = *p.ContentLanguage
	}
	if p.AutoSchedule != nil {
		s.AutoSchedule = *p.AutoSchedule
	}
}

// GetSettings returns the caller's settings, creating the defaults on first read
func (h *Handlers) GetSettings(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	settings, err := h.loadSettings(c, ident.UserID)
	if err != nil {
		h.storeError(c, err, "Failed to fetch user settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings applies a partial settings update
func (h *Handlers) UpdateSettings(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	var patch settingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil || !patch.valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings data"})
		return
	}

	settings, err := h.loadSettings(c, ident.UserID)
	if err != nil {
		h.storeError(c, err, "Failed to update user settings")
		return
	}
	patch.apply(settings)

	done := h.metrics.TrackStoreOperation("upsert_settings")
	err = h.store.UpsertSettings(c.Request.Context(), settings)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to update user settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handlers) loadSettings(c *gin.Context, userID int64) (*storage.Settings, error) {
	done := h.metrics.TrackStoreOperation("get_settings")
	settings, err := h.store.GetSettings(c.Request.Context(), userID)
	if err == nil || !errors.Is(err, storage.ErrNotFound) {
		done(err)
		return settings, err
	}
	done(nil)

	defaults := storage.DefaultSettings(userID)
	done = h.metrics.TrackStoreOperation("upsert_settings")
	err = h.store.UpsertSettings(c.Request.Context(), &defaults)
	done(err)
	if err != nil {
		return nil, err
	}
	return &defaults, nil
}
