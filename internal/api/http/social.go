package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PostPilot/internal/generation"
	"github.com/GriffinCanCode/PostPilot/internal/shared/utils"
	"github.com/GriffinCanCode/PostPilot/internal/storage"
)

const maxAccessToken = 4096

type socialAccountRequest struct {
	Platform    string `json:"platform"`
	AccountID   string `json:"account_id"`
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
}

// ListSocialAccounts returns the caller's linked accounts without tokens
func (h *Handlers) ListSocialAccounts(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	done := h.metrics.TrackStoreOperation("list_social_accounts")
	accounts, err := h.store.ListSocialAccounts(c.Request.Context(), ident.UserID)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to fetch social accounts")
		return
	}
	if accounts == nil {
		accounts = []storage.SocialAccount{}
	}
	c.JSON(http.StatusOK, accounts)
}

// AddSocialAccount links a social network account
func (h *Handlers) AddSocialAccount(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	var req socialAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	account := storage.SocialAccount{
		UserID:      ident.UserID,
		Platform:    strings.ToLower(strings.TrimSpace(req.Platform)),
		AccountID:   strings.TrimSpace(req.AccountID),
		AccessToken: req.AccessToken,
		Username:    h.clean(req.Username),
	}
	if !generation.IsKnownPlatform(account.Platform) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Platform must be one of " + strings.Join(generation.Platforms, ", ")})
		return
	}
	for _, f := range []struct {
		name, value string
		max         int
	}{
		{"account_id", account.AccountID, utils.MaxAccountField},
		{"access_token", account.AccessToken, maxAccessToken},
		{"username", account.Username, utils.MaxAccountField},
	} {
		if err := utils.ValidateString(f.value, f.name, 1, f.max, true); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	done := h.metrics.TrackStoreOperation("add_social_account")
	err := h.store.AddSocialAccount(c.Request.Context(), &account)
	done(err)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Account already linked"})
			return
		}
		h.storeError(c, err, "Failed to link social account")
		return
	}
	c.JSON(http.StatusCreated, account)
}

// RemoveSocialAccount unlinks one of the caller's accounts
func (h *Handlers) RemoveSocialAccount(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	done := h.metrics.TrackStoreOperation("remove_social_account")
	err := h.store.RemoveSocialAccount(c.Request.Context(), ident.UserID, id)
	done(err)
	if err != nil {
		h.storeError(c, err, "Failed to unlink social account")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
