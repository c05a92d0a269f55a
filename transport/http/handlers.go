package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/garuda/core"
	"github.com/layer-3/garuda/service"
)

// AuthHandlers contains HTTP handlers for the ceremony endpoints
type AuthHandlers struct {
	ceremonies *service.CeremonyService
	sessions   *service.SessionService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(ceremonies *service.CeremonyService, sessions *service.SessionService) *AuthHandlers {
	return &AuthHandlers{
		ceremonies: ceremonies,
		sessions:   sessions,
	}
}

// RegisterOptions handles the registration options request
func (h *AuthHandlers) RegisterOptions(c *gin.Context) {
	var req struct {
		Identity string `json:"identity" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	options, err := h.ceremonies.BeginRegistration(c.Request.Context(), req.Identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, options)
}

// Register handles the registration completion request
func (h *AuthHandlers) Register(c *gin.Context) {
	var req struct {
		Identity   string          `json:"identity" binding:"required"`
		Credential json.RawMessage `json:"credential" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.ceremonies.CompleteRegistration(c.Request.Context(), req.Identity, req.Credential); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"verified": true})
}

// AuthenticateOptions handles the authentication options request
func (h *AuthHandlers) AuthenticateOptions(c *gin.Context) {
	var req struct {
		Identity string `json:"identity" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	options, err := h.ceremonies.BeginAuthentication(c.Request.Context(), req.Identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, options)
}

// Authenticate handles the authentication completion request
func (h *AuthHandlers) Authenticate(c *gin.Context) {
	var req struct {
		Identity   string          `json:"identity" binding:"required"`
		Credential json.RawMessage `json:"credential" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, err := h.ceremonies.CompleteAuthentication(c.Request.Context(), req.Identity, req.Credential)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// RestrictedContent serves the payload behind the session gate
func (h *AuthHandlers) RestrictedContent(c *gin.Context) {
	identity, exists := c.Get("identity")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Identity not found in context"})
		return
	}

	c.String(http.StatusOK, "Restricted content for %s", identity)
}

// Logout ends the presented session
func (h *AuthHandlers) Logout(c *gin.Context) {
	token, exists := c.Get("sessionToken")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token not found in context"})
		return
	}

	if err := h.sessions.Revoke(c.Request.Context(), token.(string)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// respondError maps ceremony and session errors to status codes. Anything
// unmapped is an internal error without detail leakage.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidIdentity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid identity"})
	case errors.Is(err, core.ErrAccountExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Account already registered"})
	case errors.Is(err, core.ErrAccountNotFound), errors.Is(err, core.ErrNoCredential):
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
	case errors.Is(err, core.ErrChallengeMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No matching challenge"})
	case errors.Is(err, core.ErrCredentialMismatch):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credential mismatch"})
	case errors.Is(err, core.ErrVerificationFailed), errors.Is(err, core.ErrReplayDetected):
		c.JSON(http.StatusForbidden, gin.H{"error": "Verification failed"})
	case errors.Is(err, core.ErrNoToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, core.ErrSessionExpired), errors.Is(err, core.ErrSessionUnknown):
		c.JSON(http.StatusForbidden, gin.H{"error": "Session ended"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
