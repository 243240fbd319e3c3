package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/vocabulary"
)

// StatsReader reports a user's vocabulary counts.
type StatsReader interface {
	Stats(userID uint) (vocabulary.Stats, error)
}

// TokenManager issues and revokes API tokens. *auth.Service implements it.
type TokenManager interface {
	GenerateToken(userID uint) (string, error)
	RevokeToken(userID uint) error
}

// ProfileController handles the user profile page.
type ProfileController struct {
	stats  StatsReader
	tokens TokenManager
}

// NewProfileController creates a ProfileController. tokens is nil when
// authentication is disabled.
func NewProfileController(stats StatsReader, tokens TokenManager) *ProfileController {
	return &ProfileController{stats: stats, tokens: tokens}
}

// ProfilePage shows the user's known word and meaning counts.
// GET /profile
func (pc *ProfileController) ProfilePage(c *gin.Context) {
	user := auth.GetUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login?next=/profile")
		return
	}

	stats, err := pc.stats.Stats(user.ID)
	if err != nil {
		respondServiceError(c, err, "vocabulary stats")
		return
	}

	renderPage(c, http.StatusOK, "profile", gin.H{
		"User":          user,
		"Stats":         stats,
		"HasToken":      user.TokenHash != "",
		"TokensEnabled": pc.tokens != nil,
	})
}

// GenerateToken creates a new API token for the user, replacing any
// existing one. The token is shown once.
// POST /profile/token
func (pc *ProfileController) GenerateToken(c *gin.Context) {
	user := auth.GetUser(c)
	if user == nil || pc.tokens == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	token, err := pc.tokens.GenerateToken(user.ID)
	if err != nil {
		respondServiceError(c, err, "generate token")
		return
	}
	pc.renderToken(c, gin.H{"Token": token})
}

// RevokeToken removes the user's API token.
// POST /profile/token/revoke
func (pc *ProfileController) RevokeToken(c *gin.Context) {
	user := auth.GetUser(c)
	if user == nil || pc.tokens == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	if err := pc.tokens.RevokeToken(user.ID); err != nil {
		respondServiceError(c, err, "revoke token")
		return
	}
	pc.renderToken(c, gin.H{"Revoked": true})
}

func (pc *ProfileController) renderToken(c *gin.Context, data gin.H) {
	if isHTMXRequest(c) {
		renderPage(c, http.StatusOK, "token-result", data)
		return
	}
	c.JSON(http.StatusOK, data)
}
