package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/config"
)

const authTemplateDataKey = "auth_template_data"

// AuthTemplateData is exposed to every template as .Auth.
type AuthTemplateData struct {
	Enabled   bool
	LoggedIn  bool
	Username  string
	IsAdmin   bool
	CSRFToken string // empty when auth is disabled
}

func authTemplateData(c *gin.Context, enabled bool) AuthTemplateData {
	data := AuthTemplateData{Enabled: enabled, CSRFToken: auth.GetCSRFToken(c)}
	user := auth.GetUser(c)
	if user == nil || user.ID == 0 {
		return data
	}
	data.LoggedIn = true
	data.Username = user.Username
	data.IsAdmin = user.IsAdmin()
	return data
}

// AuthContextMiddleware captures the acting user for templates. It runs
// after the auth and CSRF middleware.
func AuthContextMiddleware(authMode config.AuthMode) gin.HandlerFunc {
	enabled := authMode == config.AuthModeLocal
	return func(c *gin.Context) {
		c.Set(authTemplateDataKey, authTemplateData(c, enabled))
		c.Next()
	}
}

func GetAuthTemplateData(c *gin.Context) AuthTemplateData {
	data, _ := c.Get(authTemplateDataKey)
	authData, _ := data.(AuthTemplateData)
	return authData
}
