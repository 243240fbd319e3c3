package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordhoard/internal/config"
	"github.com/mrlokans/wordhoard/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyRole     = "auth_role"
	ContextKeyAuthType = "auth_type"
	ContextKeyUser     = "auth_user"
)

// AuthType records how the acting user was identified.
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// anonymousUserID marks a request that carries no identity.
const anonymousUserID = uint(0)

// Paths reachable without logging in. Entries ending in "/" match as prefixes.
var publicPaths = []string{
	"/health",
	"/ping",
	"/login",
	"/setup",
	"/register",
	"/favicon.ico",
	"/static/",
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return path == "/static"
}

// Middleware resolves the acting user of every request.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
}

func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
	}
}

// LocalUser is the identity used for every request when auth is disabled.
// It matches the row seeded by database.EnsureDefaultUser.
func LocalUser() *entities.User {
	return &entities.User{
		ID:       entities.DefaultUserID,
		Username: entities.DefaultUsername,
		Role:     entities.UserRoleAdmin,
	}
}

// Handler returns the gin middleware. With auth disabled every request acts
// as LocalUser.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		local := LocalUser()
		return func(c *gin.Context) {
			setUserContext(c, local, AuthTypeNone)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if isPublicPath(c.Request.URL.Path) {
			// Public pages still see who is logged in, for navigation
			if user := m.sessionUser(c); user != nil {
				setUserContext(c, user, AuthTypeSession)
			} else {
				c.Set(ContextKeyUserID, anonymousUserID)
				c.Set(ContextKeyAuthType, AuthTypeNone)
			}
			c.Next()
			return
		}

		if user, authType := m.identify(c); user != nil {
			setUserContext(c, user, authType)
			c.Next()
			return
		}
		denyAnonymous(c)
	}
}

// identify tries a bearer token first, then the session cookie.
func (m *Middleware) identify(c *gin.Context) (*entities.User, AuthType) {
	if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
		if user, err := m.service.ValidateToken(token); err == nil {
			return user, AuthTypeBearer
		}
	}
	if user := m.sessionUser(c); user != nil {
		return user, AuthTypeSession
	}
	return nil, AuthTypeNone
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (m *Middleware) sessionUser(c *gin.Context) *entities.User {
	if m.sessionManager == nil || m.service == nil {
		return nil
	}
	userID := m.sessionManager.GetUserID(c.Request)
	if userID == anonymousUserID {
		return nil
	}
	user, err := m.service.GetUserByID(userID)
	if err != nil {
		return nil
	}
	return user
}

func setUserContext(c *gin.Context, user *entities.User, authType AuthType) {
	c.Set(ContextKeyUser, user)
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUsername, user.Username)
	c.Set(ContextKeyRole, user.Role)
	c.Set(ContextKeyAuthType, authType)
}

// isAPIRequest distinguishes API clients, which get JSON errors, from
// browsers, which get redirected.
func isAPIRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json") ||
		c.GetHeader("Authorization") != ""
}

func denyAnonymous(c *gin.Context) {
	if isAPIRequest(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}
	c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

// RequireAuth rejects anonymous requests on a single route.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			denyAnonymous(c)
			return
		}
		c.Next()
	}
}

// RequireRole lets through only users holding one of roles.
func (m *Middleware) RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	allowed := make(map[entities.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := allowed[GetUserRole(c)]; ok {
			c.Next()
			return
		}
		if isAPIRequest(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.AbortWithStatus(http.StatusForbidden)
	}
}

func contextValue[T any](c *gin.Context, key string) (T, bool) {
	var zero T
	v, exists := c.Get(key)
	if !exists {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// GetUserID returns the acting user's ID, or 0 for an anonymous request.
func GetUserID(c *gin.Context) uint {
	if id, ok := contextValue[uint](c, ContextKeyUserID); ok {
		return id
	}
	return anonymousUserID
}

// GetUser returns the acting user, or nil for an anonymous request.
func GetUser(c *gin.Context) *entities.User {
	user, _ := contextValue[*entities.User](c, ContextKeyUser)
	return user
}

func GetUsername(c *gin.Context) string {
	name, _ := contextValue[string](c, ContextKeyUsername)
	return name
}

func GetUserRole(c *gin.Context) entities.UserRole {
	role, _ := contextValue[entities.UserRole](c, ContextKeyRole)
	return role
}

func GetAuthType(c *gin.Context) AuthType {
	if t, ok := contextValue[AuthType](c, ContextKeyAuthType); ok {
		return t
	}
	return AuthTypeNone
}

// IsAuthenticated reports whether the request carries a user.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != anonymousUserID
}
