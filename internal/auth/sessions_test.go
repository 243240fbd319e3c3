package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/wordhoard/internal/config"
	"github.com/mrlokans/wordhoard/internal/entities"
)

func sessionConfig() config.Auth {
	return config.Auth{
		Mode:            config.AuthModeLocal,
		SessionLifetime: 24 * time.Hour,
	}
}

func setupSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sessions.db")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	sm, err := NewSessionManager(sqlDB, sessionConfig())
	require.NoError(t, err)
	return sm
}

func TestNewSessionManager_CookieSettings(t *testing.T) {
	sm := setupSessionManager(t)

	assert.Equal(t, "session", sm.Cookie.Name)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.False(t, sm.Cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, sm.Cookie.SameSite)
	assert.Equal(t, 24*time.Hour, sm.Lifetime)
	assert.Equal(t, 12*time.Hour, sm.IdleTimeout)

	cfg := sessionConfig()
	cfg.SecureCookies = true
	assert.True(t, NewMemorySessionManager(cfg).Cookie.Secure)
}

func TestSessionManager_CreateAndDestroy(t *testing.T) {
	managers := map[string]*SessionManager{
		"sqlite": setupSessionManager(t),
		"memory": NewMemorySessionManager(sessionConfig()),
	}
	user := &entities.User{ID: 42, Username: "hild", Role: entities.UserRoleReader}

	for name, sm := range managers {
		t.Run(name, func(t *testing.T) {
			handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.False(t, sm.IsAuthenticated(r))

				require.NoError(t, sm.CreateSession(r, user))
				assert.True(t, sm.IsAuthenticated(r))
				assert.Equal(t, user.ID, sm.GetUserID(r))
				assert.Equal(t, "hild", sm.GetUsername(r))
				assert.Equal(t, entities.UserRoleReader, sm.GetUserRole(r))

				require.NoError(t, sm.DestroySession(r))
				assert.False(t, sm.IsAuthenticated(r))
				assert.Empty(t, sm.GetUserRole(r))
				w.WriteHeader(http.StatusOK)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestSessionLoadSave_PersistsAcrossRequests(t *testing.T) {
	sm := NewMemorySessionManager(sessionConfig())
	user := &entities.User{ID: 5, Username: "caedmon", Role: entities.UserRoleAdmin}

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.POST("/login", func(c *gin.Context) {
		require.NoError(t, sm.CreateSession(c.Request, user))
		c.Status(http.StatusNoContent)
	})
	router.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, sm.GetUsername(c.Request))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "caedmon", w.Body.String())
}
