package auth

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/mrlokans/wordhoard/internal/config"
	"github.com/mrlokans/wordhoard/internal/entities"
)

// Session values are stored as plain strings and integers so the gob codec
// needs no type registration.
const (
	sessionUserID   = "user_id"
	sessionUsername = "username"
	sessionRole     = "role"
	sessionLoginAt  = "login_at"

	sessionCookieName = "session"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

// SessionManager keeps browser logins. It embeds scs so the gin adapter can
// load and commit sessions directly.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager persists sessions in the sqlite database behind sqlDB,
// creating the sessions table on first use.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	if _, err := sqlDB.Exec(sessionSchema); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}
	return newSessionManager(sqlite3store.New(sqlDB), cfg), nil
}

// NewMemorySessionManager is used with the postgres driver. Sessions are
// lost on restart.
func NewMemorySessionManager(cfg config.Auth) *SessionManager {
	return newSessionManager(memstore.New(), cfg)
}

func newSessionManager(store scs.Store, cfg config.Auth) *SessionManager {
	sm := scs.New()
	sm.Store = store
	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie = scs.SessionCookie{
		Name:     sessionCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		// Lax keeps the login when a shared /read/:id link is followed
		SameSite: http.SameSiteLaxMode,
		Persist:  true,
	}
	return &SessionManager{SessionManager: sm}
}

// CreateSession logs user in on the request's session. The token is
// renewed first so a pre-login token cannot be reused.
func (sm *SessionManager) CreateSession(r *http.Request, user *entities.User) error {
	ctx := r.Context()
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, sessionUserID, int(user.ID))
	sm.Put(ctx, sessionUsername, user.Username)
	sm.Put(ctx, sessionRole, string(user.Role))
	sm.Put(ctx, sessionLoginAt, time.Now().Unix())
	return nil
}

func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetUserID returns 0 when nobody is logged in.
func (sm *SessionManager) GetUserID(r *http.Request) uint {
	return uint(sm.GetInt(r.Context(), sessionUserID))
}

func (sm *SessionManager) GetUsername(r *http.Request) string {
	return sm.GetString(r.Context(), sessionUsername)
}

func (sm *SessionManager) GetUserRole(r *http.Request) entities.UserRole {
	return entities.UserRole(sm.GetString(r.Context(), sessionRole))
}

func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetUserID(r) != anonymousUserID
}
