package http

import (
	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/config"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Documents  DocumentService
	Vocabulary VocabularyService
	Renderer   ReadingRenderer
	Library    LibraryBuilder
	Database   Pinger
	SiteStats  SiteStats

	// Audit log browsing (optional)
	Audit AuditReader

	// Task queue (optional)
	TaskQueue          TaskQueue
	AuditRetentionDays int
	CleanupSchedule    NextRunner

	// Authentication. AuthService, SessionManager and AuthMiddleware are
	// nil when auth is disabled.
	AuthConfig     config.Auth
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthRecorder   auth.Recorder
	CSRFSecret     []byte

	// Upload limit in bytes, zero for none
	MaxUploadBytes int64

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
