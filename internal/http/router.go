package http

import (
	"html/template"
	"log"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/config"
	"github.com/mrlokans/wordhoard/internal/entities"
)

const hstsMaxAge = 31536000 // one year

var funcMap = template.FuncMap{
	"add": func(a, b int) int {
		return a + b
	},
	"subtract": func(a, b int) int {
		return a - b
	},
}

// loadTemplates parses every page template. It returns nil when the
// directory holds none.
func loadTemplates(dir string) *template.Template {
	pattern := filepath.Join(dir, "*.html")
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		log.Printf("No templates found at %s, pages will answer with JSON", pattern)
		return nil
	}
	return template.Must(template.New("").Funcs(funcMap).ParseFiles(matches...))
}

// NewRouter creates and configures the HTTP router with all endpoints.
// The second return value stops background work owned by the router.
func NewRouter(cfg RouterConfig) (*gin.Engine, func()) {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.AuthConfig.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware(hstsMaxAge))
	}

	authEnabled := cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled()

	// CSRF must run before session so that session context is preserved
	if authEnabled && len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	authMiddleware := cfg.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(nil, nil, config.Auth{Mode: config.AuthModeNone})
	}
	router.Use(authMiddleware.Handler())

	// Inject auth data for templates
	router.Use(AuthContextMiddleware(cfg.AuthConfig.Mode))

	if tmpl := loadTemplates(cfg.TemplatesPath); tmpl != nil {
		router.SetHTMLTemplate(tmpl)
		router.Use(func(c *gin.Context) {
			c.Set(contextKeyTemplates, true)
			c.Next()
		})
	}

	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	stop := func() {}
	if authEnabled {
		authController, err := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.TemplatesPath, cfg.AuthConfig, cfg.AuthRecorder)
		if err == nil {
			authController.RegisterRoutes(router)
			stop = authController.Stop

			// API token management endpoints
			tokenController := auth.NewAPITokenController(cfg.AuthService)
			router.POST("/api/auth/token", tokenController.GenerateToken)
			router.DELETE("/api/auth/token", tokenController.RevokeToken)
		} else {
			log.Printf("Auth routes disabled: %v", err)
		}
	}

	adminOnly := authMiddleware.RequireRole(entities.UserRoleAdmin)

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// Documents
	documentsController := NewDocumentsController(cfg.Documents, cfg.MaxUploadBytes)
	documentsController.stats = cfg.SiteStats
	router.GET("/", documentsController.CommunityPage)
	router.POST("/documents", documentsController.Upload)
	router.GET("/api/documents", documentsController.ListAPI)
	router.DELETE("/api/documents/:id", adminOnly, documentsController.Delete)
	router.GET("/admin", adminOnly, documentsController.AdminPage)
	router.POST("/admin/documents/:id/delete", adminOnly, documentsController.Delete)

	// Reading view
	readingController := NewReadingController(cfg.Documents, cfg.Renderer)
	router.GET("/read/:id", readingController.ReadPage)
	router.GET("/api/documents/:id/reading", readingController.ReadingAPI)

	// Vocabulary mutations
	vocabController := NewVocabularyController(cfg.Vocabulary)
	router.POST("/api/vocabulary/meaning", vocabController.SaveMeaning)
	router.POST("/api/vocabulary/known", vocabController.MarkKnown)
	router.POST("/api/vocabulary/remove", vocabController.Remove)
	router.GET("/api/vocabulary/stats", vocabController.Stats)

	// Library
	libraryController := NewLibraryController(cfg.Library)
	router.GET("/library", libraryController.LibraryPage)
	router.GET("/api/library", libraryController.LibraryAPI)

	// Profile
	var tokens TokenManager
	if authEnabled {
		tokens = cfg.AuthService
	}
	profileController := NewProfileController(cfg.Vocabulary, tokens)
	router.GET("/profile", profileController.ProfilePage)
	router.POST("/profile/token", profileController.GenerateToken)
	router.POST("/profile/token/revoke", profileController.RevokeToken)

	// Audit log
	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		router.GET("/audit", auditController.AuditLogPage)
		router.GET("/api/audit", auditController.GetAuditEvents)
	}

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.AuditRetentionDays, cfg.CleanupSchedule)
		router.GET("/api/tasks/types", adminOnly, tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", adminOnly, tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", adminOnly, tasksController.RunTask)
	}

	return router, stop
}
