package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/wordhoard/internal/audit"
	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/config"
	"github.com/mrlokans/wordhoard/internal/database"
	auditrepo "github.com/mrlokans/wordhoard/internal/database/audit"
	docrepo "github.com/mrlokans/wordhoard/internal/database/documents"
	vocabrepo "github.com/mrlokans/wordhoard/internal/database/vocabulary"
	"github.com/mrlokans/wordhoard/internal/documents"
	http_controllers "github.com/mrlokans/wordhoard/internal/http"
	"github.com/mrlokans/wordhoard/internal/languages"
	"github.com/mrlokans/wordhoard/internal/library"
	"github.com/mrlokans/wordhoard/internal/overlay"
	"github.com/mrlokans/wordhoard/internal/scheduler"
	"github.com/mrlokans/wordhoard/internal/tasks"
	"github.com/mrlokans/wordhoard/internal/vocabulary"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// SIGKILL cannot be caught, so only INT and TERM trigger a graceful stop
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Background work stops after the last request has been answered
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// csrfSecret decodes the configured session secret, generating one when
// none is set.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		secret, err := hex.DecodeString(configured)
		if err != nil {
			// Not hex, use as raw bytes
			return []byte(configured), nil
		}
		return secret, nil
	}
	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, err
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(generated)
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Wordhoard v%s", version)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.Open(cfg.Database, logger.Warn)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	if cfg.Auth.Mode != config.AuthModeLocal {
		if _, err := db.EnsureDefaultUser(); err != nil {
			log.Fatalf("Failed to create local user: %v", err)
		}
	}

	allowed := languages.NewSet(cfg.Vocabulary.AllowedLanguages)
	log.Printf("Allowed languages: %v", allowed.List())

	vocab := vocabrepo.NewRepository(db.DB)
	auditSvc := audit.NewService(auditrepo.NewRepository(db.DB))
	documentSvc := documents.NewService(docrepo.NewRepository(db.DB), allowed, auditSvc)
	vocabularySvc := vocabulary.NewService(vocab, allowed, auditSvc, vocabulary.Options{
		MeaningImpliesKnown: cfg.Vocabulary.MeaningImpliesKnown,
	})

	// Task queue is optional; without it the scheduler prunes inline
	var taskClient *tasks.Client
	var taskQueue http_controllers.TaskQueue
	var enqueuer scheduler.Enqueuer
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromSettings(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewAuditCleanupQueue(auditSvc))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		taskQueue = taskClient
		enqueuer = taskClient
	}

	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	cleanup := scheduler.NewAuditCleanupScheduler(enqueuer, auditSvc, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
	if err := cleanup.Start(schedulerCtx); err != nil {
		log.Fatalf("Failed to start audit cleanup scheduler: %v", err)
	}

	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var secret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(db.DB, cfg.Auth)

		if db.Driver == config.DriverSQLite {
			sqlDB, err := db.DB.DB()
			if err != nil {
				log.Fatalf("Failed to get SQL DB for sessions: %v", err)
			}
			sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
			if err != nil {
				log.Fatalf("Failed to initialize session manager: %v", err)
			}
		} else {
			log.Printf("Sessions are kept in memory for the %s driver", db.Driver)
			sessionManager = auth.NewMemorySessionManager(cfg.Auth)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		secret, err = csrfSecret(cfg.Auth.SessionSecret)
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. Visit /setup to create an administrator account.")
		}
	} else {
		log.Printf("Authentication mode: none (every request acts as the local user)")
	}

	routerCfg := http_controllers.RouterConfig{
		Documents:          documentSvc,
		Vocabulary:         vocabularySvc,
		Renderer:           overlay.NewMerger(vocab),
		Library:            library.NewAggregator(vocab),
		Database:           db,
		SiteStats:          db,
		Audit:              auditSvc,
		TaskQueue:          taskQueue,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		CleanupSchedule:    cleanup,
		AuthConfig:         cfg.Auth,
		AuthService:        authService,
		SessionManager:     sessionManager,
		AuthMiddleware:     authMiddleware,
		AuthRecorder:       auditSvc,
		CSRFSecret:         secret,
		MaxUploadBytes:     cfg.Uploads.MaxBytes,
		TemplatesPath:      cfg.UI.TemplatesPath,
		StaticPath:         cfg.UI.StaticPath,
		Version:            version,
	}

	router, stopRouter := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		cleanup.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		stopRouter()
		auditSvc.Wait()
	}

	Serve(router, cfg, onShutdown)
}
