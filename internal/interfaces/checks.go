package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/wordhoard/internal/audit"
	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/database"
	docrepo "github.com/mrlokans/wordhoard/internal/database/documents"
	vocabrepo "github.com/mrlokans/wordhoard/internal/database/vocabulary"
	"github.com/mrlokans/wordhoard/internal/documents"
	"github.com/mrlokans/wordhoard/internal/http"
	"github.com/mrlokans/wordhoard/internal/library"
	"github.com/mrlokans/wordhoard/internal/overlay"
	"github.com/mrlokans/wordhoard/internal/scheduler"
	"github.com/mrlokans/wordhoard/internal/tasks"
	"github.com/mrlokans/wordhoard/internal/vocabulary"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Vocabulary storage
var _ vocabulary.Store = (*vocabrepo.Repository)(nil)
var _ overlay.VocabularyReader = (*vocabrepo.Repository)(nil)
var _ library.MeaningLister = (*vocabrepo.Repository)(nil)

// Document storage
var _ documents.Store = (*docrepo.Repository)(nil)

// Health and admin counts
var _ http.Pinger = (*database.Database)(nil)
var _ http.SiteStats = (*database.Database)(nil)

// =============================================================================
// Services
// =============================================================================

var _ http.DocumentService = (*documents.Service)(nil)
var _ http.VocabularyService = (*vocabulary.Service)(nil)
var _ http.StatsReader = (*vocabulary.Service)(nil)
var _ http.ReadingRenderer = (*overlay.Merger)(nil)
var _ http.LibraryBuilder = (*library.Aggregator)(nil)
var _ http.TokenManager = (*auth.Service)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ documents.Recorder = (*audit.Service)(nil)
var _ vocabulary.Recorder = (*audit.Service)(nil)
var _ auth.Recorder = (*audit.Service)(nil)
var _ tasks.AuditPruner = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ http.NextRunner = (*scheduler.AuditCleanupScheduler)(nil)
