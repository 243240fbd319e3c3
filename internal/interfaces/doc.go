// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - vocabulary.Store: known marks and meanings (internal/vocabulary/service.go)
//   - overlay.VocabularyReader: per-language vocabulary lookups (internal/overlay/overlay.go)
//   - library.MeaningLister: every meaning of a user (internal/library/library.go)
//   - documents.Store: uploaded documents (internal/documents/service.go)
//
// ## Audit Interfaces
//
//   - documents.Recorder, vocabulary.Recorder, auth.Recorder: receive events
//     worth keeping; audit.Service implements all three
//   - tasks.AuditPruner: removes expired events (internal/tasks/audit_cleanup.go)
//
// ## HTTP Interfaces
//
// Controllers in internal/http depend on narrow interfaces (DocumentService,
// VocabularyService, ReadingRenderer, LibraryBuilder, TaskQueue) rather than
// concrete services, so tests can substitute fakes.
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Register the entity in database.Open so it is migrated
//
//  4. Add compile-time check:
//
//     var _ SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
