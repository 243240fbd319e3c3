// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	├── vocabulary/      # Known words and meanings per (user, word, language)
//	├── documents/       # Uploaded texts
//	├── audit/           # Audit events
//	└── users/           # User lookups
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./wordhoard.db")
//
//	vocabRepo := vocabulary.NewRepository(db.DB)
//	docsRepo := documents.NewRepository(db.DB)
//
//	known, err := vocabRepo.GetKnown(userID, "Dutch")
//	doc, err := docsRepo.GetByID(id)
//
// # Interface Implementations
//
// Consumers declare the narrow interface they need and the repositories
// satisfy them; internal/interfaces holds the compile-time checks.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register the entity in Open's AutoMigrate list
//  5. Add a compile-time interface check in internal/interfaces
package database
