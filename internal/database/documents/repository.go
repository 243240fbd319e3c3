// Package documents provides database operations for uploaded texts.
package documents

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/wordhoard/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new document. The caller assigns the ID.
func (r *Repository) Create(doc *entities.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetByID returns the document or an error wrapping entities.ErrNotFound.
func (r *Repository) GetByID(id string) (*entities.Document, error) {
	var doc entities.Document
	err := r.db.Where("id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document %s: %w", id, entities.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return &doc, nil
}

// List returns every document, newest first, without its content.
func (r *Repository) List() ([]entities.Document, error) {
	var docs []entities.Document
	err := r.db.Omit("content").Order("created_at DESC").Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document. Deleting a missing document returns ErrNotFound.
func (r *Repository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&entities.Document{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document %s: %w", id, entities.ErrNotFound)
	}
	return nil
}

// CountForUser returns how many documents the user uploaded.
func (r *Repository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Document{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
