// Package vocabulary provides database operations for per-user known words
// and meanings.
//
// Every record is keyed by (user, word, language). Words are normalised
// here, on both reads and writes, so callers cannot store two spellings of
// the same key.
//
// # Usage
//
//	repo := vocabulary.NewRepository(db)
//	known, err := repo.GetKnown(userID, "Dutch")
//	err = repo.UpsertMeaning(userID, "Hus", "Dutch", "house")
package vocabulary

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/wordhoard/internal/entities"
	"github.com/mrlokans/wordhoard/internal/tokenizer"
)

// Repository handles all vocabulary database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new vocabulary repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func normalizeKey(word, language string) (string, string) {
	return tokenizer.NormalizeWord(word), strings.TrimSpace(language)
}

// isUniqueViolation reports whether err came from a unique index. Drivers
// that translate errors return gorm.ErrDuplicatedKey; the message check
// covers the ones that do not.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "duplicate key")
}

// GetKnown returns the set of words the user marked as known in language.
func (r *Repository) GetKnown(userID uint, language string) (map[string]struct{}, error) {
	var words []string
	err := r.db.Model(&entities.KnownWord{}).
		Where("user_id = ? AND language = ?", userID, strings.TrimSpace(language)).
		Pluck("word", &words).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load known words: %w", err)
	}

	known := make(map[string]struct{}, len(words))
	for _, w := range words {
		known[w] = struct{}{}
	}
	return known, nil
}

// GetMeanings returns word → meaning for the user in language.
func (r *Repository) GetMeanings(userID uint, language string) (map[string]string, error) {
	var rows []entities.Meaning
	err := r.db.Where("user_id = ? AND language = ?", userID, strings.TrimSpace(language)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load meanings: %w", err)
	}

	meanings := make(map[string]string, len(rows))
	for _, m := range rows {
		meanings[m.Word] = m.Meaning
	}
	return meanings, nil
}

// GetAllMeanings returns every meaning of the user across languages,
// ordered by language then word.
func (r *Repository) GetAllMeanings(userID uint) ([]entities.Meaning, error) {
	var rows []entities.Meaning
	err := r.db.Where("user_id = ?", userID).
		Order("language ASC, word ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load meanings: %w", err)
	}
	return rows, nil
}

// UpsertMeaning stores meaning for the key, replacing any previous text.
// A blank meaning deletes the record instead. Repeating a call is a no-op.
func (r *Repository) UpsertMeaning(userID uint, word, language, meaning string) error {
	word, language = normalizeKey(word, language)
	return upsertMeaning(r.db, userID, word, language, tokenizer.NormalizeText(meaning))
}

// SaveKnownMeaning stores meaning and marks the key as known in one
// transaction: either both rows are written or neither is. A blank meaning
// deletes the record and leaves the known mark as it was.
func (r *Repository) SaveKnownMeaning(userID uint, word, language, meaning string) error {
	word, language = normalizeKey(word, language)
	meaning = tokenizer.NormalizeText(meaning)

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := upsertMeaning(tx, userID, word, language, meaning); err != nil {
			return err
		}
		if meaning == "" {
			return nil
		}
		return setKnown(tx, userID, word, language)
	})
}

// SetKnown marks the key as known. Marking an already known word is a no-op.
func (r *Repository) SetKnown(userID uint, word, language string) error {
	word, language = normalizeKey(word, language)
	return setKnown(r.db, userID, word, language)
}

func upsertMeaning(tx *gorm.DB, userID uint, word, language, meaning string) error {
	if meaning == "" {
		return deleteMeaning(tx, userID, word, language)
	}

	updated, err := updateMeaning(tx, userID, word, language, meaning)
	if err != nil || updated {
		return err
	}

	created, err := insert(tx, &entities.Meaning{
		UserID:   userID,
		Word:     word,
		Language: language,
		Meaning:  meaning,
	})
	if err != nil {
		return fmt.Errorf("failed to save meaning: %w", err)
	}
	if !created {
		// A concurrent writer created the row first; last write wins.
		_, err = updateMeaning(tx, userID, word, language, meaning)
	}
	return err
}

func updateMeaning(tx *gorm.DB, userID uint, word, language, meaning string) (bool, error) {
	result := tx.Model(&entities.Meaning{}).
		Where("user_id = ? AND word = ? AND language = ?", userID, word, language).
		Update("meaning", meaning)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update meaning: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func deleteMeaning(tx *gorm.DB, userID uint, word, language string) error {
	err := tx.Where("user_id = ? AND word = ? AND language = ?", userID, word, language).
		Delete(&entities.Meaning{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete meaning: %w", err)
	}
	return nil
}

func setKnown(tx *gorm.DB, userID uint, word, language string) error {
	var count int64
	err := tx.Model(&entities.KnownWord{}).
		Where("user_id = ? AND word = ? AND language = ?", userID, word, language).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check known word: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = insert(tx, &entities.KnownWord{
		UserID:   userID,
		Word:     word,
		Language: language,
	})
	if err != nil {
		return fmt.Errorf("failed to mark word as known: %w", err)
	}
	return nil
}

// insert creates value and reports false when a unique index rejected it.
// The insert runs in a nested transaction, a savepoint when tx is already
// one, so a rejected row leaves tx usable on Postgres.
func insert(tx *gorm.DB, value interface{}) (bool, error) {
	err := tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(value).Error
	})
	if isUniqueViolation(err) {
		return false, nil
	}
	return err == nil, err
}

// Remove deletes both the meaning and the known mark for the key.
// Removing a key that does not exist succeeds.
func (r *Repository) Remove(userID uint, word, language string) error {
	word, language = normalizeKey(word, language)

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteMeaning(tx, userID, word, language); err != nil {
			return err
		}
		err := tx.Where("user_id = ? AND word = ? AND language = ?", userID, word, language).
			Delete(&entities.KnownWord{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete known word: %w", err)
		}
		return nil
	})
}

// CountKnown returns how many words the user marked as known, in all languages.
func (r *Repository) CountKnown(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.KnownWord{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountMeanings returns how many meanings the user saved, in all languages.
func (r *Repository) CountMeanings(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Meaning{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
