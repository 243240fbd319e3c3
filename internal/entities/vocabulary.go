package entities

import "time"

// UnspecifiedLanguage groups library entries whose language is empty.
const UnspecifiedLanguage = "Unspecified"

// KnownWord marks a word as familiar to a user in one language.
type KnownWord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_known_words_user_word_language" json:"user_id"`
	Word      string    `gorm:"size:100;not null;uniqueIndex:idx_known_words_user_word_language" json:"word"`
	Language  string    `gorm:"size:64;not null;uniqueIndex:idx_known_words_user_word_language" json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

func (KnownWord) TableName() string {
	return "known_words"
}

// Meaning is the gloss a user attached to a word in one language.
// The text is never empty; clearing it deletes the row.
type Meaning struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_meanings_user_word_language" json:"user_id"`
	Word      string    `gorm:"size:100;not null;uniqueIndex:idx_meanings_user_word_language" json:"word"`
	Language  string    `gorm:"size:64;not null;uniqueIndex:idx_meanings_user_word_language" json:"language"`
	Meaning   string    `gorm:"type:text;not null" json:"meaning"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Meaning) TableName() string {
	return "meanings"
}

// VocabularyKey identifies a vocabulary entry. The same word in two
// languages is two different keys.
type VocabularyKey struct {
	Word     string
	Language string
}
