// Package vocabulary validates and applies edits to a user's vocabulary:
// saving a meaning, marking a word as known and removing a word.
//
// Every edit is keyed by (word, language). With MeaningImpliesKnown set,
// saving a meaning also marks the word as known; clearing a meaning never
// unmarks it.
package vocabulary

import (
	"strings"

	"github.com/mrlokans/wordhoard/internal/entities"
	"github.com/mrlokans/wordhoard/internal/languages"
	"github.com/mrlokans/wordhoard/internal/tokenizer"
)

// Store is the vocabulary persistence the service writes through.
type Store interface {
	UpsertMeaning(userID uint, word, language, meaning string) error
	SaveKnownMeaning(userID uint, word, language, meaning string) error
	SetKnown(userID uint, word, language string) error
	Remove(userID uint, word, language string) error
	CountKnown(userID uint) (int64, error)
	CountMeanings(userID uint) (int64, error)
}

// Recorder receives successful edits. The audit service implements it.
type Recorder interface {
	LogVocabulary(userID uint, action string, key entities.VocabularyKey)
}

type Options struct {
	MeaningImpliesKnown bool
}

type Service struct {
	store     Store
	languages *languages.Set
	recorder  Recorder
	opts      Options
}

// NewService creates the service. recorder may be nil.
func NewService(store Store, allowed *languages.Set, recorder Recorder, opts Options) *Service {
	return &Service{
		store:     store,
		languages: allowed,
		recorder:  recorder,
		opts:      opts,
	}
}

// Stats are a user's vocabulary counts across all languages.
type Stats struct {
	KnownWords int64 `json:"known_words"`
	Meanings   int64 `json:"meanings"`
}

// SaveMeaning stores meaning for (word, language). A blank meaning removes
// the stored meaning.
func (s *Service) SaveMeaning(userID uint, word, language, meaning string) error {
	key, err := s.validate(word, language)
	if err != nil {
		return err
	}

	save := s.store.UpsertMeaning
	if s.opts.MeaningImpliesKnown {
		save = s.store.SaveKnownMeaning
	}
	if err := save(userID, key.Word, key.Language, meaning); err != nil {
		return err
	}

	action := "meaning_save"
	if tokenizer.NormalizeText(meaning) == "" {
		action = "meaning_clear"
	}

	s.record(userID, action, key)
	return nil
}

// MarkKnown marks (word, language) as known.
func (s *Service) MarkKnown(userID uint, word, language string) error {
	key, err := s.validate(word, language)
	if err != nil {
		return err
	}

	if err := s.store.SetKnown(userID, key.Word, key.Language); err != nil {
		return err
	}

	s.record(userID, "mark_known", key)
	return nil
}

// RemoveWord deletes both the meaning and the known mark of (word, language).
// Removing a word that was never saved succeeds. The language does not have
// to be in the allowed set so entries saved under a retired language can
// still be cleaned up.
func (s *Service) RemoveWord(userID uint, word, language string) error {
	key, err := requireKey(word, language)
	if err != nil {
		return err
	}

	if err := s.store.Remove(userID, key.Word, key.Language); err != nil {
		return err
	}

	s.record(userID, "word_remove", key)
	return nil
}

// Stats returns the user's known word and meaning counts.
func (s *Service) Stats(userID uint) (Stats, error) {
	known, err := s.store.CountKnown(userID)
	if err != nil {
		return Stats{}, err
	}
	meanings, err := s.store.CountMeanings(userID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{KnownWords: known, Meanings: meanings}, nil
}

// Languages returns the allowed language names in order.
func (s *Service) Languages() []string {
	return s.languages.List()
}

func (s *Service) validate(word, language string) (entities.VocabularyKey, error) {
	key, err := requireKey(word, language)
	if err != nil {
		return key, err
	}
	if !s.languages.Contains(key.Language) {
		return key, entities.NewValidationError("language", "unsupported language "+key.Language)
	}
	return key, nil
}

func requireKey(word, language string) (entities.VocabularyKey, error) {
	key := entities.VocabularyKey{
		Word:     tokenizer.NormalizeWord(word),
		Language: strings.TrimSpace(language),
	}
	if key.Word == "" {
		return key, entities.NewValidationError("word", "word is required")
	}
	if key.Language == "" {
		return key, entities.NewValidationError("language", "language is required")
	}
	return key, nil
}

func (s *Service) record(userID uint, action string, key entities.VocabularyKey) {
	if s.recorder != nil {
		s.recorder.LogVocabulary(userID, action, key)
	}
}
