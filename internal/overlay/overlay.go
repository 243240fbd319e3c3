// Package overlay merges a document's tokens with a user's vocabulary to
// produce the annotated reading view.
package overlay

import (
	"fmt"

	"github.com/mrlokans/wordhoard/internal/entities"
	"github.com/mrlokans/wordhoard/internal/tokenizer"
)

// Status classifies a distinct word of a document for one user.
type Status string

const (
	StatusUnannotated Status = "unannotated"
	StatusKnown       Status = "known"
	StatusGlossed     Status = "glossed"
)

// VocabularyReader is the part of the vocabulary store the merger reads.
type VocabularyReader interface {
	GetKnown(userID uint, language string) (map[string]struct{}, error)
	GetMeanings(userID uint, language string) (map[string]string, error)
}

// Annotation is one distinct word with its state.
type Annotation struct {
	Word    string `json:"word"`
	Status  Status `json:"status"`
	Meaning string `json:"meaning,omitempty"`
}

// Summary counts the annotations of a reading.
type Summary struct {
	Tokens      int `json:"tokens"`
	Distinct    int `json:"distinct"`
	Known       int `json:"known"`
	Glossed     int `json:"glossed"`
	Unannotated int `json:"unannotated"`
}

// Reading is the rendering model of a document for one user. Spans splices
// the annotations back into Text for display.
type Reading struct {
	DocumentID  string              `json:"document_id"`
	Title       string              `json:"title"`
	Author      string              `json:"author"`
	Language    string              `json:"language"`
	Text        string              `json:"text"`
	Words       []string            `json:"words"`
	Known       map[string]struct{} `json:"-"`
	Meanings    map[string]string   `json:"meanings"`
	Annotations []Annotation        `json:"annotations"`
	Summary     Summary             `json:"summary"`
}

// IsKnown reports whether word is in the user's known set.
func (r *Reading) IsKnown(word string) bool {
	_, ok := r.Known[word]
	return ok
}

// IsHandled reports whether the user has dealt with word, either by knowing
// it or by glossing it.
func (r *Reading) IsHandled(word string) bool {
	if _, ok := r.Meanings[word]; ok {
		return true
	}
	return r.IsKnown(word)
}

// Merger builds readings. It holds no state between calls.
type Merger struct {
	store VocabularyReader
}

func NewMerger(store VocabularyReader) *Merger {
	return &Merger{store: store}
}

// Render tokenizes doc and joins it with the user's vocabulary for the
// document's language. A nil doc is reported as not found.
func (m *Merger) Render(doc *entities.Document, userID uint) (*Reading, error) {
	if doc == nil {
		return nil, fmt.Errorf("document: %w", entities.ErrNotFound)
	}

	known, err := m.store.GetKnown(userID, doc.Language)
	if err != nil {
		return nil, err
	}
	meanings, err := m.store.GetMeanings(userID, doc.Language)
	if err != nil {
		return nil, err
	}

	tokens := tokenizer.Tokenize(doc.Content)
	words := tokenizer.Distinct(tokens)

	reading := &Reading{
		DocumentID:  doc.ID,
		Title:       doc.Title,
		Author:      doc.Author,
		Language:    doc.Language,
		Text:        doc.Content,
		Words:       words,
		Known:       known,
		Meanings:    meanings,
		Annotations: make([]Annotation, 0, len(words)),
		Summary:     Summary{Tokens: len(tokens), Distinct: len(words)},
	}

	for _, w := range words {
		a := Annotation{Word: w, Status: StatusUnannotated}
		if meaning, ok := meanings[w]; ok {
			a.Status = StatusGlossed
			a.Meaning = meaning
			reading.Summary.Glossed++
		} else if _, ok := known[w]; ok {
			a.Status = StatusKnown
			reading.Summary.Known++
		} else {
			reading.Summary.Unannotated++
		}
		reading.Annotations = append(reading.Annotations, a)
	}

	return reading, nil
}
