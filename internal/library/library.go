// Package library aggregates a user's glossed words across every document
// and language into a deterministic, grouped view.
package library

import (
	"sort"
	"strings"

	"github.com/mrlokans/wordhoard/internal/entities"
)

// MeaningLister is the part of the vocabulary store the aggregator reads.
type MeaningLister interface {
	GetAllMeanings(userID uint) ([]entities.Meaning, error)
}

// Entry is one glossed word.
type Entry struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

// LanguageGroup holds the entries of one language, sorted by word.
type LanguageGroup struct {
	Language string  `json:"language"`
	Entries  []Entry `json:"entries"`
}

// Library is the aggregated view. Groups are sorted by language name.
type Library struct {
	Groups []LanguageGroup `json:"groups"`
	lookup map[entities.VocabularyKey]string
}

// Meaning returns the gloss for word in language. The bucket name
// entities.UnspecifiedLanguage finds entries saved without a language.
func (l *Library) Meaning(word, language string) (string, bool) {
	m, ok := l.lookup[entities.VocabularyKey{Word: word, Language: language}]
	return m, ok
}

// Len returns the total number of entries across languages.
func (l *Library) Len() int {
	return len(l.lookup)
}

type Aggregator struct {
	store MeaningLister
}

func NewAggregator(store MeaningLister) *Aggregator {
	return &Aggregator{store: store}
}

// Build loads every meaning of the user and groups it.
func (a *Aggregator) Build(userID uint) (*Library, error) {
	meanings, err := a.store.GetAllMeanings(userID)
	if err != nil {
		return nil, err
	}
	return Group(meanings), nil
}

// Group arranges meanings by language then word. The result does not
// depend on the order of the input.
func Group(meanings []entities.Meaning) *Library {
	byLanguage := make(map[string][]Entry)
	lookup := make(map[entities.VocabularyKey]string, len(meanings))

	for _, m := range meanings {
		language := m.Language
		if strings.TrimSpace(language) == "" {
			language = entities.UnspecifiedLanguage
		}
		byLanguage[language] = append(byLanguage[language], Entry{Word: m.Word, Meaning: m.Meaning})
		lookup[entities.VocabularyKey{Word: m.Word, Language: language}] = m.Meaning
	}

	languages := make([]string, 0, len(byLanguage))
	for language := range byLanguage {
		languages = append(languages, language)
	}
	sort.Strings(languages)

	groups := make([]LanguageGroup, 0, len(languages))
	for _, language := range languages {
		entries := byLanguage[language]
		sort.SliceStable(entries, func(i, j int) bool {
			return lessWord(entries[i], entries[j])
		})
		groups = append(groups, LanguageGroup{Language: language, Entries: entries})
	}

	return &Library{Groups: groups, lookup: lookup}
}

// lessWord orders by lowercase word, then raw word, then meaning, so that
// equal-looking entries still have a fixed position.
func lessWord(a, b Entry) bool {
	la, lb := strings.ToLower(a.Word), strings.ToLower(b.Word)
	if la != lb {
		return la < lb
	}
	if a.Word != b.Word {
		return a.Word < b.Word
	}
	return a.Meaning < b.Meaning
}
