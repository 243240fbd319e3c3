package overlay

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/wordhoard/internal/database/vocabulary"
	"github.com/mrlokans/wordhoard/internal/entities"
)

type fakeStore struct {
	known    map[string]map[string]struct{}
	meanings map[string]map[string]string
	err      error
}

func (f *fakeStore) GetKnown(_ uint, language string) (map[string]struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	if set, ok := f.known[language]; ok {
		return set, nil
	}
	return map[string]struct{}{}, nil
}

func (f *fakeStore) GetMeanings(_ uint, language string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if m, ok := f.meanings[language]; ok {
		return m, nil
	}
	return map[string]string{}, nil
}

func TestMerger_Render(t *testing.T) {
	store := &fakeStore{
		known: map[string]map[string]struct{}{
			"English": {"hello": {}, "again": {}},
		},
		meanings: map[string]map[string]string{
			"English": {"again": "once more"},
			"Dutch":   {"world": "wereld"},
		},
	}
	doc := &entities.Document{
		ID:       "doc-1",
		Title:    "Greeting",
		Language: "English",
		Content:  "Hello, World! Hello again.",
	}

	reading, err := NewMerger(store).Render(doc, 1)
	require.NoError(t, err)

	want := []Annotation{
		{Word: "hello", Status: StatusKnown},
		{Word: "world", Status: StatusUnannotated},
		{Word: "again", Status: StatusGlossed, Meaning: "once more"},
	}
	if diff := cmp.Diff(want, reading.Annotations); diff != "" {
		t.Errorf("Annotations mismatch (-want, +got):\n%s", diff)
	}

	assert.Equal(t, doc.Content, reading.Text)
	assert.Equal(t, []string{"hello", "world", "again"}, reading.Words)
	assert.Equal(t, Summary{Tokens: 4, Distinct: 3, Known: 1, Glossed: 1, Unannotated: 1}, reading.Summary)

	assert.True(t, reading.IsHandled("again"))
	assert.True(t, reading.IsHandled("hello"))
	assert.False(t, reading.IsHandled("world"), "a Dutch meaning does not leak into English")
}

func TestMerger_Render_EmptyDocument(t *testing.T) {
	reading, err := NewMerger(&fakeStore{}).Render(&entities.Document{Language: "Dutch", Content: "1234 ..."}, 1)
	require.NoError(t, err)

	assert.Empty(t, reading.Words)
	assert.NotNil(t, reading.Annotations)
	assert.Zero(t, reading.Summary.Tokens)
}

func TestMerger_Render_Errors(t *testing.T) {
	t.Run("missing document", func(t *testing.T) {
		_, err := NewMerger(&fakeStore{}).Render(nil, 1)
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("connection refused")
		_, err := NewMerger(&fakeStore{err: boom}).Render(&entities.Document{Content: "x"}, 1)
		assert.ErrorIs(t, err, boom)
	})
}

func TestMerger_Render_SeesWritesImmediately(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "overlay.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.KnownWord{}, &entities.Meaning{}))

	repo := vocabulary.NewRepository(db)
	merger := NewMerger(repo)
	doc := &entities.Document{ID: "d", Language: "Dutch", Content: "Het hus is groot."}

	before, err := merger.Render(doc, 7)
	require.NoError(t, err)
	assert.Equal(t, 4, before.Summary.Unannotated)

	require.NoError(t, repo.UpsertMeaning(7, "hus", "Dutch", "house"))

	after, err := merger.Render(doc, 7)
	require.NoError(t, err)
	assert.Equal(t, "house", after.Meanings["hus"])
	assert.Equal(t, 1, after.Summary.Glossed)

	other, err := merger.Render(doc, 8)
	require.NoError(t, err)
	assert.Zero(t, other.Summary.Glossed, "vocabulary is per user")
}
