package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/wordhoard/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Document{}))
	return NewRepository(db)
}

func testDocument(id string, createdAt time.Time) *entities.Document {
	return &entities.Document{
		ID:        id,
		Title:     "Beowulf",
		Author:    "Unknown",
		Uploader:  "alice",
		Language:  "Old English",
		Content:   "Hwæt! Wē Gār-Dena",
		Format:    entities.DocumentFormatText,
		UserID:    1,
		CreatedAt: createdAt,
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Create(testDocument("doc-1", time.Now())))

	doc, err := repo.GetByID("doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Beowulf", doc.Title)
	assert.Equal(t, "Hwæt! Wē Gār-Dena", doc.Content)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetByID("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestRepository_List(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Create(testDocument("older", time.Now().Add(-time.Hour))))
	require.NoError(t, repo.Create(testDocument("newer", time.Now())))

	docs, err := repo.List()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "newer", docs[0].ID)
	assert.Empty(t, docs[0].Content, "content is not loaded for listings")
}

func TestRepository_Delete(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.Create(testDocument("doc-1", time.Now())))

	require.NoError(t, repo.Delete("doc-1"))

	_, err := repo.GetByID("doc-1")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	assert.ErrorIs(t, repo.Delete("doc-1"), entities.ErrNotFound)
}

func TestRepository_CountForUser(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.Create(testDocument("doc-1", time.Now())))

	count, err := repo.CountForUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.CountForUser(2)
	require.NoError(t, err)
	assert.Zero(t, count)
}
