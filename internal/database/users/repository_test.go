package users

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/wordhoard/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func createUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	user := &entities.User{Username: username, Email: username + "@example.com", Role: entities.UserRoleReader}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRepository_GetUserByID(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	created := createUser(t, db, "alice")

	user, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestRepository_GetUserByID_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetUserByID(99999)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestRepository_GetUserByUsername(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	createUser(t, db, "bob")

	user, err := repo.GetUserByUsername("bob")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)

	_, err = repo.GetUserByUsername("nobody")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestRepository_ListUsers(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	createUser(t, db, "zed")
	createUser(t, db, "amy")

	users, err := repo.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "amy", users[0].Username)
}

func TestRepository_SetRole(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, db, "carol")

	require.NoError(t, repo.SetRole(user.ID, entities.UserRoleAdmin))

	updated, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())

	assert.ErrorIs(t, repo.SetRole(424242, entities.UserRoleAdmin), entities.ErrNotFound)
}
