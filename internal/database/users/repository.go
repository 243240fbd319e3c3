// Package users reads and updates accounts. Creating accounts and
// checking credentials is done by internal/auth.
package users

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

// first loads the single user matching conds. A miss wraps
// entities.ErrNotFound with label.
func (r *Repository) first(label string, conds ...any) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, conds...).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("user %s: %w", label, entities.ErrNotFound)
	case err != nil:
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	return r.first(fmt.Sprint(id), id)
}

func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	return r.first(username, "username = ?", username)
}

// ListUsers returns every account ordered by username.
func (r *Repository) ListUsers() ([]entities.User, error) {
	var accounts []entities.User
	if err := r.db.Order("username ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// SetRole changes the role of user id.
func (r *Repository) SetRole(id uint, role entities.UserRole) error {
	res := r.db.Model(&entities.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("failed to update role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, entities.ErrNotFound)
	}
	return nil
}
