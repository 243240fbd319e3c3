package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/wordhoard/internal/config"
	"github.com/mrlokans/wordhoard/internal/database/users"
	"github.com/mrlokans/wordhoard/internal/entities"
)

const (
	maxEmailLength        = 254 // RFC 5321
	defaultMaxLoginFails  = 5
	defaultAccountLockout = 30 * time.Minute
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUsernameRequired   = errors.New("username is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrAccountLocked      = errors.New("account is locked due to too many failed login attempts")
	ErrUsernameInvalid    = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrRegistrationClosed = errors.New("registration is closed")
)

// Service owns accounts, passwords and API tokens. Plain lookups go
// through the users repository; credential columns are written here.
type Service struct {
	db     *gorm.DB
	users  *users.Repository
	config config.Auth
	now    func() time.Time
}

func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:     db,
		users:  users.NewRepository(db),
		config: cfg,
		now:    time.Now,
	}
}

// IsAuthEnabled reports whether requests must carry a session or token.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}

func validateNewUser(username, email, password string, role entities.UserRole) error {
	switch {
	case username == "":
		return ErrUsernameRequired
	case email == "":
		return ErrEmailRequired
	case password == "":
		return ErrPasswordRequired
	case !usernamePattern.MatchString(username):
		return ErrUsernameInvalid
	case len(email) > maxEmailLength || !emailPattern.MatchString(email):
		return ErrEmailInvalid
	}
	if role != entities.UserRoleAdmin && role != entities.UserRoleReader {
		return ErrInvalidRole
	}
	return ValidatePassword(password)
}

// findByLogin matches either the username or the email address.
func (s *Service) findByLogin(username, email string) (*entities.User, error) {
	var user entities.User
	err := s.db.Where("username = ? OR email = ?", username, email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

// CreateUser validates and stores a new account.
func (s *Service) CreateUser(username, email, password string, role entities.UserRole) (*entities.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := validateNewUser(username, email, password, role); err != nil {
		return nil, err
	}

	switch _, err := s.findByLogin(username, email); {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Register is the public sign-up path. The very first account becomes the
// admin regardless of AllowRegistration; later accounts are readers and
// need registration to be open.
func (s *Service) Register(username, email, password string) (*entities.User, error) {
	hasUsers, err := s.HasUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if !hasUsers {
		return s.CreateUser(username, email, password, entities.UserRoleAdmin)
	}
	if !s.config.AllowRegistration {
		return nil, ErrRegistrationClosed
	}
	return s.CreateUser(username, email, password, entities.UserRoleReader)
}

func (s *Service) maxLoginFailures() int {
	if s.config.MaxLoginAttempts > 0 {
		return s.config.MaxLoginAttempts
	}
	return defaultMaxLoginFails
}

func (s *Service) accountLockout() time.Duration {
	if s.config.LockoutDuration > 0 {
		return s.config.LockoutDuration
	}
	return defaultAccountLockout
}

// Authenticate checks a username or email and password. Repeated failures
// lock the account for the configured lockout duration.
func (s *Service) Authenticate(login, password string) (*entities.User, error) {
	user, err := s.findByLogin(login, login)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(user, now)
		return nil, err
	}

	s.db.Model(user).Updates(map[string]any{
		"last_login_at":      now,
		"failed_login_count": 0,
		"locked_until":       nil,
	})
	return user, nil
}

func (s *Service) recordFailedLogin(user *entities.User, now time.Time) {
	user.FailedLoginCount++
	updates := map[string]any{"failed_login_count": user.FailedLoginCount}
	if user.FailedLoginCount >= s.maxLoginFailures() {
		updates["locked_until"] = now.Add(s.accountLockout())
	}
	s.db.Model(user).Updates(updates)
}

// GetUserByID loads an account, mapping a missing row to ErrUserNotFound.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ValidateToken resolves a plaintext bearer token to its owner.
func (s *Service) ValidateToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var user entities.User
	err := s.db.Where("token_hash = ?", HashToken(token)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if s.config.TokenExpiry > 0 && user.TokenCreatedAt != nil &&
		s.now().Sub(*user.TokenCreatedAt) > s.config.TokenExpiry {
		return nil, ErrTokenExpired
	}
	return &user, nil
}

// GenerateToken replaces the user's API token and returns the plaintext.
// Only the hash is stored.
func (s *Service) GenerateToken(userID uint) (string, error) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	result := s.db.Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"token_hash":       hash,
		"token_created_at": s.now(),
	})
	if result.Error != nil {
		return "", fmt.Errorf("failed to save token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", ErrUserNotFound
	}
	return plaintext, nil
}

// RevokeToken clears the user's API token. Revoking twice is not an error.
func (s *Service) RevokeToken(userID uint) error {
	err := s.db.Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"token_hash":       "",
		"token_created_at": nil,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// HasUsers reports whether any account exists yet.
func (s *Service) HasUsers() (bool, error) {
	var count int64
	if err := s.db.Model(&entities.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
