package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/wordhoard/internal/config"
	"github.com/mrlokans/wordhoard/internal/entities"
)

type Database struct {
	DB     *gorm.DB
	Driver string
}

// NewDatabase opens (or creates) the sqlite database at dbPath.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(config.Database{Driver: config.DriverSQLite, Path: dbPath}, logger.Info)
}

// Open connects using the configured driver and migrates the schema.
func Open(cfg config.Database, logLevel logger.LogLevel) (*Database, error) {
	var dialector gorm.Dialector
	var target string
	switch cfg.Driver {
	case config.DriverSQLite, "":
		dialector = sqlite.Open(cfg.Path)
		target = cfg.Path
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
		target = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Document{},
		&entities.KnownWord{},
		&entities.Meaning{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}

	log.Printf("Database initialized successfully at %s", target)

	return &Database{DB: db, Driver: driver}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the underlying connection.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// EnsureDefaultUser creates the user that acts for every request when
// authentication is disabled, and returns it.
func (d *Database) EnsureDefaultUser() (*entities.User, error) {
	var user entities.User
	err := d.DB.First(&user, entities.DefaultUserID).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up default user: %w", err)
	}

	user = entities.User{
		ID:       entities.DefaultUserID,
		Username: entities.DefaultUsername,
		Email:    entities.DefaultUsername + "@localhost",
		Role:     entities.UserRoleAdmin,
	}
	if err := d.DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create default user: %w", err)
	}
	log.Printf("Created default user: %s", user.Username)
	return &user, nil
}

// GetStats returns global counts shown on the admin page.
func (d *Database) GetStats() (totalDocuments int64, totalUsers int64, err error) {
	err = d.DB.Model(&entities.Document{}).Count(&totalDocuments).Error
	if err != nil {
		return
	}
	err = d.DB.Model(&entities.User{}).Count(&totalUsers).Error
	return
}
