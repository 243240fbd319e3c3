package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gorm.io/gorm/logger"

	"github.com/mrlokans/wordhoard/internal/config"
	"github.com/mrlokans/wordhoard/internal/database"
	"github.com/mrlokans/wordhoard/internal/database/users"
	"github.com/mrlokans/wordhoard/internal/entities"
)

// openDatabase connects to the sqlite file at path, or to the configured
// database when path is empty.
func openDatabase(path string) (*database.Database, *config.Config, error) {
	cfg := config.NewConfig()
	dbCfg := cfg.Database
	if path != "" {
		dbCfg = config.Database{Driver: config.DriverSQLite, Path: path}
	}

	db, err := database.Open(dbCfg, logger.Warn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, cfg, nil
}

// lookupUser finds username. The local user is created on first use.
func lookupUser(db *database.Database, username string) (*entities.User, error) {
	if username == "" || username == entities.DefaultUsername {
		return db.EnsureDefaultUser()
	}
	user, err := users.NewRepository(db.DB).GetUserByUsername(username)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, fmt.Errorf("user %q does not exist", username)
	}
	return user, err
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
