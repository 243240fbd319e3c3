package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./wordhoard.db"

	// DefaultEnvFile is loaded into the environment before configuration is read
	DefaultEnvFile = ".env"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)
