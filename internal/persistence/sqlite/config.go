package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteConfig holds SQLite-specific database configuration
type SQLiteConfig struct {
	// Path is the database file path, or ":memory:"
	Path string

	// ReadOnly opens the file with mode=ro and never creates it
	ReadOnly bool

	// MustExist opens an existing file with mode=rw and never creates it
	MustExist bool

	// BusyTimeout sets how long to wait for database locks
	BusyTimeout time.Duration

	// EnableForeignKeys enables foreign key constraint checking
	EnableForeignKeys bool

	// JournalMode sets the SQLite journal mode (WAL, DELETE, TRUNCATE, etc.)
	JournalMode string

	// Synchronous sets the synchronous mode (FULL, NORMAL, OFF)
	Synchronous string

	// CacheSize sets the page cache size (negative values are KiB)
	CacheSize int

	// MaxOpenConns sets the maximum number of open connections
	MaxOpenConns int
}

// ConnectionManager opens SQLite handles with the configured PRAGMAs applied.
type ConnectionManager interface {
	// GetConnection returns a configured SQLite database connection
	GetConnection() (*sql.DB, error)

	// ConfigureDatabase applies SQLite-specific settings to an existing connection
	ConfigureDatabase(db *sql.DB) error

	// ValidateConfig validates the SQLite configuration
	ValidateConfig() error
}

type sqliteConnectionManager struct {
	config SQLiteConfig
}

// NewConnectionManager creates a new SQLite connection manager
func NewConnectionManager(config SQLiteConfig) ConnectionManager {
	return &sqliteConnectionManager{
		config: config,
	}
}

// Open is shorthand for NewConnectionManager(config).GetConnection().
func Open(config SQLiteConfig) (*sql.DB, error) {
	return NewConnectionManager(config).GetConnection()
}

// DSN renders the driver connection string for the configuration.
func (c SQLiteConfig) DSN() string {
	if c.Path == ":memory:" {
		return c.Path
	}
	if c.ReadOnly {
		return "file:" + c.Path + "?mode=ro"
	}
	if c.MustExist {
		return "file:" + c.Path + "?mode=rw"
	}
	return c.Path
}

// GetConnection returns a configured SQLite database connection
func (cm *sqliteConnectionManager) GetConnection() (*sql.DB, error) {
	if err := cm.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("invalid SQLite configuration: %w", err)
	}

	if !cm.config.ReadOnly && !cm.config.MustExist && cm.config.Path != ":memory:" {
		dir := filepath.Dir(cm.config.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, NewDatabaseError("", "", "create database directory "+dir, err)
		}
	}

	db, err := sql.Open("sqlite", cm.config.DSN())
	if err != nil {
		return nil, NewDatabaseError("", "", "open "+cm.config.Path, err)
	}

	// One connection keeps PRAGMAs and in-memory databases bound to a single
	// session; there is only ever one reader or writer per handle.
	maxOpen := cm.config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)

	if err := cm.ConfigureDatabase(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewDatabaseError("", "", "ping "+cm.config.Path, err)
	}

	return db, nil
}

// ConfigureDatabase applies SQLite-specific settings to an existing connection
func (cm *sqliteConnectionManager) ConfigureDatabase(db *sql.DB) error {
	pragmas := []struct {
		name  string
		value string
	}{
		{"busy_timeout", fmt.Sprintf("%d", cm.config.BusyTimeout.Milliseconds())},
	}

	if cm.config.JournalMode != "" && !cm.config.ReadOnly {
		pragmas = append(pragmas, struct {
			name  string
			value string
		}{"journal_mode", cm.config.JournalMode})
	}
	if cm.config.Synchronous != "" {
		pragmas = append(pragmas, struct {
			name  string
			value string
		}{"synchronous", cm.config.Synchronous})
	}
	if cm.config.EnableForeignKeys {
		pragmas = append(pragmas, struct {
			name  string
			value string
		}{"foreign_keys", "ON"})
	}
	if cm.config.CacheSize != 0 {
		pragmas = append(pragmas, struct {
			name  string
			value string
		}{"cache_size", fmt.Sprintf("%d", cm.config.CacheSize)})
	}

	for _, pragma := range pragmas {
		stmt := fmt.Sprintf("PRAGMA %s = %s", pragma.name, pragma.value)
		if _, err := db.Exec(stmt); err != nil {
			return NewDatabaseError("", stmt, "set PRAGMA "+pragma.name, err)
		}
	}

	return nil
}

// ValidateConfig validates the SQLite configuration
func (cm *sqliteConnectionManager) ValidateConfig() error {
	if strings.TrimSpace(cm.config.Path) == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if cm.config.BusyTimeout < 0 {
		return fmt.Errorf("BusyTimeout cannot be negative")
	}

	validJournalModes := map[string]bool{
		"DELETE":   true,
		"TRUNCATE": true,
		"PERSIST":  true,
		"MEMORY":   true,
		"WAL":      true,
		"OFF":      true,
	}
	if cm.config.JournalMode != "" && !validJournalModes[cm.config.JournalMode] {
		return fmt.Errorf("invalid journal mode: %s", cm.config.JournalMode)
	}

	validSyncModes := map[string]bool{
		"OFF":    true,
		"NORMAL": true,
		"FULL":   true,
		"EXTRA":  true,
	}
	if cm.config.Synchronous != "" && !validSyncModes[cm.config.Synchronous] {
		return fmt.Errorf("invalid synchronous mode: %s", cm.config.Synchronous)
	}

	if cm.config.MaxOpenConns < 0 {
		return fmt.Errorf("MaxOpenConns cannot be negative")
	}

	return nil
}

// CatalogConfig returns the write-optimised configuration used for a freshly
// initialised catalog.
func CatalogConfig(path string) SQLiteConfig {
	return SQLiteConfig{
		Path:              path,
		BusyTimeout:       30 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "WAL",
		Synchronous:       "NORMAL",
		CacheSize:         -64000,
	}
}

// SourceConfig returns a read-only configuration for a legacy database.
func SourceConfig(path string) SQLiteConfig {
	return SQLiteConfig{
		Path:        path,
		ReadOnly:    true,
		BusyTimeout: 30 * time.Second,
		CacheSize:   -64000,
	}
}

// ExistingCatalogConfig returns the configuration used to inspect a catalog
// written by an earlier run. The file must already exist.
func ExistingCatalogConfig(path string) SQLiteConfig {
	return SQLiteConfig{
		Path:              path,
		MustExist:         true,
		BusyTimeout:       30 * time.Second,
		EnableForeignKeys: true,
		CacheSize:         -64000,
	}
}

// InMemoryTestSQLiteConfig returns a SQLite configuration optimized for in-memory testing
func InMemoryTestSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path:              ":memory:",
		BusyTimeout:       5 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "MEMORY",
		Synchronous:       "OFF",
		CacheSize:         -1000,
		MaxOpenConns:      1,
	}
}

// TempFileTestSQLiteConfig returns a SQLite configuration for temporary file-based testing
func TempFileTestSQLiteConfig(tempFilePath string) SQLiteConfig {
	return SQLiteConfig{
		Path:              tempFilePath,
		BusyTimeout:       5 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "WAL",
		Synchronous:       "OFF",
		CacheSize:         -1000,
	}
}
