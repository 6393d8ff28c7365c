package dbfake

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// BackendType selects which SQL engine backs the fake database server,
// mirroring the teacher's control-plane store's sqlite/postgres switch.
type BackendType string

const (
	BackendSQLite   BackendType = "sqlite"
	BackendPostgres BackendType = "postgres"
)

// Config configures the fake database server's storage backend.
type Config struct {
	Type     BackendType
	SQLite   SQLiteConfig
	Postgres PostgresConfig
}

// SQLiteConfig is the SQLite backend's configuration.
type SQLiteConfig struct {
	Path string // empty means in-memory, for unit tests
}

// PostgresConfig is the Postgres backend's configuration. No test in this
// repository opens a Postgres-backed Store.
type PostgresConfig struct {
	Host, Database, User, Password, SSLMode string
	Port                                    int
}

// ConnectionString renders the libpq-style DSN golang-migrate and pgx both expect.
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslMode)
}

// ApplyDefaults fills unset fields the way the teacher's store Config does.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = BackendSQLite
	}
	if c.Type == BackendPostgres && c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
}

// Store is a GORM-backed fake Database Server state store.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured backend and migrates the schema.
// SQLite uses GORM's AutoMigrate directly (single-file, no concurrent
// migrators to race); Postgres runs golang-migrate's versioned migrations,
// matching the teacher's split between its sqlite and postgres metadata
// stores.
func Open(cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.ApplyDefaults()

	var dialector gorm.Dialector
	switch cfg.Type {
	case BackendSQLite:
		dsn := cfg.SQLite.Path
		if dsn == "" {
			dsn = ":memory:"
		} else if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("dbfake: create sqlite directory: %w", err)
		}
		dialector = sqlite.Open(dsn)
	case BackendPostgres:
		dialector = postgres.Open(cfg.Postgres.ConnectionString())
	default:
		return nil, fmt.Errorf("dbfake: unsupported backend %q", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("dbfake: open database: %w", err)
	}

	if cfg.Type == BackendPostgres {
		if err := runMigrations(cfg.Postgres.ConnectionString()); err != nil {
			return nil, err
		}
	} else if err := db.AutoMigrate(AllModels()...); err != nil {
		return nil, fmt.Errorf("dbfake: auto-migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// DB exposes the underlying GORM handle, for tests that need raw access.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Get loads a row by doid. The second return is false if no row exists.
func (s *Store) Get(doid uint32) (*ObjectRow, bool, error) {
	var row ObjectRow
	err := s.db.First(&row, "doid = ?", doid).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("dbfake: get %d: %w", doid, err)
	}
	return &row, true, nil
}

// Upsert inserts or fully replaces a row's class and field set.
func (s *Store) Upsert(row *ObjectRow) error {
	if err := s.db.Save(row).Error; err != nil {
		return fmt.Errorf("dbfake: upsert %d: %w", row.DOID, err)
	}
	return nil
}

// Delete removes a row by doid. Deleting a row that doesn't exist is not an error.
func (s *Store) Delete(doid uint32) error {
	if err := s.db.Delete(&ObjectRow{}, "doid = ?", doid).Error; err != nil {
		return fmt.Errorf("dbfake: delete %d: %w", doid, err)
	}
	return nil
}
