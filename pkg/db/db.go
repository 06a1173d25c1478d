package db

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

const DefaultDBName = "sweeps.db"

type DB struct {
	*sqlx.DB
	driver string
}

// openDB opens a database for driver and applies per-driver settings.
func openDB(driver, dsn string) (*sqlx.DB, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	sqlDB, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// Every connection to :memory: is a separate database.
		if dsn == ":memory:" {
			sqlDB.SetMaxOpenConns(1)
		}
		if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
			_ = sqlDB.Close() // Close error less important than PRAGMA error
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return sqlDB, nil
}

// Open opens the build ledger and creates its tables if needed.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if dsn == "" && driver == DriverSQLite {
		dsn = DefaultDBName
	}

	sqlDB, err := openDB(driver, dsn)
	if err != nil {
		return nil, err
	}

	db := &DB{
		DB:     sqlDB,
		driver: driver,
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-initialize schema if it doesn't exist
	if err := db.ensureSchemaExists(ctx); err != nil {
		_ = db.Close() // Close error less important than schema error
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// ensureSchemaExists initializes the schema unless the builds table is there.
func (db *DB) ensureSchemaExists(ctx context.Context) error {
	var n int
	if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM builds"); err == nil {
		return nil
	}
	return db.InitSchema(ctx)
}

// Driver returns the database driver name.
func (db *DB) Driver() string {
	return db.driver
}

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemas[db.driver] {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
