package db

// Timestamps are stored as fixed-width UTC text so they sort correctly and
// read back the same way on every driver.

var sqliteSchema = []string{
	`PRAGMA journal_mode = WAL`,
	`PRAGMA synchronous = NORMAL`,

	// Builds: one row per run of the build pipeline
	`CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		status TEXT NOT NULL,
		selected INTEGER NOT NULL DEFAULT 0,
		succeeded INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at DESC)`,

	// Build documents: per-asset outcome within a build
	`CREATE TABLE IF NOT EXISTS build_documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		asset_uuid TEXT NOT NULL,
		asset_name TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		date_id TEXT NOT NULL DEFAULT '',
		future INTEGER NOT NULL DEFAULT 0,
		activities INTEGER NOT NULL DEFAULT 0,
		invalid INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error_type TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (build_id) REFERENCES builds(build_id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_build_documents_build ON build_documents(build_id)`,

	`CREATE TABLE IF NOT EXISTS watermarks (
		name TEXT PRIMARY KEY,
		marked_at TEXT NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		status TEXT NOT NULL,
		selected INTEGER NOT NULL DEFAULT 0,
		succeeded INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS build_documents (
		id SERIAL PRIMARY KEY,
		build_id TEXT NOT NULL REFERENCES builds(build_id) ON DELETE CASCADE,
		asset_uuid TEXT NOT NULL,
		asset_name TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		date_id TEXT NOT NULL DEFAULT '',
		future INTEGER NOT NULL DEFAULT 0,
		activities INTEGER NOT NULL DEFAULT 0,
		invalid INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error_type TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_build_documents_build ON build_documents(build_id)`,
	`CREATE TABLE IF NOT EXISTS watermarks (
		name TEXT PRIMARY KEY,
		marked_at TEXT NOT NULL
	)`,
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes are declared inline.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS builds (
		build_id VARCHAR(64) PRIMARY KEY,
		started_at VARCHAR(40) NOT NULL,
		finished_at VARCHAR(40),
		status VARCHAR(16) NOT NULL,
		selected INT NOT NULL DEFAULT 0,
		succeeded INT NOT NULL DEFAULT 0,
		failed INT NOT NULL DEFAULT 0,
		INDEX idx_builds_started (started_at)
	)`,
	`CREATE TABLE IF NOT EXISTS build_documents (
		id INT AUTO_INCREMENT PRIMARY KEY,
		build_id VARCHAR(64) NOT NULL,
		asset_uuid VARCHAR(64) NOT NULL,
		asset_name VARCHAR(512) NOT NULL DEFAULT '',
		url VARCHAR(2048) NOT NULL DEFAULT '',
		date_id VARCHAR(10) NOT NULL DEFAULT '',
		future INT NOT NULL DEFAULT 0,
		activities INT NOT NULL DEFAULT 0,
		invalid INT NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL,
		error_type VARCHAR(32) NOT NULL DEFAULT '',
		error_message TEXT,
		INDEX idx_build_documents_build (build_id),
		FOREIGN KEY (build_id) REFERENCES builds(build_id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS watermarks (
		name VARCHAR(64) PRIMARY KEY,
		marked_at VARCHAR(40) NOT NULL
	)`,
}

var schemas = map[string][]string{
	DriverSQLite:   sqliteSchema,
	DriverPostgres: postgresSchema,
	DriverMySQL:    mysqlSchema,
}

var upsertWatermark = map[string]string{
	DriverSQLite: `INSERT INTO watermarks (name, marked_at) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET marked_at = excluded.marked_at`,
	DriverPostgres: `INSERT INTO watermarks (name, marked_at) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET marked_at = excluded.marked_at`,
	DriverMySQL: `INSERT INTO watermarks (name, marked_at) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE marked_at = VALUES(marked_at)`,
}
