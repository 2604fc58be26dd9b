package gallery

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// IndexFile is the SQLite index kept next to the photos.
const IndexFile = ".cheese-index.db"

// currentSchemaVersion is the latest schema version. Bump it when adding migrations.
const currentSchemaVersion = 1

func openIndex(dir string) (*sql.DB, error) {
	dsn := filepath.Join(dir, IndexFile) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open gallery index: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("failed to get user_version: %w", err)
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS photos (
		  id          TEXT PRIMARY KEY,
		  name        TEXT NOT NULL UNIQUE,
		  taken_at    INTEGER NOT NULL,
		  frame_path  TEXT,
		  framed      INTEGER NOT NULL DEFAULT 0,
		  width       INTEGER NOT NULL,
		  height      INTEGER NOT NULL,
		  session_id  TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_photos_taken_at ON photos(taken_at DESC);

		CREATE TABLE IF NOT EXISTS deliveries (
		  id          INTEGER PRIMARY KEY AUTOINCREMENT,
		  photo_name  TEXT NOT NULL,
		  channel     TEXT NOT NULL,
		  target      TEXT,
		  ok          INTEGER NOT NULL,
		  message     TEXT,
		  created_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_deliveries_channel_created
		ON deliveries(channel, created_at DESC);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("failed to set user_version: %w", err)
		}
	}
	return nil
}
