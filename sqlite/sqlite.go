// Package sqlite keeps the archive of converted articles in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// memoryPath opens a private in-memory database.
const memoryPath = ":memory:"

// migrations bring the schema up one version each. The number applied is
// stored in PRAGMA user_version.
var migrations = []string{
	`CREATE TABLE articles (
		id TEXT PRIMARY KEY,
		source_url TEXT NOT NULL UNIQUE,
		file_path TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		author_url TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		content_hash TEXT NOT NULL DEFAULT '',
		converted_at TEXT NOT NULL
	);
	CREATE INDEX idx_articles_author ON articles(author);
	CREATE INDEX idx_articles_converted_at ON articles(converted_at);`,
}

// DB is the archive database.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB returns a DB for the file at path. Pass ":memory:" for a
// throwaway database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open connects to the database and migrates it to the current schema.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps the pragmas below
	// in effect for every statement.
	conn.SetMaxOpenConns(1)

	if err := configure(conn, db.path); err != nil {
		_ = conn.Close()
		return err
	}
	if err := migrate(conn); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	db.conn = conn
	return nil
}

// configure applies connection pragmas. WAL needs a file, so in-memory
// databases keep the default journal.
func configure(conn *sql.DB, path string) error {
	pragmas := []string{"busy_timeout = 5000"}
	if path != memoryPath {
		pragmas = append(pragmas, "journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := conn.Exec("PRAGMA " + p); err != nil {
			return fmt.Errorf("failed to set PRAGMA %s: %w", p, err)
		}
	}
	return nil
}

// migrate applies each pending migration in its own transaction.
func migrate(conn *sql.DB) error {
	version, err := userVersion(context.Background(), conn)
	if err != nil {
		return err
	}
	if version > len(migrations) {
		return fmt.Errorf("schema version %d is newer than supported version %d", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		tx, err := conn.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not take bound parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

func userVersion(ctx context.Context, conn *sql.DB) (int, error) {
	var v int
	if err := conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// SchemaVersion returns the number of migrations applied to the database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	return userVersion(ctx, db.conn)
}

// Close closes the database. It is a no-op if Open was never called.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Stats returns connection pool statistics.
func (db *DB) Stats() sql.DBStats {
	return db.conn.Stats()
}
