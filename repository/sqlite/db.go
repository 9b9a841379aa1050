package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nijaru/yt-transcript/errors"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS resolutions (
    id TEXT PRIMARY KEY,
    video_id TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    attempts INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_resolutions_video_id ON resolutions(video_id);
CREATE INDEX IF NOT EXISTS idx_resolutions_created_at ON resolutions(created_at);
`

type DBConfig struct {
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

func DefaultDBConfig() DBConfig {
	return DBConfig{
		MaxConnections:     10,
		MaxIdleConnections: 5,
		ConnMaxLifetime:    time.Hour,
	}
}

type DB struct {
	conn       *sql.DB
	statements *PreparedStatements
}

// Open creates the database file if needed, applies the schema and prepares
// the statements used by the repository.
func Open(ctx context.Context, dbPath string, cfg DBConfig) (*DB, error) {
	const op = "sqlite.Open"

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, errors.Internal(op, err, "failed to create database directory")
		}
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Internal(op, err, "failed to open database")
	}

	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		cfg.MaxConnections = 1
		cfg.MaxIdleConnections = 1
		cfg.ConnMaxLifetime = 0
	}
	conn.SetMaxOpenConns(cfg.MaxConnections)
	conn.SetMaxIdleConns(cfg.MaxIdleConnections)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := configurePragmas(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	if err := execSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	stmts := &PreparedStatements{}
	if err := stmts.Prepare(ctx, conn); err != nil {
		stmts.Close()
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn, statements: stmts}, nil
}

func (db *DB) Close() error {
	stmtErr := db.statements.Close()
	if err := db.conn.Close(); err != nil {
		return err
	}
	return stmtErr
}

func configurePragmas(ctx context.Context, conn *sql.DB) error {
	const op = "sqlite.configurePragmas"

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			return errors.Internal(op, err, fmt.Sprintf("failed to set pragma: %s", pragma))
		}
	}

	return nil
}

func execSchema(ctx context.Context, conn *sql.DB) error {
	const op = "sqlite.execSchema"

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Internal(op, err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Internal(op, err, fmt.Sprintf("failed to execute schema statement: %s", stmt))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Internal(op, err, "failed to commit schema transaction")
	}

	return nil
}
