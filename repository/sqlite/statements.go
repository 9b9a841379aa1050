package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nijaru/yt-transcript/errors"
)

const (
	insertResolutionQuery = `
        INSERT INTO resolutions (
            id, video_id, source, status, attempts,
            error, duration_ms, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	recentResolutionsQuery = `
        SELECT id, video_id, source, status, attempts,
               error, duration_ms, created_at
        FROM resolutions
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?
    `
)

type PreparedStatements struct {
	insert *sql.Stmt
	recent *sql.Stmt
}

func (stmts *PreparedStatements) Prepare(ctx context.Context, db *sql.DB) error {
	const op = "PreparedStatements.Prepare"

	var err error

	if stmts.insert, err = db.PrepareContext(ctx, insertResolutionQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare insert statement")
	}

	if stmts.recent, err = db.PrepareContext(ctx, recentResolutionsQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare recent statement")
	}

	return nil
}

func (stmts *PreparedStatements) Close() error {
	var errs []error

	for _, stmt := range [...]*sql.Stmt{stmts.insert, stmts.recent} {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to close prepared statements: %v", errs)
	}

	return nil
}
