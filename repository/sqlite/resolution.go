package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/models"
)

const maxRecent = 500

type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Save(ctx context.Context, res *models.Resolution) error {
	const op = "SQLiteRepository.Save"

	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}

	var err error
	for i := 0; i < 3; i++ {
		if err = r.save(ctx, res); err == nil || !isLockError(err) {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Internal(op, ctx.Err(), "Failed to save resolution")
		case <-time.After(time.Duration(i+1) * 100 * time.Millisecond):
		}
	}
	if err != nil {
		return errors.Internal(op, err, "Failed to save resolution")
	}
	return nil
}

func (r *Repository) save(ctx context.Context, res *models.Resolution) error {
	_, err := r.db.statements.insert.ExecContext(ctx,
		res.ID,
		res.VideoID,
		res.Source,
		string(res.Status),
		res.Attempts,
		res.Error,
		res.Duration.Milliseconds(),
		res.CreatedAt.UTC(),
	)
	return err
}

// Recent returns up to limit outcomes, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]*models.Resolution, error) {
	const op = "SQLiteRepository.Recent"

	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}

	rows, err := r.db.statements.recent.QueryContext(ctx, limit)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query resolutions")
	}
	defer rows.Close()

	results := make([]*models.Resolution, 0, limit)
	for rows.Next() {
		var (
			res        models.Resolution
			status     string
			durationMs int64
		)
		if err := rows.Scan(
			&res.ID,
			&res.VideoID,
			&res.Source,
			&status,
			&res.Attempts,
			&res.Error,
			&durationMs,
			&res.CreatedAt,
		); err != nil {
			return nil, errors.Internal(op, err, "Failed to scan resolution")
		}
		res.Status = models.ResolutionStatus(status)
		res.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err, "Failed to read resolutions")
	}

	return results, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func isLockError(err error) bool {
	return strings.Contains(err.Error(), "database is locked") ||
		strings.Contains(err.Error(), "database table is locked")
}
