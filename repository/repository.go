package repository

import (
	"context"

	"github.com/nijaru/yt-transcript/models"
)

// ResolutionRepository stores lookup outcomes. Transcript text is never
// part of what it keeps.
type ResolutionRepository interface {
	Save(ctx context.Context, resolution *models.Resolution) error
	Recent(ctx context.Context, limit int) ([]*models.Resolution, error)
	Close() error
}
