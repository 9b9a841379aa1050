package models

import (
	"time"
)

type ResolutionStatus string

const (
	ResolutionResolved    ResolutionStatus = "resolved"
	ResolutionUnavailable ResolutionStatus = "unavailable"
	ResolutionFailed      ResolutionStatus = "failed"
)

// Resolution is the outcome record of one transcript lookup. It never holds
// transcript text.
type Resolution struct {
	ID        string           `json:"id"`
	VideoID   string           `json:"video_id"`
	Source    string           `json:"source,omitempty"`
	Status    ResolutionStatus `json:"status"`
	Attempts  int              `json:"attempts"`
	Error     string           `json:"error,omitempty"`
	Duration  time.Duration    `json:"duration"`
	CreatedAt time.Time        `json:"created_at"`
}

func (r *Resolution) IsResolved() bool { return r.Status == ResolutionResolved }
