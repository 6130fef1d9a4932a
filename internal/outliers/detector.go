// Package outliers defines the contract shared by the three detection
// engines: league reconstruction, per-player Z-score, and streaks.
package outliers

import (
	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
)

// Result is one detector verdict on one stat line. Detail carries
// detector-specific payload for logging and notification layers; the
// persisted record is written by the detector itself.
type Result struct {
	PlayerGameStatID int
	IsOutlier        bool
	Detail           map[string]any
}

// Detector scores stat lines and persists its own records.
type Detector interface {
	// Name identifies the detector in logs, metrics, and audit rows.
	Name() string
	// Detect processes a batch of stat lines incrementally. Lines must be
	// handled per player in chronological order; the detectors sort
	// internally and never trust input order.
	Detect(dbc dbctx.Context, lines []*types.PlayerGameStat) ([]Result, error)
	// Backfill reprocesses history from scratch for one season, or for
	// the detector's full default scope when season is empty. It returns
	// the number of outliers found.
	Backfill(dbc dbctx.Context, season string) (int, error)
}
