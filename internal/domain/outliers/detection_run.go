package outliers

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Run modes recorded on DetectionRun.
const (
	RunModeDetect   = "detect"
	RunModeBackfill = "backfill"
)

// DetectionRun is the persisted audit row for one runner invocation:
// per-detector counts, duration, and any absorbed detector errors.
type DetectionRun struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Mode string    `gorm:"size:10;not null;index" json:"mode"`
	// Season is empty for incremental runs and whole-history backfills.
	Season string `gorm:"size:10" json:"season"`

	TotalProcessed int `gorm:"column:total_processed;not null;default:0" json:"total_processed"`
	LeagueOutliers int `gorm:"column:league_outliers;not null;default:0" json:"league_outliers"`
	PlayerOutliers int `gorm:"column:player_outliers;not null;default:0" json:"player_outliers"`
	StreakOutliers int `gorm:"column:streak_outliers;not null;default:0" json:"streak_outliers"`

	DurationSeconds float64                       `gorm:"column:duration_seconds;not null" json:"duration_seconds"`
	Errors          datatypes.JSONType[[]string] `gorm:"column:errors" json:"errors"`

	StartedAt  time.Time `gorm:"not null" json:"started_at"`
	FinishedAt time.Time `gorm:"not null" json:"finished_at"`
}

func (DetectionRun) TableName() string { return "outliers_detection_runs" }
