package outliers

import (
	"time"

	"gorm.io/datatypes"
)

// TrendComparison pairs a window average with the season baseline for one
// feature, kept for storytelling in the presentation layer.
type TrendComparison struct {
	CurrentAvg  float64 `json:"current_avg"`
	BaselineAvg float64 `json:"baseline_avg"`
	DiffPct     float64 `json:"diff_pct"`
}

// PlayerTrendOutlier is a windowed (7/30-day) anomaly: the window mean
// drifted from the season baseline by more than a standard-error-scaled Z
// threshold. Unique per (player, window, reference date).
type PlayerTrendOutlier struct {
	ID       int `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID int `gorm:"column:player_id;not null;index;uniqueIndex:uq_player_trend_ref" json:"player_id"`

	WindowType    string    `gorm:"column:window_type;size:10;not null;uniqueIndex:uq_player_trend_ref" json:"window_type"`
	ReferenceDate time.Time `gorm:"column:reference_date;type:date;not null;index;uniqueIndex:uq_player_trend_ref" json:"reference_date"`

	ZScores     datatypes.JSONType[map[string]float64]         `gorm:"column:z_scores" json:"z_scores"`
	MaxZScore   float64                                        `gorm:"column:max_z_score;not null" json:"max_z_score"`
	OutlierType string                                         `gorm:"column:outlier_type;size:20;not null" json:"outlier_type"`
	Comparison  datatypes.JSONType[map[string]TrendComparison] `gorm:"column:comparison_data" json:"comparison_data"`

	GamesInWindow   int `gorm:"column:games_in_window;not null" json:"games_in_window"`
	GamesInBaseline int `gorm:"column:games_in_baseline;not null" json:"games_in_baseline"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (PlayerTrendOutlier) TableName() string { return "outliers_player_trends" }
