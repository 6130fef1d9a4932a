package outliers

import (
	"time"

	"gorm.io/datatypes"
)

// LeagueOutlier is the reconstruction-model verdict for one stat line,
// scored against the whole league rather than the player's own baseline.
// At most one row per stat line; upserted on reprocessing.
type LeagueOutlier struct {
	ID               int `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerGameStatID int `gorm:"column:player_game_stat_id;not null;uniqueIndex:uq_league_outlier_stat" json:"player_game_stat_id"`

	// ReconstructionError is the mean squared reconstruction error.
	ReconstructionError float64 `gorm:"column:reconstruction_error;not null" json:"reconstruction_error"`
	// Percentile is calibrated against the fixed training-era error
	// distribution, not recomputed per batch.
	Percentile           float64                                 `gorm:"not null" json:"percentile"`
	FeatureContributions datatypes.JSONType[map[string]float64] `gorm:"column:feature_contributions" json:"feature_contributions"`
	IsOutlier            bool                                    `gorm:"column:is_outlier;not null;default:false;index" json:"is_outlier"`
	ModelVersion         string                                  `gorm:"column:model_version;size:50" json:"model_version"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LeagueOutlier) TableName() string { return "outliers_league" }
