package outliers

import (
	"time"

	"gorm.io/datatypes"
)

// OutlierFeature is one feature that cleared both the Z threshold and its
// minimum-relevance floor for a single game.
type OutlierFeature struct {
	Feature   string  `json:"feature"`
	ZScore    float64 `json:"z_score"`
	Direction string  `json:"direction"` // high / low
	Value     float64 `json:"val"`
	Average   float64 `json:"avg"`
}

// PlayerOutlier is a single-game anomaly scored against the player's own
// season baseline. At most one row per stat line.
type PlayerOutlier struct {
	ID               int `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerGameStatID int `gorm:"column:player_game_stat_id;not null;uniqueIndex:uq_player_outlier_stat" json:"player_game_stat_id"`

	ZScores         datatypes.JSONType[map[string]float64] `gorm:"column:z_scores" json:"z_scores"`
	MaxZScore       float64                                `gorm:"column:max_z_score;not null" json:"max_z_score"`
	OutlierType     string                                 `gorm:"column:outlier_type;size:20;not null" json:"outlier_type"`
	OutlierFeatures datatypes.JSONType[[]OutlierFeature]   `gorm:"column:outlier_features" json:"outlier_features"`
	GamesInSample   int                                    `gorm:"column:games_in_sample;not null" json:"games_in_sample"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PlayerOutlier) TableName() string { return "outliers_player" }
