package outliers

import "time"

// Streak type identifiers.
const (
	StreakPts20        = "pts_20"
	StreakPts30        = "pts_30"
	StreakPts40        = "pts_40"
	StreakTripleDouble = "triple_double"
	StreakReb10        = "reb_10"
	StreakAst10        = "ast_10"
	StreakFGPct60      = "fg_pct_60"
	StreakFG3Pct50     = "fg3_pct_50"
	StreakFTPct90      = "ft_pct_90"
)

// StreakRecord tracks a run of consecutive qualifying games for one
// (player, streak type, competition) key. Business rule: at most one active
// row per key, enforced in the repo since a partial unique index is not
// portable to the test driver.
type StreakRecord struct {
	ID       int `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID int `gorm:"column:player_id;not null;index;index:idx_streak_player_type_comp;uniqueIndex:uq_streak_start" json:"player_id"`

	StreakType      string `gorm:"column:streak_type;size:30;not null;index:idx_streak_player_type_comp;uniqueIndex:uq_streak_start" json:"streak_type"`
	CompetitionType string `gorm:"column:competition_type;size:20;not null;default:regular;index;index:idx_streak_player_type_comp;uniqueIndex:uq_streak_start" json:"competition_type"`

	Length   int  `gorm:"not null;default:1" json:"length"`
	IsActive bool `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	// IsHistoricalOutlier marks a streak at 70%+ of the current all-time
	// record for its key. Recomputed globally after backfill, since older
	// seasons can retroactively move the record.
	IsHistoricalOutlier bool `gorm:"column:is_historical_outlier;not null;default:false;index" json:"is_historical_outlier"`

	StartedAt time.Time  `gorm:"column:started_at;type:date;not null;uniqueIndex:uq_streak_start" json:"started_at"`
	EndedAt   *time.Time `gorm:"column:ended_at;type:date" json:"ended_at"`

	FirstGameID string  `gorm:"column:first_game_id;size:15;not null" json:"first_game_id"`
	LastGameID  *string `gorm:"column:last_game_id;size:15" json:"last_game_id"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (StreakRecord) TableName() string { return "outliers_streaks" }
