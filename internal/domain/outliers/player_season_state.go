package outliers

import (
	"time"

	"gorm.io/datatypes"
)

// PlayerSeasonState carries a player's per-season running statistics. It is
// mutated exactly once per qualifying game, in chronological order, and
// rebuilt from scratch (never patched) during backfill.
type PlayerSeasonState struct {
	PlayerID int    `gorm:"primaryKey" json:"player_id"`
	Season   string `gorm:"size:10;primaryKey" json:"season"`

	GamesPlayed   int        `gorm:"column:games_played;not null;default:0" json:"games_played"`
	FirstGameDate *time.Time `gorm:"column:first_game_date;type:date" json:"first_game_date"`
	LastGameDate  *time.Time `gorm:"column:last_game_date;type:date" json:"last_game_date"`

	Accumulated datatypes.JSONType[Accumulator] `gorm:"column:accumulated_stats" json:"accumulated_stats"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PlayerSeasonState) TableName() string { return "outliers_player_season_state" }

// Stats returns the accumulator, never nil.
func (s *PlayerSeasonState) Stats() Accumulator {
	acc := s.Accumulated.Data()
	if acc == nil {
		acc = Accumulator{}
	}
	return acc
}

// SetStats stores the accumulator back onto the JSON column.
func (s *PlayerSeasonState) SetStats(acc Accumulator) {
	s.Accumulated = datatypes.NewJSONType(acc)
}
