package outliers

import "time"

// HistoricalRecordShare is the fraction of the all-time record a streak
// must reach to earn the historical badge.
const HistoricalRecordShare = 0.70

// HistoricalThreshold derives the badge threshold from an all-time length.
// The floor of 2 covers categories with no record yet.
func HistoricalThreshold(allTimeLength int) int {
	threshold := int(float64(allTimeLength) * HistoricalRecordShare)
	if threshold < 2 {
		return 2
	}
	return threshold
}

// StreakAllTimeRecord caches the longest streak ever observed per
// (streak type, competition) key. Its length never decreases.
type StreakAllTimeRecord struct {
	StreakType      string `gorm:"column:streak_type;size:30;primaryKey" json:"streak_type"`
	CompetitionType string `gorm:"column:competition_type;size:20;primaryKey;default:regular" json:"competition_type"`

	PlayerID int `gorm:"column:player_id;not null;index" json:"player_id"`
	Length   int `gorm:"not null" json:"length"`

	StartedAt time.Time  `gorm:"column:started_at;type:date;not null" json:"started_at"`
	EndedAt   *time.Time `gorm:"column:ended_at;type:date" json:"ended_at"`

	GameIDStart string  `gorm:"column:game_id_start;size:15;not null" json:"game_id_start"`
	GameIDEnd   *string `gorm:"column:game_id_end;size:15" json:"game_id_end"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (StreakAllTimeRecord) TableName() string { return "outliers_streak_all_time_records" }
