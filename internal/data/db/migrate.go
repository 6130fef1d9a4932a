package db

import (
	"gorm.io/gorm"

	types "github.com/courtpulse/courtpulse-backend/internal/domain"
)

// AutoMigrate creates or updates every table the detection subsystem reads
// or writes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Team{},
		&types.Player{},
		&types.Game{},
		&types.PlayerGameStat{},

		&types.PlayerSeasonState{},
		&types.LeagueOutlier{},
		&types.PlayerOutlier{},
		&types.PlayerTrendOutlier{},
		&types.StreakRecord{},
		&types.StreakAllTimeRecord{},
		&types.DetectionRun{},
	)
}
