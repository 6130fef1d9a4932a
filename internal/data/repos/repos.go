package repos

import (
	"gorm.io/gorm"

	"github.com/courtpulse/courtpulse-backend/internal/data/repos/nba"
	"github.com/courtpulse/courtpulse-backend/internal/data/repos/outliers"
	"github.com/courtpulse/courtpulse-backend/internal/platform/logger"
)

type PlayerRepo = nba.PlayerRepo
type GameRepo = nba.GameRepo
type PlayerGameStatRepo = nba.PlayerGameStatRepo

type SeasonStateRepo = outliers.SeasonStateRepo
type LeagueOutlierRepo = outliers.LeagueOutlierRepo
type PlayerOutlierRepo = outliers.PlayerOutlierRepo
type TrendOutlierRepo = outliers.TrendOutlierRepo
type StreakRecordRepo = outliers.StreakRecordRepo
type AllTimeRecordRepo = outliers.AllTimeRecordRepo
type DetectionRunRepo = outliers.DetectionRunRepo

type StreakSummary = outliers.StreakSummary
type TopOutlier = outliers.TopOutlier

func NewPlayerRepo(db *gorm.DB, baseLog *logger.Logger) PlayerRepo {
	return nba.NewPlayerRepo(db, baseLog)
}
func NewGameRepo(db *gorm.DB, baseLog *logger.Logger) GameRepo {
	return nba.NewGameRepo(db, baseLog)
}
func NewPlayerGameStatRepo(db *gorm.DB, baseLog *logger.Logger) PlayerGameStatRepo {
	return nba.NewPlayerGameStatRepo(db, baseLog)
}

func NewSeasonStateRepo(db *gorm.DB, baseLog *logger.Logger) SeasonStateRepo {
	return outliers.NewSeasonStateRepo(db, baseLog)
}
func NewLeagueOutlierRepo(db *gorm.DB, baseLog *logger.Logger) LeagueOutlierRepo {
	return outliers.NewLeagueOutlierRepo(db, baseLog)
}
func NewPlayerOutlierRepo(db *gorm.DB, baseLog *logger.Logger) PlayerOutlierRepo {
	return outliers.NewPlayerOutlierRepo(db, baseLog)
}
func NewTrendOutlierRepo(db *gorm.DB, baseLog *logger.Logger) TrendOutlierRepo {
	return outliers.NewTrendOutlierRepo(db, baseLog)
}
func NewStreakRecordRepo(db *gorm.DB, baseLog *logger.Logger) StreakRecordRepo {
	return outliers.NewStreakRecordRepo(db, baseLog)
}
func NewAllTimeRecordRepo(db *gorm.DB, baseLog *logger.Logger) AllTimeRecordRepo {
	return outliers.NewAllTimeRecordRepo(db, baseLog)
}
func NewDetectionRunRepo(db *gorm.DB, baseLog *logger.Logger) DetectionRunRepo {
	return outliers.NewDetectionRunRepo(db, baseLog)
}
