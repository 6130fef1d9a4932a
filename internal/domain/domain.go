// Package domain re-exports the persisted types so call sites can import a
// single package.
package domain

import (
	"github.com/courtpulse/courtpulse-backend/internal/domain/nba"
	"github.com/courtpulse/courtpulse-backend/internal/domain/outliers"
)

type Team = nba.Team
type Player = nba.Player
type Game = nba.Game
type PlayerGameStat = nba.PlayerGameStat

type Accumulator = outliers.Accumulator
type FeatureTotals = outliers.FeatureTotals
type PlayerSeasonState = outliers.PlayerSeasonState
type LeagueOutlier = outliers.LeagueOutlier
type PlayerOutlier = outliers.PlayerOutlier
type OutlierFeature = outliers.OutlierFeature
type PlayerTrendOutlier = outliers.PlayerTrendOutlier
type TrendComparison = outliers.TrendComparison
type StreakRecord = outliers.StreakRecord
type StreakAllTimeRecord = outliers.StreakAllTimeRecord
type DetectionRun = outliers.DetectionRun
