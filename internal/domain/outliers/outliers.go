// Package outliers holds the persisted records produced by the outlier and
// streak detection subsystem.
package outliers

// Competition contexts. A single game can belong to more than one (an
// in-season tournament game is usually also a regular season game).
const (
	CompetitionRegular  = "regular"
	CompetitionPlayoffs = "playoffs"
	CompetitionCup      = "nba_cup"
)

// CompetitionTypes lists every context in a stable order.
var CompetitionTypes = []string{CompetitionRegular, CompetitionPlayoffs, CompetitionCup}

// Outlier classification relative to a player's own baseline.
const (
	TypeExplosion = "explosion"
	TypeCrisis    = "crisis"
)

// Trend window types.
const (
	WindowWeek  = "week"
	WindowMonth = "month"
)
