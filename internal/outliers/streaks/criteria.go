package streaks

import (
	"fmt"

	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	domoutliers "github.com/courtpulse/courtpulse-backend/internal/domain/outliers"
	pkgerrors "github.com/courtpulse/courtpulse-backend/internal/pkg/errors"
)

// Verdict is the three-valued outcome of a streak criterion for one game.
// Freeze covers games with no activity in the category (a night without a
// free throw neither extends nor breaks a free throw streak).
type Verdict int8

const (
	Break Verdict = iota
	Qualify
	Freeze
)

// Criterion evaluates one stat line against one streak definition.
type Criterion func(s *types.PlayerGameStat) Verdict

func counting(meets bool) Verdict {
	if meets {
		return Qualify
	}
	return Break
}

func percentage(attempts int, pct *float64, floor float64) Verdict {
	if attempts == 0 {
		return Freeze
	}
	v := 0.0
	if pct != nil {
		v = *pct
	}
	return counting(v >= floor)
}

// criteriaCatalog maps streak type to its criterion.
var criteriaCatalog = map[string]Criterion{
	domoutliers.StreakPts20: func(s *types.PlayerGameStat) Verdict { return counting(s.Pts >= 20) },
	domoutliers.StreakPts30: func(s *types.PlayerGameStat) Verdict { return counting(s.Pts >= 30) },
	domoutliers.StreakPts40: func(s *types.PlayerGameStat) Verdict { return counting(s.Pts >= 40) },
	domoutliers.StreakTripleDouble: func(s *types.PlayerGameStat) Verdict {
		doubles := 0
		for _, v := range []int{s.Pts, s.Reb, s.Ast, s.Stl, s.Blk} {
			if v >= 10 {
				doubles++
			}
		}
		return counting(doubles >= 3)
	},
	domoutliers.StreakReb10: func(s *types.PlayerGameStat) Verdict { return counting(s.Reb >= 10) },
	domoutliers.StreakAst10: func(s *types.PlayerGameStat) Verdict { return counting(s.Ast >= 10) },
	domoutliers.StreakFGPct60: func(s *types.PlayerGameStat) Verdict {
		return percentage(s.FGA, s.FGPct, 0.60)
	},
	domoutliers.StreakFG3Pct50: func(s *types.PlayerGameStat) Verdict {
		return percentage(s.FG3A, s.FG3Pct, 0.50)
	},
	domoutliers.StreakFTPct90: func(s *types.PlayerGameStat) Verdict {
		return percentage(s.FTA, s.FTPct, 0.90)
	},
}

// AllStreakTypes lists every supported streak type in a stable order.
var AllStreakTypes = []string{
	domoutliers.StreakPts20,
	domoutliers.StreakPts30,
	domoutliers.StreakPts40,
	domoutliers.StreakTripleDouble,
	domoutliers.StreakReb10,
	domoutliers.StreakAst10,
	domoutliers.StreakFGPct60,
	domoutliers.StreakFG3Pct50,
	domoutliers.StreakFTPct90,
}

func resolveTypes(streakTypes []string) ([]string, error) {
	if len(streakTypes) == 0 {
		return AllStreakTypes, nil
	}
	for _, st := range streakTypes {
		if _, ok := criteriaCatalog[st]; !ok {
			return nil, fmt.Errorf("unknown streak type %q: %w", st, pkgerrors.ErrInvalidArgument)
		}
	}
	return streakTypes, nil
}
