package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/courtpulse/courtpulse-backend/internal/domain"
)

// SeedPlayer inserts a player; active unless stated otherwise.
func SeedPlayer(tb testing.TB, gdb *gorm.DB, id int, name string, active bool) *types.Player {
	tb.Helper()
	p := &types.Player{
		ID:       id,
		FullName: name,
		IsActive: active,
	}
	if err := gdb.Create(p).Error; err != nil {
		tb.Fatalf("seed player %d: %v", id, err)
	}
	return p
}

// SeedGame inserts a regular season game on the given date.
func SeedGame(tb testing.TB, gdb *gorm.DB, id string, date time.Time, season string) *types.Game {
	tb.Helper()
	g := &types.Game{
		ID:     id,
		Date:   date,
		Season: season,
		RS:     true,
	}
	if err := gdb.Create(g).Error; err != nil {
		tb.Fatalf("seed game %s: %v", id, err)
	}
	return g
}

// SeedGameFlags inserts a game with explicit competition flags.
func SeedGameFlags(tb testing.TB, gdb *gorm.DB, id string, date time.Time, season string, rs, po, ist bool) *types.Game {
	tb.Helper()
	g := &types.Game{
		ID:     id,
		Date:   date,
		Season: season,
		RS:     rs,
		PO:     po,
		IST:    ist,
	}
	if err := gdb.Create(g).Error; err != nil {
		tb.Fatalf("seed game %s: %v", id, err)
	}
	return g
}

// StatLine is a compact builder for PlayerGameStat fixtures. Zero values
// are valid stats; Minutes defaults to 30 when unset.
type StatLine struct {
	Pts, Reb, Ast, Stl, Blk, Tov, PF int
	FGM, FGA, FG3M, FG3A, FTM, FTA   int
	Minutes                          float64
}

// SeedStat inserts a stat line for a player in a game. Percentages are
// derived from makes and attempts; a feature without attempts carries nil.
func SeedStat(tb testing.TB, gdb *gorm.DB, gameID string, playerID int, line StatLine) *types.PlayerGameStat {
	tb.Helper()
	if line.Minutes == 0 {
		line.Minutes = 30
	}
	s := &types.PlayerGameStat{
		GameID:   gameID,
		PlayerID: playerID,
		TeamID:   1,
		Min:      time.Duration(line.Minutes * float64(time.Minute)),
		Pts:      line.Pts,
		Reb:      line.Reb,
		Ast:      line.Ast,
		Stl:      line.Stl,
		Blk:      line.Blk,
		Tov:      line.Tov,
		PF:       line.PF,
		FGM:      line.FGM,
		FGA:      line.FGA,
		FG3M:     line.FG3M,
		FG3A:     line.FG3A,
		FTM:      line.FTM,
		FTA:      line.FTA,
		FGPct:    pct(line.FGM, line.FGA),
		FG3Pct:   pct(line.FG3M, line.FG3A),
		FTPct:    pct(line.FTM, line.FTA),
	}
	if err := gdb.Create(s).Error; err != nil {
		tb.Fatalf("seed stat game=%s player=%d: %v", gameID, playerID, err)
	}
	return s
}

// Day returns a UTC date in the 2024-25 season, offset days after Nov 1.
func Day(offset int) time.Time {
	return time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

// GameID formats a deterministic upstream-style game id.
func GameID(n int) string {
	return fmt.Sprintf("00224%05d", n)
}

func pct(made, attempts int) *float64 {
	if attempts == 0 {
		return nil
	}
	v := float64(made) / float64(attempts)
	return &v
}
