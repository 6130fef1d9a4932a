package runner

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/courtpulse/courtpulse-backend/internal/data/repos"
	"github.com/courtpulse/courtpulse-backend/internal/data/repos/testutil"
	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	domoutliers "github.com/courtpulse/courtpulse-backend/internal/domain/outliers"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
)

const season = "2024-25"

// testConfig disables the league detector through a missing artifact and
// restricts streaks to a single type so the counts stay predictable.
func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ModelPath = filepath.Join(t.TempDir(), "missing.json")
	cfg.StreakTypes = []string{domoutliers.StreakPts20}
	return cfg
}

// seedHistory inserts five quiet games and one 40-point eruption for an
// active veteran and returns the stat lines in order.
func seedHistory(t *testing.T, gdb *gorm.DB, playerID int) []*types.PlayerGameStat {
	t.Helper()
	dbc := dbctx.New(context.Background())

	testutil.SeedPlayer(t, gdb, playerID, "Test Veteran", true)
	err := repos.NewSeasonStateRepo(gdb, testutil.Logger(t)).Save(dbc, &types.PlayerSeasonState{
		PlayerID: playerID, Season: "2023-24", GamesPlayed: 60,
	})
	if err != nil {
		t.Fatalf("seed prior season: %v", err)
	}

	lines := make([]*types.PlayerGameStat, 0, 6)
	for i, pts := range []int{10, 12, 14, 16, 18, 40} {
		testutil.SeedGame(t, gdb, testutil.GameID(i), testutil.Day(i), season)
		lines = append(lines, testutil.SeedStat(t, gdb, testutil.GameID(i), playerID, testutil.StatLine{
			Pts: pts, FGM: 5, FGA: 10,
		}))
	}
	return lines
}

func TestDetectEndToEnd(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	lines := seedHistory(t, gdb, 1)

	// A pre-existing record keeps the streak auto-backfill quiet and sets
	// the badge threshold far above anything this batch can reach.
	err := repos.NewAllTimeRecordRepo(gdb, testutil.Logger(t)).Save(dbc, &types.StreakAllTimeRecord{
		StreakType:      domoutliers.StreakPts20,
		CompetitionType: domoutliers.CompetitionRegular,
		PlayerID:        99,
		Length:          20,
		StartedAt:       testutil.Day(-400),
		GameIDStart:     testutil.GameID(900),
	})
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}

	run, err := New(gdb, testutil.Logger(t), testConfig(t))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	res, err := run.Detect(dbc, lines)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v, want none", res.Errors)
	}
	if res.TotalProcessed != 6 {
		t.Fatalf("processed = %d, want 6", res.TotalProcessed)
	}
	if res.LeagueOutliers != 0 {
		t.Fatalf("league outliers = %d, detector is disabled", res.LeagueOutliers)
	}
	if res.PlayerOutliers != 1 {
		t.Fatalf("player outliers = %d, want the 40-point game", res.PlayerOutliers)
	}
	if res.StreakOutliers != 0 {
		t.Fatalf("streak outliers = %d, a fresh streak is no badge event", res.StreakOutliers)
	}
	if res.TotalOutliers() != 1 {
		t.Fatalf("total = %d", res.TotalOutliers())
	}

	// The eruption starts a points streak even though no badge fires.
	active, err := repos.NewStreakRecordRepo(gdb, testutil.Logger(t)).
		FindActive(dbc, 1, domoutliers.StreakPts20, domoutliers.CompetitionRegular)
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if active == nil || active.Length != 1 {
		t.Fatalf("active streak = %+v, want length 1", active)
	}

	runs, err := repos.NewDetectionRunRepo(gdb, testutil.Logger(t)).Latest(dbc, 1)
	if err != nil {
		t.Fatalf("latest runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, every invocation persists an audit row", len(runs))
	}
	audit := runs[0]
	if audit.Mode != domoutliers.RunModeDetect {
		t.Fatalf("mode = %q", audit.Mode)
	}
	if audit.TotalProcessed != 6 || audit.PlayerOutliers != 1 {
		t.Fatalf("audit = %+v", audit)
	}
	if got := audit.Errors.Data(); len(got) != 0 {
		t.Fatalf("audit errors = %v", got)
	}
}

func TestDetectSkipsInactivePlayerLines(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	lines := seedHistory(t, gdb, 1)

	testutil.SeedPlayer(t, gdb, 2, "Test Retired", false)
	for i := 0; i < 6; i++ {
		lines = append(lines, testutil.SeedStat(t, gdb, testutil.GameID(i), 2, testutil.StatLine{
			Pts: 50, FGM: 5, FGA: 10,
		}))
	}

	run, err := New(gdb, testutil.Logger(t), testConfig(t))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	res, err := run.Detect(dbc, lines)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v", res.Errors)
	}
	if res.PlayerOutliers != 1 {
		t.Fatalf("player outliers = %d, retired lines never score", res.PlayerOutliers)
	}

	state, err := repos.NewSeasonStateRepo(gdb, testutil.Logger(t)).Get(dbc, 2, season)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state != nil {
		t.Fatalf("state = %+v, inactive players carry no baseline", state)
	}
}

func TestBackfillRebuildsAndAudits(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	seedHistory(t, gdb, 1)

	run, err := New(gdb, testutil.Logger(t), testConfig(t))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	res, err := run.Backfill(dbc, "")
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}

	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v", res.Errors)
	}
	if res.PlayerOutliers != 1 {
		t.Fatalf("player outliers = %d, want the 40-point game", res.PlayerOutliers)
	}
	if res.StreakOutliers != 1 {
		t.Fatalf("streak rows = %d, want the single points streak", res.StreakOutliers)
	}

	record, err := repos.NewAllTimeRecordRepo(gdb, testutil.Logger(t)).
		Get(dbc, domoutliers.StreakPts20, domoutliers.CompetitionRegular)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record == nil || record.Length != 1 {
		t.Fatalf("record = %+v, want length 1", record)
	}

	runs, err := repos.NewDetectionRunRepo(gdb, testutil.Logger(t)).Latest(dbc, 1)
	if err != nil {
		t.Fatalf("latest runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Mode != domoutliers.RunModeBackfill {
		t.Fatalf("runs = %+v", runs)
	}
}
