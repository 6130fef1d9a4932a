package streaks

import (
	"context"
	"testing"

	"github.com/courtpulse/courtpulse-backend/internal/data/repos"
	"github.com/courtpulse/courtpulse-backend/internal/data/repos/testutil"
	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	domoutliers "github.com/courtpulse/courtpulse-backend/internal/domain/outliers"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
)

const season = "2024-25"

func TestCriteriaVerdicts(t *testing.T) {
	pct := func(v float64) *float64 { return &v }

	line := &types.PlayerGameStat{Pts: 25, Reb: 11, Ast: 10, FGA: 0, FTA: 10, FTPct: pct(0.95)}
	if v := criteriaCatalog[domoutliers.StreakPts20](line); v != Qualify {
		t.Fatalf("pts_20 = %v", v)
	}
	if v := criteriaCatalog[domoutliers.StreakPts30](line); v != Break {
		t.Fatalf("pts_30 = %v", v)
	}
	if v := criteriaCatalog[domoutliers.StreakTripleDouble](line); v != Qualify {
		t.Fatalf("triple_double = %v, 25/11/10 qualifies", v)
	}
	if v := criteriaCatalog[domoutliers.StreakFGPct60](line); v != Freeze {
		t.Fatalf("fg_pct_60 with 0 FGA = %v, want Freeze", v)
	}
	if v := criteriaCatalog[domoutliers.StreakFTPct90](line); v != Qualify {
		t.Fatalf("ft_pct_90 = %v", v)
	}

	cold := &types.PlayerGameStat{FGA: 10, FGPct: pct(0.3)}
	if v := criteriaCatalog[domoutliers.StreakFGPct60](cold); v != Break {
		t.Fatalf("fg_pct_60 at 30%% = %v, want Break", v)
	}
}

func TestStreakLifecycle(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	testutil.SeedPlayer(t, gdb, 1, "Test Scorer", true)

	// Qualify, qualify, break, qualify.
	lines := []*types.PlayerGameStat{}
	for i, pts := range []int{25, 25, 15, 30} {
		testutil.SeedGame(t, gdb, testutil.GameID(i), testutil.Day(i), season)
		lines = append(lines, testutil.SeedStat(t, gdb, testutil.GameID(i), 1, testutil.StatLine{Pts: pts}))
	}

	det, err := New(gdb, testutil.Logger(t), []string{domoutliers.StreakPts20})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	results, err := det.Detect(dbc, lines)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	streakRepo := repos.NewStreakRecordRepo(gdb, testutil.Logger(t))

	active, err := streakRepo.FindActive(dbc, 1, domoutliers.StreakPts20, domoutliers.CompetitionRegular)
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if active == nil || active.Length != 1 {
		t.Fatalf("active = %+v, want the fresh length-1 streak from the last game", active)
	}
	if !active.StartedAt.Equal(testutil.Day(3)) {
		t.Fatalf("active started %s", active.StartedAt)
	}

	all, err := streakRepo.ListLongest(dbc, domoutliers.StreakPts20, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("streaks = %d, want ended + active", len(all))
	}
	ended := all[0]
	if ended.Length != 2 || ended.IsActive {
		t.Fatalf("ended streak = %+v", ended)
	}
	if ended.EndedAt == nil || !ended.EndedAt.Equal(testutil.Day(2)) {
		t.Fatalf("ended_at = %v, want the breaking game's date", ended.EndedAt)
	}

	record, err := repos.NewAllTimeRecordRepo(gdb, testutil.Logger(t)).Get(dbc, domoutliers.StreakPts20, domoutliers.CompetitionRegular)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if record == nil || record.Length != 2 {
		t.Fatalf("record = %+v, want length 2", record)
	}

	// With the record at 2, the threshold floor badges the length-2 run.
	if len(results) != 1 {
		t.Fatalf("results = %d, want one historical badge event", len(results))
	}
}

func TestStreakStartIsIdempotent(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	testutil.SeedPlayer(t, gdb, 2, "Test Repeat", true)
	testutil.SeedGame(t, gdb, testutil.GameID(0), testutil.Day(0), season)
	line := testutil.SeedStat(t, gdb, testutil.GameID(0), 2, testutil.StatLine{Pts: 30})

	det, err := New(gdb, testutil.Logger(t), []string{domoutliers.StreakPts20})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	for i := 0; i < 2; i++ {
		// End the streak first so the second pass hits the start path again.
		if i == 1 {
			streakRepo := repos.NewStreakRecordRepo(gdb, testutil.Logger(t))
			active, _ := streakRepo.FindActive(dbc, 2, domoutliers.StreakPts20, domoutliers.CompetitionRegular)
			if active != nil {
				active.IsActive = false
				if err := streakRepo.Update(dbc, active); err != nil {
					t.Fatalf("close streak: %v", err)
				}
			}
		}
		if _, err := det.Detect(dbc, []*types.PlayerGameStat{line}); err != nil {
			t.Fatalf("detect pass %d: %v", i, err)
		}
	}

	count, err := repos.NewStreakRecordRepo(gdb, testutil.Logger(t)).Count(dbc)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, reprocessing the same game must not spawn a duplicate", count)
	}
}

func TestFreezeThenContinue(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	testutil.SeedPlayer(t, gdb, 3, "Test Shooter", true)

	// Perfect night, a night without free throws, another strong night,
	// then a cold one. The freeze must neither break nor extend.
	lines := []*types.PlayerGameStat{}
	fts := []struct{ ftm, fta int }{{10, 10}, {0, 0}, {9, 10}, {5, 10}}
	for i, ft := range fts {
		testutil.SeedGame(t, gdb, testutil.GameID(i), testutil.Day(i), season)
		lines = append(lines, testutil.SeedStat(t, gdb, testutil.GameID(i), 3, testutil.StatLine{
			FTM: ft.ftm, FTA: ft.fta,
		}))
	}

	det, err := New(gdb, testutil.Logger(t), []string{domoutliers.StreakFTPct90})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := det.Detect(dbc, lines); err != nil {
		t.Fatalf("detect: %v", err)
	}

	all, err := repos.NewStreakRecordRepo(gdb, testutil.Logger(t)).ListLongest(dbc, domoutliers.StreakFTPct90, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("streaks = %d, want one", len(all))
	}
	s := all[0]
	if s.Length != 2 {
		t.Fatalf("length = %d, the freeze game keeps the streak alive across it", s.Length)
	}
	if s.IsActive {
		t.Fatal("the 50% night must break the streak")
	}
}

func TestSubMinuteGameIsInvisible(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	testutil.SeedPlayer(t, gdb, 4, "Test Cameo", true)

	lines := []*types.PlayerGameStat{}
	statLines := []testutil.StatLine{
		{Pts: 25},
		{Pts: 0, Minutes: 0.5},
		{Pts: 25},
	}
	for i, sl := range statLines {
		testutil.SeedGame(t, gdb, testutil.GameID(i), testutil.Day(i), season)
		lines = append(lines, testutil.SeedStat(t, gdb, testutil.GameID(i), 4, sl))
	}

	det, err := New(gdb, testutil.Logger(t), []string{domoutliers.StreakPts20})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := det.Detect(dbc, lines); err != nil {
		t.Fatalf("detect: %v", err)
	}

	active, err := repos.NewStreakRecordRepo(gdb, testutil.Logger(t)).FindActive(dbc, 4, domoutliers.StreakPts20, domoutliers.CompetitionRegular)
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if active == nil || active.Length != 2 {
		t.Fatalf("active = %+v, a sub-minute zero must not break the run", active)
	}
}

func TestMultiCompetitionGame(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	testutil.SeedPlayer(t, gdb, 5, "Test Cup Player", true)

	// An in-season tournament game that is also a regular season game
	// advances both contexts.
	testutil.SeedGameFlags(t, gdb, testutil.GameID(0), testutil.Day(0), season, true, false, true)
	line := testutil.SeedStat(t, gdb, testutil.GameID(0), 5, testutil.StatLine{Pts: 30})

	det, err := New(gdb, testutil.Logger(t), []string{domoutliers.StreakPts20})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := det.Detect(dbc, []*types.PlayerGameStat{line}); err != nil {
		t.Fatalf("detect: %v", err)
	}

	streakRepo := repos.NewStreakRecordRepo(gdb, testutil.Logger(t))
	for _, comp := range []string{domoutliers.CompetitionRegular, domoutliers.CompetitionCup} {
		active, err := streakRepo.FindActive(dbc, 5, domoutliers.StreakPts20, comp)
		if err != nil {
			t.Fatalf("find active %s: %v", comp, err)
		}
		if active == nil {
			t.Fatalf("no active streak in %s", comp)
		}
	}
	if active, _ := streakRepo.FindActive(dbc, 5, domoutliers.StreakPts20, domoutliers.CompetitionPlayoffs); active != nil {
		t.Fatal("playoffs context must not be touched")
	}
}

func TestBackfillRebuildsHistory(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	testutil.SeedPlayer(t, gdb, 1, "Test Active", true)
	testutil.SeedPlayer(t, gdb, 2, "Test Retired", false)

	// Both players: two makes, a break, two more makes to end history.
	pts := []int{25, 25, 10, 25, 25}
	for i, p := range pts {
		testutil.SeedGame(t, gdb, testutil.GameID(i), testutil.Day(i), season)
		testutil.SeedStat(t, gdb, testutil.GameID(i), 1, testutil.StatLine{Pts: p})
		testutil.SeedStat(t, gdb, testutil.GameID(i), 2, testutil.StatLine{Pts: p})
	}

	det, err := New(gdb, testutil.Logger(t), []string{domoutliers.StreakPts20})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := det.Backfill(dbc, ""); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	streakRepo := repos.NewStreakRecordRepo(gdb, testutil.Logger(t))

	// The active player's trailing run stays open.
	active, err := streakRepo.FindActive(dbc, 1, domoutliers.StreakPts20, domoutliers.CompetitionRegular)
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if active == nil || active.Length != 2 {
		t.Fatalf("active = %+v, want open length-2 streak", active)
	}
	if active.EndedAt != nil {
		t.Fatalf("open streak carries ended_at %v", active.EndedAt)
	}

	// The retired player's identical run is closed.
	retired, err := streakRepo.FindActive(dbc, 2, domoutliers.StreakPts20, domoutliers.CompetitionRegular)
	if err != nil {
		t.Fatalf("find retired active: %v", err)
	}
	if retired != nil {
		t.Fatalf("inactive player must have no open streaks, got %+v", retired)
	}

	count, err := streakRepo.Count(dbc)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 4 {
		t.Fatalf("count = %d, want 2 streaks per player", count)
	}

	record, err := repos.NewAllTimeRecordRepo(gdb, testutil.Logger(t)).Get(dbc, domoutliers.StreakPts20, domoutliers.CompetitionRegular)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if record == nil || record.Length != 2 {
		t.Fatalf("record = %+v", record)
	}

	// Record 2 means threshold 2: every length-2 streak wears the badge.
	all, err := streakRepo.ListLongest(dbc, domoutliers.StreakPts20, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, s := range all {
		if !s.IsHistoricalOutlier {
			t.Fatalf("streak %+v missing the historical badge", s)
		}
	}
}

func TestBackfillStripsStaleBadges(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	testutil.SeedPlayer(t, gdb, 1, "Test Grinder", true)

	// A 10-game run followed by a break and a 2-game run. Record 10 puts
	// the badge threshold at 7; the short run must not be badged.
	pts := []int{25, 25, 25, 25, 25, 25, 25, 25, 25, 25, 5, 25, 25}
	for i, p := range pts {
		testutil.SeedGame(t, gdb, testutil.GameID(i), testutil.Day(i), season)
		testutil.SeedStat(t, gdb, testutil.GameID(i), 1, testutil.StatLine{Pts: p})
	}

	det, err := New(gdb, testutil.Logger(t), []string{domoutliers.StreakPts20})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := det.Backfill(dbc, ""); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	all, err := repos.NewStreakRecordRepo(gdb, testutil.Logger(t)).ListLongest(dbc, domoutliers.StreakPts20, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("streaks = %d", len(all))
	}
	if !all[0].IsHistoricalOutlier || all[0].Length != 10 {
		t.Fatalf("long streak = %+v, want badged length 10", all[0])
	}
	if all[1].IsHistoricalOutlier {
		t.Fatalf("short streak = %+v, length 2 is under threshold 7", all[1])
	}
}

func TestInvalidStreakTypeRejected(t *testing.T) {
	gdb := testutil.DB(t)
	if _, err := New(gdb, testutil.Logger(t), []string{"pts_1000"}); err == nil {
		t.Fatal("expected an error for an unknown streak type")
	}
}
