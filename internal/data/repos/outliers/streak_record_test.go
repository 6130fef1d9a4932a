package outliers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/courtpulse/courtpulse-backend/internal/data/repos/testutil"
	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	domoutliers "github.com/courtpulse/courtpulse-backend/internal/domain/outliers"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/courtpulse/courtpulse-backend/internal/pkg/errors"
)

func day(offset int) time.Time {
	return time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func streakFixture(playerID int, streakType string, length int, active bool, start time.Time) *types.StreakRecord {
	return &types.StreakRecord{
		PlayerID:        playerID,
		StreakType:      streakType,
		CompetitionType: domoutliers.CompetitionRegular,
		Length:          length,
		IsActive:        active,
		StartedAt:       start,
		FirstGameID:     "0022400001",
	}
}

func TestFindActiveSingle(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewStreakRecordRepo(gdb, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	if err := repo.Create(dbc, streakFixture(1, domoutliers.StreakPts20, 3, true, day(0))); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(dbc, streakFixture(1, domoutliers.StreakPts20, 5, false, day(-20))); err != nil {
		t.Fatalf("create ended: %v", err)
	}

	got, err := repo.FindActive(dbc, 1, domoutliers.StreakPts20, domoutliers.CompetitionRegular)
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if got == nil || got.Length != 3 {
		t.Fatalf("got %+v, want the active length-3 streak", got)
	}

	none, err := repo.FindActive(dbc, 1, domoutliers.StreakPts30, domoutliers.CompetitionRegular)
	if err != nil {
		t.Fatalf("find active (none): %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil for a key with no active streak, got %+v", none)
	}
}

func TestFindActiveConflict(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewStreakRecordRepo(gdb, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	for i := 0; i < 2; i++ {
		if err := repo.Create(dbc, streakFixture(7, domoutliers.StreakReb10, 2, true, day(i))); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	_, err := repo.FindActive(dbc, 7, domoutliers.StreakReb10, domoutliers.CompetitionRegular)
	if !errors.Is(err, pkgerrors.ErrStreakConflict) {
		t.Fatalf("err = %v, want ErrStreakConflict", err)
	}
}

func TestFindByStart(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewStreakRecordRepo(gdb, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	if err := repo.Create(dbc, streakFixture(3, domoutliers.StreakAst10, 1, true, day(5))); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.FindByStart(dbc, 3, domoutliers.StreakAst10, domoutliers.CompetitionRegular, day(5))
	if err != nil {
		t.Fatalf("find by start: %v", err)
	}
	if got == nil {
		t.Fatal("expected a match on start date")
	}

	miss, err := repo.FindByStart(dbc, 3, domoutliers.StreakAst10, domoutliers.CompetitionRegular, day(6))
	if err != nil {
		t.Fatalf("find by start (miss): %v", err)
	}
	if miss != nil {
		t.Fatalf("expected nil for a different start date, got %+v", miss)
	}
}

func TestApplyHistoricalBadgesBothDirections(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewStreakRecordRepo(gdb, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	long := streakFixture(1, domoutliers.StreakPts30, 8, false, day(0))
	short := streakFixture(2, domoutliers.StreakPts30, 3, false, day(1))
	short.IsHistoricalOutlier = true // stale badge from an older, lower record
	if err := repo.Create(dbc, long); err != nil {
		t.Fatalf("create long: %v", err)
	}
	if err := repo.Create(dbc, short); err != nil {
		t.Fatalf("create short: %v", err)
	}

	if err := repo.ApplyHistoricalBadges(dbc, domoutliers.StreakPts30, domoutliers.CompetitionRegular, 7); err != nil {
		t.Fatalf("apply badges: %v", err)
	}

	rows, err := repo.ListLongest(dbc, domoutliers.StreakPts30, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	for _, row := range rows {
		wantBadge := row.Length >= 7
		if row.IsHistoricalOutlier != wantBadge {
			t.Fatalf("length %d badge = %v, want %v", row.Length, row.IsHistoricalOutlier, wantBadge)
		}
	}
}

func TestSummaryAggregates(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewStreakRecordRepo(gdb, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	a := streakFixture(1, domoutliers.StreakPts20, 4, false, day(0))
	a.IsHistoricalOutlier = true
	b := streakFixture(2, domoutliers.StreakPts20, 2, false, day(1))
	if err := repo.CreateInBatches(dbc, []*types.StreakRecord{a, b}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	summary, err := repo.Summary(dbc, domoutliers.CompetitionRegular)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	s, ok := summary[domoutliers.StreakPts20]
	if !ok {
		t.Fatal("missing pts_20 summary")
	}
	if s.TotalStreaks != 2 || s.MaxLength != 4 || s.NotableCount != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if s.AvgLength != 3 {
		t.Fatalf("avg = %v, want 3", s.AvgLength)
	}
}

func TestDeleteStartedBetween(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewStreakRecordRepo(gdb, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	inside := streakFixture(1, domoutliers.StreakPts20, 2, false, day(10))
	outside := streakFixture(1, domoutliers.StreakPts30, 2, false, day(40))
	if err := repo.CreateInBatches(dbc, []*types.StreakRecord{inside, outside}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := repo.DeleteStartedBetween(dbc, day(0), day(30)); err != nil {
		t.Fatalf("delete: %v", err)
	}

	count, err := repo.Count(dbc)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1 surviving streak", count)
	}
}
