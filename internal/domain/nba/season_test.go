package nba

import (
	"testing"
	"time"
)

func TestCurrentSeasonRollsOverInOctober(t *testing.T) {
	cases := []struct {
		day  time.Time
		want string
	}{
		{time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC), "2023-24"},
		{time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), "2024-25"},
		{time.Date(2025, time.February, 14, 0, 0, 0, 0, time.UTC), "2024-25"},
		{time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC), "2024-25"},
	}
	for _, tc := range cases {
		if got := CurrentSeason(tc.day); got != tc.want {
			t.Fatalf("CurrentSeason(%s) = %q, want %q", tc.day.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestPreviousSeason(t *testing.T) {
	if got := PreviousSeason("2024-25"); got != "2023-24" {
		t.Fatalf("PreviousSeason(2024-25) = %q", got)
	}
	if got := PreviousSeason("2000-01"); got != "1999-00" {
		t.Fatalf("PreviousSeason(2000-01) = %q", got)
	}
}

func TestSeasonStartDate(t *testing.T) {
	want := time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)
	if got := SeasonStartDate("2024-25"); !got.Equal(want) {
		t.Fatalf("SeasonStartDate(2024-25) = %s", got)
	}
}

func TestFeatureValueAndAttempts(t *testing.T) {
	pct := 0.5
	s := &PlayerGameStat{
		Pts: 22, FGA: 10, FGPct: &pct,
		Min: 34 * time.Minute,
	}
	if got := s.FeatureValue(FeatPts); got != 22 {
		t.Fatalf("pts = %v", got)
	}
	if got := s.FeatureValue(FeatFGPct); got != 0.5 {
		t.Fatalf("fg_pct = %v", got)
	}
	if got := s.FeatureValue(FeatFTPct); got != 0 {
		t.Fatalf("nil ft_pct should read 0, got %v", got)
	}
	if got := s.FeatureValue(FeatMin); got != 34 {
		t.Fatalf("min = %v", got)
	}
	attempts, isPct := s.AttemptsFor(FeatFGPct)
	if !isPct || attempts != 10 {
		t.Fatalf("AttemptsFor(fg_pct) = %d, %v", attempts, isPct)
	}
	if _, isPct := s.AttemptsFor(FeatPts); isPct {
		t.Fatal("pts is not a percentage feature")
	}
}
