package nba

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Seasons use the upstream "YYYY-YY" format ("2024-25"). A season rolls
// over in October.

func CurrentSeason(today time.Time) string {
	year := today.Year()
	if today.Month() < time.October {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

func PreviousSeason(season string) string {
	year := SeasonStartYear(season)
	return fmt.Sprintf("%d-%02d", year-1, year%100)
}

// SeasonStartYear parses the leading year of "YYYY-YY"; zero on bad input.
func SeasonStartYear(season string) int {
	parts := strings.SplitN(season, "-", 2)
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	return year
}

// SeasonStartDate is October 1st of the season's first calendar year, used
// to scope trend-outlier cleanup during backfill.
func SeasonStartDate(season string) time.Time {
	return time.Date(SeasonStartYear(season), time.October, 1, 0, 0, 0, 0, time.UTC)
}
