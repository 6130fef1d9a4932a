// Package runner orchestrates the three detectors over a batch of stat
// lines: league reconstruction first, then per-player Z-scores, then
// streaks. A detector failure is absorbed so the others still run.
package runner

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/courtpulse/courtpulse-backend/internal/data/repos"
	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	domoutliers "github.com/courtpulse/courtpulse-backend/internal/domain/outliers"
	"github.com/courtpulse/courtpulse-backend/internal/outliers"
	"github.com/courtpulse/courtpulse-backend/internal/outliers/league"
	"github.com/courtpulse/courtpulse-backend/internal/outliers/streaks"
	"github.com/courtpulse/courtpulse-backend/internal/outliers/zscore"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/courtpulse/courtpulse-backend/internal/pkg/errors"
	"github.com/courtpulse/courtpulse-backend/internal/platform/logger"
	"github.com/courtpulse/courtpulse-backend/internal/platform/metrics"
)

// Config selects and tunes the detectors. The zero value is not useful;
// start from DefaultConfig.
type Config struct {
	RunLeague  bool
	RunPlayer  bool
	RunStreaks bool

	ModelPath        string
	LeaguePercentile float64
	PlayerZThreshold float64
	// StreakTypes nil means every supported type.
	StreakTypes []string
}

func DefaultConfig() Config {
	return Config{
		RunLeague:        true,
		RunPlayer:        true,
		RunStreaks:       true,
		ModelPath:        league.DefaultModelFile,
		LeaguePercentile: league.DefaultPercentileThreshold,
		PlayerZThreshold: zscore.DefaultZThreshold,
	}
}

// Results aggregates one runner invocation.
type Results struct {
	LeagueResults []outliers.Result
	PlayerResults []outliers.Result
	StreakResults []outliers.Result

	TotalProcessed int
	LeagueOutliers int
	PlayerOutliers int
	StreakOutliers int

	StartedAt  time.Time
	FinishedAt time.Time
	Errors     []string
}

func (r *Results) TotalOutliers() int {
	return r.LeagueOutliers + r.PlayerOutliers + r.StreakOutliers
}

func (r *Results) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type Runner struct {
	cfg Config

	leagueDet *league.Detector
	playerDet *zscore.Detector
	streakDet *streaks.Detector

	players repos.PlayerRepo
	states  repos.SeasonStateRepo
	records repos.AllTimeRecordRepo
	runs    repos.DetectionRunRepo
	log     *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger, cfg Config) (*Runner, error) {
	r := &Runner{
		cfg:     cfg,
		players: repos.NewPlayerRepo(db, baseLog),
		states:  repos.NewSeasonStateRepo(db, baseLog),
		records: repos.NewAllTimeRecordRepo(db, baseLog),
		runs:    repos.NewDetectionRunRepo(db, baseLog),
		log:     baseLog.With("component", "OutlierRunner"),
	}

	if cfg.RunLeague {
		det, err := league.New(db, baseLog, cfg.ModelPath, cfg.LeaguePercentile)
		if err != nil {
			return nil, err
		}
		r.leagueDet = det
	}
	if cfg.RunPlayer {
		r.playerDet = zscore.New(db, baseLog, cfg.PlayerZThreshold)
	}
	if cfg.RunStreaks {
		det, err := streaks.New(db, baseLog, cfg.StreakTypes)
		if err != nil {
			return nil, err
		}
		r.streakDet = det
	}
	return r, nil
}

// Detect runs incremental detection over a batch. Empty state tables
// trigger a one-time auto-backfill so incremental runs never score
// against a void baseline.
func (r *Runner) Detect(dbc dbctx.Context, lines []*types.PlayerGameStat) (*Results, error) {
	res := &Results{
		StartedAt:      time.Now().UTC(),
		TotalProcessed: len(lines),
	}
	defer r.finish(dbc, res, domoutliers.RunModeDetect, "")

	if r.streakDet != nil {
		count, err := r.records.Count(dbc)
		if err != nil {
			return res, err
		}
		if count == 0 {
			r.log.Info("all-time records empty, running streak auto-backfill")
			if _, err := r.streakDet.Backfill(dbc, ""); err != nil {
				r.absorb(res, "streaks", fmt.Errorf("auto-backfill: %w", err))
			}
		}
	}
	if r.playerDet != nil {
		count, err := r.states.Count(dbc)
		if err != nil {
			return res, err
		}
		if count == 0 {
			r.log.Info("season states empty, running zscore auto-backfill")
			if _, err := r.playerDet.Backfill(dbc, ""); err != nil {
				r.absorb(res, "zscore", fmt.Errorf("auto-backfill: %w", err))
			}
		}
	}

	if len(lines) == 0 {
		return res, nil
	}

	activeIDs, err := r.players.ActiveIDs(dbc)
	if err != nil {
		return res, err
	}
	activeLines := make([]*types.PlayerGameStat, 0, len(lines))
	for _, line := range lines {
		if _, ok := activeIDs[line.PlayerID]; ok {
			activeLines = append(activeLines, line)
		}
	}
	if skipped := len(lines) - len(activeLines); skipped > 0 {
		r.log.Info("skipping inactive player lines", "skipped", skipped)
	}
	metrics.RecordsProcessed.Add(float64(len(activeLines)))
	if len(activeLines) == 0 {
		return res, nil
	}

	if r.leagueDet != nil {
		out, err := r.runDetector("league", func() ([]outliers.Result, error) {
			return r.leagueDet.Detect(dbc, activeLines)
		})
		if err != nil {
			r.absorb(res, "league", err)
		} else {
			res.LeagueResults = out
			res.LeagueOutliers = countOutliers(out)
			metrics.OutliersDetected.WithLabelValues("league").Add(float64(res.LeagueOutliers))
		}
	}

	if r.playerDet != nil {
		out, err := r.runDetector("zscore", func() ([]outliers.Result, error) {
			return r.playerDet.Detect(dbc, activeLines)
		})
		if err != nil {
			r.absorb(res, "zscore", err)
		} else {
			res.PlayerResults = out
			res.PlayerOutliers = countOutliers(out)
			metrics.OutliersDetected.WithLabelValues("zscore").Add(float64(res.PlayerOutliers))
		}
	}

	if r.streakDet != nil {
		out, err := r.runDetector("streaks", func() ([]outliers.Result, error) {
			return r.streakDet.Detect(dbc, activeLines)
		})
		if err != nil {
			r.absorb(res, "streaks", err)
		} else {
			res.StreakResults = out
			res.StreakOutliers = len(out)
			metrics.OutliersDetected.WithLabelValues("streaks").Add(float64(res.StreakOutliers))
		}
	}

	return res, nil
}

// Backfill reprocesses history for every enabled detector. season == ""
// means each detector's full default scope.
func (r *Runner) Backfill(dbc dbctx.Context, season string) (*Results, error) {
	res := &Results{StartedAt: time.Now().UTC()}
	defer r.finish(dbc, res, domoutliers.RunModeBackfill, season)

	r.log.Info("backfill starting", "season", season)

	if r.leagueDet != nil {
		n, err := r.leagueDet.Backfill(dbc, season)
		if err != nil {
			r.absorb(res, "league", err)
		} else {
			res.LeagueOutliers = n
		}
	}
	if r.playerDet != nil {
		n, err := r.playerDet.Backfill(dbc, season)
		if err != nil {
			r.absorb(res, "zscore", err)
		} else {
			res.PlayerOutliers = n
		}
	}
	if r.streakDet != nil {
		n, err := r.streakDet.Backfill(dbc, season)
		if err != nil {
			r.absorb(res, "streaks", err)
		} else {
			res.StreakOutliers = n
		}
	}

	return res, nil
}

// RecomputeStreakBadges re-derives historical badges from the current
// all-time records.
func (r *Runner) RecomputeStreakBadges(dbc dbctx.Context) error {
	if r.streakDet == nil {
		return fmt.Errorf("streak detector disabled")
	}
	return r.streakDet.RecomputeBadges(dbc)
}

// runDetector retries once on transient failures like deadlocks before the
// error is surfaced.
func (r *Runner) runDetector(name string, fn func() ([]outliers.Result, error)) ([]outliers.Result, error) {
	out, err := fn()
	if err != nil && pkgerrors.IsRetryable(err) {
		r.log.Warn("retrying detector after transient failure", "detector", name, "error", err)
		out, err = fn()
	}
	return out, err
}

func (r *Runner) absorb(res *Results, detector string, err error) {
	msg := fmt.Sprintf("%s: %v", detector, err)
	r.log.Error("detector failed", "detector", detector, "error", err)
	metrics.DetectorErrors.WithLabelValues(detector).Inc()
	res.Errors = append(res.Errors, msg)
}

func (r *Runner) finish(dbc dbctx.Context, res *Results, mode, season string) {
	res.FinishedAt = time.Now().UTC()
	duration := res.Duration().Seconds()
	metrics.RunDuration.WithLabelValues(mode).Observe(duration)

	run := &types.DetectionRun{
		Mode:            mode,
		Season:          season,
		TotalProcessed:  res.TotalProcessed,
		LeagueOutliers:  res.LeagueOutliers,
		PlayerOutliers:  res.PlayerOutliers,
		StreakOutliers:  res.StreakOutliers,
		DurationSeconds: duration,
		Errors:          datatypes.NewJSONType(res.Errors),
		StartedAt:       res.StartedAt,
		FinishedAt:      res.FinishedAt,
	}
	if err := r.runs.Create(dbc, run); err != nil {
		r.log.Error("persisting detection run failed", "error", err)
	}

	r.log.Info("run finished",
		"mode", mode,
		"season", season,
		"processed", res.TotalProcessed,
		"outliers", res.TotalOutliers(),
		"errors", len(res.Errors),
		"duration_s", fmt.Sprintf("%.2f", duration))
}

func countOutliers(results []outliers.Result) int {
	n := 0
	for _, res := range results {
		if res.IsOutlier {
			n++
		}
	}
	return n
}
