package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/courtpulse/courtpulse-backend/internal/data/db"
	"github.com/courtpulse/courtpulse-backend/internal/data/repos"
	"github.com/courtpulse/courtpulse-backend/internal/outliers/league"
	"github.com/courtpulse/courtpulse-backend/internal/outliers/runner"
	"github.com/courtpulse/courtpulse-backend/internal/outliers/zscore"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
	"github.com/courtpulse/courtpulse-backend/internal/platform/logger"
	"github.com/courtpulse/courtpulse-backend/internal/utils"
)

func main() {
	var (
		mode        string
		dateStr     string
		season      string
		modelPath   string
		skipLeague  bool
		skipPlayer  bool
		skipStreaks bool
		streakTypes string
		migrate     bool
	)
	flag.StringVar(&mode, "mode", "detect", "detect | backfill | badges")
	flag.StringVar(&dateStr, "date", "", "game date to process (YYYY-MM-DD, default latest)")
	flag.StringVar(&season, "season", "", "season to backfill (YYYY-YY, default per detector)")
	flag.StringVar(&modelPath, "model", "", "path to the league model artifact")
	flag.BoolVar(&skipLeague, "skip-league", false, "skip the league detector")
	flag.BoolVar(&skipPlayer, "skip-player", false, "skip the z-score detector")
	flag.BoolVar(&skipStreaks, "skip-streaks", false, "skip the streak detector")
	flag.StringVar(&streakTypes, "streak-types", "", "comma separated streak types (default all)")
	flag.BoolVar(&migrate, "migrate", false, "run schema migration before processing")
	flag.Parse()

	mainLog, err := logger.New(utils.GetEnv("LOG_MODE", "dev", logger.Nop()))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer mainLog.Sync()

	pg, err := db.NewPostgresService(mainLog)
	if err != nil {
		mainLog.Fatal("connect to database", "error", err)
	}
	if migrate {
		if err := db.AutoMigrate(pg.DB()); err != nil {
			mainLog.Fatal("migrate schema", "error", err)
		}
	}

	cfg := runner.DefaultConfig()
	cfg.RunLeague = !skipLeague
	cfg.RunPlayer = !skipPlayer
	cfg.RunStreaks = !skipStreaks
	cfg.LeaguePercentile = utils.GetEnvAsFloat("OUTLIERS_LEAGUE_PERCENTILE", league.DefaultPercentileThreshold, mainLog)
	cfg.PlayerZThreshold = utils.GetEnvAsFloat("OUTLIERS_Z_THRESHOLD", zscore.DefaultZThreshold, mainLog)
	if modelPath != "" {
		cfg.ModelPath = modelPath
	} else {
		cfg.ModelPath = utils.GetEnv("OUTLIERS_MODEL_PATH", league.DefaultModelFile, mainLog)
	}
	if streakTypes != "" {
		cfg.StreakTypes = strings.Split(streakTypes, ",")
	}

	run, err := runner.New(pg.DB(), mainLog, cfg)
	if err != nil {
		mainLog.Fatal("init runner", "error", err)
	}

	dbc := dbctx.New(context.Background())

	switch mode {
	case "detect":
		detect(dbc, pg, run, mainLog, dateStr)
	case "backfill":
		res, err := run.Backfill(dbc, season)
		if err != nil {
			mainLog.Fatal("backfill", "error", err)
		}
		report(res)
	case "badges":
		if err := run.RecomputeStreakBadges(dbc); err != nil {
			mainLog.Fatal("recompute badges", "error", err)
		}
		fmt.Println("historical badges recomputed")
	default:
		mainLog.Fatal("unknown mode", "mode", mode)
	}
}

func detect(dbc dbctx.Context, pg *db.PostgresService, run *runner.Runner, log *logger.Logger, dateStr string) {
	games := repos.NewGameRepo(pg.DB(), log)
	stats := repos.NewPlayerGameStatRepo(pg.DB(), log)

	var date time.Time
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			log.Fatal("parse date", "date", dateStr, "error", err)
		}
		date = parsed
	} else {
		latest, err := games.LatestDate(dbc)
		if err != nil {
			log.Fatal("resolve latest game date", "error", err)
		}
		if latest == nil {
			fmt.Println("no games in the database")
			return
		}
		date = *latest
	}

	lines, err := stats.ListByDate(dbc, date)
	if err != nil {
		log.Fatal("load stat lines", "date", date.Format("2006-01-02"), "error", err)
	}

	res, err := run.Detect(dbc, lines)
	if err != nil {
		log.Fatal("detect", "error", err)
	}
	report(res)
}

func report(res *runner.Results) {
	fmt.Printf("processed=%d league=%d player=%d streaks=%d duration=%.2fs\n",
		res.TotalProcessed, res.LeagueOutliers, res.PlayerOutliers, res.StreakOutliers,
		res.Duration().Seconds())
	for _, msg := range res.Errors {
		fmt.Printf("error: %s\n", msg)
	}
}
