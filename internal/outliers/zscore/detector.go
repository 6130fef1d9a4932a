// Package zscore scores each stat line against the player's own running
// season baseline, plus 7 and 30 day trend windows against the same
// baseline. Baselines are running sums, so a game is folded in exactly
// once and scoring stays O(1) per line.
package zscore

import (
	"math"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/courtpulse/courtpulse-backend/internal/data/repos"
	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	"github.com/courtpulse/courtpulse-backend/internal/domain/nba"
	domoutliers "github.com/courtpulse/courtpulse-backend/internal/domain/outliers"
	"github.com/courtpulse/courtpulse-backend/internal/outliers"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
	"github.com/courtpulse/courtpulse-backend/internal/platform/logger"
)

const (
	DefaultZThreshold = 2.0

	// Lines under 15 minutes are folded into the baseline but never scored.
	minMinutes = 15.0

	// A player without prior-season history is not scored until 30 days
	// and 20 games after debut. Veterans bypass the grace period.
	rookieGraceDays = 30
	rookieMinGames  = 20

	// MinGamesForBaseline games before a feature baseline is trusted.
	MinGamesForBaseline = 5

	windowDaysWeek  = 7
	windowDaysMonth = 30
	minGamesWeek    = 2
	minGamesMonth   = 5
)

// AnalysisFeatures are the scored features, percentages included.
var AnalysisFeatures = []string{
	nba.FeatPts, nba.FeatAst, nba.FeatReb, nba.FeatStl, nba.FeatBlk, nba.FeatTov,
	nba.FeatFGA, nba.FeatFTA, nba.FeatFG3A,
	nba.FeatFGPct, nba.FeatFG3Pct, nba.FeatFTPct,
}

// featureMinValues keep statistically extreme but irrelevant lines (a 3.8
// sigma night of 2 points) out of the results.
var featureMinValues = map[string]float64{
	nba.FeatPts: 10, nba.FeatAst: 4, nba.FeatReb: 5, nba.FeatStl: 2,
	nba.FeatBlk: 2, nba.FeatTov: 4, nba.FeatFGA: 5, nba.FeatFTA: 4,
	nba.FeatFG3A: 3, nba.FeatFGPct: 0.4, nba.FeatFG3Pct: 0.3, nba.FeatFTPct: 0.5,
}

type Detector struct {
	zThreshold float64

	stats    repos.PlayerGameStatRepo
	games    repos.GameRepo
	players  repos.PlayerRepo
	states   repos.SeasonStateRepo
	outliers repos.PlayerOutlierRepo
	trends   repos.TrendOutlierRepo
	log      *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger, zThreshold float64) *Detector {
	if zThreshold <= 0 {
		zThreshold = DefaultZThreshold
	}
	return &Detector{
		zThreshold: zThreshold,
		stats:      repos.NewPlayerGameStatRepo(db, baseLog),
		games:      repos.NewGameRepo(db, baseLog),
		players:    repos.NewPlayerRepo(db, baseLog),
		states:     repos.NewSeasonStateRepo(db, baseLog),
		outliers:   repos.NewPlayerOutlierRepo(db, baseLog),
		trends:     repos.NewTrendOutlierRepo(db, baseLog),
		log:        baseLog.With("detector", "zscore"),
	}
}

func (d *Detector) Name() string { return "zscore" }

// Detect scores a batch incrementally: for every line the verdict comes
// from the baseline as it stood before the game, then the line is folded
// in. Trend windows run once per player, anchored on their latest game.
func (d *Detector) Detect(dbc dbctx.Context, lines []*types.PlayerGameStat) ([]outliers.Result, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	gamesByID, err := d.resolveGames(dbc, lines)
	if err != nil {
		return nil, err
	}

	byPlayer := groupByPlayer(lines)
	results := []outliers.Result{}

	for _, playerID := range sortedKeys(byPlayer) {
		playerLines := sortChronological(byPlayer[playerID], gamesByID)

		// One state row per (player, season), loaded lazily and saved once.
		statesBySeason := map[string]*types.PlayerSeasonState{}
		var lastGame *types.Game

		for _, line := range playerLines {
			game := gamesByID[line.GameID]
			if game == nil {
				continue
			}
			state, err := d.loadState(dbc, playerID, game.Season, statesBySeason)
			if err != nil {
				return nil, err
			}

			res, err := d.scoreLine(dbc, line, game, state)
			if err != nil {
				return nil, err
			}
			if res != nil {
				results = append(results, *res)
			}

			foldIntoState(state, line, game)
			lastGame = game
		}

		for _, state := range statesBySeason {
			if err := d.states.Save(dbc, state); err != nil {
				return nil, err
			}
		}

		if lastGame != nil {
			if err := d.detectTrends(dbc, playerID, lastGame.Date, lastGame.Season); err != nil {
				return nil, err
			}
		}
	}

	return results, nil
}

// Backfill rebuilds season state, game outliers, and trend rows for one
// season from scratch. An empty season means the latest season on record.
func (d *Detector) Backfill(dbc dbctx.Context, season string) (int, error) {
	if season == "" {
		latest, err := d.games.LatestSeason(dbc)
		if err != nil {
			return 0, err
		}
		if latest == "" {
			return 0, nil
		}
		season = latest
	}
	d.log.Info("zscore backfill starting", "season", season)

	if err := d.states.DeleteBySeason(dbc, season); err != nil {
		return 0, err
	}
	if err := d.outliers.DeleteBySeason(dbc, season); err != nil {
		return 0, err
	}
	if err := d.trends.DeleteSince(dbc, nba.SeasonStartDate(season)); err != nil {
		return 0, err
	}

	players, err := d.players.ListActive(dbc)
	if err != nil {
		return 0, err
	}

	found := 0
	for _, player := range players {
		playerLines, err := d.stats.ListByPlayerSeason(dbc, player.ID, season)
		if err != nil {
			return 0, err
		}
		if len(playerLines) == 0 {
			continue
		}

		state := &types.PlayerSeasonState{PlayerID: player.ID, Season: season}
		var lastDate time.Time

		for _, line := range playerLines {
			game := line.Game
			if game == nil {
				continue
			}
			res, err := d.scoreLine(dbc, line, game, state)
			if err != nil {
				return 0, err
			}
			if res != nil {
				found++
			}
			foldIntoState(state, line, game)
			lastDate = game.Date
		}

		if err := d.states.Save(dbc, state); err != nil {
			return 0, err
		}
		if err := d.detectTrends(dbc, player.ID, lastDate, season); err != nil {
			return 0, err
		}
	}

	d.log.Info("zscore backfill done", "season", season, "outliers", found)
	return found, nil
}

// scoreLine computes feature Z-scores against the state as accumulated so
// far and persists a PlayerOutlier row when at least one feature clears
// both the Z threshold and its relevance floor.
func (d *Detector) scoreLine(dbc dbctx.Context, line *types.PlayerGameStat, game *types.Game, state *types.PlayerSeasonState) (*outliers.Result, error) {
	if line.Minutes() < minMinutes {
		return nil, nil
	}
	if state.GamesPlayed < MinGamesForBaseline {
		return nil, nil
	}

	if state.FirstGameDate != nil {
		daysSinceDebut := int(game.Date.Sub(*state.FirstGameDate).Hours() / 24)
		if daysSinceDebut < rookieGraceDays || state.GamesPlayed < rookieMinGames {
			hasPrior, err := d.states.HasPriorSeason(dbc, state.PlayerID, state.Season)
			if err != nil {
				return nil, err
			}
			if !hasPrior {
				return nil, nil
			}
		}
	}

	acc := state.Stats()
	zScores := map[string]float64{}
	flagged := []types.OutlierFeature{}
	maxZ := 0.0

	for _, feat := range AnalysisFeatures {
		if acc.SampleCount(feat) < MinGamesForBaseline {
			continue
		}
		mean, _ := acc.Mean(feat)
		std := math.Sqrt(math.Max(varianceFloor(feat), acc.Variance(feat)))

		val := line.FeatureValue(feat)
		z := round2((val - mean) / std)
		zScores[feat] = z

		if math.Abs(z) > d.zThreshold && val >= featureMinValues[feat] {
			flagged = append(flagged, types.OutlierFeature{
				Feature:   feat,
				ZScore:    z,
				Direction: direction(z),
				Value:     roundFeature(feat, val),
				Average:   roundFeature(feat, mean),
			})
			if math.Abs(z) > math.Abs(maxZ) {
				maxZ = z
			}
		}
	}

	if len(flagged) == 0 {
		return nil, nil
	}

	row := &types.PlayerOutlier{
		PlayerGameStatID: line.ID,
		ZScores:          datatypes.NewJSONType(zScores),
		MaxZScore:        round2(maxZ),
		OutlierType:      outlierType(maxZ),
		OutlierFeatures:  datatypes.NewJSONType(flagged),
		GamesInSample:    state.GamesPlayed,
	}
	if err := d.outliers.Upsert(dbc, row); err != nil {
		return nil, err
	}

	return &outliers.Result{
		PlayerGameStatID: line.ID,
		IsOutlier:        true,
		Detail: map[string]any{
			"max_z_score":     row.MaxZScore,
			"outlier_type":    row.OutlierType,
			"features":        flagged,
			"games_in_sample": state.GamesPlayed,
		},
	}, nil
}

// foldIntoState adds one played game to the running totals. Percentages
// accumulate only when the player attempted a shot of that kind, so an
// 0-attempt night never drags a shooting baseline toward zero.
func foldIntoState(state *types.PlayerSeasonState, line *types.PlayerGameStat, game *types.Game) {
	if line.Minutes() <= 0 {
		return
	}
	date := game.Date
	if state.FirstGameDate == nil {
		state.FirstGameDate = &date
	}
	state.LastGameDate = &date
	state.GamesPlayed++

	acc := state.Stats().Clone()
	for _, feat := range AnalysisFeatures {
		if attempts, isPct := line.AttemptsFor(feat); isPct && attempts <= 0 {
			continue
		}
		acc.Add(feat, line.FeatureValue(feat))
	}
	state.SetStats(acc)
}

// detectTrends compares the 7 and 30 day window means with the season
// baseline, scaled by the standard error of the window mean.
func (d *Detector) detectTrends(dbc dbctx.Context, playerID int, refDate time.Time, season string) error {
	windows := []struct {
		days     int
		minGames int
		name     string
	}{
		{windowDaysWeek, minGamesWeek, domoutliers.WindowWeek},
		{windowDaysMonth, minGamesMonth, domoutliers.WindowMonth},
	}

	for _, w := range windows {
		if err := d.detectTrendWindow(dbc, playerID, refDate, season, w.days, w.minGames, w.name); err != nil {
			return err
		}
	}
	return nil
}

func (d *Detector) detectTrendWindow(dbc dbctx.Context, playerID int, refDate time.Time, season string, days, minGames int, windowType string) error {
	windowLines, err := d.stats.ListWindow(dbc, playerID, refDate.AddDate(0, 0, -days), refDate)
	if err != nil {
		return err
	}

	played := windowLines[:0]
	for _, line := range windowLines {
		if line.Minutes() > 0 {
			played = append(played, line)
		}
	}
	if len(played) < minGames {
		return nil
	}

	state, err := d.states.Get(dbc, playerID, season)
	if err != nil {
		return err
	}
	if state == nil || state.GamesPlayed < MinGamesForBaseline {
		return nil
	}
	acc := state.Stats()

	zScores := map[string]float64{}
	comparison := map[string]types.TrendComparison{}
	maxZ := 0.0

	for _, feat := range AnalysisFeatures {
		if acc.SampleCount(feat) < MinGamesForBaseline {
			continue
		}
		muB, _ := acc.Mean(feat)
		sigmaB := math.Sqrt(math.Max(varianceFloor(feat), acc.Variance(feat)))

		var sum float64
		var n int
		for _, line := range played {
			if attempts, isPct := line.AttemptsFor(feat); isPct && attempts <= 0 {
				continue
			}
			sum += line.FeatureValue(feat)
			n++
		}
		if n == 0 {
			continue
		}
		muW := sum / float64(n)

		standardError := sigmaB / math.Sqrt(float64(n))
		z := (muW - muB) / standardError
		if math.Abs(z) <= d.zThreshold {
			continue
		}

		zScores[feat] = round2(z)
		diffPct := 0.0
		if muB > 0 {
			diffPct = round1((muW/muB - 1) * 100)
		}
		comparison[feat] = types.TrendComparison{
			CurrentAvg:  roundFeature(feat, muW),
			BaselineAvg: roundFeature(feat, muB),
			DiffPct:     diffPct,
		}
		if math.Abs(z) > math.Abs(maxZ) {
			maxZ = z
		}
	}

	if math.Abs(maxZ) <= d.zThreshold {
		return nil
	}

	return d.trends.Upsert(dbc, &types.PlayerTrendOutlier{
		PlayerID:        playerID,
		WindowType:      windowType,
		ReferenceDate:   refDate,
		ZScores:         datatypes.NewJSONType(zScores),
		MaxZScore:       round2(maxZ),
		OutlierType:     outlierType(maxZ),
		Comparison:      datatypes.NewJSONType(comparison),
		GamesInWindow:   len(played),
		GamesInBaseline: state.GamesPlayed,
	})
}

func (d *Detector) loadState(dbc dbctx.Context, playerID int, season string, cache map[string]*types.PlayerSeasonState) (*types.PlayerSeasonState, error) {
	if state, ok := cache[season]; ok {
		return state, nil
	}
	state, err := d.states.Get(dbc, playerID, season)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &types.PlayerSeasonState{PlayerID: playerID, Season: season}
	}
	cache[season] = state
	return state, nil
}

func (d *Detector) resolveGames(dbc dbctx.Context, lines []*types.PlayerGameStat) (map[string]*types.Game, error) {
	out := map[string]*types.Game{}
	missing := []string{}
	for _, line := range lines {
		if line.Game != nil {
			out[line.GameID] = line.Game
		} else if _, ok := out[line.GameID]; !ok {
			missing = append(missing, line.GameID)
		}
	}
	if len(missing) > 0 {
		loaded, err := d.games.GetByIDs(dbc, missing)
		if err != nil {
			return nil, err
		}
		for id, g := range loaded {
			out[id] = g
		}
	}
	return out, nil
}

func groupByPlayer(lines []*types.PlayerGameStat) map[int][]*types.PlayerGameStat {
	out := map[int][]*types.PlayerGameStat{}
	for _, line := range lines {
		out[line.PlayerID] = append(out[line.PlayerID], line)
	}
	return out
}

func sortedKeys(m map[int][]*types.PlayerGameStat) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortChronological(lines []*types.PlayerGameStat, games map[string]*types.Game) []*types.PlayerGameStat {
	sort.SliceStable(lines, func(i, j int) bool {
		gi, gj := games[lines[i].GameID], games[lines[j].GameID]
		if gi == nil || gj == nil {
			return gi != nil
		}
		if !gi.Date.Equal(gj.Date) {
			return gi.Date.Before(gj.Date)
		}
		return lines[i].ID < lines[j].ID
	})
	return lines
}

// varianceFloor keeps near-constant baselines from turning routine noise
// into huge Z-scores. Percentages live on [0,1] and get a smaller floor.
func varianceFloor(feat string) float64 {
	if nba.IsPercentageFeature(feat) {
		return 0.01
	}
	return 0.2
}

func direction(z float64) string {
	if z > 0 {
		return "high"
	}
	return "low"
}

func outlierType(maxZ float64) string {
	if maxZ > 0 {
		return domoutliers.TypeExplosion
	}
	return domoutliers.TypeCrisis
}

func roundFeature(feat string, v float64) float64 {
	if nba.IsPercentageFeature(feat) {
		return round3(v)
	}
	return round2(v)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
