// Package streaks tracks runs of consecutive qualifying games per player,
// streak type, and competition context, flags the ones approaching the
// all-time record, and maintains that record.
package streaks

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/courtpulse/courtpulse-backend/internal/data/repos"
	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	domoutliers "github.com/courtpulse/courtpulse-backend/internal/domain/outliers"
	"github.com/courtpulse/courtpulse-backend/internal/outliers"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/courtpulse/courtpulse-backend/internal/pkg/errors"
	"github.com/courtpulse/courtpulse-backend/internal/platform/logger"
)

// Games under one minute are invisible to streaks: they neither extend
// nor break anything. A qualifying line always extends, even under the
// usual 15 minute relevance bar; 20 points in 10 minutes still counts.
const minMinutes = 1.0

type Detector struct {
	streakTypes []string

	stats   repos.PlayerGameStatRepo
	games   repos.GameRepo
	players repos.PlayerRepo
	streaks repos.StreakRecordRepo
	records repos.AllTimeRecordRepo
	log     *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger, streakTypes []string) (*Detector, error) {
	resolved, err := resolveTypes(streakTypes)
	if err != nil {
		return nil, err
	}
	return &Detector{
		streakTypes: resolved,
		stats:       repos.NewPlayerGameStatRepo(db, baseLog),
		games:       repos.NewGameRepo(db, baseLog),
		players:     repos.NewPlayerRepo(db, baseLog),
		streaks:     repos.NewStreakRecordRepo(db, baseLog),
		records:     repos.NewAllTimeRecordRepo(db, baseLog),
		log:         baseLog.With("detector", "streaks"),
	}, nil
}

func (d *Detector) Name() string { return "streaks" }

// Detect advances the streak state machine with a batch of stat lines.
// Results carry only the streaks that newly earned the historical badge.
func (d *Detector) Detect(dbc dbctx.Context, lines []*types.PlayerGameStat) ([]outliers.Result, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	activeIDs, err := d.players.ActiveIDs(dbc)
	if err != nil {
		return nil, err
	}

	gamesByID := map[string]*types.Game{}
	missing := []string{}
	byPlayer := map[int][]*types.PlayerGameStat{}
	for _, line := range lines {
		if _, ok := activeIDs[line.PlayerID]; !ok {
			continue
		}
		byPlayer[line.PlayerID] = append(byPlayer[line.PlayerID], line)
		if line.Game != nil {
			gamesByID[line.GameID] = line.Game
		} else if _, ok := gamesByID[line.GameID]; !ok {
			missing = append(missing, line.GameID)
		}
	}
	if len(missing) > 0 {
		loaded, err := d.games.GetByIDs(dbc, missing)
		if err != nil {
			return nil, err
		}
		for id, g := range loaded {
			gamesByID[id] = g
		}
	}

	playerIDs := make([]int, 0, len(byPlayer))
	for id := range byPlayer {
		playerIDs = append(playerIDs, id)
	}
	sort.Ints(playerIDs)

	results := []outliers.Result{}
	for _, playerID := range playerIDs {
		playerLines := byPlayer[playerID]
		sort.SliceStable(playerLines, func(i, j int) bool {
			gi, gj := gamesByID[playerLines[i].GameID], gamesByID[playerLines[j].GameID]
			if gi == nil || gj == nil {
				return gi != nil
			}
			if !gi.Date.Equal(gj.Date) {
				return gi.Date.Before(gj.Date)
			}
			return playerLines[i].ID < playerLines[j].ID
		})

		for _, line := range playerLines {
			game := gamesByID[line.GameID]
			if game == nil {
				continue
			}
			lineResults, err := d.processGame(dbc, line, game)
			if err != nil {
				return nil, err
			}
			results = append(results, lineResults...)
		}
	}

	return results, nil
}

func (d *Detector) processGame(dbc dbctx.Context, line *types.PlayerGameStat, game *types.Game) ([]outliers.Result, error) {
	if line.Minutes() < minMinutes {
		return nil, nil
	}
	compTypes := competitionContexts(game)
	if len(compTypes) == 0 {
		return nil, nil
	}

	results := []outliers.Result{}
	for _, stype := range d.streakTypes {
		switch criteriaCatalog[stype](line) {
		case Freeze:
			continue
		case Qualify:
			for _, ctype := range compTypes {
				res, err := d.extendOrStart(dbc, line, game, stype, ctype)
				if err != nil {
					return nil, err
				}
				if res != nil {
					results = append(results, *res)
				}
			}
		case Break:
			for _, ctype := range compTypes {
				if err := d.endStreak(dbc, line.PlayerID, stype, ctype, game); err != nil {
					return nil, err
				}
			}
		}
	}
	return results, nil
}

func (d *Detector) extendOrStart(dbc dbctx.Context, line *types.PlayerGameStat, game *types.Game, streakType, competitionType string) (*outliers.Result, error) {
	active, err := d.streaks.FindActive(dbc, line.PlayerID, streakType, competitionType)
	if err != nil {
		return nil, err
	}

	if active != nil {
		date := game.Date
		gameID := game.ID
		active.Length++
		active.EndedAt = &date
		active.LastGameID = &gameID
		if err := d.streaks.Update(dbc, active); err != nil {
			return nil, err
		}
		if err := d.challengeRecord(dbc, active); err != nil {
			return nil, err
		}
		return d.verifyHistorical(dbc, active, line)
	}

	// Reprocessing the same game day must not spawn a second streak.
	existing, err := d.streaks.FindByStart(dbc, line.PlayerID, streakType, competitionType, game.Date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	err = d.streaks.Create(dbc, &types.StreakRecord{
		PlayerID:        line.PlayerID,
		StreakType:      streakType,
		CompetitionType: competitionType,
		Length:          1,
		IsActive:        true,
		StartedAt:       game.Date,
		FirstGameID:     game.ID,
	})
	if pkgerrors.IsConflict(err) {
		// A concurrent run won the insert race on the same start date.
		return nil, nil
	}
	return nil, err
}

// verifyHistorical badges a streak once it reaches 70% of the all-time
// record for its key. The badge is a ratchet during incremental runs;
// backfill recomputes it globally afterwards.
func (d *Detector) verifyHistorical(dbc dbctx.Context, streak *types.StreakRecord, line *types.PlayerGameStat) (*outliers.Result, error) {
	if streak.IsHistoricalOutlier {
		return nil, nil
	}

	record, err := d.records.Get(dbc, streak.StreakType, streak.CompetitionType)
	if err != nil {
		return nil, err
	}
	allTimeLength := 2
	if record != nil {
		allTimeLength = record.Length
	}
	threshold := domoutliers.HistoricalThreshold(allTimeLength)

	if streak.Length < threshold {
		return nil, nil
	}

	streak.IsHistoricalOutlier = true
	if err := d.streaks.Update(dbc, streak); err != nil {
		return nil, err
	}

	d.log.Info("streak reached historical status",
		"player_id", streak.PlayerID,
		"streak_type", streak.StreakType,
		"competition", streak.CompetitionType,
		"length", streak.Length,
		"threshold", threshold)

	return &outliers.Result{
		PlayerGameStatID: line.ID,
		IsOutlier:        true,
		Detail: map[string]any{
			"streak_type":      streak.StreakType,
			"competition_type": streak.CompetitionType,
			"length":           streak.Length,
			"threshold":        threshold,
			"started_at":       streak.StartedAt.Format("2006-01-02"),
			"player_id":        streak.PlayerID,
			"streak_id":        streak.ID,
		},
	}, nil
}

func (d *Detector) challengeRecord(dbc dbctx.Context, streak *types.StreakRecord) error {
	record, err := d.records.Get(dbc, streak.StreakType, streak.CompetitionType)
	if err != nil {
		return err
	}
	if record != nil && streak.Length <= record.Length {
		return nil
	}

	if record == nil {
		d.log.Info("first all-time record",
			"streak_type", streak.StreakType,
			"competition", streak.CompetitionType,
			"length", streak.Length)
	}
	return d.records.Save(dbc, &types.StreakAllTimeRecord{
		StreakType:      streak.StreakType,
		CompetitionType: streak.CompetitionType,
		PlayerID:        streak.PlayerID,
		Length:          streak.Length,
		StartedAt:       streak.StartedAt,
		EndedAt:         streak.EndedAt,
		GameIDStart:     streak.FirstGameID,
		GameIDEnd:       streak.LastGameID,
	})
}

func (d *Detector) endStreak(dbc dbctx.Context, playerID int, streakType, competitionType string, game *types.Game) error {
	active, err := d.streaks.FindActive(dbc, playerID, streakType, competitionType)
	if err != nil {
		return err
	}
	if active == nil {
		return nil
	}
	date := game.Date
	gameID := game.ID
	active.IsActive = false
	active.EndedAt = &date
	active.LastGameID = &gameID
	return d.streaks.Update(dbc, active)
}

// tracker is the in-memory backfill state for one (type, competition) key.
type tracker struct {
	length  int
	start   time.Time
	startID string
	last    time.Time
	lastID  string
}

// Backfill rebuilds the streak tables from raw history. With an empty
// season everything is wiped and rebuilt; with a season only streaks that
// started inside it are replaced. Historical badges are recomputed
// globally at the end against the final records.
func (d *Detector) Backfill(dbc dbctx.Context, season string) (int, error) {
	d.log.Info("streak backfill starting", "season", season)

	if season == "" {
		if err := d.streaks.DeleteAll(dbc); err != nil {
			return 0, err
		}
		if err := d.records.DeleteAll(dbc); err != nil {
			return 0, err
		}
	} else {
		lo, hi, err := d.games.SeasonDateRange(dbc, season)
		if err != nil {
			return 0, err
		}
		if lo != nil {
			if err := d.streaks.DeleteStartedBetween(dbc, *lo, *hi); err != nil {
				return 0, err
			}
		}
	}

	players, err := d.players.ListAll(dbc)
	if err != nil {
		return 0, err
	}

	created := 0
	for i, player := range players {
		if i > 0 && i%500 == 0 {
			d.log.Info("streak backfill progress", "players", i, "total", len(players))
		}
		n, err := d.backfillPlayer(dbc, player, season)
		if err != nil {
			return 0, err
		}
		created += n
	}

	if err := d.recomputeBadges(dbc); err != nil {
		return 0, err
	}

	d.log.Info("streak backfill done", "season", season, "streaks", created)
	return created, nil
}

func (d *Detector) backfillPlayer(dbc dbctx.Context, player *types.Player, season string) (int, error) {
	var lines []*types.PlayerGameStat
	var err error
	if season == "" {
		lines, err = d.stats.ListByPlayer(dbc, player.ID)
	} else {
		lines, err = d.stats.ListByPlayerSeason(dbc, player.ID, season)
	}
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, nil
	}

	// A streak is still open only if it reached the player's last game in
	// that competition and the player is active.
	lastGameByComp := map[string]string{}
	for i := len(lines) - 1; i >= 0; i-- {
		game := lines[i].Game
		if game == nil {
			continue
		}
		for _, ctype := range competitionContexts(game) {
			if _, ok := lastGameByComp[ctype]; !ok {
				lastGameByComp[ctype] = game.ID
			}
		}
	}

	trackers := map[string]map[string]*tracker{}
	for _, ctype := range domoutliers.CompetitionTypes {
		trackers[ctype] = map[string]*tracker{}
	}

	batch := []*types.StreakRecord{}

	for _, line := range lines {
		game := line.Game
		if game == nil || line.Minutes() < minMinutes {
			continue
		}
		compTypes := competitionContexts(game)
		if len(compTypes) == 0 {
			continue
		}

		for _, stype := range d.streakTypes {
			verdict := criteriaCatalog[stype](line)
			if verdict == Freeze {
				continue
			}
			for _, ctype := range compTypes {
				tr := trackers[ctype][stype]
				if verdict == Qualify {
					if tr == nil {
						trackers[ctype][stype] = &tracker{
							length: 1,
							start:  game.Date, startID: game.ID,
							last: game.Date, lastID: game.ID,
						}
					} else {
						tr.length++
						tr.last = game.Date
						tr.lastID = game.ID
					}
					continue
				}
				if tr == nil {
					continue
				}
				endDate := game.Date
				lastID := tr.lastID
				rec := &types.StreakRecord{
					PlayerID:        player.ID,
					StreakType:      stype,
					CompetitionType: ctype,
					Length:          tr.length,
					StartedAt:       tr.start,
					EndedAt:         &endDate,
					FirstGameID:     tr.startID,
					LastGameID:      &lastID,
				}
				batch = append(batch, rec)
				if err := d.challengeRecord(dbc, rec); err != nil {
					return 0, err
				}
				trackers[ctype][stype] = nil
			}
		}
	}

	for _, ctype := range domoutliers.CompetitionTypes {
		for _, stype := range d.streakTypes {
			tr := trackers[ctype][stype]
			if tr == nil {
				continue
			}
			stillActive := player.IsActive && tr.lastID == lastGameByComp[ctype]
			lastID := tr.lastID
			rec := &types.StreakRecord{
				PlayerID:        player.ID,
				StreakType:      stype,
				CompetitionType: ctype,
				Length:          tr.length,
				IsActive:        stillActive,
				StartedAt:       tr.start,
				FirstGameID:     tr.startID,
				LastGameID:      &lastID,
			}
			if !stillActive {
				endDate := tr.last
				rec.EndedAt = &endDate
			}
			batch = append(batch, rec)
			if err := d.challengeRecord(dbc, rec); err != nil {
				return 0, err
			}
		}
	}

	if err := d.streaks.CreateInBatches(dbc, batch); err != nil {
		return 0, err
	}
	return len(batch), nil
}

// recomputeBadges rewrites is_historical_outlier for every streak against
// the final all-time records, in both directions. A backfill that uncovers
// a longer record can strip badges that no longer clear 70% of it.
func (d *Detector) recomputeBadges(dbc dbctx.Context) error {
	records, err := d.records.All(dbc)
	if err != nil {
		return err
	}
	for _, rec := range records {
		threshold := domoutliers.HistoricalThreshold(rec.Length)
		if err := d.streaks.ApplyHistoricalBadges(dbc, rec.StreakType, rec.CompetitionType, threshold); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeBadges re-derives every historical badge from the current
// all-time records without touching the streaks themselves.
func (d *Detector) RecomputeBadges(dbc dbctx.Context) error {
	return d.recomputeBadges(dbc)
}

// competitionContexts classifies a game by its flags. A play-in game maps
// to no context and is invisible to streaks.
func competitionContexts(game *types.Game) []string {
	out := make([]string, 0, 2)
	if game.RS {
		out = append(out, domoutliers.CompetitionRegular)
	}
	if game.PO {
		out = append(out, domoutliers.CompetitionPlayoffs)
	}
	if game.IST {
		out = append(out, domoutliers.CompetitionCup)
	}
	return out
}
