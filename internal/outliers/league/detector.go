// Package league scores stat lines against the whole league with a frozen
// reconstruction model: ordinary lines reconstruct well, once-a-season
// lines do not.
package league

import (
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/courtpulse/courtpulse-backend/internal/data/repos"
	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	"github.com/courtpulse/courtpulse-backend/internal/outliers"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/courtpulse/courtpulse-backend/internal/pkg/errors"
	"github.com/courtpulse/courtpulse-backend/internal/platform/logger"
)

// DefaultPercentileThreshold flags roughly the most extreme 1% of lines.
const DefaultPercentileThreshold = 99.0

type Detector struct {
	threshold float64
	// model is resolved once at construction; nil means no trained
	// artifact exists and the detector is a silent no-op.
	model *Model

	stats   repos.PlayerGameStatRepo
	players repos.PlayerRepo
	rows    repos.LeagueOutlierRepo
	log     *logger.Logger
}

// New loads the model artifact at modelPath. A missing artifact is not an
// error: detection simply reports nothing until a model is trained.
func New(db *gorm.DB, baseLog *logger.Logger, modelPath string, threshold float64) (*Detector, error) {
	if threshold <= 0 {
		threshold = DefaultPercentileThreshold
	}
	log := baseLog.With("detector", "league")

	model, err := LoadModel(modelPath)
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, err
		}
		log.Warn("no trained model artifact, league detection disabled", "path", modelPath)
		model = nil
	} else {
		log.Info("model artifact loaded", "path", modelPath, "version", model.Version)
	}

	return &Detector{
		threshold: threshold,
		model:     model,
		stats:     repos.NewPlayerGameStatRepo(db, baseLog),
		players:   repos.NewPlayerRepo(db, baseLog),
		rows:      repos.NewLeagueOutlierRepo(db, baseLog),
		log:       log,
	}, nil
}

func (d *Detector) Name() string { return "league" }

// Ready reports whether a trained model is loaded.
func (d *Detector) Ready() bool { return d.model != nil }

// Detect scores each line and upserts its verdict, outlier or not, so a
// rescoring with a newer model overwrites cleanly.
func (d *Detector) Detect(dbc dbctx.Context, lines []*types.PlayerGameStat) ([]outliers.Result, error) {
	if d.model == nil {
		return nil, nil
	}

	results := []outliers.Result{}
	for _, line := range lines {
		res, err := d.scoreAndPersist(dbc, line)
		if err != nil {
			d.log.Error("league scoring failed", "stat_id", line.ID, "error", err)
			continue
		}
		if res != nil {
			results = append(results, *res)
		}
	}
	return results, nil
}

// Backfill rescores a season (or all history when season is empty) for
// active players and returns the number of flagged lines.
func (d *Detector) Backfill(dbc dbctx.Context, season string) (int, error) {
	if d.model == nil {
		return 0, nil
	}

	var lines []*types.PlayerGameStat
	var err error
	if season == "" {
		lines, err = d.stats.ListAll(dbc)
	} else {
		lines, err = d.stats.ListBySeason(dbc, season)
	}
	if err != nil {
		return 0, err
	}

	activeIDs, err := d.players.ActiveIDs(dbc)
	if err != nil {
		return 0, err
	}

	d.log.Info("league backfill starting", "season", season, "lines", len(lines))
	found := 0
	for _, line := range lines {
		if _, ok := activeIDs[line.PlayerID]; !ok {
			continue
		}
		res, err := d.scoreAndPersist(dbc, line)
		if err != nil {
			return found, err
		}
		if res != nil && res.IsOutlier {
			found++
		}
	}
	d.log.Info("league backfill done", "season", season, "outliers", found)
	return found, nil
}

func (d *Detector) scoreAndPersist(dbc dbctx.Context, line *types.PlayerGameStat) (*outliers.Result, error) {
	features, ok := featureVector(line)
	if !ok {
		return nil, nil
	}

	errVal, percentile, contributions := d.model.Score(features)
	isOutlier := percentile >= d.threshold

	row := &types.LeagueOutlier{
		PlayerGameStatID:     line.ID,
		ReconstructionError:  errVal,
		Percentile:           percentile,
		FeatureContributions: datatypes.NewJSONType(contributions),
		IsOutlier:            isOutlier,
		ModelVersion:         d.model.Version,
	}
	if err := d.rows.Upsert(dbc, row); err != nil {
		return nil, err
	}

	return &outliers.Result{
		PlayerGameStatID: line.ID,
		IsOutlier:        isOutlier,
		Detail: map[string]any{
			"reconstruction_error":  errVal,
			"percentile":            percentile,
			"feature_contributions": contributions,
			"model_version":         d.model.Version,
		},
	}, nil
}
