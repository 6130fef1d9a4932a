package outliers

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
	"github.com/courtpulse/courtpulse-backend/internal/platform/logger"
)

type TrendOutlierRepo interface {
	Upsert(dbc dbctx.Context, row *types.PlayerTrendOutlier) error
	Get(dbc dbctx.Context, playerID int, windowType string, refDate time.Time) (*types.PlayerTrendOutlier, error)
	// DeleteSince removes trend rows with reference date on or after the
	// cutoff; backfill scopes its cleanup to the season start this way.
	DeleteSince(dbc dbctx.Context, cutoff time.Time) error
	Count(dbc dbctx.Context) (int64, error)
}

type trendOutlierRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrendOutlierRepo(db *gorm.DB, baseLog *logger.Logger) TrendOutlierRepo {
	return &trendOutlierRepo{db: db, log: baseLog.With("repo", "TrendOutlierRepo")}
}

func (r *trendOutlierRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *trendOutlierRepo) Upsert(dbc dbctx.Context, row *types.PlayerTrendOutlier) error {
	if row == nil || row.PlayerID == 0 || row.WindowType == "" {
		return nil
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return r.dbx(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "player_id"}, {Name: "window_type"}, {Name: "reference_date"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"z_scores", "max_z_score", "outlier_type", "comparison_data",
				"games_in_window", "games_in_baseline",
			}),
		}).
		Create(row).Error
}

func (r *trendOutlierRepo) Get(dbc dbctx.Context, playerID int, windowType string, refDate time.Time) (*types.PlayerTrendOutlier, error) {
	var row types.PlayerTrendOutlier
	err := r.dbx(dbc).WithContext(dbc.Ctx).
		Where("player_id = ? AND window_type = ? AND reference_date = ?", playerID, windowType, refDate).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *trendOutlierRepo) DeleteSince(dbc dbctx.Context, cutoff time.Time) error {
	return r.dbx(dbc).WithContext(dbc.Ctx).
		Where("reference_date >= ?", cutoff).
		Delete(&types.PlayerTrendOutlier{}).Error
}

func (r *trendOutlierRepo) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	err := r.dbx(dbc).WithContext(dbc.Ctx).
		Model(&types.PlayerTrendOutlier{}).
		Count(&count).Error
	return count, err
}
