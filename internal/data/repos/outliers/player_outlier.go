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

type PlayerOutlierRepo interface {
	Upsert(dbc dbctx.Context, row *types.PlayerOutlier) error
	GetByStatID(dbc dbctx.Context, statID int) (*types.PlayerOutlier, error)
	DeleteBySeason(dbc dbctx.Context, season string) error
	Count(dbc dbctx.Context) (int64, error)
}

type playerOutlierRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlayerOutlierRepo(db *gorm.DB, baseLog *logger.Logger) PlayerOutlierRepo {
	return &playerOutlierRepo{db: db, log: baseLog.With("repo", "PlayerOutlierRepo")}
}

func (r *playerOutlierRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *playerOutlierRepo) Upsert(dbc dbctx.Context, row *types.PlayerOutlier) error {
	if row == nil || row.PlayerGameStatID == 0 {
		return nil
	}
	now := time.Now().UTC()
	row.UpdatedAt = now
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	return r.dbx(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "player_game_stat_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"z_scores", "max_z_score", "outlier_type",
				"outlier_features", "games_in_sample", "updated_at",
			}),
		}).
		Create(row).Error
}

func (r *playerOutlierRepo) GetByStatID(dbc dbctx.Context, statID int) (*types.PlayerOutlier, error) {
	var row types.PlayerOutlier
	err := r.dbx(dbc).WithContext(dbc.Ctx).
		Where("player_game_stat_id = ?", statID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *playerOutlierRepo) DeleteBySeason(dbc dbctx.Context, season string) error {
	sub := r.dbx(dbc).
		Model(&types.PlayerGameStat{}).
		Select("player_game_stats.id").
		Joins("JOIN games ON games.id = player_game_stats.game_id").
		Where("games.season = ?", season)
	return r.dbx(dbc).WithContext(dbc.Ctx).
		Where("player_game_stat_id IN (?)", sub).
		Delete(&types.PlayerOutlier{}).Error
}

func (r *playerOutlierRepo) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	err := r.dbx(dbc).WithContext(dbc.Ctx).
		Model(&types.PlayerOutlier{}).
		Count(&count).Error
	return count, err
}
