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

type AllTimeRecordRepo interface {
	Get(dbc dbctx.Context, streakType, competitionType string) (*types.StreakAllTimeRecord, error)
	All(dbc dbctx.Context) ([]*types.StreakAllTimeRecord, error)
	// Save upserts by the (streak_type, competition_type) key. Length
	// monotonicity is the caller's contract: challenge the record first.
	Save(dbc dbctx.Context, rec *types.StreakAllTimeRecord) error
	DeleteAll(dbc dbctx.Context) error
	Count(dbc dbctx.Context) (int64, error)
}

type allTimeRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAllTimeRecordRepo(db *gorm.DB, baseLog *logger.Logger) AllTimeRecordRepo {
	return &allTimeRecordRepo{db: db, log: baseLog.With("repo", "AllTimeRecordRepo")}
}

func (r *allTimeRecordRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *allTimeRecordRepo) Get(dbc dbctx.Context, streakType, competitionType string) (*types.StreakAllTimeRecord, error) {
	var rec types.StreakAllTimeRecord
	err := r.dbx(dbc).WithContext(dbc.Ctx).
		Where("streak_type = ? AND competition_type = ?", streakType, competitionType).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *allTimeRecordRepo) All(dbc dbctx.Context) ([]*types.StreakAllTimeRecord, error) {
	out := []*types.StreakAllTimeRecord{}
	if err := r.dbx(dbc).WithContext(dbc.Ctx).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *allTimeRecordRepo) Save(dbc dbctx.Context, rec *types.StreakAllTimeRecord) error {
	if rec == nil || rec.StreakType == "" {
		return nil
	}
	rec.UpdatedAt = time.Now().UTC()
	return r.dbx(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "streak_type"}, {Name: "competition_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"player_id", "length", "started_at", "ended_at",
				"game_id_start", "game_id_end", "updated_at",
			}),
		}).
		Create(rec).Error
}

func (r *allTimeRecordRepo) DeleteAll(dbc dbctx.Context) error {
	return r.dbx(dbc).WithContext(dbc.Ctx).
		Where("1 = 1").
		Delete(&types.StreakAllTimeRecord{}).Error
}

func (r *allTimeRecordRepo) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	err := r.dbx(dbc).WithContext(dbc.Ctx).
		Model(&types.StreakAllTimeRecord{}).
		Count(&count).Error
	return count, err
}
