package outliers

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/courtpulse/courtpulse-backend/internal/pkg/errors"
	"github.com/courtpulse/courtpulse-backend/internal/platform/logger"
)

// StreakSummary aggregates one streak type within a competition.
type StreakSummary struct {
	TotalStreaks     int64   `json:"total_streaks"`
	MaxLength        int     `json:"max_length"`
	AvgLength        float64 `json:"avg_length"`
	NotableCount     int64   `json:"notable_count"`
	NotableThreshold int     `json:"notable_threshold"`
}

type StreakRecordRepo interface {
	// FindActive returns the single active streak for the key, nil when
	// none. More than one active row is a state machine bug and surfaces
	// as ErrStreakConflict.
	FindActive(dbc dbctx.Context, playerID int, streakType, competitionType string) (*types.StreakRecord, error)
	// FindByStart locates a streak event by its start date, the
	// idempotency check against reprocessing the same game.
	FindByStart(dbc dbctx.Context, playerID int, streakType, competitionType string, startedAt time.Time) (*types.StreakRecord, error)
	Create(dbc dbctx.Context, rec *types.StreakRecord) error
	CreateInBatches(dbc dbctx.Context, recs []*types.StreakRecord) error
	Update(dbc dbctx.Context, rec *types.StreakRecord) error
	DeleteAll(dbc dbctx.Context) error
	DeleteStartedBetween(dbc dbctx.Context, lo, hi time.Time) error
	// ApplyHistoricalBadges recomputes is_historical_outlier for every
	// streak of the key against the given threshold.
	ApplyHistoricalBadges(dbc dbctx.Context, streakType, competitionType string, threshold int) error
	ListActive(dbc dbctx.Context, playerID int) ([]*types.StreakRecord, error)
	ListLongest(dbc dbctx.Context, streakType string, limit int) ([]*types.StreakRecord, error)
	Summary(dbc dbctx.Context, competitionType string) (map[string]StreakSummary, error)
	Count(dbc dbctx.Context) (int64, error)
}

type streakRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStreakRecordRepo(db *gorm.DB, baseLog *logger.Logger) StreakRecordRepo {
	return &streakRecordRepo{db: db, log: baseLog.With("repo", "StreakRecordRepo")}
}

func (r *streakRecordRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *streakRecordRepo) FindActive(dbc dbctx.Context, playerID int, streakType, competitionType string) (*types.StreakRecord, error) {
	rows := []*types.StreakRecord{}
	if err := r.dbx(dbc).WithContext(dbc.Ctx).
		Where("player_id = ? AND streak_type = ? AND competition_type = ? AND is_active = ?",
			playerID, streakType, competitionType, true).
		Limit(2).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	default:
		return nil, fmt.Errorf("player %d %s/%s: %w",
			playerID, streakType, competitionType, pkgerrors.ErrStreakConflict)
	}
}

func (r *streakRecordRepo) FindByStart(dbc dbctx.Context, playerID int, streakType, competitionType string, startedAt time.Time) (*types.StreakRecord, error) {
	rows := []*types.StreakRecord{}
	if err := r.dbx(dbc).WithContext(dbc.Ctx).
		Where("player_id = ? AND streak_type = ? AND competition_type = ? AND started_at = ?",
			playerID, streakType, competitionType, startedAt).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *streakRecordRepo) Create(dbc dbctx.Context, rec *types.StreakRecord) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return r.dbx(dbc).WithContext(dbc.Ctx).Create(rec).Error
}

func (r *streakRecordRepo) CreateInBatches(dbc dbctx.Context, recs []*types.StreakRecord) error {
	if len(recs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, rec := range recs {
		rec.CreatedAt = now
		rec.UpdatedAt = now
	}
	return r.dbx(dbc).WithContext(dbc.Ctx).CreateInBatches(recs, 500).Error
}

func (r *streakRecordRepo) Update(dbc dbctx.Context, rec *types.StreakRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	return r.dbx(dbc).WithContext(dbc.Ctx).Save(rec).Error
}

func (r *streakRecordRepo) DeleteAll(dbc dbctx.Context) error {
	return r.dbx(dbc).WithContext(dbc.Ctx).
		Where("1 = 1").
		Delete(&types.StreakRecord{}).Error
}

func (r *streakRecordRepo) DeleteStartedBetween(dbc dbctx.Context, lo, hi time.Time) error {
	return r.dbx(dbc).WithContext(dbc.Ctx).
		Where("started_at >= ? AND started_at <= ?", lo, hi).
		Delete(&types.StreakRecord{}).Error
}

func (r *streakRecordRepo) ApplyHistoricalBadges(dbc dbctx.Context, streakType, competitionType string, threshold int) error {
	base := r.dbx(dbc).WithContext(dbc.Ctx).
		Model(&types.StreakRecord{}).
		Where("streak_type = ? AND competition_type = ?", streakType, competitionType)

	if err := base.Session(&gorm.Session{}).
		Where("length >= ?", threshold).
		Update("is_historical_outlier", true).Error; err != nil {
		return err
	}
	return base.Session(&gorm.Session{}).
		Where("length < ?", threshold).
		Update("is_historical_outlier", false).Error
}

func (r *streakRecordRepo) ListActive(dbc dbctx.Context, playerID int) ([]*types.StreakRecord, error) {
	q := r.dbx(dbc).WithContext(dbc.Ctx).
		Where("is_active = ?", true)
	if playerID != 0 {
		q = q.Where("player_id = ?", playerID)
	}
	out := []*types.StreakRecord{}
	if err := q.Order("length DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *streakRecordRepo) ListLongest(dbc dbctx.Context, streakType string, limit int) ([]*types.StreakRecord, error) {
	q := r.dbx(dbc).WithContext(dbc.Ctx).Model(&types.StreakRecord{})
	if streakType != "" {
		q = q.Where("streak_type = ?", streakType)
	}
	out := []*types.StreakRecord{}
	if err := q.Order("length DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *streakRecordRepo) Summary(dbc dbctx.Context, competitionType string) (map[string]StreakSummary, error) {
	type aggRow struct {
		StreakType   string
		Total        int64
		MaxLength    int
		AvgLength    float64
		NotableCount int64
	}
	rows := []aggRow{}
	if err := r.dbx(dbc).WithContext(dbc.Ctx).
		Model(&types.StreakRecord{}).
		Select(`streak_type,
			COUNT(id) AS total,
			MAX(length) AS max_length,
			AVG(length) AS avg_length,
			SUM(CASE WHEN is_historical_outlier THEN 1 ELSE 0 END) AS notable_count`).
		Where("competition_type = ?", competitionType).
		Group("streak_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]StreakSummary, len(rows))
	for _, row := range rows {
		out[row.StreakType] = StreakSummary{
			TotalStreaks: row.Total,
			MaxLength:    row.MaxLength,
			AvgLength:    row.AvgLength,
			NotableCount: row.NotableCount,
		}
	}
	return out, nil
}

func (r *streakRecordRepo) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	err := r.dbx(dbc).WithContext(dbc.Ctx).
		Model(&types.StreakRecord{}).
		Count(&count).Error
	return count, err
}
