package outliers

import (
	"gorm.io/gorm"

	"github.com/google/uuid"

	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
	"github.com/courtpulse/courtpulse-backend/internal/platform/logger"
)

type DetectionRunRepo interface {
	Create(dbc dbctx.Context, run *types.DetectionRun) error
	Latest(dbc dbctx.Context, limit int) ([]*types.DetectionRun, error)
}

type detectionRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDetectionRunRepo(db *gorm.DB, baseLog *logger.Logger) DetectionRunRepo {
	return &detectionRunRepo{db: db, log: baseLog.With("repo", "DetectionRunRepo")}
}

func (r *detectionRunRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *detectionRunRepo) Create(dbc dbctx.Context, run *types.DetectionRun) error {
	if run == nil {
		return nil
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	return r.dbx(dbc).WithContext(dbc.Ctx).Create(run).Error
}

func (r *detectionRunRepo) Latest(dbc dbctx.Context, limit int) ([]*types.DetectionRun, error) {
	out := []*types.DetectionRun{}
	if err := r.dbx(dbc).WithContext(dbc.Ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
