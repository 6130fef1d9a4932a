package nba

import (
	"gorm.io/gorm"

	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
	"github.com/courtpulse/courtpulse-backend/internal/platform/logger"
)

type PlayerRepo interface {
	// ActiveIDs returns the set of currently active player ids.
	ActiveIDs(dbc dbctx.Context) (map[int]struct{}, error)
	// ListAll returns every player, active or not, ordered by id.
	// Streak backfill needs inactive players too.
	ListAll(dbc dbctx.Context) ([]*types.Player, error)
	// ListActive returns active players ordered by id.
	ListActive(dbc dbctx.Context) ([]*types.Player, error)
}

type playerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlayerRepo(db *gorm.DB, baseLog *logger.Logger) PlayerRepo {
	return &playerRepo{db: db, log: baseLog.With("repo", "PlayerRepo")}
}

func (r *playerRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *playerRepo) ActiveIDs(dbc dbctx.Context) (map[int]struct{}, error) {
	var ids []int
	if err := r.dbx(dbc).WithContext(dbc.Ctx).
		Model(&types.Player{}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *playerRepo) ListAll(dbc dbctx.Context) ([]*types.Player, error) {
	out := []*types.Player{}
	if err := r.dbx(dbc).WithContext(dbc.Ctx).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *playerRepo) ListActive(dbc dbctx.Context) ([]*types.Player, error) {
	out := []*types.Player{}
	if err := r.dbx(dbc).WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
