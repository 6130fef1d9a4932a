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

type SeasonStateRepo interface {
	// Get returns the state row, or nil when the player has none for the
	// season. Callers start from a fresh zero state in that case and
	// persist it through Save.
	Get(dbc dbctx.Context, playerID int, season string) (*types.PlayerSeasonState, error)
	Save(dbc dbctx.Context, state *types.PlayerSeasonState) error
	// HasPriorSeason reports whether any state row exists for an earlier
	// season. The rookie grace period is bypassed for such veterans.
	HasPriorSeason(dbc dbctx.Context, playerID int, season string) (bool, error)
	DeleteBySeason(dbc dbctx.Context, season string) error
	Count(dbc dbctx.Context) (int64, error)
}

type seasonStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSeasonStateRepo(db *gorm.DB, baseLog *logger.Logger) SeasonStateRepo {
	return &seasonStateRepo{db: db, log: baseLog.With("repo", "SeasonStateRepo")}
}

func (r *seasonStateRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *seasonStateRepo) Get(dbc dbctx.Context, playerID int, season string) (*types.PlayerSeasonState, error) {
	var state types.PlayerSeasonState
	err := r.dbx(dbc).WithContext(dbc.Ctx).
		Where("player_id = ? AND season = ?", playerID, season).
		First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *seasonStateRepo) Save(dbc dbctx.Context, state *types.PlayerSeasonState) error {
	if state == nil || state.Season == "" {
		return nil
	}
	state.UpdatedAt = time.Now().UTC()
	return r.dbx(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "player_id"}, {Name: "season"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"games_played", "first_game_date", "last_game_date",
				"accumulated_stats", "updated_at",
			}),
		}).
		Create(state).Error
}

func (r *seasonStateRepo) HasPriorSeason(dbc dbctx.Context, playerID int, season string) (bool, error) {
	var count int64
	if err := r.dbx(dbc).WithContext(dbc.Ctx).
		Model(&types.PlayerSeasonState{}).
		Where("player_id = ? AND season < ?", playerID, season).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *seasonStateRepo) DeleteBySeason(dbc dbctx.Context, season string) error {
	return r.dbx(dbc).WithContext(dbc.Ctx).
		Where("season = ?", season).
		Delete(&types.PlayerSeasonState{}).Error
}

func (r *seasonStateRepo) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	err := r.dbx(dbc).WithContext(dbc.Ctx).
		Model(&types.PlayerSeasonState{}).
		Count(&count).Error
	return count, err
}
