package nba

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
	"github.com/courtpulse/courtpulse-backend/internal/platform/logger"
)

type GameRepo interface {
	GetByIDs(dbc dbctx.Context, ids []string) (map[string]*types.Game, error)
	// LatestDate returns the most recent game date, nil when no games exist.
	LatestDate(dbc dbctx.Context) (*time.Time, error)
	// LatestSeason returns the season of the most recent game, "" when empty.
	LatestSeason(dbc dbctx.Context) (string, error)
	// SeasonDateRange returns the first and last game dates of a season;
	// nils when the season has no games.
	SeasonDateRange(dbc dbctx.Context, season string) (*time.Time, *time.Time, error)
}

type gameRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGameRepo(db *gorm.DB, baseLog *logger.Logger) GameRepo {
	return &gameRepo{db: db, log: baseLog.With("repo", "GameRepo")}
}

func (r *gameRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *gameRepo) GetByIDs(dbc dbctx.Context, ids []string) (map[string]*types.Game, error) {
	out := make(map[string]*types.Game, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows := []*types.Game{}
	if err := r.dbx(dbc).WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, g := range rows {
		out[g.ID] = g
	}
	return out, nil
}

func (r *gameRepo) LatestDate(dbc dbctx.Context) (*time.Time, error) {
	var g types.Game
	err := r.dbx(dbc).WithContext(dbc.Ctx).
		Order("date DESC").
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d := g.Date
	return &d, nil
}

func (r *gameRepo) LatestSeason(dbc dbctx.Context) (string, error) {
	var g types.Game
	err := r.dbx(dbc).WithContext(dbc.Ctx).
		Order("date DESC").
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return g.Season, nil
}

func (r *gameRepo) SeasonDateRange(dbc dbctx.Context, season string) (*time.Time, *time.Time, error) {
	var first, last types.Game

	err := r.dbx(dbc).WithContext(dbc.Ctx).
		Where("season = ?", season).
		Order("date ASC").
		First(&first).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	if err := r.dbx(dbc).WithContext(dbc.Ctx).
		Where("season = ?", season).
		Order("date DESC").
		First(&last).Error; err != nil {
		return nil, nil, err
	}

	lo, hi := first.Date, last.Date
	return &lo, &hi, nil
}
