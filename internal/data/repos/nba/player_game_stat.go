package nba

import (
	"time"

	"gorm.io/gorm"

	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	"github.com/courtpulse/courtpulse-backend/internal/pkg/dbctx"
	"github.com/courtpulse/courtpulse-backend/internal/platform/logger"
)

// PlayerGameStatRepo serves stat lines with their game preloaded, always in
// chronological order. Every detector depends on that ordering.
type PlayerGameStatRepo interface {
	ListByPlayerSeason(dbc dbctx.Context, playerID int, season string) ([]*types.PlayerGameStat, error)
	// ListByPlayer returns a player's full history; season == "" in
	// backfill means all seasons.
	ListByPlayer(dbc dbctx.Context, playerID int) ([]*types.PlayerGameStat, error)
	// ListWindow returns a player's lines with game date in (after, until].
	ListWindow(dbc dbctx.Context, playerID int, after, until time.Time) ([]*types.PlayerGameStat, error)
	ListBySeason(dbc dbctx.Context, season string) ([]*types.PlayerGameStat, error)
	ListAll(dbc dbctx.Context) ([]*types.PlayerGameStat, error)
	// ListByDate returns every line for one game day.
	ListByDate(dbc dbctx.Context, date time.Time) ([]*types.PlayerGameStat, error)
}

type playerGameStatRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlayerGameStatRepo(db *gorm.DB, baseLog *logger.Logger) PlayerGameStatRepo {
	return &playerGameStatRepo{db: db, log: baseLog.With("repo", "PlayerGameStatRepo")}
}

func (r *playerGameStatRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *playerGameStatRepo) chronological(dbc dbctx.Context) *gorm.DB {
	return r.dbx(dbc).WithContext(dbc.Ctx).
		Joins("JOIN games ON games.id = player_game_stats.game_id").
		Preload("Game").
		Order("games.date ASC, player_game_stats.id ASC")
}

func (r *playerGameStatRepo) ListByPlayerSeason(dbc dbctx.Context, playerID int, season string) ([]*types.PlayerGameStat, error) {
	out := []*types.PlayerGameStat{}
	if err := r.chronological(dbc).
		Where("player_game_stats.player_id = ? AND games.season = ?", playerID, season).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *playerGameStatRepo) ListByPlayer(dbc dbctx.Context, playerID int) ([]*types.PlayerGameStat, error) {
	out := []*types.PlayerGameStat{}
	if err := r.chronological(dbc).
		Where("player_game_stats.player_id = ?", playerID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *playerGameStatRepo) ListWindow(dbc dbctx.Context, playerID int, after, until time.Time) ([]*types.PlayerGameStat, error) {
	out := []*types.PlayerGameStat{}
	if err := r.chronological(dbc).
		Where("player_game_stats.player_id = ? AND games.date > ? AND games.date <= ?", playerID, after, until).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *playerGameStatRepo) ListBySeason(dbc dbctx.Context, season string) ([]*types.PlayerGameStat, error) {
	out := []*types.PlayerGameStat{}
	if err := r.chronological(dbc).
		Where("games.season = ?", season).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *playerGameStatRepo) ListAll(dbc dbctx.Context) ([]*types.PlayerGameStat, error) {
	out := []*types.PlayerGameStat{}
	if err := r.chronological(dbc).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *playerGameStatRepo) ListByDate(dbc dbctx.Context, date time.Time) ([]*types.PlayerGameStat, error) {
	out := []*types.PlayerGameStat{}
	if err := r.chronological(dbc).
		Where("games.date = ?", date).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
