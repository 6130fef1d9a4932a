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

// TopOutlierWindow scopes the TopByPercentile query surface.
const (
	TopWindowLastGame = "last_game"
	TopWindowWeek     = "week"
	TopWindowMonth    = "month"
	TopWindowSeason   = "season"
)

// TopOutlier is a read model for the presentation layer: one flagged stat
// line with enough context for a headline.
type TopOutlier struct {
	PlayerName          string    `json:"player_name"`
	GameDate            time.Time `json:"game_date"`
	Season              string    `json:"season"`
	Pts                 int       `json:"pts"`
	Reb                 int       `json:"reb"`
	Ast                 int       `json:"ast"`
	Percentile          float64   `json:"percentile"`
	ReconstructionError float64   `json:"reconstruction_error"`
}

type LeagueOutlierRepo interface {
	Upsert(dbc dbctx.Context, row *types.LeagueOutlier) error
	GetByStatID(dbc dbctx.Context, statID int) (*types.LeagueOutlier, error)
	Count(dbc dbctx.Context) (int64, error)
	// TopByPercentile lists flagged lines of active players, most extreme
	// first, filtered to a trailing window or season.
	TopByPercentile(dbc dbctx.Context, limit int, window, season string) ([]TopOutlier, error)
}

type leagueOutlierRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLeagueOutlierRepo(db *gorm.DB, baseLog *logger.Logger) LeagueOutlierRepo {
	return &leagueOutlierRepo{db: db, log: baseLog.With("repo", "LeagueOutlierRepo")}
}

func (r *leagueOutlierRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *leagueOutlierRepo) Upsert(dbc dbctx.Context, row *types.LeagueOutlier) error {
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
				"reconstruction_error", "percentile", "feature_contributions",
				"is_outlier", "model_version", "updated_at",
			}),
		}).
		Create(row).Error
}

func (r *leagueOutlierRepo) GetByStatID(dbc dbctx.Context, statID int) (*types.LeagueOutlier, error) {
	var row types.LeagueOutlier
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

func (r *leagueOutlierRepo) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	err := r.dbx(dbc).WithContext(dbc.Ctx).
		Model(&types.LeagueOutlier{}).
		Count(&count).Error
	return count, err
}

func (r *leagueOutlierRepo) TopByPercentile(dbc dbctx.Context, limit int, window, season string) ([]TopOutlier, error) {
	q := r.dbx(dbc).WithContext(dbc.Ctx).
		Model(&types.LeagueOutlier{}).
		Select(`players.full_name AS player_name, games.date AS game_date, games.season AS season,
			player_game_stats.pts AS pts, player_game_stats.reb AS reb, player_game_stats.ast AS ast,
			outliers_league.percentile AS percentile, outliers_league.reconstruction_error AS reconstruction_error`).
		Joins("JOIN player_game_stats ON player_game_stats.id = outliers_league.player_game_stat_id").
		Joins("JOIN players ON players.id = player_game_stats.player_id").
		Joins("JOIN games ON games.id = player_game_stats.game_id").
		Where("outliers_league.is_outlier = ?", true).
		Where("players.is_active = ?", true)

	switch window {
	case TopWindowLastGame, TopWindowWeek, TopWindowMonth:
		var latest time.Time
		row := r.dbx(dbc).WithContext(dbc.Ctx).
			Model(&types.Game{}).
			Select("MAX(date)").
			Row()
		if err := row.Scan(&latest); err != nil {
			// No games at all; nothing to rank.
			return []TopOutlier{}, nil
		}
		switch window {
		case TopWindowLastGame:
			q = q.Where("games.date = ?", latest)
		case TopWindowWeek:
			q = q.Where("games.date >= ?", latest.AddDate(0, 0, -7))
		case TopWindowMonth:
			q = q.Where("games.date >= ?", latest.AddDate(0, 0, -30))
		}
	default:
		if season != "" {
			q = q.Where("games.season = ?", season)
		}
	}

	out := []TopOutlier{}
	if err := q.Order("outliers_league.percentile DESC").
		Limit(limit).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
