package nba

import "time"

// PlayerGameStat is one player's box-score line for one game. It is the
// immutable input of every outlier detector.
type PlayerGameStat struct {
	ID       int     `gorm:"primaryKey;autoIncrement" json:"id"`
	GameID   string  `gorm:"size:15;not null;index;index:idx_stat_game_player,unique" json:"game_id"`
	Game     *Game   `gorm:"foreignKey:GameID;references:ID" json:"game,omitempty"`
	PlayerID int     `gorm:"not null;index;index:idx_stat_game_player,unique" json:"player_id"`
	Player   *Player `gorm:"foreignKey:PlayerID;references:ID" json:"player,omitempty"`
	TeamID   int     `gorm:"not null;index" json:"team_id"`

	// Min is the time on court. Zero-minute lines are inert for detection.
	Min       time.Duration `gorm:"column:min;not null" json:"min"`
	Pts       int           `gorm:"not null" json:"pts"`
	Reb       int           `gorm:"not null" json:"reb"`
	Ast       int           `gorm:"not null" json:"ast"`
	Stl       int           `gorm:"not null" json:"stl"`
	Blk       int           `gorm:"not null" json:"blk"`
	Tov       int           `gorm:"not null" json:"tov"`
	PF        int           `gorm:"column:pf;not null" json:"pf"`
	PlusMinus *float64      `gorm:"column:plus_minus" json:"plus_minus"`

	FGM    int      `gorm:"column:fgm;not null" json:"fgm"`
	FGA    int      `gorm:"column:fga;not null" json:"fga"`
	FGPct  *float64 `gorm:"column:fg_pct" json:"fg_pct"`
	FG3M   int      `gorm:"column:fg3m;not null" json:"fg3m"`
	FG3A   int      `gorm:"column:fg3a;not null" json:"fg3a"`
	FG3Pct *float64 `gorm:"column:fg3_pct" json:"fg3_pct"`
	FTM    int      `gorm:"column:ftm;not null" json:"ftm"`
	FTA    int      `gorm:"column:fta;not null" json:"fta"`
	FTPct  *float64 `gorm:"column:ft_pct" json:"ft_pct"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PlayerGameStat) TableName() string { return "player_game_stats" }

// Minutes returns the time on court in fractional minutes.
func (s *PlayerGameStat) Minutes() float64 {
	return s.Min.Minutes()
}

// Statistical feature names shared by the detectors. Percentage features map
// to their attempt counterparts through AttemptsFor.
const (
	FeatPts    = "pts"
	FeatAst    = "ast"
	FeatReb    = "reb"
	FeatStl    = "stl"
	FeatBlk    = "blk"
	FeatTov    = "tov"
	FeatPF     = "pf"
	FeatFGA    = "fga"
	FeatFTA    = "fta"
	FeatFG3A   = "fg3a"
	FeatFGPct  = "fg_pct"
	FeatFG3Pct = "fg3_pct"
	FeatFTPct  = "ft_pct"
	FeatMin    = "min"
)

// FeatureValue returns the named statistical feature as a float. Nil
// percentages read as zero, matching the upstream feed where a line without
// attempts carries no percentage.
func (s *PlayerGameStat) FeatureValue(name string) float64 {
	switch name {
	case FeatPts:
		return float64(s.Pts)
	case FeatAst:
		return float64(s.Ast)
	case FeatReb:
		return float64(s.Reb)
	case FeatStl:
		return float64(s.Stl)
	case FeatBlk:
		return float64(s.Blk)
	case FeatTov:
		return float64(s.Tov)
	case FeatPF:
		return float64(s.PF)
	case FeatFGA:
		return float64(s.FGA)
	case FeatFTA:
		return float64(s.FTA)
	case FeatFG3A:
		return float64(s.FG3A)
	case FeatFGPct:
		return derefPct(s.FGPct)
	case FeatFG3Pct:
		return derefPct(s.FG3Pct)
	case FeatFTPct:
		return derefPct(s.FTPct)
	case FeatMin:
		return s.Minutes()
	}
	return 0
}

// AttemptsFor maps a percentage feature to the attempt count backing it.
// The second return is false for non-percentage features.
func (s *PlayerGameStat) AttemptsFor(name string) (int, bool) {
	switch name {
	case FeatFGPct:
		return s.FGA, true
	case FeatFG3Pct:
		return s.FG3A, true
	case FeatFTPct:
		return s.FTA, true
	}
	return 0, false
}

// IsPercentageFeature reports whether a feature is a shooting percentage.
func IsPercentageFeature(name string) bool {
	return name == FeatFGPct || name == FeatFG3Pct || name == FeatFTPct
}

func derefPct(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
