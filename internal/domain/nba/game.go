package nba

import "time"

// Game uses the upstream string game id ("0022300456") as primary key.
// The rs/po/pi/ist flags classify the competition context; a game can carry
// more than one flag (an in-season tournament game is usually also a
// regular season game).
type Game struct {
	ID     string    `gorm:"size:15;primaryKey" json:"id"`
	Date   time.Time `gorm:"type:date;not null;index" json:"date"`
	Season string    `gorm:"size:10;not null;index" json:"season"`

	RS  bool `gorm:"column:rs;not null;default:false" json:"rs"`
	PO  bool `gorm:"column:po;not null;default:false" json:"po"`
	PI  bool `gorm:"column:pi;not null;default:false" json:"pi"`
	IST bool `gorm:"column:ist;not null;default:false" json:"ist"`

	HomeTeamID *int `gorm:"column:home_team_id;index" json:"home_team_id"`
	AwayTeamID *int `gorm:"column:away_team_id;index" json:"away_team_id"`
	HomeScore  *int `gorm:"column:home_score" json:"home_score"`
	AwayScore  *int `gorm:"column:away_score" json:"away_score"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Game) TableName() string { return "games" }
