package nba

import "time"

// Player keeps the upstream NBA integer id as its primary key.
type Player struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	FullName string `gorm:"column:full_name;size:100;not null" json:"full_name"`
	Position string `gorm:"size:20" json:"position"`
	Country  string `gorm:"size:50" json:"country"`

	// IsActive gates every detector: inactive players are never scored.
	IsActive bool `gorm:"column:is_active;not null;default:false;index" json:"is_active"`
	FromYear int  `gorm:"column:from_year" json:"from_year"`
	ToYear   int  `gorm:"column:to_year" json:"to_year"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Player) TableName() string { return "players" }
