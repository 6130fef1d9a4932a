package nba

import "time"

type Team struct {
	ID           int    `gorm:"primaryKey" json:"id"`
	FullName     string `gorm:"column:full_name;size:100;not null" json:"full_name"`
	Abbreviation string `gorm:"size:25;uniqueIndex;not null" json:"abbreviation"`
	City         string `gorm:"size:50" json:"city"`
	Nickname     string `gorm:"size:50" json:"nickname"`
	Conference   string `gorm:"size:10" json:"conference"`
	Division     string `gorm:"size:20" json:"division"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Team) TableName() string { return "teams" }
