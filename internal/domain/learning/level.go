package learning

import "time"

// Level is an ordered group of activities. Order is unique and 1-based.
type Level struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Order           int    `gorm:"column:level_order;uniqueIndex;not null" json:"order"`
	Title           string `gorm:"column:title;not null" json:"title"`
	Description     string `gorm:"column:description" json:"description"`
	MinPointsToPass int    `gorm:"column:min_points_to_pass;not null" json:"min_points_to_pass"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Level) TableName() string { return "levels" }
