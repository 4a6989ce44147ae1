package user

import "time"

// User is a learner. ID is the identity provider's subject and is never generated here.
type User struct {
	ID           string `gorm:"column:id;primaryKey;size:191" json:"id"`
	Email        string `gorm:"column:email" json:"email"`
	FirstName    string `gorm:"column:first_name" json:"first_name"`
	LastName     string `gorm:"column:last_name" json:"last_name"`
	Username     string `gorm:"column:username" json:"username"`
	TotalPoints  int    `gorm:"column:total_points;not null" json:"total_points"`
	CurrentLevel int    `gorm:"column:current_level;not null" json:"current_level"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// FirstLevelOrder is the order value every new user starts on.
const FirstLevelOrder = 1
