package learning

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type ActivityType string

const (
	ActivityTypeQuiz    ActivityType = "QUIZ"
	ActivityTypeReading ActivityType = "READING"
	ActivityTypeLab     ActivityType = "LAB"

	// ActivityTypeUnimplemented is what any stored type outside the known set normalizes to.
	ActivityTypeUnimplemented ActivityType = "UNIMPLEMENTED"
)

// ParseActivityType normalizes a stored type string. Unknown values map to ActivityTypeUnimplemented.
func ParseActivityType(raw string) ActivityType {
	switch t := ActivityType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case ActivityTypeQuiz, ActivityTypeReading, ActivityTypeLab:
		return t
	default:
		return ActivityTypeUnimplemented
	}
}

func (t ActivityType) Known() bool {
	return ParseActivityType(string(t)) != ActivityTypeUnimplemented
}

// Renderer names the client presentation variant for the type.
func (t ActivityType) Renderer() string {
	switch ParseActivityType(string(t)) {
	case ActivityTypeQuiz:
		return "quiz"
	case ActivityTypeReading:
		return "reading"
	case ActivityTypeLab:
		return "lab"
	default:
		return "unimplemented"
	}
}

// Activity is one assessable unit inside a level. Points is the maximum achievable score.
type Activity struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Slug        string         `gorm:"column:slug;size:191;uniqueIndex;not null" json:"slug"`
	LevelID     uint           `gorm:"column:level_id;index;not null" json:"level_id"`
	Type        ActivityType   `gorm:"column:type;size:32;not null" json:"type"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	Points      int            `gorm:"column:points;not null" json:"points"`
	Position    int            `gorm:"column:position;not null" json:"position"`
	Content     datatypes.JSON `gorm:"column:content" json:"content,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Activity) TableName() string { return "activities" }

func (a *Activity) Kind() ActivityType {
	if a == nil {
		return ActivityTypeUnimplemented
	}
	return ParseActivityType(string(a.Type))
}
