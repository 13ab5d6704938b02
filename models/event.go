package models

import (
	"time"
)

const (
	CategoryHackathon   = "hackathon"
	CategoryExhibition  = "exhibition"
	CategoryCompetition = "competition"
	CategoryWorkshop    = "workshop"
	CategorySession     = "session"
)

func ValidEventCategory(c string) bool {
	switch c {
	case CategoryHackathon, CategoryExhibition, CategoryCompetition, CategoryWorkshop, CategorySession:
		return true
	}
	return false
}

type Event struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	Category    string    `json:"category" gorm:"not null"`
	StartTime   time.Time `json:"start_time" gorm:"not null"`
	EndTime     time.Time `json:"end_time"`
	MaxScore    int       `json:"max_score" gorm:"default:100"`
	// No default tag: an explicit false from the admin form must be stored.
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// EventRegistration ties a team to an event. The composite unique index makes
// a duplicate registration a no-op at the store, which is what lets the
// register flow stay idempotent for the caller.
type EventRegistration struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	EventID      string    `json:"event_id" gorm:"not null;uniqueIndex:uniq_event_team"`
	TeamID       string    `json:"team_id" gorm:"not null;uniqueIndex:uniq_event_team;index"`
	Score        int       `json:"score" gorm:"default:0"`
	Rank         int       `json:"rank" gorm:"default:0"` // 0 = not ranked
	RegisteredAt time.Time `json:"registered_at" gorm:"autoCreateTime;index"`

	Event Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
	Team  Team  `json:"team,omitempty" gorm:"foreignKey:TeamID"`
}
