package models

import (
	"time"
)

const (
	TeamRoleLeader = "leader"
	TeamRoleMember = "member"
)

// Team size bounds for hackathon registration.
const (
	MinTeamSize = 2
	MaxTeamSize = 4
)

type Team struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;not null"` // human-shareable team code
	LeaderID  string    `json:"leader_id" gorm:"not null"`
	Score     int       `json:"score" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`

	Members []TeamMember `json:"members,omitempty" gorm:"foreignKey:TeamID"`
}

// TeamMember links a user to a team. The unique index on UserID is the
// store-level form of the "at most one team per user" invariant: a racing
// second insert loses at commit time, not at check time.
type TeamMember struct {
	ID       string    `json:"id" gorm:"primaryKey"`
	TeamID   string    `json:"team_id" gorm:"not null;index"`
	UserID   string    `json:"user_id" gorm:"uniqueIndex;not null"`
	Role     string    `json:"role" gorm:"default:'member'"` // leader | member
	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
