package models

import (
	"time"
)

const (
	JoinRequestPending  = "pending"
	JoinRequestAccepted = "accepted"
	JoinRequestRejected = "rejected"
)

// JoinRequest is the approval step between a prospective member and a team
// leader. pending -> accepted|rejected, terminal once resolved. The partial
// unique index allows one pending request per (team, user) while keeping the
// resolved history around.
type JoinRequest struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TeamID    string    `json:"team_id" gorm:"not null;index;uniqueIndex:uniq_pending_request,where:status = 'pending'"`
	UserID    string    `json:"user_id" gorm:"not null;index;uniqueIndex:uniq_pending_request,where:status = 'pending'"`
	Status    string    `json:"status" gorm:"default:'pending'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Team Team `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
