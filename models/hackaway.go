package models

import (
	"time"
)

// HackawayRegistration assigns a team to exactly one problem statement. The
// unique index on TeamID forecloses a second registration for the same team
// even under concurrent attempts.
type HackawayRegistration struct {
	ID                 string    `json:"id" gorm:"primaryKey"`
	TeamID             string    `json:"team_id" gorm:"uniqueIndex;not null"`
	ProblemStatementNo int       `json:"problem_statement_no" gorm:"not null;index"`
	Rank               int       `json:"rank" gorm:"default:0"` // 0 = not ranked
	Qualified          bool      `json:"qualified" gorm:"default:false"`
	PresentationLink   string    `json:"presentation_link,omitempty"`
	RegisteredAt       time.Time `json:"registered_at" gorm:"autoCreateTime;index"`

	Team Team `json:"team,omitempty" gorm:"foreignKey:TeamID"`
}

// ProblemStatementSetting is a sparse per-problem-statement override. Only
// rows the admin has touched are persisted; everything else comes from
// DefaultProblemStatements. The row also serves as the lock target for the
// capacity gate.
type ProblemStatementSetting struct {
	ID              int       `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" gorm:"not null"`
	MaxParticipants int       `json:"max_participants" gorm:"not null"`
	IsActive        bool      `json:"is_active"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

const (
	MinProblemStatementNo = 1
	MaxProblemStatementNo = 12

	DefaultMaxParticipants = 10
)

// DefaultProblemStatements are the compiled-in settings for all 12 tracks,
// used wherever no override row exists.
var DefaultProblemStatements = []ProblemStatementSetting{
	{ID: 1, Title: "The Reviewer Who Never Sleeps", MaxParticipants: DefaultMaxParticipants, IsActive: true},
	{ID: 2, Title: "Seeing the World with One Sensor", MaxParticipants: DefaultMaxParticipants, IsActive: true},
	{ID: 3, Title: "Finding the Way, One Step at a Time", MaxParticipants: DefaultMaxParticipants, IsActive: true},
	{ID: 4, Title: "Glove-Controlled Drift Racer: Master Every Move!", MaxParticipants: DefaultMaxParticipants, IsActive: true},
	{ID: 5, Title: "TrekBot – A Simple Quadruped Walking Robot", MaxParticipants: DefaultMaxParticipants, IsActive: true},
	{ID: 6, Title: "ChordMate – Never Play the Wrong Chord Again!", MaxParticipants: DefaultMaxParticipants, IsActive: true},
	{ID: 7, Title: "Drip-Sync: No More Guesswork!", MaxParticipants: DefaultMaxParticipants, IsActive: true},
	{ID: 8, Title: "Automated Railway Track Fault Detector", MaxParticipants: DefaultMaxParticipants, IsActive: true},
	{ID: 9, Title: "Agentic AI for Intelligent Personal Financial Decision-Making", MaxParticipants: DefaultMaxParticipants, IsActive: true},
	{ID: 10, Title: "RescueNet – Every Minute Knows Where to Go", MaxParticipants: DefaultMaxParticipants, IsActive: true},
	{ID: 11, Title: "Salil's Inbox – Signal, Not Noise", MaxParticipants: DefaultMaxParticipants, IsActive: true},
	{ID: 12, Title: "Multi-Modal Severity Quantifier", MaxParticipants: DefaultMaxParticipants, IsActive: true},
}

// DefaultProblemStatement returns the compiled-in setting for no, or nil if
// no is outside 1..12.
func DefaultProblemStatement(no int) *ProblemStatementSetting {
	if no < MinProblemStatementNo || no > MaxProblemStatementNo {
		return nil
	}
	ps := DefaultProblemStatements[no-1]
	return &ps
}
