package services

import (
	"log"
	"strings"
	"time"

	"github.com/Pratyunmis/robosaga26/models"
	"github.com/Pratyunmis/robosaga26/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamService owns team membership and the join-request workflow. Every
// mutation runs as one transaction against the store; the "at most one team
// per user" invariant is backed by the unique index on team_members.user_id,
// so a racing second insert fails at commit rather than slipping past a stale
// read.
type TeamService struct {
	DB *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{DB: db}
}

const slugAttempts = 3

// TeamMemberView is the member shape returned to the UI.
type TeamMemberView struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Image    string    `json:"image,omitempty"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// TeamView is a team with its roster, as rendered on the team page.
type TeamView struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Slug      string           `json:"slug"`
	Score     int              `json:"score"`
	LeaderID  string           `json:"leader_id"`
	IsLeader  bool             `json:"is_leader"`
	CreatedAt time.Time        `json:"created_at"`
	Members   []TeamMemberView `json:"members"`
}

// CreateTeam makes a new team with the caller as leader and returns it. The
// slug is slugified name + random suffix; a collision on the unique slug
// index retries with a fresh suffix.
func (s *TeamService) CreateTeam(userID, name string) (*models.Team, error) {
	if userID == "" {
		return nil, Err(KindUnauthenticated, "you must be logged in to create a team")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Err(KindInvalidInput, "team name is required")
	}

	var inTeam int64
	s.DB.Model(&models.TeamMember{}).Where("user_id = ?", userID).Count(&inTeam)
	if inTeam > 0 {
		return nil, Err(KindAlreadyInTeam, "you are already in a team, cannot create a new one")
	}

	var lastErr error
	for attempt := 0; attempt < slugAttempts; attempt++ {
		team := &models.Team{
			ID:       uuid.NewString(),
			Name:     name,
			Slug:     utils.TeamSlug(name),
			LeaderID: userID,
		}
		lastErr = s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(team).Error; err != nil {
				if isDuplicate(err) {
					return Err(KindTransientStoreConflict, "team code collision, retrying")
				}
				return err
			}
			member := &models.TeamMember{
				ID:     uuid.NewString(),
				TeamID: team.ID,
				UserID: userID,
				Role:   models.TeamRoleLeader,
			}
			if err := tx.Create(member).Error; err != nil {
				if isDuplicate(err) {
					return Err(KindAlreadyInTeam, "you are already in a team, cannot create a new one")
				}
				return err
			}
			return nil
		})
		if lastErr == nil {
			log.Printf("[TEAM] created %q (%s) by user %s", team.Name, team.Slug, userID)
			return team, nil
		}
		if KindOf(lastErr) != KindTransientStoreConflict {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// RequestJoin files a pending join request against the team identified by
// slug. The partial unique index on (team_id, user_id) where status='pending'
// catches duplicate requests racing each other.
func (s *TeamService) RequestJoin(userID, teamSlug string) (*models.JoinRequest, error) {
	if userID == "" {
		return nil, Err(KindUnauthenticated, "you must be logged in to join a team")
	}
	teamSlug = strings.TrimSpace(teamSlug)
	if teamSlug == "" {
		return nil, Err(KindInvalidInput, "team code is required")
	}

	var team models.Team
	if err := s.DB.Where("slug = ?", teamSlug).First(&team).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotFound, "team not found with this code")
		}
		return nil, err
	}

	var inTeam int64
	s.DB.Model(&models.TeamMember{}).Where("user_id = ?", userID).Count(&inTeam)
	if inTeam > 0 {
		return nil, Err(KindAlreadyInTeam, "you are already in a team")
	}

	req := &models.JoinRequest{
		ID:     uuid.NewString(),
		TeamID: team.ID,
		UserID: userID,
		Status: models.JoinRequestPending,
	}
	if err := s.DB.Create(req).Error; err != nil {
		if isDuplicate(err) {
			return nil, Err(KindDuplicateRequest, "you already have a pending request for this team")
		}
		return nil, err
	}
	return req, nil
}

// ListJoinRequests returns the pending requests for the caller's team. Only
// the leader sees the inbox.
func (s *TeamService) ListJoinRequests(leaderID string) ([]models.JoinRequest, error) {
	membership, err := s.leaderMembership(leaderID)
	if err != nil {
		return nil, err
	}

	var requests []models.JoinRequest
	err = s.DB.Where("team_id = ? AND status = ?", membership.TeamID, models.JoinRequestPending).
		Preload("User").
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

// AcceptJoinRequest turns a pending request into a membership. Size re-check,
// membership insert, status flip and the auto-reject of the user's competing
// pending requests happen in one transaction; the team row is locked so two
// concurrent accepts cannot both fill the last seat.
func (s *TeamService) AcceptJoinRequest(leaderID, requestID string) (*models.TeamMember, error) {
	var member *models.TeamMember
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var req models.JoinRequest
		if err := forUpdate(tx).Where("id = ?", requestID).First(&req).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return Err(KindNotFound, "join request not found")
			}
			return err
		}
		if req.Status != models.JoinRequestPending {
			return Errf(KindRequestNotPending, "request was already %s", req.Status)
		}

		var team models.Team
		if err := forUpdate(tx).Where("id = ?", req.TeamID).First(&team).Error; err != nil {
			return err
		}
		if team.LeaderID != leaderID {
			return Err(KindUnauthorized, "only the team leader can accept join requests")
		}

		var size int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&size).Error; err != nil {
			return err
		}
		if size >= models.MaxTeamSize {
			return Errf(KindTeamFull, "team already has %d members", models.MaxTeamSize)
		}

		m := &models.TeamMember{
			ID:     uuid.NewString(),
			TeamID: team.ID,
			UserID: req.UserID,
			Role:   models.TeamRoleMember,
		}
		if err := tx.Create(m).Error; err != nil {
			if isDuplicate(err) {
				// The requester joined some team since filing this request.
				return Err(KindAlreadyInTeam, "this user has already joined a team")
			}
			return err
		}

		if err := tx.Model(&models.JoinRequest{}).Where("id = ?", req.ID).
			Update("status", models.JoinRequestAccepted).Error; err != nil {
			return err
		}
		// A member can no longer join anywhere else; resolve their other
		// pending requests instead of leaving them dangling.
		if err := tx.Model(&models.JoinRequest{}).
			Where("user_id = ? AND status = ? AND id <> ?", req.UserID, models.JoinRequestPending, req.ID).
			Update("status", models.JoinRequestRejected).Error; err != nil {
			return err
		}

		member = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RejectJoinRequest resolves a pending request without a membership side
// effect.
func (s *TeamService) RejectJoinRequest(leaderID, requestID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var req models.JoinRequest
		if err := forUpdate(tx).Where("id = ?", requestID).First(&req).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return Err(KindNotFound, "join request not found")
			}
			return err
		}
		if req.Status != models.JoinRequestPending {
			return Errf(KindRequestNotPending, "request was already %s", req.Status)
		}

		var team models.Team
		if err := tx.Where("id = ?", req.TeamID).First(&team).Error; err != nil {
			return err
		}
		if team.LeaderID != leaderID {
			return Err(KindUnauthorized, "only the team leader can reject join requests")
		}

		return tx.Model(&models.JoinRequest{}).Where("id = ?", req.ID).
			Update("status", models.JoinRequestRejected).Error
	})
}

// RemoveMember lets the leader drop a non-leader member from the team.
func (s *TeamService) RemoveMember(leaderID, memberUserID string) error {
	membership, err := s.leaderMembership(leaderID)
	if err != nil {
		return err
	}
	if memberUserID == leaderID {
		return Err(KindInvalidInput, "the team leader cannot be removed; delete the team instead")
	}

	var target models.TeamMember
	if err := s.DB.Where("team_id = ? AND user_id = ?", membership.TeamID, memberUserID).
		First(&target).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return Err(KindNotInTeam, "that user is not a member of your team")
		}
		return err
	}
	if target.Role == models.TeamRoleLeader {
		return Err(KindInvalidInput, "the team leader cannot be removed; delete the team instead")
	}

	return s.DB.Delete(&target).Error
}

// LeaveTeam removes the caller's own membership. Leaders cannot leave a team
// they lead; they delete it.
func (s *TeamService) LeaveTeam(userID string) error {
	var membership models.TeamMember
	if err := s.DB.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return Err(KindNotInTeam, "you are not in a team")
		}
		return err
	}
	if membership.Role == models.TeamRoleLeader {
		return Err(KindIsLeader, "team leaders cannot leave; delete the team instead")
	}
	return s.DB.Delete(&membership).Error
}

// DeleteTeam removes the team and everything hanging off it (memberships,
// join requests, event and hackathon registrations) in one transaction, in
// dependency order.
func (s *TeamService) DeleteTeam(leaderID, teamID string) error {
	var team models.Team
	if err := s.DB.Where("id = ?", teamID).First(&team).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return Err(KindNotFound, "team not found")
		}
		return err
	}
	if team.LeaderID != leaderID {
		return Err(KindUnauthorized, "only the team leader can delete the team")
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.EventRegistration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.HackawayRegistration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.JoinRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, "id = ?", teamID).Error
	})
	if err == nil {
		log.Printf("[TEAM] deleted %q (%s) by leader %s", team.Name, team.Slug, leaderID)
	}
	return err
}

// GetUserTeam returns the caller's team with roster, or nil when the user has
// no membership.
func (s *TeamService) GetUserTeam(userID string) (*TeamView, error) {
	var membership models.TeamMember
	if err := s.DB.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	view, err := s.teamView(membership.TeamID)
	if err != nil {
		return nil, err
	}
	view.IsLeader = view.LeaderID == userID
	return view, nil
}

// GetTeamBySlug is the public team lookup used by the share link.
func (s *TeamService) GetTeamBySlug(teamSlug string) (*TeamView, error) {
	var team models.Team
	if err := s.DB.Where("slug = ?", teamSlug).First(&team).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotFound, "team not found")
		}
		return nil, err
	}
	return s.teamView(team.ID)
}

// LeaderboardEntry is one ranked row of the public leaderboard.
type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	TeamID    string    `json:"id"`
	TeamName  string    `json:"team_name"`
	Slug      string    `json:"slug"`
	Points    int       `json:"points"`
	Members   int       `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// Leaderboard lists all teams by score with member counts.
func (s *TeamService) Leaderboard() ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	query := `
        SELECT
            t.id AS team_id,
            t.name AS team_name,
            t.slug,
            t.score AS points,
            t.created_at,
            COUNT(tm.id) AS members
        FROM teams t
        LEFT JOIN team_members tm ON tm.team_id = t.id
        GROUP BY t.id, t.name, t.slug, t.score, t.created_at
        ORDER BY t.score DESC, t.created_at ASC
    `
	if err := s.DB.Raw(query).Scan(&entries).Error; err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// TeamSize returns the membership count for a team.
func (s *TeamService) TeamSize(teamID string) (int64, error) {
	var n int64
	err := s.DB.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&n).Error
	return n, err
}

func (s *TeamService) leaderMembership(userID string) (*models.TeamMember, error) {
	var membership models.TeamMember
	if err := s.DB.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotInTeam, "you are not in a team")
		}
		return nil, err
	}
	if membership.Role != models.TeamRoleLeader {
		return nil, Err(KindUnauthorized, "only the team leader can do this")
	}
	return &membership, nil
}

func (s *TeamService) teamView(teamID string) (*TeamView, error) {
	var team models.Team
	if err := s.DB.Where("id = ?", teamID).First(&team).Error; err != nil {
		return nil, err
	}
	var members []models.TeamMember
	if err := s.DB.Where("team_id = ?", teamID).
		Preload("User").
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	view := &TeamView{
		ID:        team.ID,
		Name:      team.Name,
		Slug:      team.Slug,
		Score:     team.Score,
		LeaderID:  team.LeaderID,
		CreatedAt: team.CreatedAt,
		Members:   make([]TeamMemberView, 0, len(members)),
	}
	for _, m := range members {
		view.Members = append(view.Members, TeamMemberView{
			UserID:   m.UserID,
			Name:     m.User.Name,
			Email:    m.User.Email,
			Image:    m.User.Image,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return view, nil
}
