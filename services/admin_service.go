package services

import (
	"sync"
	"time"

	"github.com/Pratyunmis/robosaga26/models"

	"gorm.io/gorm"
)

// AdminService backs the dashboard: aggregate stats, analytics charts and
// the management lists. Analytics run several scans over users and teams, so
// results are cached for a short TTL and refreshed by the scheduler.
type AdminService struct {
	DB *gorm.DB

	mu               sync.Mutex
	cachedAnalytics  *Analytics
	analyticsFetched time.Time
}

const analyticsTTL = 5 * time.Minute

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{DB: db}
}

// DashboardStats is the headline numbers block.
type DashboardStats struct {
	TotalUsers          int64 `json:"total_users"`
	TotalTeams          int64 `json:"total_teams"`
	TotalEvents         int64 `json:"total_events"`
	TotalRegistrations  int64 `json:"total_registrations"`
	HackawayTeams       int64 `json:"hackaway_teams"`
	PendingJoinRequests int64 `json:"pending_join_requests"`
	NewUsers7d          int64 `json:"new_users_7d"`
	NewTeams7d          int64 `json:"new_teams_7d"`
}

func (s *AdminService) Stats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	weekAgo := time.Now().AddDate(0, 0, -7)

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, s.DB.Model(&models.User{})},
		{&stats.TotalTeams, s.DB.Model(&models.Team{})},
		{&stats.TotalEvents, s.DB.Model(&models.Event{})},
		{&stats.TotalRegistrations, s.DB.Model(&models.EventRegistration{})},
		{&stats.HackawayTeams, s.DB.Model(&models.HackawayRegistration{})},
		{&stats.PendingJoinRequests, s.DB.Model(&models.JoinRequest{}).Where("status = ?", models.JoinRequestPending)},
		{&stats.NewUsers7d, s.DB.Model(&models.User{}).Where("created_at >= ?", weekAgo)},
		{&stats.NewTeams7d, s.DB.Model(&models.Team{}).Where("created_at >= ?", weekAgo)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// DayCount is one point of a daily time series.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// BranchCount is one slice of the branch distribution.
type BranchCount struct {
	Branch string `json:"branch"`
	Count  int64  `json:"count"`
}

// HourCount is one bucket of the hourly activity histogram.
type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// Analytics is the chart payload for the admin dashboard.
type Analytics struct {
	UserGrowth30d      []DayCount    `json:"user_growth_30d"`
	BranchDistribution []BranchCount `json:"branch_distribution"`
	HourlyActivity7d   []HourCount   `json:"hourly_activity_7d"`
	RecentUsers        []models.User `json:"recent_users"`
	GeneratedAt        time.Time     `json:"generated_at"`
}

// Analytics returns the cached charts, recomputing when the cache is stale.
func (s *AdminService) Analytics() (*Analytics, error) {
	s.mu.Lock()
	if s.cachedAnalytics != nil && time.Since(s.analyticsFetched) < analyticsTTL {
		a := s.cachedAnalytics
		s.mu.Unlock()
		return a, nil
	}
	s.mu.Unlock()
	return s.RefreshAnalytics()
}

// RefreshAnalytics recomputes the charts and replaces the cache. The
// scheduler calls this on a fixed interval so dashboard loads stay cheap.
func (s *AdminService) RefreshAnalytics() (*Analytics, error) {
	a := &Analytics{GeneratedAt: time.Now()}
	monthAgo := time.Now().AddDate(0, 0, -30)
	weekAgo := time.Now().AddDate(0, 0, -7)

	dayExpr := "to_char(created_at, 'YYYY-MM-DD')"
	hourExpr := "CAST(to_char(created_at, 'HH24') AS INTEGER)"
	if s.DB.Dialector.Name() == "sqlite" {
		dayExpr = "strftime('%Y-%m-%d', created_at)"
		hourExpr = "CAST(strftime('%H', created_at) AS INTEGER)"
	}

	growth := []DayCount{}
	err := s.DB.Raw(`
		SELECT `+dayExpr+` AS day, COUNT(*) AS count
		FROM users
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day ASC
	`, monthAgo).Scan(&growth).Error
	if err != nil {
		return nil, err
	}
	a.UserGrowth30d = growth

	branches := []BranchCount{}
	err = s.DB.Raw(`
		SELECT branch, COUNT(*) AS count
		FROM users
		WHERE branch IS NOT NULL AND branch != ''
		GROUP BY branch
		ORDER BY count DESC
	`).Scan(&branches).Error
	if err != nil {
		return nil, err
	}
	a.BranchDistribution = branches

	hours := []HourCount{}
	err = s.DB.Raw(`
		SELECT `+hourExpr+` AS hour, COUNT(*) AS count
		FROM users
		WHERE created_at >= ?
		GROUP BY hour
		ORDER BY hour ASC
	`, weekAgo).Scan(&hours).Error
	if err != nil {
		return nil, err
	}
	a.HourlyActivity7d = hours

	recents := []models.User{}
	if err := s.DB.Order("created_at DESC").Limit(10).Find(&recents).Error; err != nil {
		return nil, err
	}
	a.RecentUsers = recents

	s.mu.Lock()
	s.cachedAnalytics = a
	s.analyticsFetched = time.Now()
	s.mu.Unlock()
	return a, nil
}

// ListUsers returns all users, newest first.
func (s *AdminService) ListUsers() ([]models.User, error) {
	var users []models.User
	err := s.DB.Order("created_at DESC").Find(&users).Error
	return users, err
}

// ListTeams returns all teams with their rosters.
func (s *AdminService) ListTeams() ([]models.Team, error) {
	var teams []models.Team
	err := s.DB.Preload("Members.User").Order("created_at DESC").Find(&teams).Error
	return teams, err
}

// UpdateUserRole changes a user's role after validating it.
func (s *AdminService) UpdateUserRole(userID, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, Errf(KindInvalidInput, "invalid role %q", role)
	}
	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotFound, "user not found")
		}
		return nil, err
	}
	if err := s.DB.Model(&user).Update("role", role).Error; err != nil {
		return nil, err
	}
	user.Role = role
	return &user, nil
}

// UpdateTeamScore sets a team's total score directly.
func (s *AdminService) UpdateTeamScore(teamID string, score int) (*models.Team, error) {
	if score < 0 {
		return nil, Err(KindInvalidInput, "score must be non-negative")
	}
	var team models.Team
	if err := s.DB.Where("id = ?", teamID).First(&team).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotFound, "team not found")
		}
		return nil, err
	}
	if err := s.DB.Model(&team).Update("score", score).Error; err != nil {
		return nil, err
	}
	team.Score = score
	return &team, nil
}

// ListMessages returns contact form submissions, newest first.
func (s *AdminService) ListMessages() ([]models.ContactMessage, error) {
	var msgs []models.ContactMessage
	err := s.DB.Order("created_at DESC").Find(&msgs).Error
	return msgs, err
}
