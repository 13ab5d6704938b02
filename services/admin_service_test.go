package services

import (
	"testing"

	"github.com/Pratyunmis/robosaga26/models"
)

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db)
	teamSvc := NewTeamService(db)

	team, _ := buildTeam(t, db, "counted", 2)
	candidate := seedUser(t, db, "waiting")
	if _, err := teamSvc.RequestJoin(candidate.ID, team.Slug); err != nil {
		t.Fatalf("seed request: %v", err)
	}

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalUsers != 3 || stats.TotalTeams != 1 {
		t.Errorf("totals = %+v", stats)
	}
	if stats.PendingJoinRequests != 1 {
		t.Errorf("pending requests = %d, want 1", stats.PendingJoinRequests)
	}
	if stats.NewUsers7d != 3 {
		t.Errorf("new users 7d = %d, want 3", stats.NewUsers7d)
	}
}

func TestAnalyticsCache(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db)
	seedUser(t, db, "early")

	first, err := svc.Analytics()
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if len(first.UserGrowth30d) == 0 {
		t.Errorf("expected growth data for today, got none")
	}
	if len(first.RecentUsers) != 1 {
		t.Errorf("recent users = %d, want 1", len(first.RecentUsers))
	}

	// Within the TTL the cached snapshot is returned unchanged.
	seedUser(t, db, "later")
	cached, err := svc.Analytics()
	if err != nil {
		t.Fatalf("analytics (cached): %v", err)
	}
	if !cached.GeneratedAt.Equal(first.GeneratedAt) {
		t.Errorf("cache missed inside TTL")
	}

	refreshed, err := svc.RefreshAnalytics()
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(refreshed.RecentUsers) != 2 {
		t.Errorf("recent users after refresh = %d, want 2", len(refreshed.RecentUsers))
	}
}

func TestUpdateUserRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db)
	user := seedUser(t, db, "promoted")

	_, err := svc.UpdateUserRole(user.ID, "superuser")
	wantKind(t, err, KindInvalidInput)

	_, err = svc.UpdateUserRole("missing", models.RoleAdmin)
	wantKind(t, err, KindNotFound)

	updated, err := svc.UpdateUserRole(user.ID, models.RoleModerator)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if updated.Role != models.RoleModerator {
		t.Fatalf("role = %q, want moderator", updated.Role)
	}
}

func TestUpdateTeamScore(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db)
	team, _ := buildTeam(t, db, "scored", 2)

	_, err := svc.UpdateTeamScore(team.ID, -5)
	wantKind(t, err, KindInvalidInput)

	updated, err := svc.UpdateTeamScore(team.ID, 120)
	if err != nil {
		t.Fatalf("update score: %v", err)
	}
	if updated.Score != 120 {
		t.Fatalf("score = %d, want 120", updated.Score)
	}
}
