package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Pratyunmis/robosaga26/models"

	"github.com/google/uuid"
)

func TestCreateTeamMakesCallerLeader(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)
	user := seedUser(t, db, "rina")

	team, err := svc.CreateTeam(user.ID, "Circuit Breakers")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if !strings.HasPrefix(team.Slug, "circuit-breakers-") {
		t.Errorf("unexpected slug %q", team.Slug)
	}
	if team.LeaderID != user.ID {
		t.Errorf("leader id = %q, want %q", team.LeaderID, user.ID)
	}

	view, err := svc.GetUserTeam(user.ID)
	if err != nil {
		t.Fatalf("get user team: %v", err)
	}
	if view == nil || !view.IsLeader {
		t.Fatalf("creator should be leader of their team, got %+v", view)
	}
	if len(view.Members) != 1 || view.Members[0].Role != models.TeamRoleLeader {
		t.Errorf("expected a single leader membership, got %+v", view.Members)
	}
}

func TestCreateTeamRequiresNameAndAuth(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)
	user := seedUser(t, db, "mo")

	_, err := svc.CreateTeam("", "Nameless")
	wantKind(t, err, KindUnauthenticated)

	_, err = svc.CreateTeam(user.ID, "   ")
	wantKind(t, err, KindInvalidInput)
}

func TestOneTeamPerUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)

	teamB, _ := buildTeam(t, db, "team-b", 2)
	_, users := buildTeam(t, db, "team-a", 2)
	leader, member := users[0], users[1]

	// Neither the leader nor a member may create a second team.
	_, err := svc.CreateTeam(leader.ID, "Second Wind")
	wantKind(t, err, KindAlreadyInTeam)
	_, err = svc.CreateTeam(member.ID, "Second Wind")
	wantKind(t, err, KindAlreadyInTeam)

	// Nor request to join another.
	_, err = svc.RequestJoin(member.ID, teamB.Slug)
	wantKind(t, err, KindAlreadyInTeam)
}

func TestConcurrentCreateTeamSingleMembership(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)
	user := seedUser(t, db, "race")

	const attempts = 10
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateTeam(user.ID, fmt.Sprintf("Racer %d", i))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else if KindOf(err) != KindAlreadyInTeam {
			t.Errorf("unexpected error kind: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly 1 successful create, got %d", successes)
	}

	var memberships int64
	db.Model(&models.TeamMember{}).Where("user_id = ?", user.ID).Count(&memberships)
	if memberships != 1 {
		t.Fatalf("user holds %d memberships, want 1", memberships)
	}
}

func TestJoinRequestLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)
	team, users := buildTeam(t, db, "falcons", 2)
	leader, member := users[0], users[1]
	candidate := seedUser(t, db, "candidate")

	req, err := svc.RequestJoin(candidate.ID, team.Slug)
	if err != nil {
		t.Fatalf("request join: %v", err)
	}

	// A second pending request for the same team is refused.
	_, err = svc.RequestJoin(candidate.ID, team.Slug)
	wantKind(t, err, KindDuplicateRequest)

	// Only the leader sees and resolves the inbox.
	_, err = svc.ListJoinRequests(member.ID)
	wantKind(t, err, KindUnauthorized)
	_, err = svc.AcceptJoinRequest(member.ID, req.ID)
	wantKind(t, err, KindUnauthorized)

	inbox, err := svc.ListJoinRequests(leader.ID)
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(inbox) != 1 || inbox[0].ID != req.ID {
		t.Fatalf("inbox = %+v, want the one pending request", inbox)
	}

	if err := svc.RejectJoinRequest(leader.ID, req.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	// Terminal once resolved.
	_, err = svc.AcceptJoinRequest(leader.ID, req.ID)
	wantKind(t, err, KindRequestNotPending)

	// After a rejection the user may request again.
	req2, err := svc.RequestJoin(candidate.ID, team.Slug)
	if err != nil {
		t.Fatalf("re-request after reject: %v", err)
	}
	if _, err := svc.AcceptJoinRequest(leader.ID, req2.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	view, err := svc.GetTeamBySlug(team.Slug)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if len(view.Members) != 3 {
		t.Fatalf("team has %d members, want 3", len(view.Members))
	}
}

func TestAcceptRefusedWhenTeamFull(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)
	team, users := buildTeam(t, db, "maxed", models.MaxTeamSize)
	leader := users[0]

	extra := seedUser(t, db, "fifth")
	req, err := svc.RequestJoin(extra.ID, team.Slug)
	if err != nil {
		t.Fatalf("request join: %v", err)
	}

	_, err = svc.AcceptJoinRequest(leader.ID, req.ID)
	wantKind(t, err, KindTeamFull)

	// The failed accept must not consume the request.
	var stored models.JoinRequest
	if err := db.Where("id = ?", req.ID).First(&stored).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	if stored.Status != models.JoinRequestPending {
		t.Fatalf("request status = %q, want pending", stored.Status)
	}
}

func TestAcceptAutoRejectsCompetingRequests(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)
	teamA, usersA := buildTeam(t, db, "alpha", 2)
	teamB, _ := buildTeam(t, db, "beta", 2)
	candidate := seedUser(t, db, "hopper")

	reqA, err := svc.RequestJoin(candidate.ID, teamA.Slug)
	if err != nil {
		t.Fatalf("request A: %v", err)
	}
	reqB, err := svc.RequestJoin(candidate.ID, teamB.Slug)
	if err != nil {
		t.Fatalf("request B: %v", err)
	}

	if _, err := svc.AcceptJoinRequest(usersA[0].ID, reqA.ID); err != nil {
		t.Fatalf("accept A: %v", err)
	}

	var storedB models.JoinRequest
	if err := db.Where("id = ?", reqB.ID).First(&storedB).Error; err != nil {
		t.Fatalf("load request B: %v", err)
	}
	if storedB.Status != models.JoinRequestRejected {
		t.Fatalf("competing request status = %q, want rejected", storedB.Status)
	}
}

func TestAcceptAfterRequesterJoinedElsewhere(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)
	teamA, usersA := buildTeam(t, db, "first", 2)
	teamB, usersB := buildTeam(t, db, "second", 2)
	candidate := seedUser(t, db, "snapped")

	reqA, err := svc.RequestJoin(candidate.ID, teamA.Slug)
	if err != nil {
		t.Fatalf("request A: %v", err)
	}
	reqB, err := svc.RequestJoin(candidate.ID, teamB.Slug)
	if err != nil {
		t.Fatalf("request B: %v", err)
	}

	if _, err := svc.AcceptJoinRequest(usersB[0].ID, reqB.ID); err != nil {
		t.Fatalf("accept B: %v", err)
	}
	// reqA was auto-rejected by B's accept; restore it to pending to simulate
	// an accept racing ahead of the auto-reject.
	if err := db.Model(&models.JoinRequest{}).Where("id = ?", reqA.ID).
		Update("status", models.JoinRequestPending).Error; err != nil {
		t.Fatalf("reset request A: %v", err)
	}

	_, err = svc.AcceptJoinRequest(usersA[0].ID, reqA.ID)
	wantKind(t, err, KindAlreadyInTeam)

	var memberships int64
	db.Model(&models.TeamMember{}).Where("user_id = ?", candidate.ID).Count(&memberships)
	if memberships != 1 {
		t.Fatalf("candidate holds %d memberships, want 1", memberships)
	}
}

func TestLeaveTeam(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)
	_, users := buildTeam(t, db, "leavers", 3)
	leader, member := users[0], users[1]

	err := svc.LeaveTeam(leader.ID)
	wantKind(t, err, KindIsLeader)

	if err := svc.LeaveTeam(member.ID); err != nil {
		t.Fatalf("member leave: %v", err)
	}
	// Freed of the membership, the user can found their own team.
	if _, err := svc.CreateTeam(member.ID, "Fresh Start"); err != nil {
		t.Fatalf("create after leave: %v", err)
	}

	outsider := seedUser(t, db, "outsider")
	err = svc.LeaveTeam(outsider.ID)
	wantKind(t, err, KindNotInTeam)
}

func TestRemoveMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)
	_, users := buildTeam(t, db, "prune", 3)
	leader, member, other := users[0], users[1], users[2]

	err := svc.RemoveMember(member.ID, other.ID)
	wantKind(t, err, KindUnauthorized)

	err = svc.RemoveMember(leader.ID, leader.ID)
	wantKind(t, err, KindInvalidInput)

	err = svc.RemoveMember(leader.ID, "no-such-user")
	wantKind(t, err, KindNotInTeam)

	if err := svc.RemoveMember(leader.ID, member.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	view, err := svc.GetUserTeam(member.ID)
	if err != nil {
		t.Fatalf("get user team: %v", err)
	}
	if view != nil {
		t.Fatalf("removed member still has a team: %+v", view)
	}
}

func TestDeleteTeamCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)
	team, users := buildTeam(t, db, "doomed", 2)
	leader, member := users[0], users[1]

	// Hang registrations and a pending request off the team.
	event := &models.Event{ID: uuid.NewString(), Name: "Line Follower", Slug: "line-follower",
		Category: models.CategoryCompetition, MaxScore: 100, IsActive: true}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	if err := db.Create(&models.EventRegistration{ID: uuid.NewString(), EventID: event.ID, TeamID: team.ID}).Error; err != nil {
		t.Fatalf("seed event registration: %v", err)
	}
	if err := db.Create(&models.HackawayRegistration{ID: uuid.NewString(), TeamID: team.ID, ProblemStatementNo: 1}).Error; err != nil {
		t.Fatalf("seed hackaway registration: %v", err)
	}
	candidate := seedUser(t, db, "pending")
	if _, err := svc.RequestJoin(candidate.ID, team.Slug); err != nil {
		t.Fatalf("seed join request: %v", err)
	}

	err := svc.DeleteTeam(member.ID, team.ID)
	wantKind(t, err, KindUnauthorized)

	// The refused delete must leave everything intact.
	var survivors int64
	db.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&survivors)
	if survivors != 2 {
		t.Fatalf("%d memberships after refused delete, want 2", survivors)
	}

	if err := svc.DeleteTeam(leader.ID, team.ID); err != nil {
		t.Fatalf("delete team: %v", err)
	}

	for _, probe := range []struct {
		name  string
		model interface{}
	}{
		{"team", &models.Team{}},
		{"memberships", &models.TeamMember{}},
		{"join requests", &models.JoinRequest{}},
		{"event registrations", &models.EventRegistration{}},
		{"hackaway registrations", &models.HackawayRegistration{}},
	} {
		var n int64
		col := "team_id"
		if probe.name == "team" {
			col = "id"
		}
		db.Model(probe.model).Where(col+" = ?", team.ID).Count(&n)
		if n != 0 {
			t.Errorf("%s not cascaded, %d rows remain", probe.name, n)
		}
	}

	// Both former members are free agents again.
	if _, err := svc.CreateTeam(member.ID, "Risen"); err != nil {
		t.Fatalf("create after delete: %v", err)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)

	low, _ := buildTeam(t, db, "low", 2)
	high, _ := buildTeam(t, db, "high", 3)
	db.Model(&models.Team{}).Where("id = ?", low.ID).Update("score", 40)
	db.Model(&models.Team{}).Where("id = ?", high.ID).Update("score", 90)

	entries, err := svc.Leaderboard()
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].TeamID != high.ID || entries[0].Rank != 1 || entries[0].Points != 90 {
		t.Errorf("first entry = %+v, want high team at rank 1", entries[0])
	}
	if entries[0].Members != 3 || entries[1].Members != 2 {
		t.Errorf("member counts = %d,%d, want 3,2", entries[0].Members, entries[1].Members)
	}
}
