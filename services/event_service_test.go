package services

import (
	"testing"
	"time"

	"github.com/Pratyunmis/robosaga26/models"
)

func testEventInput(name string) EventInput {
	return EventInput{
		Name:      name,
		Category:  models.CategoryCompetition,
		StartTime: time.Now().Add(24 * time.Hour),
		EndTime:   time.Now().Add(26 * time.Hour),
	}
}

func TestCreateEventValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)

	in := testEventInput("Robo Race")
	in.Name = "  "
	_, err := svc.CreateEvent(in)
	wantKind(t, err, KindInvalidInput)

	in = testEventInput("Robo Race")
	in.Category = "parade"
	_, err = svc.CreateEvent(in)
	wantKind(t, err, KindInvalidInput)

	in = testEventInput("Robo Race")
	in.EndTime = in.StartTime.Add(-time.Hour)
	_, err = svc.CreateEvent(in)
	wantKind(t, err, KindInvalidInput)

	event, err := svc.CreateEvent(testEventInput("Robo Race"))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if event.Slug != "robo-race" {
		t.Errorf("autogenerated slug = %q, want robo-race", event.Slug)
	}
	if event.MaxScore != 100 {
		t.Errorf("default max score = %d, want 100", event.MaxScore)
	}

	// Slug uniqueness is enforced.
	_, err = svc.CreateEvent(testEventInput("Robo Race"))
	wantKind(t, err, KindInvalidInput)
}

func TestRegisterForEventIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)

	event, err := svc.CreateEvent(testEventInput("Maze Solver"))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	event.IsActive = true
	db.Model(&models.Event{}).Where("id = ?", event.ID).Update("is_active", true)

	_, users := buildTeam(t, db, "mazers", 2)
	leader, member := users[0], users[1]

	loner := seedUser(t, db, "loner")
	_, err = svc.RegisterForEvent(loner.ID, event.Slug)
	wantKind(t, err, KindNotInTeam)

	_, err = svc.RegisterForEvent(leader.ID, "no-such-event")
	wantKind(t, err, KindNotFound)

	first, err := svc.RegisterForEvent(leader.ID, event.Slug)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// The leader retrying and a teammate registering both land on the same row.
	for _, uid := range []string{leader.ID, member.ID} {
		reg, err := svc.RegisterForEvent(uid, event.Slug)
		wantKind(t, err, KindAlreadyRegistered)
		if reg == nil || reg.ID != first.ID {
			t.Fatalf("repeat register returned %+v, want %s", reg, first.ID)
		}
	}

	var count int64
	db.Model(&models.EventRegistration{}).Where("event_id = ?", event.ID).Count(&count)
	if count != 1 {
		t.Fatalf("%d registrations stored, want 1", count)
	}

	slugs, err := svc.UserRegistrations(member.ID)
	if err != nil {
		t.Fatalf("user registrations: %v", err)
	}
	if len(slugs) != 1 || slugs[0] != event.Slug {
		t.Fatalf("registered events = %v, want [%s]", slugs, event.Slug)
	}
}

func TestSetResultMirrorsTeamScore(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)

	event, err := svc.CreateEvent(testEventInput("Sumo Bots"))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	db.Model(&models.Event{}).Where("id = ?", event.ID).Update("is_active", true)

	team, users := buildTeam(t, db, "sumo", 2)
	reg, err := svc.RegisterForEvent(users[0].ID, event.Slug)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = svc.SetResult(reg.ID, 150, 1)
	wantKind(t, err, KindInvalidInput)

	if _, err := svc.SetResult(reg.ID, 60, 2); err != nil {
		t.Fatalf("set result: %v", err)
	}
	var stored models.Team
	db.Where("id = ?", team.ID).First(&stored)
	if stored.Score != 60 {
		t.Fatalf("team score = %d, want 60", stored.Score)
	}

	// Re-scoring replaces, not accumulates.
	if _, err := svc.SetResult(reg.ID, 80, 1); err != nil {
		t.Fatalf("re-score: %v", err)
	}
	db.Where("id = ?", team.ID).First(&stored)
	if stored.Score != 80 {
		t.Fatalf("team score after re-score = %d, want 80", stored.Score)
	}
}

func TestDeleteEventCascadesRegistrations(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)

	event, err := svc.CreateEvent(testEventInput("Drone Derby"))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	db.Model(&models.Event{}).Where("id = ?", event.ID).Update("is_active", true)
	_, users := buildTeam(t, db, "pilots", 2)
	if _, err := svc.RegisterForEvent(users[0].ID, event.Slug); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.DeleteEvent(event.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	var regs int64
	db.Model(&models.EventRegistration{}).Where("event_id = ?", event.ID).Count(&regs)
	if regs != 0 {
		t.Fatalf("%d registrations remain after delete", regs)
	}

	err = svc.DeleteEvent(event.ID)
	wantKind(t, err, KindNotFound)
}

func TestListActiveEventsLabels(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)

	in := testEventInput("Intro to ROS")
	in.Category = models.CategoryWorkshop
	in.IsActive = true
	if _, err := svc.CreateEvent(in); err != nil {
		t.Fatalf("create event: %v", err)
	}
	hidden := testEventInput("Secret Session")
	if _, err := svc.CreateEvent(hidden); err != nil {
		t.Fatalf("create hidden event: %v", err)
	}

	events, err := svc.ListActiveEvents()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d active events, want 1", len(events))
	}
	if events[0].CategoryLabel != "Workshop" {
		t.Errorf("category label = %q, want Workshop", events[0].CategoryLabel)
	}
}
