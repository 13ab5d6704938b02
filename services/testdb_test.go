package services

import (
	"fmt"
	"testing"

	"github.com/Pratyunmis/robosaga26/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database. _txlock=immediate makes write
// transactions take the write lock at BEGIN, which serializes the concurrent
// registration tests the same way row locks do on postgres.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s/robosaga_test.db?_txlock=immediate&_busy_timeout=10000&_journal_mode=WAL", t.TempDir())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.JoinRequest{},
		&models.Event{},
		&models.EventRegistration{},
		&models.HackawayRegistration{},
		&models.ProblemStatementSetting{},
		&models.ContactMessage{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: fmt.Sprintf("%s-%s@test.local", name, uuid.NewString()[:8]),
		Role:  models.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return user
}

// buildTeam creates a team of the given size through the real join flow:
// leader creates, members request and the leader accepts. Returns the team
// and the member users, leader first.
func buildTeam(t *testing.T, db *gorm.DB, name string, size int) (*models.Team, []*models.User) {
	t.Helper()
	svc := NewTeamService(db)

	leader := seedUser(t, db, name+"-leader")
	team, err := svc.CreateTeam(leader.ID, name)
	if err != nil {
		t.Fatalf("create team %s: %v", name, err)
	}
	users := []*models.User{leader}

	for i := 1; i < size; i++ {
		member := seedUser(t, db, fmt.Sprintf("%s-m%d", name, i))
		req, err := svc.RequestJoin(member.ID, team.Slug)
		if err != nil {
			t.Fatalf("request join %s: %v", name, err)
		}
		if _, err := svc.AcceptJoinRequest(leader.ID, req.ID); err != nil {
			t.Fatalf("accept join %s: %v", name, err)
		}
		users = append(users, member)
	}
	return team, users
}

func wantKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}
