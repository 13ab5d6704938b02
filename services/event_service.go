package services

import (
	"log"
	"strings"
	"time"

	"github.com/Pratyunmis/robosaga26/models"
	"github.com/Pratyunmis/robosaga26/utils"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// EventService covers the admin event catalogue and team registration for
// events. Generic events have no global capacity limit; only the hackathon
// flow is capacity-gated.
type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

var titleCaser = cases.Title(language.English)

// EventInput is the admin create/update payload.
type EventInput struct {
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	MaxScore    int       `json:"max_score"`
	IsActive    bool      `json:"is_active"`
}

func (in *EventInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Err(KindInvalidInput, "event name is required")
	}
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = utils.EventSlug(in.Name)
	}
	if !models.ValidEventCategory(in.Category) {
		return Errf(KindInvalidInput, "invalid category %q", in.Category)
	}
	if in.StartTime.IsZero() {
		return Err(KindInvalidInput, "start_time is required")
	}
	if !in.EndTime.IsZero() && !in.EndTime.After(in.StartTime) {
		return Err(KindInvalidInput, "end_time must be after start_time")
	}
	if in.MaxScore < 0 {
		return Err(KindInvalidInput, "max_score must be non-negative")
	}
	if in.MaxScore == 0 {
		in.MaxScore = 100
	}
	return nil
}

// CreateEvent adds an event to the catalogue (admin only, enforced upstream).
func (s *EventService) CreateEvent(in EventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	event := &models.Event{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Category:    in.Category,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		MaxScore:    in.MaxScore,
		IsActive:    in.IsActive,
	}
	if err := s.DB.Create(event).Error; err != nil {
		if isDuplicate(err) {
			return nil, Errf(KindInvalidInput, "an event with slug %q already exists", in.Slug)
		}
		return nil, err
	}
	log.Printf("[EVENT] created %q (%s)", event.Name, event.Slug)
	return event, nil
}

// UpdateEvent replaces the editable fields of an event.
func (s *EventService) UpdateEvent(id string, in EventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var event models.Event
	if err := s.DB.Where("id = ?", id).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotFound, "event not found")
		}
		return nil, err
	}
	updates := map[string]interface{}{
		"name":        in.Name,
		"slug":        in.Slug,
		"description": in.Description,
		"category":    in.Category,
		"start_time":  in.StartTime,
		"end_time":    in.EndTime,
		"max_score":   in.MaxScore,
		"is_active":   in.IsActive,
	}
	if err := s.DB.Model(&event).Updates(updates).Error; err != nil {
		if isDuplicate(err) {
			return nil, Errf(KindInvalidInput, "an event with slug %q already exists", in.Slug)
		}
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes the event and its registrations in one transaction.
func (s *EventService) DeleteEvent(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.EventRegistration{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Event{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return Err(KindNotFound, "event not found")
		}
		return nil
	})
}

// EventListing is the public events list shape.
type EventListing struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"category_label"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

// ListActiveEvents returns all active events for the public site.
func (s *EventService) ListActiveEvents() ([]EventListing, error) {
	var events []models.Event
	if err := s.DB.Where("is_active = ?", true).Order("start_time ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	listings := make([]EventListing, 0, len(events))
	for _, e := range events {
		listings = append(listings, EventListing{
			ID:            e.ID,
			Name:          e.Name,
			Slug:          e.Slug,
			Description:   e.Description,
			Category:      e.Category,
			CategoryLabel: titleCaser.String(e.Category),
			StartTime:     e.StartTime,
			EndTime:       e.EndTime,
		})
	}
	return listings, nil
}

// RegisterForEvent registers the caller's team for an event. Repeating the
// call for the same (event, team) pair reports the existing registration as
// an informational success, so the flow is safe to retry.
func (s *EventService) RegisterForEvent(userID, eventSlug string) (*models.EventRegistration, error) {
	if userID == "" {
		return nil, Err(KindUnauthenticated, "you must be logged in to register")
	}

	var membership models.TeamMember
	if err := s.DB.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotInTeam, "you must join or create a team to register for events")
		}
		return nil, err
	}

	var event models.Event
	if err := s.DB.Where("slug = ? AND is_active = ?", eventSlug, true).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotFound, "event not found")
		}
		return nil, err
	}

	var existing models.EventRegistration
	err := s.DB.Where("event_id = ? AND team_id = ?", event.ID, membership.TeamID).First(&existing).Error
	if err == nil {
		return &existing, Err(KindAlreadyRegistered, "your team is already registered for this event")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	reg := &models.EventRegistration{
		ID:      uuid.NewString(),
		EventID: event.ID,
		TeamID:  membership.TeamID,
	}
	if err := s.DB.Create(reg).Error; err != nil {
		if isDuplicate(err) {
			// Lost a race against a teammate's registration; same end-state.
			s.DB.Where("event_id = ? AND team_id = ?", event.ID, membership.TeamID).First(&existing)
			return &existing, Err(KindAlreadyRegistered, "your team is already registered for this event")
		}
		return nil, err
	}
	return reg, nil
}

// UserRegistrations lists the event slugs the caller's team is registered for.
func (s *EventService) UserRegistrations(userID string) ([]string, error) {
	var membership models.TeamMember
	if err := s.DB.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return []string{}, nil
		}
		return nil, err
	}

	var slugs []string
	err := s.DB.Model(&models.EventRegistration{}).
		Joins("JOIN events ON events.id = event_registrations.event_id").
		Where("event_registrations.team_id = ?", membership.TeamID).
		Pluck("events.slug", &slugs).Error
	return slugs, err
}

// SetResult records score and rank on a registration and mirrors the score
// onto the team total used by the leaderboard.
func (s *EventService) SetResult(registrationID string, score, rank int) (*models.EventRegistration, error) {
	var reg models.EventRegistration
	if err := s.DB.Where("id = ?", registrationID).First(&reg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotFound, "registration not found")
		}
		return nil, err
	}

	var event models.Event
	if err := s.DB.Where("id = ?", reg.EventID).First(&event).Error; err != nil {
		return nil, err
	}
	if score < 0 || score > event.MaxScore {
		return nil, Errf(KindInvalidInput, "score must be between 0 and %d", event.MaxScore)
	}

	delta := score - reg.Score
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&reg).Updates(map[string]interface{}{
			"score": score,
			"rank":  rank,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Team{}).Where("id = ?", reg.TeamID).
			Update("score", gorm.Expr("score + ?", delta)).Error
	})
	if err != nil {
		return nil, err
	}
	reg.Score = score
	reg.Rank = rank
	return &reg, nil
}

// ListRegistrations returns all registrations with event and team context for
// the admin dashboard.
func (s *EventService) ListRegistrations() ([]models.EventRegistration, error) {
	var regs []models.EventRegistration
	err := s.DB.
		Preload("Event").
		Preload("Team").
		Order("registered_at DESC").
		Find(&regs).Error
	return regs, err
}
