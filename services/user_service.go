package services

import (
	"log"
	"strings"
	"time"

	"github.com/Pratyunmis/robosaga26/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService mirrors identities from the auth provider into the local users
// table and manages the profile fields participants fill in themselves.
type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// SyncUser upserts a user record from the identity provider. New users get
// the default participant role; an existing row keeps its role and profile
// fields and only refreshes name, email and image.
func (s *UserService) SyncUser(id, name, email, image string) (*models.User, error) {
	if id == "" || email == "" {
		return nil, Err(KindInvalidInput, "user id and email are required")
	}
	user := &models.User{
		ID:    id,
		Name:  name,
		Email: email,
		Image: image,
		Role:  models.RoleUser,
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "image", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return nil, err
	}
	return s.GetProfile(id)
}

// ProfileInput is the self-service profile payload.
type ProfileInput struct {
	RollNo  string `json:"roll_no"`
	Branch  string `json:"branch"`
	PhoneNo string `json:"phone_no"`
}

// UpdateProfile fills in the registration details a participant provides.
func (s *UserService) UpdateProfile(userID string, in ProfileInput) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotFound, "user not found")
		}
		return nil, err
	}
	updates := map[string]interface{}{
		"roll_no":  strings.TrimSpace(in.RollNo),
		"branch":   strings.TrimSpace(in.Branch),
		"phone_no": strings.TrimSpace(in.PhoneNo),
	}
	if err := s.DB.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetProfile(userID)
}

// GetProfile loads a user by id.
func (s *UserService) GetProfile(userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotFound, "user not found")
		}
		return nil, err
	}
	return &user, nil
}

// ContactInput is the public contact form payload.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// CreateMessage stores a contact form submission.
func (s *UserService) CreateMessage(in ContactInput) (*models.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if in.Name == "" || in.Email == "" || in.Message == "" {
		return nil, Err(KindInvalidInput, "name, email and message are required")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, Err(KindInvalidInput, "invalid email address")
	}
	msg := &models.ContactMessage{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Subject:   strings.TrimSpace(in.Subject),
		Message:   in.Message,
		CreatedAt: time.Now(),
	}
	if err := s.DB.Create(msg).Error; err != nil {
		return nil, err
	}
	log.Printf("[CONTACT] new message from %s", msg.Email)
	return msg, nil
}
