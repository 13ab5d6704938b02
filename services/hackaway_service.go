package services

import (
	"log"

	"github.com/Pratyunmis/robosaga26/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HackawayService registers teams for hackathon problem statements under a
// global per-statement capacity. The count-and-insert runs inside one
// transaction with the settings row locked, so two teams racing for the last
// slot serialize at the store and exactly one commits.
type HackawayService struct {
	DB *gorm.DB
}

func NewHackawayService(db *gorm.DB) *HackawayService {
	return &HackawayService{DB: db}
}

const (
	minConfigurableMax = 1
	maxConfigurableMax = 100
)

// Settings returns all 12 problem statements: compiled-in defaults left-merged
// with whatever override rows the admin has persisted.
func (s *HackawayService) Settings() ([]models.ProblemStatementSetting, error) {
	var overrides []models.ProblemStatementSetting
	if err := s.DB.Find(&overrides).Error; err != nil {
		return nil, err
	}
	byID := make(map[int]models.ProblemStatementSetting, len(overrides))
	for _, o := range overrides {
		byID[o.ID] = o
	}

	merged := make([]models.ProblemStatementSetting, 0, len(models.DefaultProblemStatements))
	for _, def := range models.DefaultProblemStatements {
		if o, ok := byID[def.ID]; ok {
			merged = append(merged, o)
		} else {
			merged = append(merged, def)
		}
	}
	return merged, nil
}

// Setting returns the effective setting for one problem statement.
func (s *HackawayService) Setting(no int) (*models.ProblemStatementSetting, error) {
	def := models.DefaultProblemStatement(no)
	if def == nil {
		return nil, Errf(KindNotFound, "invalid problem statement %d", no)
	}
	var override models.ProblemStatementSetting
	err := s.DB.Where("id = ?", no).First(&override).Error
	if err == gorm.ErrRecordNotFound {
		return def, nil
	}
	if err != nil {
		return nil, err
	}
	return &override, nil
}

// ProblemStatementStat is the public fill level of one track.
type ProblemStatementStat struct {
	ProblemStatementNo int    `json:"problem_statement_no"`
	Title              string `json:"title"`
	Count              int64  `json:"count"`
	Max                int    `json:"max"`
	IsActive           bool   `json:"is_active"`
	IsFull             bool   `json:"is_full"`
}

// Stats reports count/max/full per problem statement. FULL is count >= max
// regardless of how that state arose (an admin lowering max below the current
// count is an allowed overshoot).
func (s *HackawayService) Stats() ([]ProblemStatementStat, error) {
	settings, err := s.Settings()
	if err != nil {
		return nil, err
	}

	type row struct {
		ProblemStatementNo int
		N                  int64
	}
	var rows []row
	err = s.DB.Model(&models.HackawayRegistration{}).
		Select("problem_statement_no, COUNT(*) AS n").
		Group("problem_statement_no").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int64, len(rows))
	for _, r := range rows {
		counts[r.ProblemStatementNo] = r.N
	}

	stats := make([]ProblemStatementStat, 0, len(settings))
	for _, ps := range settings {
		n := counts[ps.ID]
		stats = append(stats, ProblemStatementStat{
			ProblemStatementNo: ps.ID,
			Title:              ps.Title,
			Count:              n,
			Max:                ps.MaxParticipants,
			IsActive:           ps.IsActive,
			IsFull:             n >= int64(ps.MaxParticipants),
		})
	}
	return stats, nil
}

// Register assigns the caller's team to a problem statement. On a team that is
// already registered it returns the existing registration together with an
// AlreadyRegistered error, which handlers render as an informational success.
func (s *HackawayService) Register(userID string, problemStatementNo int) (*models.HackawayRegistration, error) {
	if userID == "" {
		return nil, Err(KindUnauthenticated, "you must be logged in to register")
	}

	var membership models.TeamMember
	if err := s.DB.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotInTeam, "you must join or create a team to register for HackAway")
		}
		return nil, err
	}
	teamID := membership.TeamID

	if existing, err := s.teamRegistration(teamID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, Err(KindAlreadyRegistered, "your team is already registered for HackAway")
	}

	if models.DefaultProblemStatement(problemStatementNo) == nil {
		return nil, Errf(KindNotFound, "invalid problem statement %d", problemStatementNo)
	}

	var reg *models.HackawayRegistration
	err := withRetry(func() error {
		reg = nil
		return s.DB.Transaction(func(tx *gorm.DB) error {
			setting, err := s.lockSetting(tx, problemStatementNo)
			if err != nil {
				return err
			}
			if !setting.IsActive {
				return Errf(KindProblemStatementInactive,
					"%q is not open for registration", setting.Title)
			}

			// Re-checked inside the transaction: membership and the capacity
			// count must hold at commit time, not just at the earlier read.
			var size int64
			if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&size).Error; err != nil {
				return err
			}
			if size < models.MinTeamSize {
				return Errf(KindTeamTooSmall,
					"your team must have at least %d members to register for HackAway", models.MinTeamSize)
			}
			if size > models.MaxTeamSize {
				return Errf(KindTeamTooLarge,
					"HackAway teams can have a maximum of %d members", models.MaxTeamSize)
			}

			var count int64
			if err := tx.Model(&models.HackawayRegistration{}).
				Where("problem_statement_no = ?", problemStatementNo).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(setting.MaxParticipants) {
				return Errf(KindProblemStatementFull,
					"maximum participants (%d) reached for %q, please select a different problem statement",
					setting.MaxParticipants, setting.Title)
			}

			r := &models.HackawayRegistration{
				ID:                 uuid.NewString(),
				TeamID:             teamID,
				ProblemStatementNo: problemStatementNo,
			}
			if err := tx.Create(r).Error; err != nil {
				if isDuplicate(err) {
					return Err(KindAlreadyRegistered, "your team is already registered for HackAway")
				}
				return err
			}
			reg = r
			return nil
		})
	})
	if err != nil {
		if KindOf(err) == KindAlreadyRegistered {
			if existing, lookupErr := s.teamRegistration(teamID); lookupErr == nil && existing != nil {
				return existing, err
			}
		}
		return nil, err
	}
	log.Printf("[HACKAWAY] team %s registered for problem statement %d", teamID, problemStatementNo)
	return reg, nil
}

// TeamStatus reports whether the caller's team holds a registration.
type TeamStatus struct {
	IsRegistered       bool   `json:"is_registered"`
	NoTeam             bool   `json:"no_team,omitempty"`
	TeamName           string `json:"team_name,omitempty"`
	ProblemStatementNo int    `json:"problem_statement_no,omitempty"`
	PresentationLink   string `json:"presentation_link,omitempty"`
}

func (s *HackawayService) Status(userID string) (*TeamStatus, error) {
	var membership models.TeamMember
	if err := s.DB.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &TeamStatus{NoTeam: true}, nil
		}
		return nil, err
	}

	reg, err := s.teamRegistration(membership.TeamID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return &TeamStatus{}, nil
	}

	var team models.Team
	if err := s.DB.Where("id = ?", membership.TeamID).First(&team).Error; err != nil {
		return nil, err
	}
	return &TeamStatus{
		IsRegistered:       true,
		TeamName:           team.Name,
		ProblemStatementNo: reg.ProblemStatementNo,
		PresentationLink:   reg.PresentationLink,
	}, nil
}

// SetMaxParticipants upserts the admin override for one problem statement.
// Lowering max below the current registration count does not evict anyone;
// the track just reads as FULL from then on.
func (s *HackawayService) SetMaxParticipants(problemStatementNo, newMax int) (*models.ProblemStatementSetting, error) {
	def := models.DefaultProblemStatement(problemStatementNo)
	if def == nil {
		return nil, Errf(KindNotFound, "invalid problem statement %d", problemStatementNo)
	}
	if newMax < minConfigurableMax || newMax > maxConfigurableMax {
		return nil, Errf(KindInvalidInput, "max participants must be between %d and %d",
			minConfigurableMax, maxConfigurableMax)
	}

	setting, err := s.Setting(problemStatementNo)
	if err != nil {
		return nil, err
	}
	setting.MaxParticipants = newMax
	err = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"max_participants"}),
	}).Create(setting).Error
	if err != nil {
		return nil, err
	}
	log.Printf("[HACKAWAY] problem statement %d max set to %d", problemStatementNo, newMax)
	return setting, nil
}

// SetActive toggles a problem statement open or closed for registration.
func (s *HackawayService) SetActive(problemStatementNo int, active bool) (*models.ProblemStatementSetting, error) {
	def := models.DefaultProblemStatement(problemStatementNo)
	if def == nil {
		return nil, Errf(KindNotFound, "invalid problem statement %d", problemStatementNo)
	}
	setting, err := s.Setting(problemStatementNo)
	if err != nil {
		return nil, err
	}
	setting.IsActive = active
	err = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_active"}),
	}).Create(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

// UpdateResult records rank / qualification / presentation link on a
// registration (admin result declaration).
func (s *HackawayService) UpdateResult(registrationID string, rank int, qualified bool, presentationLink string) (*models.HackawayRegistration, error) {
	var reg models.HackawayRegistration
	if err := s.DB.Where("id = ?", registrationID).First(&reg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotFound, "registration not found")
		}
		return nil, err
	}
	updates := map[string]interface{}{
		"rank":      rank,
		"qualified": qualified,
	}
	if presentationLink != "" {
		updates["presentation_link"] = presentationLink
	}
	if err := s.DB.Model(&reg).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// SetPresentationLink stores the uploaded deck URL on the caller's team
// registration. Leader-only, since the link represents the whole team.
func (s *HackawayService) SetPresentationLink(userID, url string) (*models.HackawayRegistration, error) {
	var membership models.TeamMember
	if err := s.DB.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Err(KindNotInTeam, "you are not in a team")
		}
		return nil, err
	}
	if membership.Role != models.TeamRoleLeader {
		return nil, Err(KindUnauthorized, "only the team leader can submit the presentation")
	}

	reg, err := s.teamRegistration(membership.TeamID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, Err(KindNotFound, "your team is not registered for HackAway")
	}
	if err := s.DB.Model(reg).Update("presentation_link", url).Error; err != nil {
		return nil, err
	}
	reg.PresentationLink = url
	return reg, nil
}

// ListRegistrations returns every registration with team and roster, for the
// admin dashboard.
func (s *HackawayService) ListRegistrations() ([]models.HackawayRegistration, error) {
	var regs []models.HackawayRegistration
	err := s.DB.
		Preload("Team").
		Preload("Team.Members").
		Preload("Team.Members.User").
		Order("registered_at DESC").
		Find(&regs).Error
	return regs, err
}

func (s *HackawayService) teamRegistration(teamID string) (*models.HackawayRegistration, error) {
	var reg models.HackawayRegistration
	err := s.DB.Where("team_id = ?", teamID).First(&reg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// lockSetting fetches the settings row FOR UPDATE, materializing it from the
// compiled-in default first if no override exists yet. Holding the row lock
// for the rest of the transaction is what serializes competing registrations
// for the same problem statement.
func (s *HackawayService) lockSetting(tx *gorm.DB, no int) (*models.ProblemStatementSetting, error) {
	var setting models.ProblemStatementSetting
	err := forUpdate(tx).Where("id = ?", no).First(&setting).Error
	if err == nil {
		return &setting, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	setting = *models.DefaultProblemStatement(no)
	if err := tx.Create(&setting).Error; err != nil {
		if isDuplicate(err) {
			// Another request materialized the row first; retry the operation.
			return nil, Err(KindTransientStoreConflict, "problem statement settings changed underfoot")
		}
		return nil, err
	}
	return &setting, nil
}
