package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/Pratyunmis/robosaga26/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserSyncClient pulls account records from the auth provider so the local
// users table stays current even when a participant has never hit the API.
type UserSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewUserSyncClient(db *gorm.DB) *UserSyncClient {
	baseURL := os.Getenv("SYNC_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("SYNC_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("SYNC_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("SYNC_SERVICE_TOKEN environment variable is required for user sync")
	}

	return &UserSyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type syncedUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

func (c *UserSyncClient) GetChangedUsers(ctx context.Context, since time.Time) ([]syncedUser, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/accounts", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call sync service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sync service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Users []syncedUser `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode sync service response: %w", err)
	}

	return response.Users, nil
}

// PollUsers upserts changed accounts on an interval until ctx is cancelled.
// Roles and profile fields are owned locally and never overwritten by sync.
func PollUsers(ctx context.Context, client *UserSyncClient, pollInterval time.Duration) {
	log.Println("Starting user account polling...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("User polling stopped.")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()

			changed, err := client.GetChangedUsers(ctx, lastSyncTime)
			if err != nil {
				log.Printf("[UserSync] error polling accounts: %v", err)
				continue
			}

			if len(changed) == 0 {
				continue
			}

			users := make([]models.User, 0, len(changed))
			for _, c := range changed {
				if c.ID == "" || c.Email == "" {
					continue
				}
				users = append(users, models.User{
					ID:    c.ID,
					Name:  c.Name,
					Email: c.Email,
					Image: c.Image,
					Role:  models.RoleUser,
				})
			}
			if len(users) == 0 {
				continue
			}

			if err := client.DB.Clauses(
				clause.OnConflict{
					Columns: []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"name",
						"email",
						"image",
						"updated_at",
					}),
				},
			).Create(&users).Error; err != nil {
				// Keep lastSyncTime so the same window is retried next tick.
				log.Printf("[UserSync] failed to upsert %d account(s): %v", len(users), err)
				continue
			}

			lastSyncTime = logTime
			log.Printf("[UserSync] upserted %d account(s)", len(users))
		}
	}
}
