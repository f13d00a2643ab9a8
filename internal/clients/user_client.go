package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"brokerage-api/internal/models"
)

// UserClient resolves users against the users service
type UserClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type UserClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type userResponse struct {
	User   *models.User `json:"user"`
	Status string       `json:"status"`
	Error  string       `json:"error,omitempty"`
}

func NewUserClient(config *UserClientConfig) *UserClient {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &UserClient{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// GetUser fetches a user by ID. Returns an error for unknown or inactive users.
func (c *UserClient) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	url := fmt.Sprintf("%s/api/users/%d", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("user %d not found", userID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("users service returned status %d", resp.StatusCode)
	}

	var userResp userResponse
	if err := json.NewDecoder(resp.Body).Decode(&userResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if userResp.Error != "" {
		return nil, fmt.Errorf("users service error: %s", userResp.Error)
	}

	if userResp.User == nil {
		return nil, fmt.Errorf("user %d not found", userID)
	}

	return userResp.User, nil
}

func (c *UserClient) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("users service health check failed with status %d", resp.StatusCode)
	}

	return nil
}
