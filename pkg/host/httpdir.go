package host

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPDirectory resolves users and groups through the hosting
// application's integration API.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

func NewHTTPDirectory(baseURL string) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type userPayload struct {
	Username   string `json:"username"`
	Reputation int    `json:"reputation"`
	PostCount  int    `json:"postcount"`
	JoinDate   int64  `json:"joindate"` // epoch milliseconds
}

func (d *HTTPDirectory) GetUserData(ctx context.Context, uid int64) (UserData, error) {
	var payload userPayload
	if err := d.getJSON(ctx, fmt.Sprintf("%s/api/user/%d", d.baseURL, uid), &payload); err != nil {
		return UserData{}, err
	}
	return UserData{
		Username:   payload.Username,
		Reputation: payload.Reputation,
		PostCount:  payload.PostCount,
		JoinDate:   time.UnixMilli(payload.JoinDate),
	}, nil
}

func (d *HTTPDirectory) GetUserGroups(ctx context.Context, uid int64) ([]Group, error) {
	var payload []struct {
		Name string `json:"name"`
	}
	if err := d.getJSON(ctx, fmt.Sprintf("%s/api/user/%d/groups", d.baseURL, uid), &payload); err != nil {
		return nil, err
	}
	groups := make([]Group, 0, len(payload))
	for _, g := range payload {
		groups = append(groups, Group{Name: g.Name})
	}
	return groups, nil
}

func (d *HTTPDirectory) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build host request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("call host: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("host returned %d for %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode host response: %w", err)
	}
	return nil
}
