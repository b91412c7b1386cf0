package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"likebot/internal/config"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client implements Service against the content service HTTP API.
type Client struct {
	baseURL  string
	username string
	token    string
	client   HTTPDoer
}

// NewClient constructs a content service client from configuration.
func NewClient(cfg *config.Config) *Client {
	return NewClientWithDoer(cfg, &http.Client{Timeout: cfg.RequestTimeout()})
}

// NewClientWithDoer constructs a client using the provided HTTP backend.
func NewClientWithDoer(cfg *config.Config, doer HTTPDoer) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.Service.BaseURL, "/"),
		username: cfg.Service.Username,
		token:    cfg.Service.Token,
		client:   doer,
	}
}

type profileResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"username"`
	Private   bool   `json:"is_private"`
	ItemCount int    `json:"media_count"`
	Connected bool   `json:"followed_by_viewer"`
}

func (c *Client) FetchProfile(ctx context.Context, name string) (*Profile, error) {
	path := "/v1/users/" + url.PathEscape(name)
	var resp profileResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &Profile{
		ID:        resp.ID,
		Name:      resp.Name,
		Private:   resp.Private,
		ItemCount: resp.ItemCount,
		Connected: resp.Connected,
	}, nil
}

type itemResponse struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

func (c *Client) RecentItems(ctx context.Context, profileID int64, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 1
	}
	path := fmt.Sprintf("/v1/users/%d/media?limit=%d", profileID, limit)
	var resp itemResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, Item{ID: it.ID, ProfileID: profileID})
	}
	return items, nil
}

func (c *Client) PerformAction(ctx context.Context, itemID string) error {
	path := "/v1/media/" + url.PathEscape(itemID) + "/like"
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

type connectionsResponse struct {
	Connections []string `json:"followers"`
	NextCursor  string   `json:"next_cursor"`
}

func (c *Client) CurrentConnections(ctx context.Context) ([]string, error) {
	var (
		names  []string
		cursor string
	)
	for {
		path := "/v1/users/" + url.PathEscape(c.username) + "/followers"
		if cursor != "" {
			path += "?cursor=" + url.QueryEscape(cursor)
		}
		var resp connectionsResponse
		if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		names = append(names, resp.Connections...)
		if resp.NextCursor == "" {
			return names, nil
		}
		cursor = resp.NextCursor
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		errBody := strings.TrimSpace(string(bodyBytes))
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
		case http.StatusForbidden:
			return fmt.Errorf("%s %s: %w", method, path, ErrAuthRequired)
		}
		return &StatusError{Code: resp.StatusCode, Method: method, Path: path, Body: errBody}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
