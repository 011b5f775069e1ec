package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"peerlink/internal/core/domain"
)

// Client is the HTTP client the browser-side agents use against the
// relay API. Every call is a single request/response round trip; there
// is no persistent connection.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetToken sets the bearer token for deployments with auth enabled.
func (c *Client) SetToken(token string) {
	c.token = token
}

// envelope mirrors the relay's response convention.
type envelope struct {
	OK         bool               `json:"ok"`
	Mode       domain.BackendMode `json:"mode"`
	Error      string             `json:"error"`
	Room       *domain.Room       `json:"room"`
	Offer      *domain.Offer      `json:"offer"`
	Answer     *domain.Answer     `json:"answer"`
	Candidates []domain.Candidate `json:"candidates"`
}

func (c *Client) do(ctx context.Context, method, path string, reqBody interface{}) (*envelope, error) {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read relay response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode relay response (status %d): %w", resp.StatusCode, err)
	}
	if !env.OK {
		return nil, fmt.Errorf("relay returned %d: %s", resp.StatusCode, env.Error)
	}
	return &env, nil
}

// EnsureRoom creates or refreshes a room. Pass an empty id to have the
// relay generate one.
func (c *Client) EnsureRoom(ctx context.Context, room domain.RoomID) (*domain.Room, error) {
	reqBody := map[string]interface{}{}
	if room != "" {
		reqBody["room_id"] = room
	}
	env, err := c.do(ctx, http.MethodPost, "/api/v1/rooms", reqBody)
	if err != nil {
		return nil, err
	}
	return env.Room, nil
}

func (c *Client) PublishOffer(ctx context.Context, room domain.RoomID, host domain.AgentID, desc domain.SessionDescription) (domain.BackendMode, error) {
	env, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/rooms/%s/offer", room), map[string]interface{}{
		"host_id":     host,
		"description": desc,
	})
	if err != nil {
		return "", err
	}
	return env.Mode, nil
}

func (c *Client) ConsumeOffer(ctx context.Context, room domain.RoomID) (*domain.Offer, domain.BackendMode, error) {
	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/rooms/%s/offer", room), nil)
	if err != nil {
		return nil, "", err
	}
	return env.Offer, env.Mode, nil
}

func (c *Client) PublishAnswer(ctx context.Context, room domain.RoomID, host domain.AgentID, desc domain.SessionDescription) (domain.BackendMode, error) {
	env, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/rooms/%s/answer", room), map[string]interface{}{
		"host_id":     host,
		"description": desc,
	})
	if err != nil {
		return "", err
	}
	return env.Mode, nil
}

func (c *Client) ConsumeAnswer(ctx context.Context, room domain.RoomID, host domain.AgentID) (*domain.Answer, domain.BackendMode, error) {
	path := fmt.Sprintf("/api/v1/rooms/%s/answer?host_id=%s", room, url.QueryEscape(string(host)))
	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, "", err
	}
	return env.Answer, env.Mode, nil
}

func (c *Client) PublishCandidate(ctx context.Context, room domain.RoomID, role domain.Role, cand domain.Candidate) (domain.BackendMode, error) {
	env, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/rooms/%s/candidates", room), map[string]interface{}{
		"role":      role,
		"candidate": cand,
	})
	if err != nil {
		return "", err
	}
	return env.Mode, nil
}

func (c *Client) ConsumeCandidates(ctx context.Context, room domain.RoomID, role domain.Role) ([]domain.Candidate, domain.BackendMode, error) {
	path := fmt.Sprintf("/api/v1/rooms/%s/candidates?role=%s", room, url.QueryEscape(string(role)))
	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, "", err
	}
	return env.Candidates, env.Mode, nil
}
