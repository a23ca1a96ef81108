// Package api is the HTTP client for the remote invitation service. It owns
// the wire contract (endpoints, response envelopes) and translates wire
// outcomes into the three failure classes the rest of the client handles:
// transport errors, *RemoteError, and lenient empty results.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/porteria/visitas-app/internal/config"
	"github.com/porteria/visitas-app/internal/logger"
	"github.com/porteria/visitas-app/internal/models"
)

// Client talks to the invitation service. Safe for concurrent use after
// SetToken has been called.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	log        *slog.Logger
}

// New builds a Client from configuration. The transport timeout is the only
// deadline the client imposes; individual calls are not retried.
func New(cfg *config.Config, log *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.APIBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		log: log,
	}
}

// SetToken installs the bearer token sent with subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// envelope is the service's uniform response wrapper. Success is a pointer:
// some endpoints omit the flag entirely on success.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *envelope) failed() bool {
	return e.Success != nil && !*e.Success
}

// ListInvitations fetches the invitations owned by userID (already
// normalized by the caller), in server order.
//
// A response without a failure flag whose data is not an array degrades to
// an empty list rather than an error; that mirrors the service's historical
// behavior for users with no invitations, so it is logged loudly but not
// surfaced.
func (c *Client) ListInvitations(ctx context.Context, userID string) ([]models.Invitation, error) {
	env, err := c.do(ctx, http.MethodGet, "/invitations?userId="+url.QueryEscape(userID), nil)
	if err != nil {
		return nil, err
	}
	if env.failed() {
		return nil, &RemoteError{Message: env.Message}
	}
	if data := bytes.TrimSpace(env.Data); len(data) > 0 && data[0] == '[' {
		var list []models.Invitation
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decoding invitation list: %w", err)
		}
		return list, nil
	}
	c.log.Warn("list payload is not an array, treating as empty",
		"user", userID, "data", truncate(env.Data, 200))
	return []models.Invitation{}, nil
}

// GetInvitation fetches a single invitation by id. The detail record is
// considered more authoritative than any list entry for the same id.
func (c *Client) GetInvitation(ctx context.Context, id models.ID) (*models.Invitation, error) {
	env, err := c.do(ctx, http.MethodGet, "/invitations/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return nil, err
	}
	data := bytes.TrimSpace(env.Data)
	if env.failed() || env.Success == nil || len(data) == 0 || string(data) == "null" {
		return nil, &RemoteError{Message: env.Message}
	}
	var inv models.Invitation
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("decoding invitation %s: %w", id, err)
	}
	return &inv, nil
}

// CancelInvitation asks the service to cancel the invitation, attributing
// the action to cancelledBy (a normalized user identifier).
func (c *Client) CancelInvitation(ctx context.Context, id models.ID, cancelledBy string) error {
	body := map[string]string{"cancelledBy": cancelledBy}
	env, err := c.do(ctx, http.MethodPost, "/invitations/"+url.PathEscape(id.String())+"/cancel", body)
	if err != nil {
		return err
	}
	if env.failed() || env.Success == nil {
		return &RemoteError{Message: env.Message}
	}
	return nil
}

// DeleteInvitation removes the invitation from the service.
func (c *Client) DeleteInvitation(ctx context.Context, id models.ID) error {
	env, err := c.do(ctx, http.MethodDelete, "/invitations/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return err
	}
	if env.failed() || env.Success == nil {
		return &RemoteError{Message: env.Message}
	}
	return nil
}

// LoginResponse is the mobile login payload. Units is kept raw; the client
// only carries it through.
type LoginResponse struct {
	Username     string          `json:"username"`
	Role         string          `json:"userrol"`
	TempPassword int             `json:"passTemp"`
	Roles        []string        `json:"roles"`
	Units        json.RawMessage `json:"unidades"`
	Token        string          `json:"token"`
	Message      string          `json:"message"`
}

// Login authenticates with RUT and full name. A 403 carries the service's
// rejection message.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	raw, status, err := c.request(ctx, http.MethodPost, "/mobile/auth/login", body)
	if err != nil {
		return nil, err
	}
	var resp LoginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}
	if status == http.StatusForbidden {
		return nil, &RemoteError{Message: resp.Message}
	}
	if status >= 400 {
		return nil, fmt.Errorf("login failed with status %d", status)
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// do performs a request against an envelope-shaped endpoint. Server-reported
// failures are left in the envelope for the caller to classify; only
// transport-level problems and unparseable bodies come back as errors.
func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	raw, status, err := c.request(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if status >= 400 {
			return nil, fmt.Errorf("request failed with status %d: %s", status, truncate(raw, 200))
		}
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if status >= 400 && !env.failed() {
		return nil, fmt.Errorf("request failed with status %d", status)
	}
	return &env, nil
}

// request is the transport core: marshal, send, read. Every request carries
// a fresh X-Request-ID so client and service logs can be correlated.
func (c *Client) request(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("building request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	// The caller's context may carry an operation-scoped logger; every
	// record from this request joins it under the same request id.
	log := logger.FromContext(ctx).With("method", method, "path", path, "request_id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", "error", err)
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}
	log.Debug("request completed",
		"status", resp.StatusCode,
		"elapsed", time.Since(start))
	return respBody, resp.StatusCode, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
