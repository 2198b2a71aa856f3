package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/planner/internal/common"
	"github.com/dmitrijs2005/planner/internal/models"
)

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPClient talks JSON over HTTP to the remote provider.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the provider at baseURL. The timeout
// bounds every request including the body read.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp authResponse
	err := c.post(ctx, "/v1/auth/register", "", authRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &AuthResult{UID: resp.UID, Email: resp.Email, Token: resp.Token}, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp authResponse
	err := c.post(ctx, "/v1/auth/login", "", authRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &AuthResult{UID: resp.UID, Email: resp.Email, Token: resp.Token}, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.post(ctx, "/v1/auth/logout", token, nil, nil)
}

func (c *HTTPClient) SyncData(ctx context.Context, token string, payload *models.SyncPayload) error {
	return c.post(ctx, "/v1/sync", token, payload, nil)
}

func (c *HTTPClient) GetCloudData(ctx context.Context, token string) (*models.SyncPayload, error) {
	var payload models.SyncPayload
	if err := c.get(ctx, "/v1/sync", token, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.get(ctx, "/v1/health", "", nil)
}

func (c *HTTPClient) get(ctx context.Context, path, token string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.doRequest(req, token, result)
}

func (c *HTTPClient) post(ctx context.Context, path, token string, body, result any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doRequest(req, token, result)
}

func (c *HTTPClient) doRequest(req *http.Request, token string, result any) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// transport failure, timeout or cancellation: the provider
		// is unreachable as far as the caller is concerned
		return fmt.Errorf("%w: %s", common.ErrorProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %s", common.ErrorProviderUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, body)
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// statusError maps an HTTP failure onto the error taxonomy. Server-side
// failures count as unreachability; client-side rejections keep their
// meaning so the caller never falls back on a bad password.
func statusError(code int, body []byte) error {
	msg := fmt.Sprintf("status %d", code)
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		msg = er.Error
	}

	switch {
	case code >= 500:
		return fmt.Errorf("%w: %s", common.ErrorProviderUnavailable, msg)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, msg)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrorUserNotFound, msg)
	case code == http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, msg)
	default:
		return fmt.Errorf("provider request failed: %s", msg)
	}
}
