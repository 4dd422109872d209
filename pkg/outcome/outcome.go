// Package outcome provides a client for the prize wheel outcome authority: the server
// that decides spin results and owns each user's attempt count and gift inventory.
package outcome

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/internal/models"
)

// CodeNoAttempts is the error code the authority uses when a user has no spins left
const CodeNoAttempts = "NO_ATTEMPTS"

// APIError is a non-2xx response decoded from the authority's error body
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("outcome authority returned %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("outcome authority returned %d: %s", e.Status, e.Message)
}

// IsNoAttempts reports whether err is the authority refusing a spin for lack of attempts
func IsNoAttempts(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeNoAttempts
}

// AnnounceResponse is the acknowledgement returned by Announce
type AnnounceResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client defines the calls the spin state machine makes to the authority
type Client interface {
	// Announce registers the user; safe to repeat
	Announce(ctx context.Context, userID int64) (*AnnounceResponse, error)
	// FetchStatus returns the authoritative attempts and gifts snapshot
	FetchStatus(ctx context.Context, userID int64) (*models.UserStatus, error)
	// Spin consumes one attempt server-side. Never retried automatically.
	Spin(ctx context.Context, userID int64) (*models.SpinResult, error)
	// FetchCatalog returns the prize catalog the authority draws from
	FetchCatalog(ctx context.Context) ([]models.Prize, error)
	// BaseURL returns the configured authority base URL
	BaseURL() string
}

// HTTPClient talks to the authority over its JSON HTTP API
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a client with a 15 second request timeout
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return NewHTTPClientWithHTTPClient(baseURL, &http.Client{Timeout: 15 * time.Second}, log)
}

// NewHTTPClientWithHTTPClient creates a client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured authority base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// userRequest is the body of every POST the client sends
type userRequest struct {
	UserID int64 `json:"user_id"`
}

// do executes one request and decodes a 200 body into response.
// Non-200 responses are decoded into *APIError.
func (c *HTTPClient) do(ctx context.Context, method, path string, body interface{}, response interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	reqURL := c.baseURL + path
	c.log.Debug("Outcome request", "method", method, "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach outcome authority: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Outcome response", "status", resp.StatusCode, "body", string(data))

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if err := json.Unmarshal(data, response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Announce registers the user with the authority
func (c *HTTPClient) Announce(ctx context.Context, userID int64) (*AnnounceResponse, error) {
	var resp AnnounceResponse
	if err := c.do(ctx, http.MethodPost, "/api/user", userRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchStatus returns the user's attempts and gifts
func (c *HTTPClient) FetchStatus(ctx context.Context, userID int64) (*models.UserStatus, error) {
	q := url.Values{}
	q.Set("user_id", strconv.FormatInt(userID, 10))

	var status models.UserStatus
	if err := c.do(ctx, http.MethodGet, "/api/get_user_status?"+q.Encode(), nil, &status); err != nil {
		return nil, err
	}
	if status.Gifts == nil {
		status.Gifts = []models.Gift{}
	}
	return &status, nil
}

// Spin asks the authority for one outcome
func (c *HTTPClient) Spin(ctx context.Context, userID int64) (*models.SpinResult, error) {
	var result models.SpinResult
	if err := c.do(ctx, http.MethodPost, "/api/spin", userRequest{UserID: userID}, &result); err != nil {
		return nil, err
	}
	if result.WonPrize.Name == "" {
		return nil, fmt.Errorf("spin response has no won_prize")
	}
	return &result, nil
}

// FetchCatalog returns the prize catalog
func (c *HTTPClient) FetchCatalog(ctx context.Context) ([]models.Prize, error) {
	var prizes []models.Prize
	if err := c.do(ctx, http.MethodGet, "/api/prizes", nil, &prizes); err != nil {
		return nil, err
	}
	return prizes, nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
