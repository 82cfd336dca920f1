// JSON-over-HTTP client shared by the Spotify and YouTube Music adapters
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/seedmix/internal/shared"
)

// APIClient performs GET requests against a JSON API and decodes the response body.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	header     http.Header
}

// NewAPIClient creates a client rooted at baseURL. A nil client uses [http.DefaultClient].
func NewAPIClient(baseURL string, client *http.Client) *APIClient {
	if client == nil {
		client = http.DefaultClient
	}

	return &APIClient{
		baseURL:    baseURL,
		httpClient: client,
		header:     make(http.Header),
	}
}

// SetHeader adds a header sent with every request.
func (a *APIClient) SetHeader(key, value string) {
	a.header.Set(key, value)
}

// BaseURL returns the root all request paths are appended to.
func (a *APIClient) BaseURL() string {
	return a.baseURL
}

// GetJSON performs a GET request to path with query and decodes the JSON body into result.
//
// 404 responses wrap [shared.ErrNotFound], 429 and 5xx responses wrap [shared.ErrProviderUnavailable]
// and every other non-2xx response wraps [shared.ErrAPIRequest].
func (a *APIClient) GetJSON(ctx context.Context, path string, query url.Values, result any) error {
	fullURL := a.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range a.header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", shared.ErrProviderTimeout, err)
		}
		return fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, body)
	}

	if result != nil {
		if err := shared.UnmarshalJSON(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func statusError(status int, body []byte) error {
	var detail struct {
		Detail string `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := ""
	if err := shared.UnmarshalJSON(body, &detail); err == nil {
		msg = detail.Detail
		if msg == "" {
			msg = detail.Error.Message
		}
	}

	sentinel := shared.ErrAPIRequest
	switch {
	case status == http.StatusNotFound:
		sentinel = shared.ErrNotFound
	case status == http.StatusTooManyRequests || status >= 500:
		sentinel = shared.ErrProviderUnavailable
	}

	if msg != "" {
		return fmt.Errorf("%w: status %d: %s", sentinel, status, msg)
	}
	return fmt.Errorf("%w: status %d", sentinel, status)
}
