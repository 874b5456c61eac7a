// Package origin talks to the OnWeekdays photo service.
package origin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ulmus/onweekdays/pkg/artsource"
	"github.com/ulmus/onweekdays/util/log"
)

const (
	maxErrorBody = 512     // kept for the log
	maxPhotoBody = 1 << 20 // a photo record is a few hundred bytes
)

// Error is a failed origin request. It tells the policy whether trying again soon may help.
type Error struct {
	StatusCode int // 0 when no response was received
	Err        error
	transient  bool
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("origin returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("origin request failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether the failure is worth a quick retry.
func (e *Error) Transient() bool { return e.transient }

type photoResponse struct {
	Photo *artsource.PhotoRecord `json:"photo"`
}

// Client fetches photos from the origin.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a Client for photoURL. A nil httpClient uses a plain client with a 30s timeout.
func NewClient(photoURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{url: photoURL, httpClient: httpClient}
}

// NewHTTPClient builds the HTTP client used for origin requests.
func NewHTTPClient(userAgent string, timeout time.Duration, tokens TokenSource) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &UserAgentTransport{
			RoundTripper: &BearerTransport{RoundTripper: http.DefaultTransport, Tokens: tokens},
			UserAgent:    userAgent,
		},
	}
}

// RandomPhoto asks the origin for one photo. A body without a photo returns (nil, nil).
func (c *Client) RandomPhoto(ctx context.Context) (*artsource.PhotoRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &Error{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures are retriable.
		return nil, &Error{Err: err, transient: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Debugf("origin error body: %s", body)
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
			transient:  resp.StatusCode >= 500 && resp.StatusCode <= 599,
		}
	}

	// A body cut off by the network is retriable, a complete but undecodable one is not.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBody))
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err), transient: true}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var result photoResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return result.Photo, nil
}
