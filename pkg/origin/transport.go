package origin

import (
	"net/http"

	"github.com/ulmus/onweekdays/util/log"
)

// TokenSource returns the bearer token for origin requests, "" for none.
type TokenSource interface {
	GetOriginToken() (string, error)
}

// UserAgentTransport wraps an http.RoundTripper and adds a User-Agent header.
type UserAgentTransport struct {
	http.RoundTripper
	UserAgent string
}

// RoundTrip executes a single HTTP transaction, adding the User-Agent header.
func (t *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clonedReq := req.Clone(req.Context())
	clonedReq.Header.Set("User-Agent", t.UserAgent)
	return nextTransport(t.RoundTripper).RoundTrip(clonedReq)
}

func nextTransport(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}

// BearerTransport adds an Authorization header when the token source has a token.
type BearerTransport struct {
	http.RoundTripper
	Tokens TokenSource
}

// RoundTrip executes a single HTTP transaction, adding the Authorization header if needed.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := nextTransport(t.RoundTripper)
	if t.Tokens == nil {
		return next.RoundTrip(req)
	}

	token, err := t.Tokens.GetOriginToken()
	if err != nil {
		log.Printf("Failed to read origin token, sending request without it: %v", err)
	}
	if token == "" {
		return next.RoundTrip(req)
	}

	clonedReq := req.Clone(req.Context())
	clonedReq.Header.Set("Authorization", "Bearer "+token)
	return next.RoundTrip(clonedReq)
}
