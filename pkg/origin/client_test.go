package origin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulmus/onweekdays/pkg/artsource"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) GetOriginToken() (string, error) { return s.token, s.err }

func TestRandomPhoto(t *testing.T) {
	var gotUA, gotAccept, gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"photo":{"id":"p1","name":"Tram at dawn","author":"Eva","url":"http://img/1.jpg","source":"http://site/p1","extra":"ignored"}}`)
	}))
	defer server.Close()

	c := NewClient(server.URL+"/api/photo/random", NewHTTPClient("OnWeekdays/test", 5*time.Second, staticTokens{token: "s3cret"}))
	photo, err := c.RandomPhoto(context.Background())

	require.NoError(t, err)
	require.NotNil(t, photo)
	assert.Equal(t, artsource.PhotoRecord{ID: "p1", Name: "Tram at dawn", Author: "Eva", URL: "http://img/1.jpg", Source: "http://site/p1"}, *photo)
	assert.Equal(t, "OnWeekdays/test", gotUA)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "Bearer s3cret", gotAuth)
	assert.Equal(t, "/api/photo/random", gotPath)
}

func TestRandomPhotoWithoutToken(t *testing.T) {
	tests := []struct {
		name   string
		tokens TokenSource
	}{
		{"No token source", nil},
		{"Empty token", staticTokens{}},
		{"Keyring error", staticTokens{err: errors.New("keyring locked")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				fmt.Fprint(w, `{"photo":{"id":"p1","url":"http://img/1.jpg"}}`)
			}))
			defer server.Close()

			c := NewClient(server.URL, NewHTTPClient("ua", time.Second, tt.tokens))
			_, err := c.RandomPhoto(context.Background())
			require.NoError(t, err)
			assert.Empty(t, gotAuth)
		})
	}
}

func TestRandomPhotoEmptyBodies(t *testing.T) {
	for _, body := range []string{"", " \n", "{}", `{"photo":null}`} {
		t.Run(fmt.Sprintf("%q", body), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, body)
			}))
			defer server.Close()

			photo, err := NewClient(server.URL, nil).RandomPhoto(context.Background())
			assert.NoError(t, err)
			assert.Nil(t, photo)
		})
	}
}

func TestRandomPhotoErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantTransient bool
	}{
		{"Service unavailable", http.StatusServiceUnavailable, "", true},
		{"Internal server error", http.StatusInternalServerError, "boom", true},
		{"Not found", http.StatusNotFound, "", false},
		{"Unauthorized", http.StatusUnauthorized, "", false},
		{"Too many requests", http.StatusTooManyRequests, "", false},
		{"Malformed JSON", http.StatusOK, `{"photo":`, false},
		{"Not JSON", http.StatusOK, "<html>maintenance</html>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			photo, err := NewClient(server.URL, nil).RandomPhoto(context.Background())
			assert.Nil(t, photo)
			require.Error(t, err)

			var originErr *Error
			require.ErrorAs(t, err, &originErr)
			assert.Equal(t, tt.status, originErr.StatusCode)
			assert.Equal(t, tt.wantTransient, originErr.Transient())
			assert.Equal(t, tt.wantTransient, artsource.IsTransient(err))
		})
	}
}

func TestRandomPhotoConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, nil).RandomPhoto(context.Background())
	require.Error(t, err)
	assert.True(t, artsource.IsTransient(err))
}

func TestRandomPhotoDrivesTick(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	d := artsource.Tick(time.Now(), artsource.Settings{IntervalHours: 6}, artsource.Connectivity{}, func() (*artsource.PhotoRecord, error) {
		return c.RandomPhoto(context.Background())
	})
	assert.Equal(t, artsource.RetryRequested, d.Outcome)
}

func TestRandomPhotoInterruptedBody(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		handler http.HandlerFunc
	}{
		{"Connection closed mid-body", 5 * time.Second, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Length", "500")
			fmt.Fprint(w, `{"photo":{"id":"p1"`)
		}},
		{"Timeout while reading body", 300 * time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"photo":{"id":"p1"`)
			w.(http.Flusher).Flush()
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewClient(server.URL, &http.Client{Timeout: tt.timeout})
			_, err := c.RandomPhoto(context.Background())
			require.Error(t, err)

			var originErr *Error
			require.ErrorAs(t, err, &originErr)
			assert.Equal(t, http.StatusOK, originErr.StatusCode)
			assert.True(t, originErr.Transient())

			d := artsource.Tick(time.Now(), artsource.Settings{IntervalHours: 6}, artsource.Connectivity{}, func() (*artsource.PhotoRecord, error) {
				return c.RandomPhoto(context.Background())
			})
			assert.Equal(t, artsource.RetryRequested, d.Outcome)
		})
	}
}

func TestTransportsDefaultToDefaultTransport(t *testing.T) {
	var gotUA, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	get := func(rt http.RoundTripper) {
		resp, err := (&http.Client{Transport: rt}).Get(server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	get(&UserAgentTransport{UserAgent: "ua"})
	assert.Equal(t, "ua", gotUA)
	assert.Empty(t, gotAuth)

	get(&BearerTransport{Tokens: staticTokens{token: "t"}})
	assert.Equal(t, "Bearer t", gotAuth)
}
