package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `<fantasy_content><league><league_key>427.l.1</league_key></league></fantasy_content>`

func testClient(t *testing.T, handler http.HandlerFunc, tokens *TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{
		BaseURL:     srv.URL,
		MaxRetries:  2,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  2 * time.Millisecond,
	}, tokens)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, okBody)
	}, nil)

	body, err := c.Get(context.Background(), "/league/427.l.1")
	require.NoError(t, err)
	assert.Equal(t, "427.l.1", node{body}.path("league", "league_key").str())
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, int64(3), c.Requests())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, nil)

	_, err := c.Get(context.Background(), "/league/427.l.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var hits atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "league not found")
	}, nil)

	_, err := c.Get(context.Background(), "/league/427.l.404")

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.Equal(t, "league not found", upstream.Body)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_RefreshesAndReplaysOnUnauthorized(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh","token_type":"bearer","expires_in":3600}`)
	}))
	t.Cleanup(tokenSrv.Close)

	tokens := NewTokenSource(context.Background(), OAuthConfig("id", "secret", tokenSrv.URL), "stale", "refresh-1")

	var seen []string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, okBody)
	}, tokens)

	_, err := c.Get(context.Background(), "/league/427.l.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer stale", "Bearer fresh"}, seen)
	assert.Equal(t, 1, tokens.Refreshes())

	tok, err := tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", tok.RefreshToken)
}

func TestClient_RefreshesExpiredTokenBeforeRequest(t *testing.T) {
	var issued atomic.Int32
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"fresh%d","token_type":"bearer","expires_in":1}`, issued.Add(1))
	}))
	t.Cleanup(tokenSrv.Close)

	tokens := NewTokenSource(context.Background(), OAuthConfig("id", "secret", tokenSrv.URL), "", "refresh-1")

	var seen []string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		fmt.Fprint(w, okBody)
	}, tokens)

	for range 2 {
		_, err := c.Get(context.Background(), "/league/427.l.1")
		require.NoError(t, err)
	}

	// A one-second token is already inside the expiry margin, so each request refreshes.
	assert.Equal(t, []string{"Bearer fresh1", "Bearer fresh2"}, seen)
	assert.Equal(t, 2, tokens.Refreshes())
}

func TestClient_UnauthorizedWithoutRefreshToken(t *testing.T) {
	tokens := NewTokenSource(context.Background(), OAuthConfig("id", "secret", ""), "stale", "")
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, tokens)

	_, err := c.Get(context.Background(), "/league/427.l.1")
	assert.ErrorIs(t, err, ErrAuth)
}

func TestClient_MissingCredentials(t *testing.T) {
	tokens := NewTokenSource(context.Background(), OAuthConfig("id", "secret", ""), "", "")
	var hits atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}, tokens)

	_, err := c.Get(context.Background(), "/league/427.l.1")
	assert.ErrorIs(t, err, ErrAuth)
	assert.Zero(t, hits.Load())
}

func TestClient_CountsRequestsPerContext(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, okBody)
	}, nil)

	ctx, counter := WithRequestCounter(context.Background())
	for range 3 {
		_, err := c.Get(ctx, "/league/427.l.1")
		require.NoError(t, err)
	}
	_, err := c.Get(context.Background(), "/league/427.l.1")
	require.NoError(t, err)

	assert.Equal(t, int64(3), counter.Count())
	assert.Equal(t, int64(4), c.Requests())
}

func TestClient_StopsOnCancel(t *testing.T) {
	c := NewClient(ClientConfig{
		BaseURL:     "http://127.0.0.1:1",
		MaxRetries:  5,
		BaseBackoff: time.Hour,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "/league/427.l.1")
	assert.ErrorIs(t, err, context.Canceled)
}
