package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Allow to use a function as token parser
type parserFunc func(token string) (string, error)

func (f parserFunc) Parse(token string) (string, error) { return f(token) }

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("passed"))
		require.NoError(t, err)
	})

	newServer := func(t *testing.T, parse parserFunc) *httptest.Server {
		srv := httptest.NewServer(AuthMiddleware(parse)(handler))
		t.Cleanup(srv.Close)
		return srv
	}

	get := func(t *testing.T, url string, authorization string) (*http.Response, string) {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		require.NoError(t, err)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		return resp, string(body)
	}

	t.Run("valid token passes", func(t *testing.T) {
		srv := newServer(t, func(token string) (string, error) {
			require.Equal(t, "sometoken", token)
			return "test-service", nil
		})

		resp, body := get(t, srv.URL, "Bearer sometoken")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "passed", body)
	})

	t.Run("bad token refused", func(t *testing.T) {
		srv := newServer(t, func(token string) (string, error) {
			return "", errors.New("signature mismatch")
		})

		resp, _ := get(t, srv.URL, "Bearer sometoken")

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing or malformed header refused", func(t *testing.T) {
		srv := newServer(t, func(token string) (string, error) {
			t.Error("parser must not be called without a bearer token")
			return "", nil
		})

		tests := []struct {
			name          string
			authorization string
		}{
			{"no header", ""},
			{"not bearer", "Basic dXNlcjpwYXNz"},
			{"empty token", "Bearer "},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, _ := get(t, srv.URL, tt.authorization)

				require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})
		}
	})
}
