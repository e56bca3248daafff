package render

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_JSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		data := map[string]any{"key1": 1, "key2": "222"}
		JSON(w, data)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"key1":1,"key2":"222"}`+"\n", string(body))
}

func TestRender_ServiceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		message := "something terrible happened"
		ServiceError(w, message, http.StatusForbidden)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{
			"error": "service_error",
			"message": "something terrible happened"
		}`,
		string(body),
	)
}

func TestRender_BindAndValidate(t *testing.T) {
	type request struct {
		AssetID   string `json:"asset_id" validate:"required,uuid"`
		LocalPath string `json:"local_path" validate:"required"`
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value, err := BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		JSON(w, value)
	}))
	defer ts.Close()

	post := func(t *testing.T, body string) (*http.Response, string) {
		resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		respBody, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck

		return resp, string(respBody)
	}

	t.Run("valid body passes", func(t *testing.T) {
		resp, body := post(t, `{"asset_id": "df6276dd-793a-4a2c-ba26-a47b83cbc4d3", "local_path": "/uploads/photo.jpg"}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"asset_id": "df6276dd-793a-4a2c-ba26-a47b83cbc4d3", "local_path": "/uploads/photo.jpg"}`, body)
	})

	t.Run("validation errors use json field names", func(t *testing.T) {
		resp, body := post(t, `{"asset_id": "not-a-uuid"}`)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{
				"error": "validation_failed",
				"message": "Request validation failed",
				"fields": {
					"asset_id": "Value is not a valid UUID",
					"local_path": "This field is required"
				}
			}`,
			body,
		)
	})

	t.Run("broken json is a decode error", func(t *testing.T) {
		resp, body := post(t, `{"asset_id": `)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "decoding_failed")
	})
}
