package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	viper.Set("server.url", srv.URL)
	t.Cleanup(func() { viper.Set("server.url", "") })
}

func TestGetDecodesData(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/posts/post-1/metrics", r.URL.Path)
		assert.Equal(t, "popular", r.URL.Query().Get("sort"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"view_count":7}}`))
	})

	var out struct {
		ViewCount int `json:"view_count"`
	}
	err := Get(context.Background(), "/posts/post-1/metrics", url.Values{"sort": {"popular"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, 7, out.ViewCount)
}

func TestGetReturnsServerError(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"comment \"x\" not found","code":"NOT_FOUND"}`))
	})

	err := Get(context.Background(), "/comments/x", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestGetRejectsNonJSON(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	})

	err := Get(context.Background(), "/posts/p/metrics", nil, nil)
	assert.EqualError(t, err, "unexpected response (HTTP 502)")
}

func TestBaseURLFromHostAndPort(t *testing.T) {
	viper.Set("server.url", "")
	viper.Set("server.host", "example.internal")
	viper.Set("server.port", 9000)
	t.Cleanup(func() {
		viper.Set("server.host", "")
		viper.Set("server.port", 0)
	})

	assert.Equal(t, "http://example.internal:9000", BaseURL())
}
