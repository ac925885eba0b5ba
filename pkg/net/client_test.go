package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"scrapper","count":3}`))
	}))
	defer srv.Close()

	var out struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	err := GetJSON(context.Background(), srv.URL, "test-token", &out)
	require.NoError(t, err)
	assert.Equal(t, "scrapper", out.Name)
	assert.Equal(t, 3, out.Count)
}

func TestGetJSON_NoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	var out []string
	err := GetJSON(context.Background(), srv.URL, "", &out)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGetJSON_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	var out map[string]string
	err := GetJSON(context.Background(), srv.URL, "", &out)
	assert.Error(t, err)
}

func TestGetJSON_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	var out map[string]string
	err := GetJSON(context.Background(), srv.URL, "", &out)
	assert.Error(t, err)
}

func TestGetJSON_BadURL(t *testing.T) {
	var out map[string]string
	err := GetJSON(context.Background(), "http://127.0.0.1:1/nope", "", &out)
	assert.Error(t, err)
}
