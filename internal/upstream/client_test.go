package upstream

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostSendsHeadersAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"hello":"world"}`, string(body))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewHTTPClient()
	status, body, err := client.Post(context.Background(), server.URL, map[string]string{
		"Authorization": "Bearer secret",
		"Content-Type":  "application/json",
	}, []byte(`{"hello":"world"}`), time.Second)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `{"ok":true}`, string(body))
}

func TestPostReturnsErrorStatusesWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"overloaded"}`))
	}))
	defer server.Close()

	status, body, err := NewHTTPClient().Post(context.Background(), server.URL, nil, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, `{"error":"overloaded"}`, string(body))
}

func TestPostConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	status, body, err := NewHTTPClient().Post(context.Background(), "http://"+addr, nil, nil, time.Second)
	require.Error(t, err)
	assert.Zero(t, status)
	assert.Nil(t, body)
}

func TestPostTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, _, err := NewHTTPClient().Post(context.Background(), server.URL, nil, nil, 50*time.Millisecond)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPostRejectsOversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunk := make([]byte, 1<<20)
		for i := 0; i < 9; i++ {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	_, _, err := NewHTTPClient().Post(context.Background(), server.URL, nil, nil, 5*time.Second)
	assert.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestPostDoesNotFollowRedirects(t *testing.T) {
	followed := false
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	})
	mux.HandleFunc("/elsewhere", func(w http.ResponseWriter, r *http.Request) {
		followed = true
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"from redirect target"}}]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	status, body, err := NewHTTPClient().Post(context.Background(), server.URL+"/v1/chat/completions",
		map[string]string{"Authorization": "Bearer secret"}, []byte(`{}`), time.Second)

	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, status)
	assert.Contains(t, string(body), "/elsewhere")
	assert.False(t, followed)
}
