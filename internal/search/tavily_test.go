package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilyClientSearch(t *testing.T) {
	var received tavilyRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [
			{"title": "Data Scientist", "url": "https://example.com/1", "content": "Python role", "company": "AI Corp"},
			{"title": "ML Engineer", "url": "https://example.com/2", "content": "ML role"}
		]}`))
	}))
	defer server.Close()

	client := NewTavilyClient(nil, "test-key")
	client.APIURL = server.URL

	records, err := client.Search(context.Background(), "python jobs remote")
	require.NoError(t, err)

	assert.Equal(t, "test-key", received.APIKey)
	assert.Equal(t, "python jobs remote", received.Query)
	assert.Equal(t, defaultMaxResults, received.MaxResults)

	require.Len(t, records, 2)
	assert.Equal(t, "Data Scientist", records[0]["title"])
	assert.Equal(t, "AI Corp", records[0]["company"])
}

func TestTavilyClientBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewTavilyClient(nil, "test-key")
	client.APIURL = server.URL

	_, err := client.Search(context.Background(), "query")

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "tavily", unavailable.Provider)
}

func TestTavilyClientMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewTavilyClient(nil, "test-key")
	client.APIURL = server.URL

	_, err := client.Search(context.Background(), "query")

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestTavilyClientTransportError(t *testing.T) {
	client := NewTavilyClient(nil, "test-key")
	// Closed server to force a connection error.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client.APIURL = server.URL
	server.Close()

	_, err := client.Search(context.Background(), "query")

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
}
