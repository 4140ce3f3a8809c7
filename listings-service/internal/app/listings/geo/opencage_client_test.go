package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_Success(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Manali, India", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"formatted":"Manali, Himachal Pradesh, India","geometry":{"lat":32.2396,"lng":77.1887}}]}`))
	}))
	defer server.Close()

	client := NewOpenCageClient(server.URL, "secret", 5)

	// Act
	results, err := client.Lookup(context.Background(), "Manali, India")

	// Assert
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 77.1887, results[0].Coordinates.Longitude)
	assert.Equal(t, 32.2396, results[0].Coordinates.Latitude)
	assert.Equal(t, "Manali, Himachal Pradesh, India", results[0].FormattedAddress)
}

func TestLookup_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewOpenCageClient(server.URL, "key", 5)

	results, err := client.Lookup(context.Background(), "asdkjhqwe")

	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestLookup_HTTPError(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte("quota exceeded"))
	}))
	defer server.Close()

	client := NewOpenCageClient(server.URL, "key", 5)

	// Act
	results, err := client.Lookup(context.Background(), "Paris")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), "geocoder returned status 402")
}

func TestLookup_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewOpenCageClient(server.URL, "key", 5)

	results, err := client.Lookup(context.Background(), "Paris")

	assert.Error(t, err)
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), "failed to unmarshal")
}

func TestLookup_ContextDeadline(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewOpenCageClient(server.URL, "key", 5)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Act
	results, err := client.Lookup(ctx, "Paris")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, results)
}

func TestEnricher_WithOpenCageClient_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	server.Close()

	enricher := NewEnricher(NewOpenCageClient(server.URL, "key", 1), time.Second)

	coords, resolved := enricher.Enrich(context.Background(), "Paris")

	assert.Equal(t, FallbackCoordinates, coords)
	assert.Equal(t, "Paris", resolved)
}

func TestLookup_SkipsResultsWithoutGeometry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"formatted":"Somewhere"},{"formatted":"Half","geometry":{"lat":15.3}},{"formatted":"Goa, India","geometry":{"lat":15.2993,"lng":74.124}}]}`))
	}))
	defer server.Close()

	client := NewOpenCageClient(server.URL, "key", 5)

	results, err := client.Lookup(context.Background(), "Goa")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Goa, India", results[0].FormattedAddress)
	assert.Equal(t, 74.124, results[0].Coordinates.Longitude)
}

func TestEnricher_WithOpenCageClient_MissingGeometry(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"formatted":"Somewhere"}]}`))
	}))
	defer server.Close()

	enricher := NewEnricher(NewOpenCageClient(server.URL, "key", 2), 0)

	// Act
	coords, resolved := enricher.Enrich(context.Background(), "Goa")

	// Assert
	assert.Equal(t, FallbackCoordinates, coords)
	assert.Equal(t, "Goa", resolved)
}
