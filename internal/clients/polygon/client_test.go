package polygon

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPreviousCloseDate(t *testing.T) {
	// 2026-08-28 20:00:00 UTC in ms
	ts := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC).UnixMilli()

	var capturedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		fmt.Fprintf(w, `{"ticker":"SPY","results":[{"T":"SPY","c":645.3,"t":%d}]}`, ts)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	day, err := client.GetPreviousCloseDate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/v2/aggs/ticker/SPY/prev", capturedPath)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), day)
}

func TestGetGroupedDailyCloses(t *testing.T) {
	var capturedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		fmt.Fprint(w, `{"results":[{"T":"AAPL","c":180.25,"t":0},{"T":"MSFT","c":410.1,"t":0}]}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	prices, err := client.GetGroupedDailyCloses(context.Background(), time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "/v2/aggs/grouped/locale/us/market/stocks/2026-08-28", capturedPath)
	assert.Len(t, prices, 2)
	assert.Equal(t, 180.25, prices["AAPL"])
	assert.Equal(t, 410.1, prices["MSFT"])
}

func TestGetSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ticker":{"ticker":"AAPL","min":{"c":181.02},"prevDay":{"c":180.25}}}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	snap, err := client.GetSnapshot(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", snap.Ticker)
	assert.Equal(t, 181.02, snap.MinuteClose)
	assert.Equal(t, 180.25, snap.PrevDayClose)
}

func TestIsMarketOpen(t *testing.T) {
	status := `{"market":"open"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, status)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	assert.True(t, client.IsMarketOpen(context.Background()))

	status = `{"market":"closed"}`
	assert.False(t, client.IsMarketOpen(context.Background()))
}

func TestIsMarketOpen_AssumesOpenWithoutCredentialsOrOnError(t *testing.T) {
	client := NewClient("")
	assert.True(t, client.IsMarketOpen(context.Background()))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client = NewClient("test-key", WithBaseURL(srv.URL))
	assert.True(t, client.IsMarketOpen(context.Background()))
}

func TestHasCredentials(t *testing.T) {
	assert.False(t, NewClient("").HasCredentials())
	assert.True(t, NewClient("key").HasCredentials())
}

func TestGet_SendsAPIKey(t *testing.T) {
	var capturedKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedKey = r.URL.Query().Get("apiKey")
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	client := NewClient("secret-key", WithBaseURL(srv.URL))
	_, _ = client.GetGroupedDailyCloses(context.Background(), time.Now())

	assert.Equal(t, "secret-key", capturedKey)
}
