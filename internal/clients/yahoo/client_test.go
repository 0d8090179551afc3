package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chartPayload(timestamps []int64, closes []string) string {
	ts := ""
	for i, t := range timestamps {
		if i > 0 {
			ts += ","
		}
		ts += fmt.Sprintf("%d", t)
	}
	cl := ""
	for i, c := range closes {
		if i > 0 {
			cl += ","
		}
		cl += c
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`, ts, cl)
}

func TestGetDailyBars_ParsesResponse(t *testing.T) {
	var capturedPath, capturedRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedRange = r.URL.Query().Get("range")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chartPayload([]int64{1756339200, 1756425600}, []string{"2480.5", "2505.0"}))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	bars, err := client.GetDailyBars(context.Background(), "RELIANCE.NS", 5)
	if err != nil {
		t.Fatalf("GetDailyBars failed: %v", err)
	}

	if capturedPath != "/v8/finance/chart/RELIANCE.NS" {
		t.Errorf("expected path /v8/finance/chart/RELIANCE.NS, got %s", capturedPath)
	}
	if capturedRange != "5d" {
		t.Errorf("expected range 5d, got %s", capturedRange)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Close != 2480.5 {
		t.Errorf("expected first close 2480.5, got %v", bars[0].Close)
	}
	if bars[1].Close != 2505.0 {
		t.Errorf("expected last close 2505.0, got %v", bars[1].Close)
	}
}

func TestGetDailyBars_SkipsNullCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartPayload([]int64{1756339200, 1756425600, 1756512000}, []string{"100.0", "null", "101.5"}))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	bars, err := client.GetDailyBars(context.Background(), "TCS.NS", 5)
	if err != nil {
		t.Fatalf("GetDailyBars failed: %v", err)
	}

	if len(bars) != 2 {
		t.Fatalf("expected 2 bars after skipping null, got %d", len(bars))
	}
	if bars[1].Close != 101.5 {
		t.Errorf("expected last close 101.5, got %v", bars[1].Close)
	}
}

func TestGetDailyBars_EmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	bars, err := client.GetDailyBars(context.Background(), "UNKNOWN.NS", 1)
	if err != nil {
		t.Fatalf("GetDailyBars failed: %v", err)
	}
	if len(bars) != 0 {
		t.Errorf("expected no bars, got %d", len(bars))
	}
}

func TestGetDailyBars_APIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetDailyBars(context.Background(), "NOPE.NS", 1)
	if err == nil {
		t.Fatal("expected an error for 404 response")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", apiErr.StatusCode)
	}
}
