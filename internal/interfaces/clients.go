package interfaces

import (
	"context"
	"time"

	"github.com/calebmartin/papertrader/internal/models"
)

// IntradayClient provides daily bars for exchange-suffixed symbols
// (the NSE pricing path).
type IntradayClient interface {
	// GetDailyBars retrieves up to lookbackDays of daily bars for a
	// symbol, oldest first. An empty slice means no data (holiday or
	// unknown symbol), not an error.
	GetDailyBars(ctx context.Context, symbol string, lookbackDays int) ([]models.DailyBar, error)
}

// EODClient provides the polygon-family pricing endpoints for
// non-Indian tickers.
type EODClient interface {
	// HasCredentials reports whether an API key is configured. Without
	// credentials the resolver skips this provider family entirely.
	HasCredentials() bool

	// GetPreviousCloseDate probes a reference ticker and returns the last
	// completed trading day.
	GetPreviousCloseDate(ctx context.Context) (time.Time, error)

	// GetGroupedDailyCloses bulk-fetches every ticker's close for one
	// trading day.
	GetGroupedDailyCloses(ctx context.Context, day time.Time) (map[string]float64, error)

	// GetSnapshot retrieves the delayed live snapshot for one ticker
	// (minute tier only).
	GetSnapshot(ctx context.Context, ticker string) (*models.TickerSnapshot, error)

	// IsMarketOpen reports the exchange market status. Errors and missing
	// credentials are reported as open.
	IsMarketOpen(ctx context.Context) bool
}
