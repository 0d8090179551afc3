package interfaces

import (
	"context"
	"time"

	"github.com/calebmartin/papertrader/internal/models"
)

// PriceResolver resolves symbols to current share prices.
type PriceResolver interface {
	// Normalize converts arbitrary ticker text to its canonical
	// exchange-suffixed form. Total; never fails.
	Normalize(symbol string) string

	// GetSharePrice resolves a current price for a symbol. Returns 0.0
	// as the sole sentinel for unknown or unavailable; provider errors
	// never propagate.
	GetSharePrice(ctx context.Context, symbol string) float64

	// IsMarketOpen reports whether the market is currently open.
	IsMarketOpen(ctx context.Context) bool
}

// LedgerService executes orders and manages account state. All mutating
// operations are serialized per account and persist the full record
// atomically; on failure the stored state is unchanged.
type LedgerService interface {
	GetAccount(ctx context.Context, name string) (*models.Account, error)
	BuyShares(ctx context.Context, name, symbol string, quantity int, rationale string) (*models.AccountReport, error)
	SellShares(ctx context.Context, name, symbol string, quantity int, rationale string) (*models.AccountReport, error)
	Deposit(ctx context.Context, name string, amount float64) (*models.Account, error)
	Withdraw(ctx context.Context, name string, amount float64) (*models.Account, error)

	PortfolioValue(ctx context.Context, name string) (float64, error)
	ProfitLoss(ctx context.Context, name string) (float64, error)

	// RecordSnapshot appends a value point unless it equals the last
	// stored value. The returned point reflects the computed value either
	// way; appended reports whether it was stored.
	RecordSnapshot(ctx context.Context, name string, when time.Time) (point models.ValuePoint, appended bool, err error)

	// Report computes value and profit/loss, unconditionally appends a
	// value point, persists, and returns the full state.
	Report(ctx context.Context, name string) (*models.AccountReport, error)

	GetHoldings(ctx context.Context, name string) (map[string]int, error)
	ListTransactions(ctx context.Context, name string) ([]models.Transaction, error)
	GetStrategy(ctx context.Context, name string) (string, error)
	ChangeStrategy(ctx context.Context, name, strategy string) error
	Reset(ctx context.Context, name, strategy string) error

	// PortfolioCandles aggregates the account's value series and
	// transactions into OHLCV bars.
	PortfolioCandles(ctx context.Context, name, resolution string, start, end *time.Time) ([]models.Candle, error)

	// RenderValueChart renders a PNG chart of the value series.
	RenderValueChart(ctx context.Context, name string) ([]byte, error)

	ListAuditLog(ctx context.Context, name string, limit int) ([]*models.AuditEntry, error)
}
