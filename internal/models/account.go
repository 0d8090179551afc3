// Package models defines the data types shared across papertrader.
package models

import (
	"time"
)

// InitialBalance is the opening cash balance for every new account.
const InitialBalance = 10000.0

// Spread is the fractional markup (buy) / markdown (sell) applied to the
// resolved base price to derive the execution price.
const Spread = 0.002

// Transaction records one executed market order. Positive Quantity is a
// buy, negative is a sell. Immutable once appended to an account.
type Transaction struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"` // spread-adjusted execution price
	Timestamp time.Time `json:"timestamp"`
	Rationale string    `json:"rationale"`
}

// Total returns the signed cash value of the transaction.
func (t Transaction) Total() float64 {
	return float64(t.Quantity) * t.Price
}

// ValuePoint is one observation in an account's portfolio value time series.
type ValuePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Account is the full persisted state of one paper-trading account.
// Accounts are keyed by lower-cased name and written as a single record.
type Account struct {
	Name            string         `json:"name"`
	Balance         float64        `json:"balance"`
	Strategy        string         `json:"strategy"`
	Holdings        map[string]int `json:"holdings"`
	Transactions    []Transaction  `json:"transactions"`
	ValueTimeSeries []ValuePoint   `json:"value_time_series"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// NewAccount returns a fresh account with the default opening state.
func NewAccount(name string) *Account {
	now := time.Now().UTC()
	return &Account{
		Name:            name,
		Balance:         InitialBalance,
		Strategy:        "",
		Holdings:        map[string]int{},
		Transactions:    []Transaction{},
		ValueTimeSeries: []ValuePoint{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Normalize fills zero-valued collection fields after a load from storage,
// so records written by older schema versions behave like fresh ones.
func (a *Account) Normalize() {
	if a.Holdings == nil {
		a.Holdings = map[string]int{}
	}
	if a.Transactions == nil {
		a.Transactions = []Transaction{}
	}
	if a.ValueTimeSeries == nil {
		a.ValueTimeSeries = []ValuePoint{}
	}
}

// Clone returns a deep copy of the account. Ledger mutations operate on a
// clone so a failed persist leaves the in-memory state untouched.
func (a *Account) Clone() *Account {
	cp := *a
	cp.Holdings = make(map[string]int, len(a.Holdings))
	for k, v := range a.Holdings {
		cp.Holdings[k] = v
	}
	cp.Transactions = make([]Transaction, len(a.Transactions))
	copy(cp.Transactions, a.Transactions)
	cp.ValueTimeSeries = make([]ValuePoint, len(a.ValueTimeSeries))
	copy(cp.ValueTimeSeries, a.ValueTimeSeries)
	return &cp
}

// AccountReport is the structured snapshot returned by the report operation:
// the full account state plus the portfolio value and profit/loss computed
// at report time.
type AccountReport struct {
	Account
	TotalPortfolioValue float64 `json:"total_portfolio_value"`
	TotalProfitLoss     float64 `json:"total_profit_loss"`
}

// Candle is one OHLCV bar aggregated from the value time series.
// Timestamp is the bucket start. Volume is the sum of absolute transaction
// quantities within the bucket.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// AuditEntry is one fire-and-forget audit log line for an account.
type AuditEntry struct {
	ID        string    `json:"id"`
	Account   string    `json:"account"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
