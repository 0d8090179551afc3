// Package interfaces defines service contracts for papertrader.
package interfaces

import (
	"context"

	"github.com/calebmartin/papertrader/internal/models"
)

// AccountStore persists account records and the per-account audit log.
// Account writes replace the whole record in one operation; a reader never
// observes a partially updated account.
type AccountStore interface {
	// ReadAccount retrieves an account record by lower-cased name.
	// A missing record returns (nil, nil), not an error.
	ReadAccount(ctx context.Context, name string) (*models.Account, error)

	// WriteAccount persists the full account record atomically, keyed by
	// the record's lower-cased name.
	WriteAccount(ctx context.Context, account *models.Account) error

	// ListAccounts returns the names of all stored accounts.
	ListAccounts(ctx context.Context) ([]string, error)

	// AppendLog appends an audit entry. Failures are the caller's to
	// ignore; audit writes never fail a mutating operation.
	AppendLog(ctx context.Context, account, category, message string) error

	// ListLog returns audit entries for an account, newest first.
	ListLog(ctx context.Context, account string, limit int) ([]*models.AuditEntry, error)

	Close() error
}

// MarketStore persists bulk day price maps so a restart does not trigger
// another grouped-daily download for an already-fetched date.
type MarketStore interface {
	// GetDayPrices retrieves the price map stored under a calendar date
	// ("2006-01-02"). A missing date returns (nil, nil).
	GetDayPrices(ctx context.Context, date string) (*models.DayPrices, error)

	// SaveDayPrices persists a day's price map atomically.
	SaveDayPrices(ctx context.Context, prices *models.DayPrices) error
}
