// Package accountdb implements AccountStore using BadgerHold. Account
// records and audit entries live in the same database under prefixed keys.
package accountdb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/calebmartin/papertrader/internal/common"
	"github.com/calebmartin/papertrader/internal/interfaces"
	"github.com/calebmartin/papertrader/internal/models"
)

// Store implements interfaces.AccountStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new AccountStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create accountdb path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open accountdb at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("AccountDB opened")
	return &Store{db: db, logger: logger}, nil
}

// accountKey builds the storage key for an account record. Account names
// are case-insensitive; the lower-cased name is the identity.
func accountKey(name string) string {
	return "account\x00" + strings.ToLower(name)
}

// logKey builds a unique storage key for an audit entry.
func logKey(account, id string) string {
	return "log\x00" + strings.ToLower(account) + "\x00" + id
}

func (s *Store) ReadAccount(_ context.Context, name string) (*models.Account, error) {
	var acct models.Account
	if err := s.db.Get(accountKey(name), &acct); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read account '%s': %w", name, err)
	}
	acct.Normalize()
	return &acct, nil
}

func (s *Store) WriteAccount(_ context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now().UTC()
	if err := s.db.Upsert(accountKey(account.Name), account); err != nil {
		return fmt.Errorf("failed to write account '%s': %w", account.Name, err)
	}
	s.logger.Debug().Str("account", strings.ToLower(account.Name)).Msg("Account saved")
	return nil
}

func (s *Store) ListAccounts(_ context.Context) ([]string, error) {
	var all []models.Account
	if err := s.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	names := make([]string, 0, len(all))
	for i := range all {
		names = append(names, all[i].Name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) AppendLog(_ context.Context, account, category, message string) error {
	entry := models.AuditEntry{
		ID:        uuid.NewString(),
		Account:   strings.ToLower(account),
		Category:  category,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err := s.db.Insert(logKey(account, entry.ID), &entry); err != nil {
		return fmt.Errorf("failed to append log for '%s': %w", account, err)
	}
	return nil
}

func (s *Store) ListLog(_ context.Context, account string, limit int) ([]*models.AuditEntry, error) {
	var all []models.AuditEntry
	if err := s.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list log for '%s': %w", account, err)
	}

	name := strings.ToLower(account)
	var result []*models.AuditEntry
	for i := range all {
		if all[i].Account == name {
			entry := all[i]
			result = append(result, &entry)
		}
	}

	// Newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure Store implements AccountStore.
var _ interfaces.AccountStore = (*Store)(nil)
