// Package account implements the trading ledger: cash balance, holdings,
// transaction log, and portfolio value history for each named account.
package account

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calebmartin/papertrader/internal/common"
	"github.com/calebmartin/papertrader/internal/interfaces"
	"github.com/calebmartin/papertrader/internal/models"
)

// Service implements LedgerService. Mutations on the same account are
// serialized behind a per-account mutex around the full
// read-mutate-persist cycle; different accounts proceed in parallel.
type Service struct {
	store    interfaces.AccountStore
	resolver interfaces.PriceResolver
	logger   *common.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a new ledger service.
func NewService(store interfaces.AccountStore, resolver interfaces.PriceResolver, logger *common.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *Service) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := common.NormalizeName(name)
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// load reads an account, creating and persisting a fresh one on first
// access for a name.
func (s *Service) load(ctx context.Context, name string) (*models.Account, error) {
	acct, err := s.store.ReadAccount(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	if acct != nil {
		return acct, nil
	}

	acct = models.NewAccount(common.NormalizeName(name))
	if err := s.store.WriteAccount(ctx, acct); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	s.audit(ctx, name, "account", "Account created with initial balance")
	s.logger.Info().Str("account", acct.Name).Msg("Account created")
	return acct, nil
}

// persist writes the full record, wrapping storage errors.
func (s *Service) persist(ctx context.Context, acct *models.Account) error {
	if err := s.store.WriteAccount(ctx, acct); err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return nil
}

// audit appends a log line; failures are logged and swallowed so they
// never fail the operation that triggered them.
func (s *Service) audit(ctx context.Context, name, category, message string) {
	if err := s.store.AppendLog(ctx, common.NormalizeName(name), category, message); err != nil {
		s.logger.Warn().Err(err).Str("account", name).Msg("Audit log append failed")
	}
}

// portfolioValue computes balance plus the live value of all holdings.
func (s *Service) portfolioValue(ctx context.Context, acct *models.Account) float64 {
	value := acct.Balance
	for symbol, quantity := range acct.Holdings {
		value += float64(quantity) * s.resolver.GetSharePrice(ctx, symbol)
	}
	return value
}

func (s *Service) buildReport(ctx context.Context, acct *models.Account) *models.AccountReport {
	value := s.portfolioValue(ctx, acct)
	return &models.AccountReport{
		Account:             *acct,
		TotalPortfolioValue: value,
		TotalProfitLoss:     value - models.InitialBalance,
	}
}

// GetAccount returns the account state, creating the account on first
// access.
func (s *Service) GetAccount(ctx context.Context, name string) (*models.Account, error) {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()
	return s.load(ctx, name)
}

// BuyShares executes a buy order at the resolved price plus spread.
func (s *Service) BuyShares(ctx context.Context, name, symbol string, quantity int, rationale string) (*models.AccountReport, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer, got %d", models.ErrValidation, quantity)
	}

	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	acct, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}

	canonical := s.resolver.Normalize(symbol)
	base := s.resolver.GetSharePrice(ctx, canonical)
	if base == 0 {
		return nil, fmt.Errorf("%w: no price available for %s", models.ErrUnknownSymbol, canonical)
	}

	executionPrice := base * (1 + models.Spread)
	cost := executionPrice * float64(quantity)
	if cost > acct.Balance {
		return nil, fmt.Errorf("%w: cost %.2f exceeds balance %.2f", models.ErrInsufficientFunds, cost, acct.Balance)
	}

	next := acct.Clone()
	next.Holdings[canonical] += quantity
	next.Balance -= cost
	next.Transactions = append(next.Transactions, models.Transaction{
		ID:        uuid.NewString(),
		Symbol:    canonical,
		Quantity:  quantity,
		Price:     executionPrice,
		Timestamp: time.Now().UTC(),
		Rationale: rationale,
	})

	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.audit(ctx, name, "trade", fmt.Sprintf("Bought %d %s at %.4f", quantity, canonical, executionPrice))
	s.logger.Info().Str("account", next.Name).Str("symbol", canonical).Int("quantity", quantity).Float64("price", executionPrice).Msg("Buy executed")

	return s.buildReport(ctx, next), nil
}

// SellShares executes a sell order at the resolved price minus spread.
// A resolved price of zero still executes; only the held quantity is
// validated.
func (s *Service) SellShares(ctx context.Context, name, symbol string, quantity int, rationale string) (*models.AccountReport, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer, got %d", models.ErrValidation, quantity)
	}

	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	acct, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}

	canonical := s.resolver.Normalize(symbol)
	if acct.Holdings[canonical] < quantity {
		return nil, fmt.Errorf("%w: have %d %s, want to sell %d", models.ErrInsufficientShares, acct.Holdings[canonical], canonical, quantity)
	}

	base := s.resolver.GetSharePrice(ctx, canonical)
	executionPrice := base * (1 - models.Spread)

	next := acct.Clone()
	next.Holdings[canonical] -= quantity
	if next.Holdings[canonical] == 0 {
		delete(next.Holdings, canonical)
	}
	next.Balance += executionPrice * float64(quantity)
	next.Transactions = append(next.Transactions, models.Transaction{
		ID:        uuid.NewString(),
		Symbol:    canonical,
		Quantity:  -quantity,
		Price:     executionPrice,
		Timestamp: time.Now().UTC(),
		Rationale: rationale,
	})

	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.audit(ctx, name, "trade", fmt.Sprintf("Sold %d %s at %.4f", quantity, canonical, executionPrice))
	s.logger.Info().Str("account", next.Name).Str("symbol", canonical).Int("quantity", quantity).Float64("price", executionPrice).Msg("Sell executed")

	return s.buildReport(ctx, next), nil
}

// Deposit adds funds to the account balance.
func (s *Service) Deposit(ctx context.Context, name string, amount float64) (*models.Account, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: deposit amount must be positive, got %.2f", models.ErrValidation, amount)
	}

	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	acct, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}

	next := acct.Clone()
	next.Balance += amount
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.audit(ctx, name, "funds", fmt.Sprintf("Deposited %.2f", amount))
	return next, nil
}

// Withdraw removes funds from the account balance.
func (s *Service) Withdraw(ctx context.Context, name string, amount float64) (*models.Account, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive, got %.2f", models.ErrValidation, amount)
	}

	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	acct, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	if amount > acct.Balance {
		return nil, fmt.Errorf("%w: withdrawal %.2f exceeds balance %.2f", models.ErrInsufficientFunds, amount, acct.Balance)
	}

	next := acct.Clone()
	next.Balance -= amount
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.audit(ctx, name, "funds", fmt.Sprintf("Withdrew %.2f", amount))
	return next, nil
}

// PortfolioValue recomputes the live portfolio value; never cached.
func (s *Service) PortfolioValue(ctx context.Context, name string) (float64, error) {
	acct, err := s.GetAccount(ctx, name)
	if err != nil {
		return 0, err
	}
	return s.portfolioValue(ctx, acct), nil
}

// ProfitLoss returns portfolio value relative to the initial balance.
func (s *Service) ProfitLoss(ctx context.Context, name string) (float64, error) {
	value, err := s.PortfolioValue(ctx, name)
	if err != nil {
		return 0, err
	}
	return value - models.InitialBalance, nil
}

// RecordSnapshot computes the current portfolio value and appends it to
// the time series unless it exactly equals the last stored value.
func (s *Service) RecordSnapshot(ctx context.Context, name string, when time.Time) (models.ValuePoint, bool, error) {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	acct, err := s.load(ctx, name)
	if err != nil {
		return models.ValuePoint{}, false, err
	}

	point := models.ValuePoint{Timestamp: when.UTC(), Value: s.portfolioValue(ctx, acct)}
	if n := len(acct.ValueTimeSeries); n > 0 && acct.ValueTimeSeries[n-1].Value == point.Value {
		return point, false, nil
	}

	next := acct.Clone()
	next.ValueTimeSeries = append(next.ValueTimeSeries, point)
	if err := s.persist(ctx, next); err != nil {
		return models.ValuePoint{}, false, err
	}
	return point, true, nil
}

// Report computes value and profit/loss, unconditionally appends a time
// series point, persists, and returns the full state.
func (s *Service) Report(ctx context.Context, name string) (*models.AccountReport, error) {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	acct, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}

	value := s.portfolioValue(ctx, acct)
	next := acct.Clone()
	next.ValueTimeSeries = append(next.ValueTimeSeries, models.ValuePoint{
		Timestamp: time.Now().UTC(),
		Value:     value,
	})
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}

	return &models.AccountReport{
		Account:             *next,
		TotalPortfolioValue: value,
		TotalProfitLoss:     value - models.InitialBalance,
	}, nil
}

// GetHoldings returns the current holdings map.
func (s *Service) GetHoldings(ctx context.Context, name string) (map[string]int, error) {
	acct, err := s.GetAccount(ctx, name)
	if err != nil {
		return nil, err
	}
	return acct.Holdings, nil
}

// ListTransactions returns the transaction log in execution order.
func (s *Service) ListTransactions(ctx context.Context, name string) ([]models.Transaction, error) {
	acct, err := s.GetAccount(ctx, name)
	if err != nil {
		return nil, err
	}
	return acct.Transactions, nil
}

// GetStrategy returns the account's strategy text.
func (s *Service) GetStrategy(ctx context.Context, name string) (string, error) {
	acct, err := s.GetAccount(ctx, name)
	if err != nil {
		return "", err
	}
	return acct.Strategy, nil
}

// ChangeStrategy replaces the account's strategy text and persists.
func (s *Service) ChangeStrategy(ctx context.Context, name, strategy string) error {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	acct, err := s.load(ctx, name)
	if err != nil {
		return err
	}

	next := acct.Clone()
	next.Strategy = strategy
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.audit(ctx, name, "strategy", "Strategy changed")
	return nil
}

// Reset reinitializes all mutable fields except identity.
func (s *Service) Reset(ctx context.Context, name, strategy string) error {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	acct, err := s.load(ctx, name)
	if err != nil {
		return err
	}

	next := acct.Clone()
	next.Balance = models.InitialBalance
	next.Strategy = strategy
	next.Holdings = map[string]int{}
	next.Transactions = []models.Transaction{}
	next.ValueTimeSeries = []models.ValuePoint{}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.audit(ctx, name, "account", "Account reset")
	s.logger.Info().Str("account", next.Name).Msg("Account reset")
	return nil
}

// PortfolioCandles aggregates the account's value series and transaction
// log into OHLCV bars at the requested resolution.
func (s *Service) PortfolioCandles(ctx context.Context, name, resolution string, start, end *time.Time) ([]models.Candle, error) {
	acct, err := s.GetAccount(ctx, name)
	if err != nil {
		return nil, err
	}
	return AggregateCandles(acct.ValueTimeSeries, acct.Transactions, resolution, start, end), nil
}

// RenderValueChart renders the account's value series as a PNG chart.
func (s *Service) RenderValueChart(ctx context.Context, name string) ([]byte, error) {
	acct, err := s.GetAccount(ctx, name)
	if err != nil {
		return nil, err
	}
	return renderValueChart(acct.Name, acct.ValueTimeSeries)
}

// ListAuditLog returns recent audit entries for an account, newest first.
func (s *Service) ListAuditLog(ctx context.Context, name string, limit int) ([]*models.AuditEntry, error) {
	return s.store.ListLog(ctx, common.NormalizeName(name), limit)
}

// Ensure Service implements LedgerService.
var _ interfaces.LedgerService = (*Service)(nil)
