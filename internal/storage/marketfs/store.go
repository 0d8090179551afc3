// Package marketfs implements file-based JSON storage for bulk day price
// maps, one file per calendar date.
package marketfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/calebmartin/papertrader/internal/common"
	"github.com/calebmartin/papertrader/internal/interfaces"
	"github.com/calebmartin/papertrader/internal/models"
)

// Store provides file-based JSON storage for day price maps.
type Store struct {
	basePath  string
	pricesDir string
	logger    *common.Logger
}

// NewStore creates a new market file store.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create market store path %s: %w", path, err)
	}
	pricesDir := filepath.Join(path, "prices")
	if err := os.MkdirAll(pricesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create prices dir: %w", err)
	}

	logger.Info().Str("path", path).Msg("MarketFS store opened")
	return &Store{
		basePath:  path,
		pricesDir: pricesDir,
		logger:    logger,
	}, nil
}

// DataPath returns the base data path.
func (s *Store) DataPath() string {
	return s.basePath
}

// GetDayPrices retrieves the price map stored under a calendar date.
// A missing date returns (nil, nil).
func (s *Store) GetDayPrices(_ context.Context, date string) (*models.DayPrices, error) {
	path := filePath(s.pricesDir, date)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var prices models.DayPrices
	if err := json.Unmarshal(data, &prices); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &prices, nil
}

// SaveDayPrices persists a day's price map atomically via temp file and
// rename.
func (s *Store) SaveDayPrices(_ context.Context, prices *models.DayPrices) error {
	if prices == nil || prices.Date == "" {
		return fmt.Errorf("day prices require a date")
	}

	jsonData, err := json.MarshalIndent(prices, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal day prices: %w", err)
	}
	jsonData = append(jsonData, '\n')

	target := filePath(s.pricesDir, prices.Date)

	tmpFile, err := os.CreateTemp(s.pricesDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.logger.Debug().Str("date", prices.Date).Int("tickers", len(prices.Prices)).Msg("Day prices saved")
	return nil
}

// ListDates returns the dates with stored price maps.
func (s *Store) ListDates() ([]string, error) {
	entries, err := os.ReadDir(s.pricesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", s.pricesDir, err)
	}
	var dates []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".tmp-") {
			dates = append(dates, strings.TrimSuffix(name, ".json"))
		}
	}
	return dates, nil
}

// Purge removes all stored price maps and returns the count.
func (s *Store) Purge() int {
	dates, err := s.ListDates()
	if err != nil {
		return 0
	}
	count := 0
	for _, date := range dates {
		os.Remove(filePath(s.pricesDir, date))
		count++
	}
	return count
}

// Close is a no-op for file-based storage.
func (s *Store) Close() error {
	return nil
}

func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func filePath(dir, key string) string {
	return filepath.Join(dir, sanitizeKey(key)+".json")
}

// Ensure Store implements MarketStore.
var _ interfaces.MarketStore = (*Store)(nil)
