package app

import (
	"context"
	"time"

	"github.com/calebmartin/papertrader/internal/common"
	"github.com/calebmartin/papertrader/internal/interfaces"
)

// startSnapshotScheduler records portfolio value snapshots for the
// configured accounts on a fixed interval. Snapshots are deduplicated by
// the ledger, so idle accounts do not grow their time series.
func startSnapshotScheduler(ctx context.Context, ledger interfaces.LedgerService, accounts []string, interval time.Duration, logger *common.Logger) {
	if len(accounts) == 0 {
		logger.Info().Msg("Snapshot scheduler: no accounts configured, not starting")
		return
	}

	logger.Info().Strs("accounts", accounts).Dur("interval", interval).Msg("Snapshot scheduler: started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Snapshot scheduler: stopped")
			return
		case <-ticker.C:
			recordSnapshots(ctx, ledger, accounts, logger)
		}
	}
}

func recordSnapshots(ctx context.Context, ledger interfaces.LedgerService, accounts []string, logger *common.Logger) {
	now := time.Now().UTC()
	for _, name := range accounts {
		point, appended, err := ledger.RecordSnapshot(ctx, name, now)
		if err != nil {
			logger.Warn().Err(err).Str("account", name).Msg("Snapshot failed")
			continue
		}
		if appended {
			logger.Debug().Str("account", name).Float64("value", point.Value).Msg("Snapshot recorded")
		}
	}
}
