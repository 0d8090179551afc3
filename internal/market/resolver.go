package market

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/calebmartin/papertrader/internal/interfaces"
	"github.com/calebmartin/papertrader/internal/models"
)

// dayCacheCapacity bounds the in-memory day price cache to the two most
// recently used dates.
const dayCacheCapacity = 2

// Resolver resolves canonical symbols to current prices. Symbols ending in
// .NS are priced by the intraday provider; everything else goes through
// the polygon-family client, either per-ticker snapshots (minute tier) or
// the bulk grouped-daily endpoint behind a bounded day cache.
//
// GetSharePrice never returns an error: any provider failure collapses to
// the 0.0 sentinel. Logging failures is the caller's concern.
type Resolver struct {
	intraday   interfaces.IntradayClient
	eod        interfaces.EODClient
	store      interfaces.MarketStore
	minuteTier bool

	mu    sync.Mutex
	cache map[string]map[string]float64
	order []string // cache keys, least recently used first

	group singleflight.Group
}

// NewResolver creates a price resolver. store may be nil, in which case
// day price maps are not persisted across restarts.
func NewResolver(intraday interfaces.IntradayClient, eod interfaces.EODClient, store interfaces.MarketStore, minuteTier bool) *Resolver {
	return &Resolver{
		intraday:   intraday,
		eod:        eod,
		store:      store,
		minuteTier: minuteTier,
		cache:      make(map[string]map[string]float64, dayCacheCapacity),
	}
}

// Normalize implements interfaces.PriceResolver.
func (r *Resolver) Normalize(symbol string) string {
	return NormalizeSymbol(symbol)
}

// IsMarketOpen reports the exchange market status via the EOD provider.
func (r *Resolver) IsMarketOpen(ctx context.Context) bool {
	if r.eod == nil {
		return true
	}
	return r.eod.IsMarketOpen(ctx)
}

// GetSharePrice resolves a current price for a symbol. 0.0 means unknown
// or unavailable and is never a genuine quote.
func (r *Resolver) GetSharePrice(ctx context.Context, symbol string) float64 {
	if symbol == "" {
		return 0.0
	}

	canonical := NormalizeSymbol(symbol)

	if strings.HasSuffix(canonical, ".NS") {
		return r.intradayPrice(ctx, canonical)
	}

	if r.eod == nil || !r.eod.HasCredentials() {
		return 0.0
	}

	if r.minuteTier {
		return r.snapshotPrice(ctx, canonical)
	}

	today := time.Now().UTC().Format("2006-01-02")
	prices := r.dayPrices(ctx, today)
	if prices == nil {
		return 0.0
	}
	return prices[canonical]
}

// intradayPrice fetches the most recent daily close, widening the lookback
// once to cover market holidays before giving up.
func (r *Resolver) intradayPrice(ctx context.Context, symbol string) float64 {
	if r.intraday == nil {
		return 0.0
	}

	bars, err := r.intraday.GetDailyBars(ctx, symbol, 1)
	if err != nil || len(bars) == 0 {
		bars, err = r.intraday.GetDailyBars(ctx, symbol, 5)
		if err != nil || len(bars) == 0 {
			return 0.0
		}
	}

	price := bars[len(bars)-1].Close
	if price > 0 {
		return price
	}
	return 0.0
}

// snapshotPrice uses the minute-bar close when present, falling back to
// the previous day's close.
func (r *Resolver) snapshotPrice(ctx context.Context, symbol string) float64 {
	snap, err := r.eod.GetSnapshot(ctx, symbol)
	if err != nil || snap == nil {
		return 0.0
	}
	if snap.MinuteClose > 0 {
		return snap.MinuteClose
	}
	if snap.PrevDayClose > 0 {
		return snap.PrevDayClose
	}
	return 0.0
}

// dayPrices returns the bulk price map for a calendar date, populating the
// cache at most once per date even under concurrent first callers.
func (r *Resolver) dayPrices(ctx context.Context, date string) map[string]float64 {
	if prices, ok := r.cacheGet(date); ok {
		return prices
	}

	v, _, _ := r.group.Do(date, func() (interface{}, error) {
		// A waiter that lost the race may arrive after the winner has
		// already populated the cache.
		if prices, ok := r.cacheGet(date); ok {
			return prices, nil
		}
		prices := r.fetchDayPrices(ctx, date)
		if prices != nil {
			r.cachePut(date, prices)
		}
		return prices, nil
	})

	prices, _ := v.(map[string]float64)
	return prices
}

// fetchDayPrices loads a day's price map from the durable store, or bulk
// downloads it and writes it through. Returns nil when the provider fails.
func (r *Resolver) fetchDayPrices(ctx context.Context, date string) map[string]float64 {
	if r.store != nil {
		if stored, err := r.store.GetDayPrices(ctx, date); err == nil && stored != nil && len(stored.Prices) > 0 {
			return stored.Prices
		}
	}

	lastClose, err := r.eod.GetPreviousCloseDate(ctx)
	if err != nil {
		return nil
	}

	prices, err := r.eod.GetGroupedDailyCloses(ctx, lastClose)
	if err != nil || len(prices) == 0 {
		return nil
	}

	if r.store != nil {
		_ = r.store.SaveDayPrices(ctx, &models.DayPrices{
			Date:    date,
			Prices:  prices,
			FetchAt: time.Now().UTC(),
		})
	}

	return prices
}

func (r *Resolver) cacheGet(date string) (map[string]float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prices, ok := r.cache[date]
	if ok {
		r.touch(date)
	}
	return prices, ok
}

func (r *Resolver) cachePut(date string, prices map[string]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.cache[date]; !exists && len(r.cache) >= dayCacheCapacity {
		evicted := r.order[0]
		r.order = r.order[1:]
		delete(r.cache, evicted)
	}
	r.cache[date] = prices
	r.touch(date)
}

// touch moves a date to the most-recently-used position. Caller holds mu.
func (r *Resolver) touch(date string) {
	for i, d := range r.order {
		if d == date {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.order = append(r.order, date)
}

// Ensure Resolver implements PriceResolver.
var _ interfaces.PriceResolver = (*Resolver)(nil)
