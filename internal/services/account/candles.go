package account

import (
	"sort"
	"time"

	"github.com/calebmartin/papertrader/internal/models"
)

// bucketWidth maps a resolution string to a bucket duration. Unrecognized
// resolutions fall back to one minute rather than failing.
func bucketWidth(resolution string) time.Duration {
	switch resolution {
	case "1min":
		return time.Minute
	case "5min":
		return 5 * time.Minute
	case "15min":
		return 15 * time.Minute
	case "1h":
		return time.Hour
	case "4h":
		return 4 * time.Hour
	case "1d":
		return 24 * time.Hour
	default:
		return time.Minute
	}
}

// AggregateCandles partitions a value time series into fixed-width OHLCV
// bars. Pure function: no I/O, never fails. Buckets with no points are
// omitted; volume is the sum of absolute transaction quantities whose
// timestamps fall within the bucket span.
func AggregateCandles(series []models.ValuePoint, transactions []models.Transaction, resolution string, start, end *time.Time) []models.Candle {
	if len(series) == 0 {
		return []models.Candle{}
	}

	width := bucketWidth(resolution)

	points := make([]models.ValuePoint, 0, len(series))
	for _, p := range series {
		if p.Timestamp.IsZero() {
			continue
		}
		if start != nil && p.Timestamp.Before(*start) {
			continue
		}
		if end != nil && p.Timestamp.After(*end) {
			continue
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return []models.Candle{}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	var candles []models.Candle
	index := map[time.Time]int{}
	for _, p := range points {
		bucket := p.Timestamp.Truncate(width)
		i, ok := index[bucket]
		if !ok {
			index[bucket] = len(candles)
			candles = append(candles, models.Candle{
				Timestamp: bucket,
				Open:      p.Value,
				High:      p.Value,
				Low:       p.Value,
				Close:     p.Value,
			})
			continue
		}
		c := &candles[i]
		if p.Value > c.High {
			c.High = p.Value
		}
		if p.Value < c.Low {
			c.Low = p.Value
		}
		c.Close = p.Value
	}

	for _, t := range transactions {
		if t.Timestamp.IsZero() {
			continue
		}
		if i, ok := index[t.Timestamp.Truncate(width)]; ok {
			q := int64(t.Quantity)
			if q < 0 {
				q = -q
			}
			candles[i].Volume += q
		}
	}

	return candles
}
