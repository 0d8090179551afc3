package account

import (
	"testing"
	"time"

	"github.com/calebmartin/papertrader/internal/models"
)

func pt(ts time.Time, value float64) models.ValuePoint {
	return models.ValuePoint{Timestamp: ts, Value: value}
}

func TestAggregateCandlesEmptySeries(t *testing.T) {
	candles := AggregateCandles(nil, nil, "1min", nil, nil)
	if len(candles) != 0 {
		t.Errorf("Expected empty result, got %d candles", len(candles))
	}
}

func TestAggregateCandlesSingleBucket(t *testing.T) {
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	series := []models.ValuePoint{
		pt(base.Add(5*time.Second), 100.0),
		pt(base.Add(20*time.Second), 104.0),
		pt(base.Add(40*time.Second), 98.0),
		pt(base.Add(55*time.Second), 101.0),
	}

	candles := AggregateCandles(series, nil, "1min", nil, nil)
	if len(candles) != 1 {
		t.Fatalf("Expected 1 candle, got %d", len(candles))
	}
	c := candles[0]
	if !c.Timestamp.Equal(base) {
		t.Errorf("Expected bucket start %v, got %v", base, c.Timestamp)
	}
	if c.Open != 100.0 || c.Close != 101.0 {
		t.Errorf("Expected open 100 close 101, got open %f close %f", c.Open, c.Close)
	}
	if c.High != 104.0 || c.Low != 98.0 {
		t.Errorf("Expected high 104 low 98, got high %f low %f", c.High, c.Low)
	}
	if c.Volume != 0 {
		t.Errorf("Expected volume 0 with no transactions, got %d", c.Volume)
	}
}

func TestAggregateCandlesMultipleBucketsOrdered(t *testing.T) {
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	// Unsorted input spanning three 5-minute buckets; the middle bucket has
	// no points and must be omitted.
	series := []models.ValuePoint{
		pt(base.Add(11*time.Minute), 120.0),
		pt(base.Add(1*time.Minute), 100.0),
		pt(base.Add(12*time.Minute), 118.0),
		pt(base.Add(2*time.Minute), 105.0),
	}

	candles := AggregateCandles(series, nil, "5min", nil, nil)
	if len(candles) != 2 {
		t.Fatalf("Expected 2 candles, got %d", len(candles))
	}
	if !candles[0].Timestamp.Before(candles[1].Timestamp) {
		t.Error("Expected candles ordered by bucket start ascending")
	}
	if candles[0].Open != 100.0 || candles[0].Close != 105.0 {
		t.Errorf("First bucket: expected open 100 close 105, got %f/%f", candles[0].Open, candles[0].Close)
	}
	if candles[1].Open != 120.0 || candles[1].Close != 118.0 {
		t.Errorf("Second bucket: expected open 120 close 118, got %f/%f", candles[1].Open, candles[1].Close)
	}
}

func TestAggregateCandlesVolume(t *testing.T) {
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	series := []models.ValuePoint{
		pt(base.Add(10*time.Second), 100.0),
		pt(base.Add(90*time.Second), 101.0),
	}
	transactions := []models.Transaction{
		{Symbol: "AAPL", Quantity: 10, Timestamp: base.Add(15 * time.Second)},
		{Symbol: "AAPL", Quantity: -4, Timestamp: base.Add(30 * time.Second)},
		{Symbol: "MSFT", Quantity: 7, Timestamp: base.Add(70 * time.Second)},
		{Symbol: "MSFT", Quantity: 1, Timestamp: base.Add(10 * time.Minute)}, // no bucket
	}

	candles := AggregateCandles(series, transactions, "1min", nil, nil)
	if len(candles) != 2 {
		t.Fatalf("Expected 2 candles, got %d", len(candles))
	}
	if candles[0].Volume != 14 {
		t.Errorf("Expected first bucket volume 14 (|10|+|-4|), got %d", candles[0].Volume)
	}
	if candles[1].Volume != 7 {
		t.Errorf("Expected second bucket volume 7, got %d", candles[1].Volume)
	}
}

func TestAggregateCandlesBoundsInclusive(t *testing.T) {
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	series := []models.ValuePoint{
		pt(base, 100.0),
		pt(base.Add(1*time.Hour), 110.0),
		pt(base.Add(2*time.Hour), 120.0),
	}

	start := base.Add(1 * time.Hour)
	end := base.Add(2 * time.Hour)
	candles := AggregateCandles(series, nil, "1h", &start, &end)
	if len(candles) != 2 {
		t.Fatalf("Expected 2 candles at the inclusive bounds, got %d", len(candles))
	}
	if candles[0].Open != 110.0 || candles[1].Open != 120.0 {
		t.Errorf("Expected boundary points kept, got %f and %f", candles[0].Open, candles[1].Open)
	}
}

func TestAggregateCandlesAllFiltered(t *testing.T) {
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	series := []models.ValuePoint{pt(base, 100.0)}

	start := base.Add(time.Hour)
	candles := AggregateCandles(series, nil, "1min", &start, nil)
	if len(candles) != 0 {
		t.Errorf("Expected empty result when all points filtered, got %d", len(candles))
	}
}

func TestAggregateCandlesUnknownResolution(t *testing.T) {
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	series := []models.ValuePoint{
		pt(base.Add(10*time.Second), 100.0),
		pt(base.Add(70*time.Second), 101.0),
	}

	// Falls back to 1-minute buckets: two candles, not one.
	candles := AggregateCandles(series, nil, "fortnight", nil, nil)
	if len(candles) != 2 {
		t.Fatalf("Expected 2 candles under 1-minute fallback, got %d", len(candles))
	}
}

func TestAggregateCandlesDiscardsZeroTimestamps(t *testing.T) {
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	series := []models.ValuePoint{
		{Value: 999.0}, // zero timestamp
		pt(base, 100.0),
	}

	candles := AggregateCandles(series, nil, "1min", nil, nil)
	if len(candles) != 1 {
		t.Fatalf("Expected 1 candle, got %d", len(candles))
	}
	if candles[0].Open != 100.0 {
		t.Errorf("Expected zero-timestamp point discarded, got open %f", candles[0].Open)
	}
}
