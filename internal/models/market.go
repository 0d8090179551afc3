package models

import "time"

// DailyBar is a single end-of-day bar from the intraday provider.
type DailyBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// TickerSnapshot is a delayed live quote from the minute-tier provider.
// MinuteClose and PrevDayClose are zero when the provider omitted them.
type TickerSnapshot struct {
	Ticker       string  `json:"ticker"`
	MinuteClose  float64 `json:"minute_close"`
	PrevDayClose float64 `json:"prev_day_close"`
}

// DayPrices holds one trading day's bulk closing prices, keyed by ticker.
// Stored under the calendar date ("2006-01-02") of the lookup, not the
// trading day the closes belong to.
type DayPrices struct {
	Date    string             `json:"date"`
	Prices  map[string]float64 `json:"prices"`
	FetchAt time.Time          `json:"fetch_at"`
}
