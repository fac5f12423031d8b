package cache

import (
	"fmt"
	"log"
	"time"

	"DriftSentinel/internal/marketdata"
	"DriftSentinel/internal/model"
)

// BarCache persists fetched bars so repeated runs over the same ranges
// skip the network. Only raw bars are cached; computed drift results are
// always derived fresh.
type BarCache interface {
	// Load returns the cached bars for [start, end) and whether the range
	// was previously fetched in full. A covered range with zero bars means
	// the source genuinely had no data there.
	Load(ticker string, tf marketdata.Timeframe, start, end time.Time) ([]model.Bar, bool, error)
	Store(ticker string, tf marketdata.Timeframe, start, end time.Time, bars []model.Bar) error
	Close() error
}

// NoopCache is used when no cache path is configured.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (n *NoopCache) Load(string, marketdata.Timeframe, time.Time, time.Time) ([]model.Bar, bool, error) {
	return nil, false, nil
}
func (n *NoopCache) Store(string, marketdata.Timeframe, time.Time, time.Time, []model.Bar) error {
	return nil
}
func (n *NoopCache) Close() error { return nil }

// CachedSource decorates a BarSource with a BarCache. Calendar lookups are
// cheap and always pass through.
type CachedSource struct {
	src   marketdata.BarSource
	cache BarCache
}

func NewCachedSource(src marketdata.BarSource, c BarCache) *CachedSource {
	return &CachedSource{src: src, cache: c}
}

func (c *CachedSource) Name() string { return c.src.Name() + "+cache" }

func (c *CachedSource) FetchBars(ticker string, tf marketdata.Timeframe, start, end time.Time) ([]model.Bar, error) {
	bars, ok, err := c.cache.Load(ticker, tf, start, end)
	if err != nil {
		log.Printf("[WARN] cache load failed, falling back to source: %v", err)
	} else if ok {
		if len(bars) == 0 {
			return nil, fmt.Errorf("fetch bars %s: %w", ticker, marketdata.ErrNoData)
		}
		return bars, nil
	}

	bars, err = c.src.FetchBars(ticker, tf, start, end)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Store(ticker, tf, start, end, bars); err != nil {
		log.Printf("[WARN] cache store failed: %v", err)
	}
	return bars, nil
}

func (c *CachedSource) FetchTradingDays(year int) ([]string, error) {
	return c.src.FetchTradingDays(year)
}
