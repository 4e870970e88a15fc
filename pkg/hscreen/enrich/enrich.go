package enrich

import (
	"context"
	"fmt"
	"time"

	yfgo "github.com/komsit37/yf-go"

	"github.com/komsit37/hscreen/pkg/hscreen/ratio"
	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

// QuoteService fetches a display quote for a symbol.
type QuoteService interface {
	Get(ctx context.Context, sym string) (types.Quote, error)
}

// RatioService computes live compliance ratios for a symbol.
type RatioService interface {
	ComputeRatios(ctx context.Context, sym string) (ratio.Result, error)
}

// YFService implements QuoteService using yf-go.
type YFService struct {
	client  *yfgo.Client
	timeout time.Duration
}

func NewYFService(timeout time.Duration) *YFService {
	return &YFService{client: yfgo.NewClient(), timeout: timeout}
}

func (s *YFService) Get(ctx context.Context, sym string) (types.Quote, error) {
	if sym == "" {
		return types.Quote{}, nil
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.client.QuoteSummaryTyped(cctx, sym, []yfgo.QuoteSummaryModule{yfgo.ModulePrice})
	if err != nil {
		return types.Quote{}, err
	}
	if res.Price == nil {
		return types.Quote{}, fmt.Errorf("no price for %s", sym)
	}

	var q types.Quote
	p := res.Price.RegularMarketPrice
	if p.Fmt != "" {
		q.Price = p.Fmt
	} else if p.Raw != nil {
		q.Price = fmt.Sprintf("%.2f", *p.Raw)
	}
	cp := res.Price.RegularMarketChangePercent
	if cp.Fmt != "" {
		q.ChgFmt = cp.Fmt
	}
	if cp.Raw != nil {
		q.ChgRaw = *cp.Raw
		if q.ChgFmt == "" {
			q.ChgFmt = fmt.Sprintf("%.2f%%", q.ChgRaw)
		}
	}
	if res.Price.ShortName != "" {
		q.Name = res.Price.ShortName
	} else if res.Price.LongName != "" {
		q.Name = res.Price.LongName
	}
	return q, nil
}

// CacheService decorates a QuoteService with a TTL+LRU cache.
type CacheService struct {
	next  QuoteService
	cache *Cache[types.Quote]
}

func NewCacheService(next QuoteService, ttl time.Duration, size int) *CacheService {
	return &CacheService{next: next, cache: NewCache[types.Quote](ttl, size)}
}

func (c *CacheService) Get(ctx context.Context, sym string) (types.Quote, error) {
	if sym == "" {
		return types.Quote{}, nil
	}
	if q, ok := c.cache.Get(sym); ok {
		return q, nil
	}
	q, err := c.next.Get(ctx, sym)
	if err != nil {
		return q, err
	}
	c.cache.Put(sym, q)
	return q, nil
}

// RatioCache decorates a RatioService. Failures are not cached so a later
// call can succeed.
type RatioCache struct {
	next  RatioService
	cache *Cache[ratio.Result]
}

func NewRatioCache(next RatioService, ttl time.Duration, size int) *RatioCache {
	return &RatioCache{next: next, cache: NewCache[ratio.Result](ttl, size)}
}

func (c *RatioCache) ComputeRatios(ctx context.Context, sym string) (ratio.Result, error) {
	if r, ok := c.cache.Get(sym); ok {
		return r, nil
	}
	r, err := c.next.ComputeRatios(ctx, sym)
	if err != nil {
		return r, err
	}
	c.cache.Put(sym, r)
	return r, nil
}
