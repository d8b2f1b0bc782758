// Package quotes provides stock data lookups for the bot on top of finnhub.
package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Semior001/stockfeed/pkg/finnhub"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

//go:generate moq -out mock_finnhub.go . Finnhub

// Finnhub defines the finnhub operations the service relies on.
type Finnhub interface {
	Search(ctx context.Context, query string) (finnhub.SearchResponse, error)
	News(ctx context.Context, typ finnhub.NewsType) ([]finnhub.NewsStory, error)
	MarketData(ctx context.Context, symbol string, numberOfDays int) (finnhub.MarketDataResponse, error)
	FinancialMetrics(ctx context.Context, symbol string) (finnhub.FinancialMetricsResponse, error)
}

// Service looks up quotes, news and metrics. Metrics and search results
// change rarely, so they are kept in memory for a while.
type Service struct {
	log     *slog.Logger
	cl      Finnhub
	metrics cache.Cache[string, finnhub.Metrics]
	search  cache.Cache[string, []finnhub.SearchResult]
}

// Params configures the Service.
type Params struct {
	CacheTTL  time.Duration
	CacheSize int
}

// NewService makes a new Service.
func NewService(lg *slog.Logger, cl Finnhub, p Params) *Service {
	return &Service{
		log: lg,
		cl:  cl,
		metrics: cache.NewCache[string, finnhub.Metrics]().
			WithLRU().
			WithTTL(p.CacheTTL).
			WithMaxKeys(p.CacheSize),
		search: cache.NewCache[string, []finnhub.SearchResult]().
			WithLRU().
			WithTTL(p.CacheTTL).
			WithMaxKeys(p.CacheSize),
	}
}

// CacheStat returns hits and misses of both caches summed.
func (s *Service) CacheStat() cache.Stats {
	m, q := s.metrics.Stat(), s.search.Stat()
	return cache.Stats{
		Hits:    m.Hits + q.Hits,
		Misses:  m.Misses + q.Misses,
		Added:   m.Added + q.Added,
		Evicted: m.Evicted + q.Evicted,
	}
}

// Search returns symbols matching the query.
func (s *Service) Search(ctx context.Context, query string) ([]finnhub.SearchResult, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if res, ok := s.search.Get(key); ok {
		return res, nil
	}

	resp, err := s.cl.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	s.search.Set(key, resp.Result, 0)
	return resp.Result, nil
}

// News returns top stories if symbol is empty, or the company news otherwise.
func (s *Service) News(ctx context.Context, symbol string) ([]finnhub.NewsStory, error) {
	typ := finnhub.TopStories()
	if symbol != "" {
		typ = finnhub.CompanyNews(symbol)
	}

	stories, err := s.cl.News(ctx, typ)
	if err != nil {
		return nil, err
	}

	s.log.DebugCtx(ctx, "news received", slog.String("type", typ.String()), slog.Int("stories", len(stories)))
	return stories, nil
}

// Candles returns candles for the symbol over the last days, newest first.
func (s *Service) Candles(ctx context.Context, symbol string, days int) ([]finnhub.CandleStick, error) {
	resp, err := s.cl.MarketData(ctx, symbol, days)
	if err != nil {
		return nil, err
	}

	if resp.Status != "ok" {
		s.log.DebugCtx(ctx, "no candles", slog.String("symbol", symbol), slog.String("status", resp.Status))
		return nil, nil
	}

	return resp.CandleSticks(), nil
}

// Metrics returns basic financials of the symbol.
func (s *Service) Metrics(ctx context.Context, symbol string) (finnhub.Metrics, error) {
	if m, ok := s.metrics.Get(symbol); ok {
		return m, nil
	}

	resp, err := s.cl.FinancialMetrics(ctx, symbol)
	if err != nil {
		return finnhub.Metrics{}, err
	}

	s.metrics.Set(symbol, resp.Metric, 0)
	return resp.Metric, nil
}

// Overview is a short summary of a symbol.
type Overview struct {
	Symbol  string
	Candles []finnhub.CandleStick
	Metrics finnhub.Metrics
}

// Change returns the price change over the candles window, in percents.
// ok is false if there are not enough candles.
func (o Overview) Change() (pct float64, ok bool) {
	if len(o.Candles) < 2 {
		return 0, false
	}

	first, last := o.Candles[len(o.Candles)-1].Open, o.Candles[0].Close
	if first == 0 {
		return 0, false
	}

	return (last - first) / first * 100, true
}

// Overview fetches candles and metrics of the symbol concurrently.
func (s *Service) Overview(ctx context.Context, symbol string, days int) (Overview, error) {
	res := Overview{Symbol: symbol}

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() (err error) {
		if res.Candles, err = s.Candles(ctx, symbol, days); err != nil {
			return fmt.Errorf("candles: %w", err)
		}
		return nil
	})
	ewg.Go(func() (err error) {
		if res.Metrics, err = s.Metrics(ctx, symbol); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		return nil
	})

	if err := ewg.Wait(); err != nil {
		return Overview{}, err
	}

	return res, nil
}
