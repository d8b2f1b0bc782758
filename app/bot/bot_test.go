package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Semior001/stockfeed/app/digest"
	"github.com/Semior001/stockfeed/app/quotes"
	"github.com/Semior001/stockfeed/app/store"
	"github.com/Semior001/stockfeed/pkg/botx"
	"github.com/Semior001/stockfeed/pkg/finnhub"
	"github.com/Semior001/stockfeed/pkg/logx"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type apiMock struct {
	mu   sync.Mutex
	sent []botx.Response
}

func (a *apiMock) Updates() <-chan botx.Request { return nil }

func (a *apiMock) SendMessage(_ context.Context, resp botx.Response) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, resp)
	return nil
}

type cachingDigester struct {
	digesterFunc
	stats cache.Stats
}

func (d cachingDigester) CacheStat() cache.Stats { return d.stats }

type digesterFunc func(ctx context.Context, symbol string, stories []finnhub.NewsStory) (string, error)

func (f digesterFunc) Digest(ctx context.Context, symbol string, stories []finnhub.NewsStory) (string, error) {
	return f(ctx, symbol, stories)
}

func finnhubMock() *quotes.FinnhubMock {
	return &quotes.FinnhubMock{
		SearchFunc: func(_ context.Context, query string) (finnhub.SearchResponse, error) {
			return finnhub.SearchResponse{Count: 1, Result: []finnhub.SearchResult{{
				Description: "APPLE INC", DisplaySymbol: "AAPL", Symbol: "AAPL", Type: "Common Stock",
			}}}, nil
		},
		NewsFunc: func(_ context.Context, typ finnhub.NewsType) ([]finnhub.NewsStory, error) {
			if typ.Symbol() == "QUIET" {
				return nil, nil
			}
			return []finnhub.NewsStory{{
				Headline: "News about " + typ.String(),
				Source:   "Reuters",
				Datetime: 1686787200,
				URL:      "https://example.com/story",
			}}, nil
		},
		MarketDataFunc: func(_ context.Context, symbol string, days int) (finnhub.MarketDataResponse, error) {
			if symbol == "FAIL" {
				return finnhub.MarketDataResponse{}, finnhub.ErrTransport
			}
			return finnhub.MarketDataResponse{
				Open:       []float64{100, 105},
				High:       []float64{106, 111},
				Low:        []float64{99, 104},
				Close:      []float64{105, 110},
				Timestamps: []int64{1686700000, 1686786400},
				Status:     "ok",
			}, nil
		},
		FinancialMetricsFunc: func(_ context.Context, symbol string) (finnhub.FinancialMetricsResponse, error) {
			if symbol == "FAIL" {
				return finnhub.FinancialMetricsResponse{}, finnhub.ErrDecode
			}
			return finnhub.FinancialMetricsResponse{Metric: finnhub.Metrics{
				AnnualWeekHigh: 120, AnnualWeekLow: 90, Beta: 1.25,
			}}, nil
		},
	}
}

func newCtrl(t *testing.T) (*Ctrl, *apiMock) {
	s, err := store.NewBolt(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	lg := slog.New(logx.NoOp())
	api := &apiMock{}

	return &Ctrl{
		Logger:         lg,
		Store:          s,
		Quotes:         quotes.NewService(lg, finnhubMock(), quotes.Params{CacheTTL: time.Minute, CacheSize: 10}),
		API:            api,
		AdminIDs:       []string{"admin"},
		HandlerTimeout: 5 * time.Second,
	}, api
}

func handle(t *testing.T, c *Ctrl, chatID, text string) ([]botx.Response, error) {
	t.Helper()
	return c.Routes().Handle(context.Background(), botx.Request{
		Chat: botx.Chat{ID: chatID, Username: "user" + chatID},
		Text: text,
	})
}

func reply(t *testing.T, c *Ctrl, chatID, text string) string {
	t.Helper()
	resps, err := handle(t, c, chatID, text)
	require.NoError(t, err)
	require.Len(t, resps, 1)
	return resps[0].Text
}

func TestCtrl_RegistersUsers(t *testing.T) {
	c, api := newCtrl(t)

	text := reply(t, c, "1", "/start")
	assert.Contains(t, text, "/watchlist")

	u, err := c.Store.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "user1", u.Username)

	require.Len(t, api.sent, 1)
	assert.Equal(t, botx.Response{ChatID: "admin", Text: "new user: user1"}, api.sent[0])

	_ = reply(t, c, "1", "/help")
	assert.Len(t, api.sent, 1, "admins are notified once")
}

func TestCtrl_Search(t *testing.T) {
	c, _ := newCtrl(t)

	text := reply(t, c, "1", "/search apple inc")
	assert.Contains(t, text, "Results for *apple inc*")
	assert.Contains(t, text, "`AAPL` APPLE INC (Common Stock)")

	text = reply(t, c, "1", "apple")
	assert.Contains(t, text, "`AAPL`")

	text = reply(t, c, "1", "/search")
	assert.Contains(t, text, "provide a query")

	text = reply(t, c, "1", "/unknown")
	assert.Contains(t, text, "Unknown command")
}

func TestCtrl_News(t *testing.T) {
	c, _ := newCtrl(t)

	text := reply(t, c, "1", "/news")
	assert.Contains(t, text, "*News about top stories*")
	assert.Contains(t, text, "Reuters, Jun 15, 00:00")
	assert.Contains(t, text, "[read more](https://example.com/story)")

	text = reply(t, c, "1", "/news aapl")
	assert.Contains(t, text, "News about company news for AAPL")
}

func TestCtrl_Candles(t *testing.T) {
	c, _ := newCtrl(t)

	text := reply(t, c, "1", "/candles aapl 3")
	assert.Contains(t, text, "*AAPL* over 3 days")
	assert.Contains(t, text, "last close: 110.00")
	assert.Contains(t, text, "change: +10.00%")
	assert.Contains(t, text, "high: 111.00")
	assert.Contains(t, text, "low: 99.00")

	text = reply(t, c, "1", "/candles aapl many")
	assert.Contains(t, text, "between 1 and 365")

	text = reply(t, c, "1", "/candles")
	assert.Contains(t, text, "provide a symbol")
}

func TestCtrl_Metrics(t *testing.T) {
	c, _ := newCtrl(t)

	text := reply(t, c, "1", "/metrics aapl")
	assert.Contains(t, text, "*AAPL* basic financials")
	assert.Contains(t, text, "52 week high: 120.00")
	assert.Contains(t, text, "beta: 1.25")

	resps, err := handle(t, c, "1", "/metrics fail")
	require.Error(t, err)
	assert.ErrorIs(t, err, finnhub.ErrDecode)
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "Request ID")
}

func TestCtrl_Watchlist(t *testing.T) {
	c, _ := newCtrl(t)

	text := reply(t, c, "1", "/watchlist")
	assert.Contains(t, text, "empty")

	assert.Contains(t, reply(t, c, "1", "/watch aapl"), "`AAPL` was added")
	assert.Contains(t, reply(t, c, "1", "/watch AAPL"), "already")
	assert.Contains(t, reply(t, c, "1", "/watch fail"), "`FAIL` was added")

	text = reply(t, c, "1", "/watchlist")
	assert.Contains(t, text, "`AAPL` 110.00 (+10.00%), 52w 90.00-120.00")
	assert.Contains(t, text, "`FAIL` unavailable")

	assert.Contains(t, reply(t, c, "1", "/unwatch fail"), "removed")
	assert.Contains(t, reply(t, c, "1", "/unwatch fail"), "not in your watchlist")

	u, err := c.Store.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, u.Watchlist)
}

func TestCtrl_Digest(t *testing.T) {
	c, api := newCtrl(t)

	text := reply(t, c, "1", "/digest aapl")
	assert.Contains(t, text, "not available")

	c.Digester = digesterFunc(func(_ context.Context, symbol string, stories []finnhub.NewsStory) (string, error) {
		if symbol == "NONE" {
			return "", digest.ErrNoStories
		}
		require.Len(t, stories, 1)
		return "- " + stories[0].Headline, nil
	})

	text = reply(t, c, "1", "/digest aapl")
	assert.Equal(t, "*AAPL digest*\n\n- News about company news for AAPL", text)
	assert.Equal(t, "I'm reading the news, please wait...", api.sent[len(api.sent)-1].Text)

	text = reply(t, c, "1", "/digest none")
	assert.Contains(t, text, "No news about `NONE`")

	c.Digester = digesterFunc(func(context.Context, string, []finnhub.NewsStory) (string, error) {
		return "", errors.New("openai is down")
	})
	_, err := handle(t, c, "1", "/digest aapl")
	assert.Error(t, err)

	t.Run("no news", func(t *testing.T) {
		sent := len(api.sent)
		text := reply(t, c, "1", "/digest quiet")
		assert.Equal(t, "No news about `QUIET` in the last week.", text)
		assert.Len(t, api.sent, sent, "no wait message without stories")
	})
}

func TestCtrl_WatchConcurrently(t *testing.T) {
	c, _ := newCtrl(t)
	_ = reply(t, c, "1", "/start")

	symbols := []string{"AAPL", "MSFT", "TSLA", "NVDA", "AMZN", "GOOG"}

	var wg sync.WaitGroup
	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			resps, err := handle(t, c, "1", "/watch "+sym)
			assert.NoError(t, err)
			assert.Len(t, resps, 1)
		}(sym)
	}
	wg.Wait()

	u, err := c.Store.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.ElementsMatch(t, symbols, u.Watchlist)
}

func TestCtrl_Admin(t *testing.T) {
	c, _ := newCtrl(t)

	text := reply(t, c, "1", "/users")
	assert.Contains(t, text, "Unknown command")

	_ = reply(t, c, "1", "/watch tsla")

	text = reply(t, c, "admin", "/users tsla")
	assert.Contains(t, text, "Users: 1")
	assert.Contains(t, text, "id: 1, username: user1, watching: TSLA")

	_ = reply(t, c, "admin", "/metrics aapl")
	_ = reply(t, c, "admin", "/metrics aapl")

	text = reply(t, c, "admin", "/cache")
	assert.Contains(t, text, "quotes: hits: 1, misses: 1")
	assert.NotContains(t, text, "digest")

	c.Digester = cachingDigester{stats: cache.Stats{Hits: 3, Misses: 2, Added: 2}}
	text = reply(t, c, "admin", "/cache")
	assert.Contains(t, text, "digest: hits: 3, misses: 2, evictions: 0, added: 2")
}
