// Package cmd contains commands for the application.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Semior001/stockfeed/pkg/finnhub"
	"github.com/Semior001/stockfeed/pkg/logx"
	"golang.org/x/exp/slog"
)

// FinnhubOpts defines parameters of the finnhub API connection.
type FinnhubOpts struct {
	Token   string        `long:"token" env:"TOKEN" required:"true" description:"finnhub API key"`
	BaseURL string        `long:"base-url" env:"BASE_URL" default:"https://finnhub.io/api/v1/" description:"finnhub API root"`
	Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"15s" description:"timeout for finnhub requests"`
}

// client builds a finnhub client, logging the traffic at debug level.
func (o FinnhubOpts) client(lg *slog.Logger) *finnhub.Client {
	cl := finnhub.NewHTTPClient(o.Timeout, logx.LoggingRoundTripper(lg, logx.RoundTripperOpts{
		Level:        slog.LevelDebug,
		SecretParams: []string{"token"},
	}))

	return finnhub.NewClient(cl, o.Token,
		finnhub.WithBaseURL(o.BaseURL),
		finnhub.WithLogger(lg),
	)
}

// Search is a command to look up symbols.
type Search struct {
	Finnhub FinnhubOpts `group:"finnhub" namespace:"finnhub" env-namespace:"FINNHUB"`
	Args    struct {
		Query string `positional-arg-name:"query" required:"true"`
	} `positional-args:"yes"`
}

// Execute runs the command.
func (s Search) Execute(_ []string) error {
	lg := slog.Default().With(slog.String("prefix", "finnhub"))
	resp, err := s.Finnhub.client(lg).Search(context.Background(), s.Args.Query)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, resp)
}

// News is a command to print market or company news.
type News struct {
	Finnhub FinnhubOpts `group:"finnhub" namespace:"finnhub" env-namespace:"FINNHUB"`
	Symbol  string      `long:"symbol" description:"company symbol, top stories if empty"`
}

// Execute runs the command.
func (n News) Execute(_ []string) error {
	typ := finnhub.TopStories()
	if n.Symbol != "" {
		typ = finnhub.CompanyNews(n.Symbol)
	}

	lg := slog.Default().With(slog.String("prefix", "finnhub"))
	stories, err := n.Finnhub.client(lg).News(context.Background(), typ)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, stories)
}

// Candles is a command to print candles of a symbol.
type Candles struct {
	Finnhub FinnhubOpts `group:"finnhub" namespace:"finnhub" env-namespace:"FINNHUB"`
	Days    int         `long:"days" default:"7" description:"number of days to cover"`
	Raw     bool        `long:"raw" description:"print the response as is, without zipping into candles"`
	Args    struct {
		Symbol string `positional-arg-name:"symbol" required:"true"`
	} `positional-args:"yes"`
}

// Execute runs the command.
func (c Candles) Execute(_ []string) error {
	lg := slog.Default().With(slog.String("prefix", "finnhub"))
	resp, err := c.Finnhub.client(lg).MarketData(context.Background(), c.Args.Symbol, c.Days)
	if err != nil {
		return err
	}

	if c.Raw {
		return printJSON(os.Stdout, resp)
	}
	return printJSON(os.Stdout, resp.CandleSticks())
}

// Metrics is a command to print basic financials of a symbol.
type Metrics struct {
	Finnhub FinnhubOpts `group:"finnhub" namespace:"finnhub" env-namespace:"FINNHUB"`
	Args    struct {
		Symbol string `positional-arg-name:"symbol" required:"true"`
	} `positional-args:"yes"`
}

// Execute runs the command.
func (m Metrics) Execute(_ []string) error {
	lg := slog.Default().With(slog.String("prefix", "finnhub"))
	resp, err := m.Finnhub.client(lg).FinancialMetrics(context.Background(), m.Args.Symbol)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, resp)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
