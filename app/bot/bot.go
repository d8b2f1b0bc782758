// Package bot contains routers and controllers for the telegram bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Semior001/stockfeed/app/digest"
	"github.com/Semior001/stockfeed/app/quotes"
	"github.com/Semior001/stockfeed/app/store"
	"github.com/Semior001/stockfeed/pkg/botx"
	"github.com/Semior001/stockfeed/pkg/botx/botmw"
	"github.com/Semior001/stockfeed/pkg/finnhub"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// Digester makes digests of news stories.
type Digester interface {
	Digest(ctx context.Context, symbol string, stories []finnhub.NewsStory) (string, error)
}

// Ctrl provides routes and controllers for bot updates.
type Ctrl struct {
	Logger         *slog.Logger
	Store          store.Interface
	Quotes         *quotes.Service
	Digester       Digester // optional
	API            botx.API
	AdminIDs       []string
	HandlerTimeout time.Duration
	// MaxItems limits the number of news stories and search results in a reply.
	MaxItems int
}

// Routes returns a multiplexer for bot controllers.
func (c *Ctrl) Routes() *botx.Router {
	rtr := botx.NewRouter()

	rtr.Use(
		botmw.RequestID(),
		botmw.AppendRequestIDOnError(),
		botmw.Recover(c.Logger),
		botmw.Logger(c.Logger),
		botmw.Timeout(c.HandlerTimeout),
		c.ensureUser,
	)

	rtr.NotFound(c.freeText)
	rtr.Add("/start", c.start)
	rtr.Add("/help", c.help)
	rtr.Add("/search", c.search)
	rtr.Add("/news", c.news)
	rtr.Add("/candles", c.candles)
	rtr.Add("/metrics", c.metrics)
	rtr.Add("/watch", c.watch)
	rtr.Add("/unwatch", c.unwatch)
	rtr.Add("/watchlist", c.watchlist)
	rtr.Add("/digest", c.digest)

	rtr.Group(func(rtr *botx.Router) {
		rtr.Use(c.ensureAdmin)

		rtr.Add("/users", c.users)
		rtr.Add("/cache", c.cacheStats)
	})

	return rtr
}

const helpText = `I track stocks with data from finnhub.io.

/search <query> - find a symbol by company name
/news - top market stories
/news <SYMBOL> - company news for the last week
/candles <SYMBOL> [days] - price movement over the last days
/metrics <SYMBOL> - basic financials
/watch <SYMBOL> - add a symbol to your watchlist
/unwatch <SYMBOL> - remove a symbol from your watchlist
/watchlist - quotes of your watchlist
/digest <SYMBOL> - short digest of company news`

func (c *Ctrl) start(_ context.Context, req botx.Request) ([]botx.Response, error) {
	return []botx.Response{req.Reply("Hello! " + helpText)}, nil
}

func (c *Ctrl) help(_ context.Context, req botx.Request) ([]botx.Response, error) {
	return []botx.Response{req.Reply(helpText)}, nil
}

// freeText treats plain messages as search queries.
func (c *Ctrl) freeText(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	if req.Command() != "" {
		return botx.NotFound(ctx, req)
	}
	return c.lookup(ctx, req, strings.TrimSpace(req.Text))
}

func (c *Ctrl) search(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	return c.lookup(ctx, req, strings.Join(req.Args(), " "))
}

func (c *Ctrl) lookup(ctx context.Context, req botx.Request, query string) ([]botx.Response, error) {
	if query == "" {
		return []botx.Response{req.Reply("Please, provide a query, e.g. `/search apple`.")}, nil
	}

	results, err := c.Quotes.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	if len(results) == 0 {
		return []botx.Response{req.Reply("Nothing found for " + escapeMarkdown(query) + ".")}, nil
	}

	sb := &strings.Builder{}
	_, _ = fmt.Fprintf(sb, "Results for *%s*:\n", escapeMarkdown(query))
	for _, r := range lo.Slice(results, 0, c.maxItems()) {
		_, _ = fmt.Fprintf(sb, "`%s` %s (%s)\n", r.DisplaySymbol, escapeMarkdown(r.Description), escapeMarkdown(r.Type))
	}

	return []botx.Response{req.Reply(sb.String())}, nil
}

func (c *Ctrl) news(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	symbol := ""
	if args := req.Args(); len(args) > 0 {
		symbol = store.NormalizeSymbol(args[0])
	}

	stories, err := c.Quotes.News(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("get news: %w", err)
	}

	if len(stories) == 0 {
		return []botx.Response{req.Reply("No news at the moment.")}, nil
	}

	text, err := formatStories(lo.Slice(stories, 0, c.maxItems()))
	if err != nil {
		return nil, err
	}

	return []botx.Response{req.Reply(text)}, nil
}

func (c *Ctrl) candles(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	args := req.Args()
	if len(args) == 0 {
		return []botx.Response{req.Reply("Please, provide a symbol, e.g. `/candles AAPL 7`.")}, nil
	}

	symbol := store.NormalizeSymbol(args[0])
	days := finnhub.DefaultCandleDays
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 || n > 365 {
			return []botx.Response{req.Reply("Number of days should be between 1 and 365.")}, nil
		}
		days = n
	}

	candles, err := c.Quotes.Candles(ctx, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}

	if len(candles) == 0 {
		return []botx.Response{req.Reply(fmt.Sprintf("No trades of `%s` in the last %d days.", symbol, days))}, nil
	}

	return []botx.Response{req.Reply(formatCandles(symbol, days, candles))}, nil
}

func (c *Ctrl) metrics(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	args := req.Args()
	if len(args) == 0 {
		return []botx.Response{req.Reply("Please, provide a symbol, e.g. `/metrics AAPL`.")}, nil
	}

	symbol := store.NormalizeSymbol(args[0])
	m, err := c.Quotes.Metrics(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("get metrics: %w", err)
	}

	return []botx.Response{req.Reply(formatMetrics(symbol, m))}, nil
}

func (c *Ctrl) watch(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	args := req.Args()
	if len(args) == 0 {
		return []botx.Response{req.Reply("Please, provide a symbol, e.g. `/watch AAPL`.")}, nil
	}

	symbol := store.NormalizeSymbol(args[0])

	changed := false
	_, err := c.Store.Update(ctx, req.Chat.ID, func(u *store.User) bool {
		changed = u.Watch(symbol)
		return changed
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if !changed {
		return []botx.Response{req.Reply(fmt.Sprintf("`%s` is already in your watchlist.", symbol))}, nil
	}

	return []botx.Response{req.Reply(fmt.Sprintf("`%s` was added to your watchlist.", symbol))}, nil
}

func (c *Ctrl) unwatch(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	args := req.Args()
	if len(args) == 0 {
		return []botx.Response{req.Reply("Please, provide a symbol, e.g. `/unwatch AAPL`.")}, nil
	}

	symbol := store.NormalizeSymbol(args[0])

	changed := false
	_, err := c.Store.Update(ctx, req.Chat.ID, func(u *store.User) bool {
		changed = u.Unwatch(symbol)
		return changed
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if !changed {
		return []botx.Response{req.Reply(fmt.Sprintf("`%s` is not in your watchlist.", symbol))}, nil
	}

	return []botx.Response{req.Reply(fmt.Sprintf("`%s` was removed from your watchlist.", symbol))}, nil
}

func (c *Ctrl) watchlist(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	u, ok := userFromContext(ctx)
	if !ok {
		return nil, errors.New("no user in context")
	}

	if len(u.Watchlist) == 0 {
		return []botx.Response{req.Reply("Your watchlist is empty, add symbols with /watch.")}, nil
	}

	// each symbol is looked up independently, a failed one does not
	// spoil the rest of the list
	results := lo.Map(u.Watchlist, func(symbol string, _ int) <-chan finnhub.Result[quotes.Overview] {
		return finnhub.Go(ctx, func(ctx context.Context) (quotes.Overview, error) {
			return c.Quotes.Overview(ctx, symbol, 1)
		})
	})

	sb := &strings.Builder{}
	_, _ = sb.WriteString("Your watchlist:\n")
	for i, ch := range results {
		res := <-ch
		if res.Err != nil {
			c.Logger.WarnCtx(ctx, "failed to get overview",
				slog.String("symbol", u.Watchlist[i]), slog.Any("err", res.Err))
			_, _ = fmt.Fprintf(sb, "`%s` unavailable\n", u.Watchlist[i])
			continue
		}
		_, _ = sb.WriteString(formatOverviewLine(res.Value) + "\n")
	}

	return []botx.Response{req.Reply(sb.String())}, nil
}

func (c *Ctrl) digest(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	if c.Digester == nil {
		return []botx.Response{req.Reply("Digests are not available.")}, nil
	}

	args := req.Args()
	if len(args) == 0 {
		return []botx.Response{req.Reply("Please, provide a symbol, e.g. `/digest AAPL`.")}, nil
	}

	symbol := store.NormalizeSymbol(args[0])

	stories, err := c.Quotes.News(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("get news: %w", err)
	}

	if len(stories) == 0 {
		return []botx.Response{req.Reply(fmt.Sprintf("No news about `%s` in the last week.", symbol))}, nil
	}

	if err = c.API.SendMessage(ctx, req.Reply("I'm reading the news, please wait...")); err != nil {
		return nil, fmt.Errorf("send wait message: %w", err)
	}

	text, err := c.Digester.Digest(ctx, symbol, stories)
	switch {
	case errors.Is(err, digest.ErrNoStories):
		return []botx.Response{req.Reply(fmt.Sprintf("No news about `%s` in the last week.", symbol))}, nil
	case errors.Is(err, digest.ErrTooManyTokens):
		return []botx.Response{req.Reply("There is too much news to digest, try /news instead.")}, nil
	case err != nil:
		return nil, fmt.Errorf("digest news: %w", err)
	}

	return []botx.Response{req.Reply(fmt.Sprintf("*%s digest*\n\n%s", symbol, escapeMarkdown(text)))}, nil
}

func (c *Ctrl) users(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	symbol := ""
	if args := req.Args(); len(args) > 0 {
		symbol = store.NormalizeSymbol(args[0])
	}

	users, err := c.Store.List(ctx, store.ListRequest{WatchingSymbol: symbol})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	sb := &strings.Builder{}
	_, _ = fmt.Fprintf(sb, "Users: %d\n", len(users))
	for _, u := range users {
		_, _ = fmt.Fprintf(sb, "id: %s, username: %s, watching: %s\n",
			u.ChatID, escapeMarkdown(u.Username), strings.Join(u.Watchlist, ", "))
	}

	return []botx.Response{req.Reply(sb.String())}, nil
}

// cacheStater is implemented by digesters that cache their results.
type cacheStater interface {
	CacheStat() cache.Stats
}

func (c *Ctrl) cacheStats(_ context.Context, req botx.Request) ([]botx.Response, error) {
	format := func(name string, stats cache.Stats) string {
		return fmt.Sprintf("%s: hits: %d, misses: %d, evictions: %d, added: %d\n",
			name, stats.Hits, stats.Misses, stats.Evicted, stats.Added)
	}

	text := format("quotes", c.Quotes.CacheStat())
	if cs, ok := c.Digester.(cacheStater); ok {
		text += format("digest", cs.CacheStat())
	}

	return []botx.Response{req.Reply(text)}, nil
}

func (c *Ctrl) ensureAdmin(h botx.Handler) botx.Handler {
	return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		if !lo.Contains(c.AdminIDs, req.Chat.ID) {
			return botx.NotFound(ctx, req)
		}

		return h(ctx, req)
	}
}

// ensureUser loads the user of the chat, registering new ones.
func (c *Ctrl) ensureUser(h botx.Handler) botx.Handler {
	return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		u, err := c.Store.Get(ctx, req.Chat.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			u = store.User{ChatID: req.Chat.ID, Username: req.Chat.Username}
			if err = c.Store.Put(ctx, u); err != nil {
				return nil, fmt.Errorf("register user: %w", err)
			}

			if err = c.NotifyAdmins(ctx, "new user: "+escapeMarkdown(req.Chat.Username)); err != nil {
				c.Logger.WarnCtx(ctx, "failed to notify admins about new user", slog.Any("err", err))
			}
		case err != nil:
			return nil, fmt.Errorf("get user: %w", err)
		}

		return h(contextWithUser(ctx, u), req)
	}
}

// NotifyAdmins sends a message to all admins.
func (c *Ctrl) NotifyAdmins(ctx context.Context, msg string) error {
	for _, adminID := range c.AdminIDs {
		if err := c.API.SendMessage(ctx, botx.Response{ChatID: adminID, Text: msg}); err != nil {
			return fmt.Errorf("send message to admin %s: %w", adminID, err)
		}
	}

	return nil
}

func (c *Ctrl) maxItems() int {
	if c.MaxItems <= 0 {
		return 5
	}
	return c.MaxItems
}

type userKey struct{}

func userFromContext(ctx context.Context) (store.User, bool) {
	u, ok := ctx.Value(userKey{}).(store.User)
	return u, ok
}

func contextWithUser(ctx context.Context, u store.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}
