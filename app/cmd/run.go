package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Semior001/stockfeed/app/bot"
	"github.com/Semior001/stockfeed/app/digest"
	"github.com/Semior001/stockfeed/app/quotes"
	"github.com/Semior001/stockfeed/app/store"
	"github.com/Semior001/stockfeed/pkg/botx"
	"github.com/Semior001/stockfeed/pkg/botx/botapi"
	"github.com/Semior001/stockfeed/pkg/logx"
	"github.com/go-pkgz/requester"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// Run is a command to run the bot.
type Run struct {
	Finnhub FinnhubOpts `group:"finnhub" namespace:"finnhub" env-namespace:"FINNHUB"`

	Bot struct {
		Timeout  time.Duration `long:"timeout" env:"TIMEOUT" default:"1m" description:"timeout for handling a message"`
		Workers  int           `long:"workers" env:"WORKERS" default:"10" description:"number of concurrent message handlers"`
		MaxItems int           `long:"max-items" env:"MAX_ITEMS" default:"5" description:"max news stories and search results in a reply"`

		Telegram struct {
			Token string `long:"token" env:"TOKEN" required:"true" description:"telegram token"`
		} `group:"telegram" namespace:"telegram" env-namespace:"TELEGRAM"`

		AdminIDs []string `long:"admin-ids" env:"ADMIN_IDS" env-delim:"," description:"admin chat IDs"`
	} `group:"bot" namespace:"bot" env-namespace:"BOT"`

	Cache struct {
		TTL  time.Duration `long:"ttl" env:"TTL" default:"1h" description:"how long to keep metrics and search results"`
		Size int           `long:"size" env:"SIZE" default:"1000" description:"max number of cached entries"`
	} `group:"cache" namespace:"cache" env-namespace:"CACHE"`

	Digest struct {
		OpenAI struct {
			Token     string        `long:"token" env:"TOKEN" description:"OpenAI token, digests are off if empty"`
			MaxTokens int           `long:"max-tokens" env:"MAX_TOKENS" default:"500" description:"max tokens in a digest"`
			Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"2m" description:"timeout for OpenAI calls"`
		} `group:"openai" namespace:"openai" env-namespace:"OPENAI"`
	} `group:"digest" namespace:"digest" env-namespace:"DIGEST"`

	StorePath string `long:"store-path" env:"STORE_PATH" default:"." description:"parent dir for bolt files"`
}

// Execute runs the command.
func (r Run) Execute(_ []string) error {
	lg := slog.Default()

	svc := quotes.NewService(
		lg.With(slog.String("prefix", "quotes")),
		r.Finnhub.client(lg.With(slog.String("prefix", "finnhub"))),
		quotes.Params{CacheTTL: r.Cache.TTL, CacheSize: r.Cache.Size},
	)

	s, err := store.NewBolt(r.StorePath)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if err := s.Close(); err != nil {
			lg.Error("close bolt store", slog.Any("err", err))
		}
	}()

	api, err := botapi.NewTelegram(lg.With(slog.String("prefix", "telegram")), r.Bot.Telegram.Token, 100)
	if err != nil {
		return fmt.Errorf("make telegram api: %w", err)
	}

	ctrl := &bot.Ctrl{
		Logger:         lg.With(slog.String("prefix", "bot")),
		Store:          s,
		Quotes:         svc,
		API:            api,
		AdminIDs:       r.Bot.AdminIDs,
		HandlerTimeout: r.Bot.Timeout,
		MaxItems:       r.Bot.MaxItems,
	}

	if r.Digest.OpenAI.Token != "" {
		openaiLog := lg.With(slog.String("prefix", "chatgpt"))
		ctrl.Digester = digest.NewChatGPT(
			openaiLog,
			requester.New(
				http.Client{Timeout: r.Digest.OpenAI.Timeout},
				logx.LoggingRoundTripper(openaiLog, logx.RoundTripperOpts{
					Level:         slog.LevelDebug,
					SecretHeaders: []string{"Authorization"},
				}),
			).Client(),
			r.Digest.OpenAI.Token,
			r.Digest.OpenAI.MaxTokens,
		)
	}

	routes := ctrl.Routes()
	lg.Info("bot routes registered", slog.Any("commands", routes.Commands()))

	b := botx.NewBot(
		routes.Handle,
		api,
		botx.WithLogger(lg.With(slog.String("prefix", "botx"))),
		botx.WithWorkers(r.Bot.Workers),
	)

	if err := ctrl.NotifyAdmins(context.Background(), "bot started"); err != nil {
		lg.Warn("failed to notify admins about started bot", slog.Any("err", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		lg.Info("starting telegram api")
		return api.Run(ctx)
	})
	ewg.Go(func() error {
		lg.Info("starting bot")
		b.Run(ctx)
		lg.Warn("bot stopped")
		return nil
	})

	err = ewg.Wait()

	msg := "bot stopped"
	if err != nil && !errors.Is(err, context.Canceled) {
		msg = fmt.Sprintf("bot stopped with error: %v", err)
	}

	if sendErr := ctrl.NotifyAdmins(context.Background(), msg); sendErr != nil {
		lg.Warn("failed to notify admins about stopped bot", slog.Any("err", sendErr))
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
