// Package botmw provides middlewares for bot handlers.
package botmw

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Semior001/stockfeed/pkg/botx"
	"github.com/Semior001/stockfeed/pkg/logx"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// ErrTimeout is returned by Timeout middleware when handler timed out.
var ErrTimeout = errors.New("timed out")

// RequestID puts a fresh request id to the context.
func RequestID() botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			return next(logx.ContextWithRequestID(ctx, uuid.New().String()), req)
		}
	}
}

// AppendRequestIDOnError adds the request id to the replies of a failed
// request, so that users could refer to it.
func AppendRequestIDOnError() botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			resps, err := next(ctx, req)
			if err == nil {
				return resps, nil
			}

			reqID, _ := logx.RequestIDFromContext(ctx)
			footer := fmt.Sprintf("\n\nRequest ID: `%s`", reqID)

			for i := range resps {
				resps[i].Text += footer
			}

			_, answered := lo.Find(resps, func(r botx.Response) bool { return r.ChatID == req.Chat.ID })
			if !answered {
				resps = append(resps, req.Reply("Something went wrong, please try again later."+footer))
			}

			return resps, err
		}
	}
}

// Logger logs every request with its outcome.
func Logger(lg *slog.Logger) botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			start := time.Now()
			res, err := next(ctx, req)

			args := []any{
				slog.String("chat_id", req.Chat.ID),
				slog.String("chat_username", req.Chat.Username),
				slog.String("command", req.Command()),
				slog.Duration("elapsed", time.Since(start)),
				slog.Int("responses", len(res)),
			}

			switch {
			case err != nil:
				lg.WarnCtx(ctx, "request failed", append(args, slog.Any("err", err))...)
			case lg.Enabled(ctx, slog.LevelDebug):
				lg.DebugCtx(ctx, "request processed", append(args, slog.String("text", req.Text))...)
			default:
				lg.InfoCtx(ctx, "request processed", args...)
			}

			return res, err
		}
	}
}

// Recover turns a panic in the handler into an error.
func Recover(lg *slog.Logger) botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) (resps []botx.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					lg.ErrorCtx(ctx, "panic recovered", slog.Any("panic", r))
					resps, err = nil, fmt.Errorf("panic: %v", r)
				}
			}()

			return next(ctx, req)
		}
	}
}

// Timeout limits the handler execution time. Non-positive duration
// means no limit.
func Timeout(dur time.Duration) botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		if dur <= 0 {
			return next
		}

		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, dur)
			defer cancel()

			type result struct {
				resps []botx.Response
				err   error
			}

			done := make(chan result, 1)
			go func() {
				// the handler runs on its own goroutine, so a panic here
				// would not reach Recover up the chain
				defer func() {
					if r := recover(); r != nil {
						done <- result{err: fmt.Errorf("panic: %v", r)}
					}
				}()

				resps, err := next(ctx, req)
				done <- result{resps: resps, err: err}
			}()

			select {
			case res := <-done:
				return res.resps, res.err
			case <-ctx.Done():
				return nil, ErrTimeout
			}
		}
	}
}
