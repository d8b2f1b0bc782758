package botx

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Command(t *testing.T) {
	tbl := []struct {
		text string
		cmd  string
		args []string
	}{
		{text: "/news", cmd: "/news"},
		{text: "/news AAPL", cmd: "/news", args: []string{"AAPL"}},
		{text: "/News@stockfeed_bot  AAPL 7", cmd: "/news", args: []string{"AAPL", "7"}},
		{text: "apple", cmd: ""},
		{text: "", cmd: ""},
	}

	for _, tt := range tbl {
		t.Run(tt.text, func(t *testing.T) {
			req := Request{Text: tt.text}
			assert.Equal(t, tt.cmd, req.Command())
			assert.Equal(t, tt.args, req.Args())
		})
	}
}

func TestRouter_Handle(t *testing.T) {
	var calls []string
	mw := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, req Request) ([]Response, error) {
				calls = append(calls, name)
				return next(ctx, req)
			}
		}
	}
	h := func(name string) Handler {
		return func(_ context.Context, req Request) ([]Response, error) {
			calls = append(calls, name)
			return []Response{req.Reply(name)}, nil
		}
	}

	rtr := NewRouter()
	rtr.Use(mw("outer"))
	rtr.Add("/news", h("news"))
	rtr.Group(func(rtr *Router) {
		rtr.Use(mw("admin"))
		rtr.Add("/cache", h("cache"))
	})

	t.Run("exact command", func(t *testing.T) {
		calls = nil
		resp, err := rtr.Handle(context.Background(), Request{Chat: Chat{ID: "1"}, Text: "/news AAPL"})
		require.NoError(t, err)
		assert.Equal(t, []Response{{ChatID: "1", Text: "news"}}, resp)
		assert.Equal(t, []string{"outer", "news"}, calls)
	})

	t.Run("prefix does not match", func(t *testing.T) {
		calls = nil
		resp, err := rtr.Handle(context.Background(), Request{Chat: Chat{ID: "1"}, Text: "/newsletter"})
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Contains(t, resp[0].Text, "/help")
		assert.Equal(t, []string{"outer"}, calls)
	})

	t.Run("group middleware", func(t *testing.T) {
		calls = nil
		_, err := rtr.Handle(context.Background(), Request{Chat: Chat{ID: "1"}, Text: "/cache"})
		require.NoError(t, err)
		assert.Equal(t, []string{"outer", "admin", "cache"}, calls)
	})

	t.Run("empty text", func(t *testing.T) {
		calls = nil
		resp, err := rtr.Handle(context.Background(), Request{Text: "  "})
		require.NoError(t, err)
		assert.Empty(t, resp)
		assert.Empty(t, calls)
	})

	assert.Equal(t, []string{"/cache", "/news"}, rtr.Commands())
}

type apiMock struct {
	updates chan Request
	mu      sync.Mutex
	sent    []Response
}

func (a *apiMock) Updates() <-chan Request { return a.updates }

func (a *apiMock) SendMessage(_ context.Context, resp Response) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, resp)
	return nil
}

func TestBot_Run(t *testing.T) {
	api := &apiMock{updates: make(chan Request, 3)}
	api.updates <- Request{Chat: Chat{ID: "1"}, Text: "/a"}
	api.updates <- Request{Chat: Chat{ID: "2"}, Text: "/b"}
	api.updates <- Request{Chat: Chat{ID: "3"}, Text: "/fail"}
	close(api.updates)

	b := NewBot(func(_ context.Context, req Request) ([]Response, error) {
		if req.Text == "/fail" {
			return []Response{req.Reply("oops")}, errors.New("failed")
		}
		return []Response{req.Reply(req.Text)}, nil
	}, api, WithWorkers(2))

	b.Run(context.Background())

	sort.Slice(api.sent, func(i, j int) bool { return api.sent[i].ChatID < api.sent[j].ChatID })
	assert.Equal(t, []Response{
		{ChatID: "1", Text: "/a"},
		{ChatID: "2", Text: "/b"},
		{ChatID: "3", Text: "oops"},
	}, api.sent)
}
