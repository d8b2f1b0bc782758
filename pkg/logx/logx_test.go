package logx

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-pkgz/requester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestLoggingRoundTripper(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-token", r.URL.Query().Get("token"))
		assert.Equal(t, "key", r.Header.Get("X-Finnhub-Token"))
		w.Header().Set("X-Finnhub-Token", "response-key")
		_, _ = w.Write([]byte(`{"count":0,"result":[]}`))
	}))
	defer ts.Close()

	buf := &bytes.Buffer{}
	lg := slog.New(slog.HandlerOptions{Level: slog.LevelDebug}.NewTextHandler(buf))

	cl := requester.New(http.Client{}, LoggingRoundTripper(lg, RoundTripperOpts{
		Level:         slog.LevelDebug,
		SecretHeaders: []string{"X-Finnhub-Token"},
		SecretParams:  []string{"token"},
	})).Client()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/search?q=apple&token=secret-token", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("X-Finnhub-Token", "key")

	resp, err := cl.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, `{"count":0,"result":[]}`, string(body))

	logged := buf.String()
	assert.Contains(t, logged, "request sent")
	assert.Contains(t, logged, "response received")
	assert.Contains(t, logged, "q=apple&token=***")
	assert.NotContains(t, logged, "secret-token")
	assert.NotContains(t, logged, "response-key")
}

func TestLoggingRoundTripper_Disabled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	buf := &bytes.Buffer{}
	lg := slog.New(slog.HandlerOptions{Level: slog.LevelInfo}.NewTextHandler(buf))

	cl := requester.New(http.Client{}, LoggingRoundTripper(lg, RoundTripperOpts{Level: slog.LevelDebug})).Client()

	resp, err := cl.Get(ts.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Empty(t, buf.String())
}

func TestChain_RequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	lg := slog.New(&Chain{
		Middleware: []Middleware{RequestID},
		Handler:    slog.NewTextHandler(buf),
	})

	lg.InfoCtx(ContextWithRequestID(context.Background(), "req-1"), "hello")
	assert.Contains(t, buf.String(), "request_id=req-1")

	buf.Reset()
	lg.With(slog.String("prefix", "test")).InfoCtx(context.Background(), "no id")
	assert.NotContains(t, buf.String(), "request_id")
	assert.Contains(t, buf.String(), "prefix=test")
}

func TestNoOp(t *testing.T) {
	lg := slog.New(NoOp())
	assert.False(t, lg.Enabled(context.Background(), slog.LevelError))
	lg.Error("discarded")
}
