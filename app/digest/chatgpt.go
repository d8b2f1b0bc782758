// Package digest makes short digests of company news with ChatGPT.
package digest

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/Semior001/stockfeed/pkg/finnhub"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/exp/slog"
)

//go:embed data/prompt.tmpl
var prompt string

var promptTmpl = template.Must(template.New("prompt").Parse(prompt))

//go:generate moq -out mock_openai_client.go . OpenAIClient

// OpenAIClient is interface for OpenAI client with the possibility to mock it
type OpenAIClient interface {
	CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// maxRequestTokens is a maximum number of tokens that can be sent to OpenAI.
const maxRequestTokens = 4097

// maxStories limits the number of stories put into a single prompt.
const maxStories = 15

var (
	// ErrTooManyTokens is returned when the stories do not fit into a prompt.
	ErrTooManyTokens = errors.New("too many tokens")
	// ErrNoStories is returned when there is nothing to summarize.
	ErrNoStories = errors.New("no stories")
)

// ChatGPT makes digests with OpenAI chat completions.
type ChatGPT struct {
	log               *slog.Logger
	cl                OpenAIClient
	maxResponseTokens int
	now               func() time.Time
	cache             cache.Cache[string, string]
}

// NewChatGPT creates new ChatGPT client.
func NewChatGPT(lg *slog.Logger, cl *http.Client, token string, maxResponseTokens int) *ChatGPT {
	config := openai.DefaultConfig(token)
	config.HTTPClient = cl

	return &ChatGPT{
		log:               lg,
		cl:                &loggingClient{log: lg, cl: openai.NewClientWithConfig(config)},
		maxResponseTokens: maxResponseTokens,
		now:               time.Now,
		cache: cache.NewCache[string, string]().
			WithLRU().
			WithTTL(6 * time.Hour).
			WithMaxKeys(100),
	}
}

// CacheStat returns cache stats.
func (s *ChatGPT) CacheStat() cache.Stats { return s.cache.Stat() }

// Digest summarizes news stories about the symbol into bullet points.
// Digests are cached per symbol and day.
func (s *ChatGPT) Digest(ctx context.Context, symbol string, stories []finnhub.NewsStory) (string, error) {
	if len(stories) == 0 {
		return "", ErrNoStories
	}

	key := symbol + "@" + s.now().Format("2006-01-02")
	if resp, ok := s.cache.Get(key); ok {
		return resp, nil
	}

	if len(stories) > maxStories {
		stories = stories[:maxStories]
	}

	buf := &strings.Builder{}
	err := promptTmpl.Execute(buf, struct {
		Symbol  string
		Stories []finnhub.NewsStory
	}{Symbol: symbol, Stories: stories})
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	totalTokens := strings.Count(buf.String(), " ") + 1
	if totalTokens > maxRequestTokens {
		return "", ErrTooManyTokens
	}

	req := openai.ChatCompletionRequest{
		Model:     openai.GPT3Dot5Turbo,
		MaxTokens: s.maxResponseTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buf.String()},
		},
	}

	resp, err := s.cl.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	s.cache.Set(key, result, 0)
	return result, nil
}

type loggingClient struct {
	log *slog.Logger
	cl  OpenAIClient
}

func (l *loggingClient) CreateChatCompletion(
	ctx context.Context,
	req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	start := time.Now()
	l.log.DebugCtx(ctx, "sending request to chatGPT")
	resp, err := l.cl.CreateChatCompletion(ctx, req)
	l.log.DebugCtx(ctx, "response received from chatGPT",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
		slog.Any("err", err))
	return resp, err
}
