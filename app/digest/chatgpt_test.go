package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Semior001/stockfeed/pkg/finnhub"
	"github.com/Semior001/stockfeed/pkg/logx"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func newTestChatGPT(cl OpenAIClient) *ChatGPT {
	return &ChatGPT{
		log:               slog.New(logx.NoOp()),
		cl:                cl,
		maxResponseTokens: 500,
		now:               func() time.Time { return time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC) },
		cache:             cache.NewCache[string, string]().WithMaxKeys(10),
	}
}

func TestChatGPT_Digest(t *testing.T) {
	cl := &OpenAIClientMock{
		CreateChatCompletionFunc: func(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			assert.Equal(t, openai.GPT3Dot5Turbo, req.Model)
			assert.Equal(t, 500, req.MaxTokens)
			require.Len(t, req.Messages, 1)
			assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[0].Role)
			assert.Contains(t, req.Messages[0].Content, "stories about AAPL")
			assert.Contains(t, req.Messages[0].Content, "Headline: Apple unveils headset")
			assert.Contains(t, req.Messages[0].Content, "Summary: Priced at $3499")

			return openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{{
					Message: openai.ChatCompletionMessage{Content: "  - Apple unveiled a headset\n"},
				}},
			}, nil
		},
	}
	svc := newTestChatGPT(cl)

	stories := []finnhub.NewsStory{{Headline: "Apple unveils headset", Source: "Reuters", Summary: "Priced at $3499"}}

	for i := 0; i < 2; i++ {
		res, err := svc.Digest(context.Background(), "AAPL", stories)
		require.NoError(t, err)
		assert.Equal(t, "- Apple unveiled a headset", res)
	}

	assert.Len(t, cl.CreateChatCompletionCalls(), 1)
	assert.Equal(t, 1, svc.CacheStat().Hits)
}

func TestChatGPT_DigestErrors(t *testing.T) {
	t.Run("no stories", func(t *testing.T) {
		_, err := newTestChatGPT(&OpenAIClientMock{}).Digest(context.Background(), "AAPL", nil)
		assert.ErrorIs(t, err, ErrNoStories)
	})

	t.Run("too many tokens", func(t *testing.T) {
		long := strings.Repeat("word ", 1000)
		stories := []finnhub.NewsStory{{Summary: long}, {Summary: long}, {Summary: long}, {Summary: long}, {Summary: long}}
		_, err := newTestChatGPT(&OpenAIClientMock{}).Digest(context.Background(), "AAPL", stories)
		assert.ErrorIs(t, err, ErrTooManyTokens)
	})

	t.Run("openai failure", func(t *testing.T) {
		cl := &OpenAIClientMock{
			CreateChatCompletionFunc: func(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
				return openai.ChatCompletionResponse{}, errors.New("rate limited")
			},
		}
		_, err := newTestChatGPT(cl).Digest(context.Background(), "AAPL", []finnhub.NewsStory{{Headline: "x"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("no choices", func(t *testing.T) {
		cl := &OpenAIClientMock{
			CreateChatCompletionFunc: func(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
				return openai.ChatCompletionResponse{}, nil
			},
		}
		_, err := newTestChatGPT(cl).Digest(context.Background(), "AAPL", []finnhub.NewsStory{{Headline: "x"}})
		assert.Error(t, err)
	})
}
