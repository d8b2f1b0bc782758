package finnhub

import (
	"context"
	"fmt"
)

// dateLayout is the date format finnhub expects in company news ranges.
const dateLayout = "2006-01-02"

// companyNewsDays is the width of the company news window.
const companyNewsDays = 7

// NewsStory is a single news item.
type NewsStory struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// UnmarshalJSON decodes the story, failing on any missing field.
func (s *NewsStory) UnmarshalJSON(data []byte) error {
	type plain NewsStory
	return decodeRequired(data, (*plain)(s),
		"category", "datetime", "headline", "image", "related", "source", "summary", "url")
}

// NewsType selects the news feed to request.
// The zero value requests top stories.
type NewsType struct {
	symbol string
}

// TopStories is the general market news feed.
func TopStories() NewsType { return NewsType{} }

// CompanyNews is the news feed of a single company.
func CompanyNews(symbol string) NewsType { return NewsType{symbol: symbol} }

// Symbol returns the company symbol, empty for top stories.
func (t NewsType) Symbol() string { return t.symbol }

// String implements fmt.Stringer.
func (t NewsType) String() string {
	if t.symbol == "" {
		return "top stories"
	}
	return "company news for " + t.symbol
}

// News returns the stories of the requested feed. Company news covers the
// last week, up to and including today.
func (c *Client) News(ctx context.Context, typ NewsType) ([]NewsStory, error) {
	var stories []NewsStory
	symbol := typ.Symbol()

	if symbol == "" {
		if err := c.get(ctx, &stories, "news", param{"category", "general"}); err != nil {
			return nil, fmt.Errorf("get top stories: %w", err)
		}
		return stories, nil
	}

	today := c.now()
	from := today.Add(-companyNewsDays * day)

	err := c.get(ctx, &stories, "company-news",
		param{"symbol", symbol},
		param{"from", from.Format(dateLayout)},
		param{"to", today.Format(dateLayout)},
	)
	if err != nil {
		return nil, fmt.Errorf("get company news for %s: %w", symbol, err)
	}

	return stories, nil
}
