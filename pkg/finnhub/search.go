package finnhub

import (
	"context"
	"fmt"
)

// SearchResponse is a list of symbols matching the query.
type SearchResponse struct {
	Count  int            `json:"count"`
	Result []SearchResult `json:"result"`
}

// UnmarshalJSON decodes the response, failing on any missing field.
func (r *SearchResponse) UnmarshalJSON(data []byte) error {
	type plain SearchResponse
	return decodeRequired(data, (*plain)(r), "count", "result")
}

// SearchResult is a single symbol lookup match.
type SearchResult struct {
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	Symbol        string `json:"symbol"`
	Type          string `json:"type"`
}

// UnmarshalJSON decodes the result, failing on any missing field.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	type plain SearchResult
	return decodeRequired(data, (*plain)(r), "description", "displaySymbol", "symbol", "type")
}

// Search looks up symbols by name, ticker, ISIN or CUSIP.
func (c *Client) Search(ctx context.Context, query string) (SearchResponse, error) {
	var resp SearchResponse
	if err := c.get(ctx, &resp, "search", param{"q", query}); err != nil {
		return SearchResponse{}, fmt.Errorf("search %q: %w", query, err)
	}
	return resp, nil
}
