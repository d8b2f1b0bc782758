package finnhub

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// DefaultCandleDays is the candle window used when none is given.
const DefaultCandleDays = 7

// MarketDataResponse holds candles as parallel arrays, the way finnhub
// returns them.
type MarketDataResponse struct {
	Open       []float64 `json:"o"`
	High       []float64 `json:"h"`
	Low        []float64 `json:"l"`
	Close      []float64 `json:"c"`
	Status     string    `json:"s"`
	Timestamps []int64   `json:"t"`
}

// UnmarshalJSON decodes the response, failing on any missing field.
func (r *MarketDataResponse) UnmarshalJSON(data []byte) error {
	type plain MarketDataResponse
	return decodeRequired(data, (*plain)(r), "o", "h", "l", "c", "s", "t")
}

// CandleStick is a single OHLC data point.
type CandleStick struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// CandleSticks zips the arrays into candles, newest first.
// Arrays of unequal length are cut to the shortest one.
func (r MarketDataResponse) CandleSticks() []CandleStick {
	n := len(r.Timestamps)
	for _, l := range []int{len(r.Open), len(r.High), len(r.Low), len(r.Close)} {
		if l < n {
			n = l
		}
	}

	res := make([]CandleStick, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, CandleStick{
			Date:  time.Unix(r.Timestamps[i], 0).UTC(),
			Open:  r.Open[i],
			High:  r.High[i],
			Low:   r.Low[i],
			Close: r.Close[i],
		})
	}

	sort.SliceStable(res, func(i, j int) bool { return res[i].Date.After(res[j].Date) })
	return res
}

// MarketData returns one-minute candles for the symbol over the last
// numberOfDays days. The window ends a day ago, as finnhub has no candles
// for the current day. Non-positive numberOfDays means DefaultCandleDays.
func (c *Client) MarketData(ctx context.Context, symbol string, numberOfDays int) (MarketDataResponse, error) {
	if numberOfDays <= 0 {
		numberOfDays = DefaultCandleDays
	}

	to := c.now().Add(-day)
	from := to.Add(-time.Duration(numberOfDays) * day)

	var resp MarketDataResponse
	err := c.get(ctx, &resp, "stock/candle",
		param{"symbol", symbol},
		param{"resolution", "1"},
		param{"from", strconv.FormatInt(from.Unix(), 10)},
		param{"to", strconv.FormatInt(to.Unix(), 10)},
	)
	if err != nil {
		return MarketDataResponse{}, fmt.Errorf("get candles for %s: %w", symbol, err)
	}

	return resp, nil
}
