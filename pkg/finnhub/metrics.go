package finnhub

import (
	"context"
	"fmt"
)

// FinancialMetricsResponse wraps the basic financials of a company.
type FinancialMetricsResponse struct {
	Metric Metrics `json:"metric"`
}

// UnmarshalJSON decodes the response, failing if the metric object is absent.
func (r *FinancialMetricsResponse) UnmarshalJSON(data []byte) error {
	type plain FinancialMetricsResponse
	return decodeRequired(data, (*plain)(r), "metric")
}

// Metrics is the subset of basic financials in use.
type Metrics struct {
	TenDayAverageTradingVolume float64 `json:"10DayAverageTradingVolume"`
	AnnualWeekHigh             float64 `json:"52WeekHigh"`
	AnnualWeekLow              float64 `json:"52WeekLow"`
	AnnualWeekLowDate          string  `json:"52WeekLowDate"`
	AnnualWeekPriceReturnDaily float64 `json:"52WeekPriceReturnDaily"`
	Beta                       float64 `json:"beta"`
}

// FinancialMetrics returns basic financials of the company.
func (c *Client) FinancialMetrics(ctx context.Context, symbol string) (FinancialMetricsResponse, error) {
	var resp FinancialMetricsResponse
	err := c.get(ctx, &resp, "stock/metric",
		param{"symbol", symbol},
		param{"metric", "all"},
	)
	if err != nil {
		return FinancialMetricsResponse{}, fmt.Errorf("get metrics for %s: %w", symbol, err)
	}
	return resp, nil
}
