package bot

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Semior001/stockfeed/app/quotes"
	"github.com/Semior001/stockfeed/pkg/finnhub"
	"github.com/samber/lo"
)

var storiesTmpl = template.Must(template.New("stories").
	Funcs(template.FuncMap{
		"md":   escapeMarkdown,
		"date": func(ts int64) string { return time.Unix(ts, 0).UTC().Format("Jan 2, 15:04") },
	}).
	Parse(`{{range .}}*{{md .Headline}}*
{{md .Source}}, {{date .Datetime}}{{if .Related}} ({{md .Related}}){{end}}
[read more]({{.URL}})

{{end}}`))

func formatStories(stories []finnhub.NewsStory) (string, error) {
	sb := &strings.Builder{}
	if err := storiesTmpl.Execute(sb, stories); err != nil {
		return "", fmt.Errorf("execute stories template: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}

func formatCandles(symbol string, days int, candles []finnhub.CandleStick) string {
	ov := quotes.Overview{Symbol: symbol, Candles: candles}

	high := lo.MaxBy(candles, func(a, b finnhub.CandleStick) bool { return a.High > b.High }).High
	low := lo.MinBy(candles, func(a, b finnhub.CandleStick) bool { return a.Low < b.Low }).Low

	sb := &strings.Builder{}
	_, _ = fmt.Fprintf(sb, "*%s* over %d days\n", symbol, days)
	_, _ = fmt.Fprintf(sb, "last close: %.2f (%s)\n", candles[0].Close, candles[0].Date.Format("Jan 2, 15:04"))
	if pct, ok := ov.Change(); ok {
		_, _ = fmt.Fprintf(sb, "change: %+.2f%%\n", pct)
	}
	_, _ = fmt.Fprintf(sb, "high: %.2f\nlow: %.2f\ncandles: %d", high, low, len(candles))
	return sb.String()
}

func formatMetrics(symbol string, m finnhub.Metrics) string {
	sb := &strings.Builder{}
	_, _ = fmt.Fprintf(sb, "*%s* basic financials\n", symbol)
	_, _ = fmt.Fprintf(sb, "52 week high: %.2f\n", m.AnnualWeekHigh)
	_, _ = fmt.Fprintf(sb, "52 week low: %.2f", m.AnnualWeekLow)
	if m.AnnualWeekLowDate != "" {
		_, _ = fmt.Fprintf(sb, " (%s)", m.AnnualWeekLowDate)
	}
	_, _ = fmt.Fprintf(sb, "\n52 week return: %+.2f%%\n", m.AnnualWeekPriceReturnDaily)
	_, _ = fmt.Fprintf(sb, "10 day avg volume: %.2fM\n", m.TenDayAverageTradingVolume)
	_, _ = fmt.Fprintf(sb, "beta: %.2f", m.Beta)
	return sb.String()
}

func formatOverviewLine(ov quotes.Overview) string {
	if len(ov.Candles) == 0 {
		return fmt.Sprintf("`%s` no trades, 52w %.2f-%.2f", ov.Symbol, ov.Metrics.AnnualWeekLow, ov.Metrics.AnnualWeekHigh)
	}

	line := fmt.Sprintf("`%s` %.2f", ov.Symbol, ov.Candles[0].Close)
	if pct, ok := ov.Change(); ok {
		line += fmt.Sprintf(" (%+.2f%%)", pct)
	}
	return line + fmt.Sprintf(", 52w %.2f-%.2f", ov.Metrics.AnnualWeekLow, ov.Metrics.AnnualWeekHigh)
}

var mdEscaper = strings.NewReplacer(
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	"[", "\\[",
)

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}
