package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"SignalSage/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider implements Provider using the Yahoo Finance chart API.
type YahooProvider struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooProvider creates a Yahoo Finance provider.
func NewYahooProvider(proxyURL string, timeout time.Duration) *YahooProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &YahooProvider{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL, timeout),
		SymbolMap: map[string]string{
			"XAU/USD": "GC=F",
			"XAG/USD": "SI=F",
			"SPX500":  "^GSPC",
			"SPX":     "^GSPC",
		},
	}
}

func (f *YahooProvider) Name() model.Source { return model.SourceYahoo }

// yahooSymbol maps "EUR/USD" style pairs to "EURUSD=X".
func (f *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	if base, quote, ok := SplitPair(symbol); ok {
		return base + quote + "=X"
	}
	return symbol
}

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				ChartPreviousClose  float64 `json:"chartPreviousClose"`
				RegularMarketVolume float64 `json:"regularMarketVolume"`
				RegularMarketTime   int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func valueAt(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

func (f *YahooProvider) fetchChart(ctx context.Context, symbol, interval, rng string) (*yahooChart, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		strings.TrimRight(f.BaseURL, "/"), url.PathEscape(f.yahooSymbol(symbol)), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, upstreamErr("yahoo fetch: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstreamErr("yahoo read body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, upstreamErr("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, upstreamErr("yahoo decode: %v", err)
	}
	if chart.Chart.Error != nil {
		return nil, upstreamErr("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, upstreamErr("yahoo: no data returned")
	}
	return &chart, nil
}

func chartBars(chart *yahooChart) []model.OHLCV {
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o := valueAt(quote.Open, i)
		h := valueAt(quote.High, i)
		l := valueAt(quote.Low, i)
		c := valueAt(quote.Close, i)
		if c == 0 {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: uint64(valueAt(quote.Volume, i)),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars
}

func (f *YahooProvider) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	chart, err := f.fetchChart(ctx, symbol, "1d", "5d")
	if err != nil {
		return nil, err
	}
	meta := chart.Chart.Result[0].Meta
	bars := chartBars(chart)

	price := meta.RegularMarketPrice
	if price <= 0 && len(bars) > 0 {
		price = bars[len(bars)-1].Close
	}
	if price <= 0 {
		return nil, upstreamErr("yahoo: no price data")
	}

	prev := meta.ChartPreviousClose
	if len(bars) >= 2 {
		prev = bars[len(bars)-2].Close
	}
	ts := time.Now().UTC()
	if meta.RegularMarketTime > 0 {
		ts = time.Unix(meta.RegularMarketTime, 0).UTC()
	}
	volume := uint64(meta.RegularMarketVolume)
	if volume == 0 && len(bars) > 0 {
		volume = bars[len(bars)-1].Volume
	}

	return newQuote(symbol, price, prev, volume, ts, model.SourceYahoo), nil
}

func (f *YahooProvider) History(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	rng := "1y"
	switch {
	case days <= 30:
		rng = "3mo" // leaves room for skipped non-trading days
	case days <= 90:
		rng = "6mo"
	}
	chart, err := f.fetchChart(ctx, symbol, "1d", rng)
	if err != nil {
		return nil, err
	}
	bars := chartBars(chart)
	if len(bars) == 0 {
		return nil, upstreamErr("yahoo: no bars returned")
	}
	return trimBars(bars, days), nil
}

// newQuote fills change fields from the previous close when known.
func newQuote(symbol string, price, prevClose float64, volume uint64, ts time.Time, src model.Source) *model.Quote {
	q := &model.Quote{
		Symbol:    symbol,
		Price:     price,
		Volume:    volume,
		Timestamp: ts,
		Source:    src,
	}
	if prevClose > 0 {
		q.Change = price - prevClose
		q.ChangePercent = q.Change / prevClose * 100
	}
	return q
}

// trimBars keeps the most recent n bars.
func trimBars(bars []model.OHLCV, n int) []model.OHLCV {
	if n > 0 && len(bars) > n {
		return bars[len(bars)-n:]
	}
	return bars
}
