package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"SignalSage/internal/model"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider implements Provider for crypto pairs using the public
// CoinGecko API.
type CoinGeckoProvider struct {
	BaseURL string
	APIKey  string // optional demo key
	Client  *http.Client
}

// NewCoinGeckoProvider creates a new CoinGecko provider.
func NewCoinGeckoProvider(apiKey, proxyURL string, timeout time.Duration) *CoinGeckoProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CoinGeckoProvider{
		BaseURL: coinGeckoBaseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *CoinGeckoProvider) Name() model.Source { return model.SourceCoinGecko }

// coinAndCurrency resolves "BTC/USD" into ("bitcoin", "usd").
func coinAndCurrency(symbol string) (string, string, error) {
	base, quote, ok := SplitPair(NormalizeSymbol(symbol))
	if !ok {
		base, quote = NormalizeSymbol(symbol), "USD"
	}
	id, ok := coinIDs[base]
	if !ok {
		return "", "", fmt.Errorf("coingecko: %w: %s", ErrUnsupportedSymbol, symbol)
	}
	vs := strings.ToLower(quote)
	if vs == "usdt" || vs == "usdc" {
		vs = "usd"
	}
	return id, vs, nil
}

func (f *CoinGeckoProvider) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := strings.TrimRight(f.BaseURL, "/") + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if f.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return upstreamErr("coingecko fetch: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return upstreamErr("coingecko: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return upstreamErr("coingecko decode: %v", err)
	}
	return nil
}

func (f *CoinGeckoProvider) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	id, vs, err := coinAndCurrency(symbol)
	if err != nil {
		return nil, err
	}
	var result map[string]map[string]float64
	err = f.getJSON(ctx, "/simple/price", url.Values{
		"ids":                     {id},
		"vs_currencies":           {vs},
		"include_24hr_vol":        {"true"},
		"include_24hr_change":     {"true"},
		"include_last_updated_at": {"true"},
	}, &result)
	if err != nil {
		return nil, err
	}

	data, ok := result[id]
	if !ok || data[vs] <= 0 {
		return nil, upstreamErr("coingecko: no price for %s", id)
	}
	price := data[vs]
	pct := data[vs+"_24h_change"]
	ts := time.Now().UTC()
	if updated := data["last_updated_at"]; updated > 0 {
		ts = time.Unix(int64(updated), 0).UTC()
	}

	q := &model.Quote{
		Symbol:        symbol,
		Price:         price,
		ChangePercent: pct,
		Volume:        uint64(math.Max(0, data[vs+"_24h_vol"])),
		Timestamp:     ts,
		Source:        model.SourceCoinGecko,
	}
	if pct != 0 {
		q.Change = price - price/(1+pct/100)
	}
	return q, nil
}

func (f *CoinGeckoProvider) History(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	id, vs, err := coinAndCurrency(symbol)
	if err != nil {
		return nil, err
	}
	var chart struct {
		Prices       [][2]float64 `json:"prices"`
		TotalVolumes [][2]float64 `json:"total_volumes"`
	}
	err = f.getJSON(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", url.Values{
		"vs_currency": {vs},
		"days":        {strconv.Itoa(days)},
		"interval":    {"daily"},
	}, &chart)
	if err != nil {
		return nil, err
	}
	if len(chart.Prices) == 0 {
		return nil, upstreamErr("coingecko: empty chart for %s", id)
	}

	// The daily chart only carries closes; each bar opens at the previous close.
	bars := make([]model.OHLCV, 0, len(chart.Prices))
	prev := chart.Prices[0][1]
	for i, p := range chart.Prices {
		c := p[1]
		if c <= 0 {
			continue
		}
		bar := model.OHLCV{
			Time:  time.UnixMilli(int64(p[0])).UTC(),
			Open:  prev,
			High:  math.Max(prev, c),
			Low:   math.Min(prev, c),
			Close: c,
		}
		if i < len(chart.TotalVolumes) {
			bar.Volume = uint64(math.Max(0, chart.TotalVolumes[i][1]))
		}
		bars = append(bars, bar)
		prev = c
	}
	return trimBars(bars, days), nil
}
