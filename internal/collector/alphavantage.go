package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"SignalSage/internal/model"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageProvider implements Provider using the Alpha Vantage REST API.
// FX pairs use the currency endpoints; everything else the equity endpoints.
type AlphaVantageProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantageProvider creates a new provider with optional proxy support.
func NewAlphaVantageProvider(apiKey, proxyURL string, timeout time.Duration) *AlphaVantageProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AlphaVantageProvider{
		BaseURL: alphaVantageBaseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *AlphaVantageProvider) Name() model.Source { return model.SourceAlphaVantage }

// avBar is the per-day object in Alpha Vantage time series.
type avBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

func (f *AlphaVantageProvider) get(ctx context.Context, params url.Values) (map[string]json.RawMessage, error) {
	if f.APIKey == "" {
		return nil, upstreamErr("alphavantage: api key not configured")
	}
	params.Set("apikey", f.APIKey)
	endpoint := strings.TrimRight(f.BaseURL, "/") + "/query?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, upstreamErr("alphavantage fetch: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, upstreamErr("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, upstreamErr("alphavantage decode: %v", err)
	}
	// Rate limits and bad symbols come back as 200 with a message field.
	for _, k := range []string{"Error Message", "Note", "Information"} {
		if msg, ok := raw[k]; ok {
			return nil, upstreamErr("alphavantage: %s", strings.Trim(string(msg), `"`))
		}
	}
	return raw, nil
}

func (f *AlphaVantageProvider) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	if IsCrypto(symbol) {
		return nil, fmt.Errorf("alphavantage: %w: %s", ErrUnsupportedSymbol, symbol)
	}
	if base, quote, ok := SplitPair(symbol); ok {
		return f.fxQuote(ctx, symbol, base, quote)
	}
	return f.equityQuote(ctx, symbol)
}

func (f *AlphaVantageProvider) fxQuote(ctx context.Context, symbol, base, quote string) (*model.Quote, error) {
	raw, err := f.get(ctx, url.Values{
		"function":      {"CURRENCY_EXCHANGE_RATE"},
		"from_currency": {base},
		"to_currency":   {quote},
	})
	if err != nil {
		return nil, err
	}
	var rate struct {
		Rate          string `json:"5. Exchange Rate"`
		LastRefreshed string `json:"6. Last Refreshed"`
	}
	if err := json.Unmarshal(raw["Realtime Currency Exchange Rate"], &rate); err != nil {
		return nil, upstreamErr("alphavantage decode rate: %v", err)
	}
	price, err := strconv.ParseFloat(rate.Rate, 64)
	if err != nil || price <= 0 {
		return nil, upstreamErr("alphavantage: invalid exchange rate %q", rate.Rate)
	}
	ts, err := time.Parse("2006-01-02 15:04:05", rate.LastRefreshed)
	if err != nil {
		ts = time.Now().UTC()
	}
	return newQuote(symbol, price, 0, 0, ts, model.SourceAlphaVantage), nil
}

func (f *AlphaVantageProvider) equityQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	raw, err := f.get(ctx, url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
	})
	if err != nil {
		return nil, err
	}
	var gq struct {
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		LatestDay     string `json:"07. latest trading day"`
		PreviousClose string `json:"08. previous close"`
	}
	if err := json.Unmarshal(raw["Global Quote"], &gq); err != nil {
		return nil, upstreamErr("alphavantage decode quote: %v", err)
	}
	price, err := strconv.ParseFloat(gq.Price, 64)
	if err != nil || price <= 0 {
		return nil, upstreamErr("alphavantage: invalid price %q", gq.Price)
	}
	prev, _ := strconv.ParseFloat(gq.PreviousClose, 64)
	volume, _ := strconv.ParseUint(gq.Volume, 10, 64)
	ts, err := time.Parse("2006-01-02", gq.LatestDay)
	if err != nil {
		ts = time.Now().UTC()
	}
	return newQuote(symbol, price, prev, volume, ts, model.SourceAlphaVantage), nil
}

func (f *AlphaVantageProvider) History(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if IsCrypto(symbol) {
		return nil, fmt.Errorf("alphavantage: %w: %s", ErrUnsupportedSymbol, symbol)
	}
	params := url.Values{"outputsize": {"compact"}}
	seriesKey := "Time Series (Daily)"
	if base, quote, ok := SplitPair(symbol); ok {
		params.Set("function", "FX_DAILY")
		params.Set("from_symbol", base)
		params.Set("to_symbol", quote)
		seriesKey = "Time Series FX (Daily)"
	} else {
		params.Set("function", "TIME_SERIES_DAILY")
		params.Set("symbol", symbol)
	}

	raw, err := f.get(ctx, params)
	if err != nil {
		return nil, err
	}
	var series map[string]avBar
	if err := json.Unmarshal(raw[seriesKey], &series); err != nil {
		return nil, upstreamErr("alphavantage decode series: %v", err)
	}

	bars := make([]model.OHLCV, 0, len(series))
	for day, b := range series {
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		bar := model.OHLCV{Time: t}
		bar.Open, _ = strconv.ParseFloat(b.Open, 64)
		bar.High, _ = strconv.ParseFloat(b.High, 64)
		bar.Low, _ = strconv.ParseFloat(b.Low, 64)
		bar.Close, _ = strconv.ParseFloat(b.Close, 64)
		bar.Volume, _ = strconv.ParseUint(b.Volume, 10, 64)
		if bar.Close <= 0 {
			continue
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, upstreamErr("alphavantage: empty series for %s", symbol)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return trimBars(bars, days), nil
}
