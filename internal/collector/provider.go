package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"SignalSage/internal/model"
)

var (
	// ErrUpstreamUnavailable marks a provider that answered non-2xx, timed out
	// or returned a body that could not be used.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrSymbolNotRecognized is returned when no provider could price a symbol.
	ErrSymbolNotRecognized = errors.New("symbol not recognized")

	// ErrUnsupportedSymbol is returned by a provider that cannot serve a symbol form.
	ErrUnsupportedSymbol = errors.New("unsupported symbol")
)

// Provider fetches quotes and daily bars from one upstream.
type Provider interface {
	Name() model.Source
	Quote(ctx context.Context, symbol string) (*model.Quote, error)
	History(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
}

// ProviderError attributes a failure to the provider that produced it.
type ProviderError struct {
	Provider model.Source
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// upstreamErr wraps err so that it matches ErrUpstreamUnavailable.
func upstreamErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUpstreamUnavailable, fmt.Sprintf(format, args...))
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// DefaultTimeout bounds every quote/history request.
const DefaultTimeout = 10 * time.Second
