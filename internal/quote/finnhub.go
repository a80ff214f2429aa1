package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"stockwatch/internal/model"
)

// FinnhubFetcher fetches quotes from the Finnhub /quote endpoint. Requests
// are rate-limited to respect the upstream quota.
type FinnhubFetcher struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
}

// FinnhubOptions configures a FinnhubFetcher.
type FinnhubOptions struct {
	APIKey         string
	BaseURL        string
	Timeout        time.Duration
	RequestsPerSec int
	Burst          int
}

// NewFinnhubFetcher creates a fetcher with pooled transport defaults.
func NewFinnhubFetcher(opts FinnhubOptions) *FinnhubFetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://finnhub.io/api/v1"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = opts.RequestsPerSec
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 50,
		IdleConnTimeout:     90 * time.Second,
	}
	return &FinnhubFetcher{
		APIKey:  opts.APIKey,
		BaseURL: opts.BaseURL,
		Client:  &http.Client{Timeout: opts.Timeout, Transport: transport},
		Limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
	}
}

func (f *FinnhubFetcher) Name() string { return "finnhub" }

// finnhubQuote is the upstream /quote response. The endpoint has no volume
// field, which is why volume alerts cannot be evaluated against it.
type finnhubQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
}

// Quote fetches the latest quote for one symbol. A zero current price is
// the upstream's "no data" sentinel and is returned as ErrNoData.
func (f *FinnhubFetcher) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("finnhub rate limit: %w", err)
	}

	u := fmt.Sprintf("%s/quote?symbol=%s&token=%s", f.BaseURL, url.QueryEscape(symbol), url.QueryEscape(f.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("finnhub fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("finnhub read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("finnhub: status %d for %s: %s", resp.StatusCode, symbol, string(body))
	}

	var q finnhubQuote
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, fmt.Errorf("finnhub decode %s: %w", symbol, err)
	}
	if q.Current == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	return &model.Quote{
		Symbol:        symbol,
		CurrentPrice:  q.Current,
		Change:        q.Change,
		PercentChange: q.PercentChange,
		High:          q.High,
		Low:           q.Low,
		Open:          q.Open,
		PreviousClose: q.PreviousClose,
		FetchedAt:     time.Now(),
	}, nil
}
