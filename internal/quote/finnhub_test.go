package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func finnhubServer(t *testing.T, handler http.HandlerFunc) *FinnhubFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewFinnhubFetcher(FinnhubOptions{APIKey: "test-key", BaseURL: srv.URL})
}

func TestFinnhubQuoteDecodesResponse(t *testing.T) {
	f := finnhubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		require.Equal(t, "test-key", r.URL.Query().Get("token"))
		w.Write([]byte(`{"c":160.5,"d":2.5,"dp":1.58,"h":161,"l":157,"o":158,"pc":158}`))
	})

	q, err := f.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "AAPL", q.Symbol)
	require.Equal(t, 160.5, q.CurrentPrice)
	require.Equal(t, 158.0, q.PreviousClose)
	require.False(t, q.FetchedAt.IsZero())
}

func TestFinnhubQuoteZeroPriceIsNoData(t *testing.T) {
	f := finnhubServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"c":0,"d":0,"dp":0,"h":0,"l":0,"o":0,"pc":0}`))
	})

	_, err := f.Quote(context.Background(), "BOGUS")
	require.ErrorIs(t, err, ErrNoData)
}

func TestFinnhubQuoteUpstreamError(t *testing.T) {
	f := finnhubServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := f.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoData)
}
