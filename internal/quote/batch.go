package quote

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"stockwatch/internal/model"
)

// Batch resolves quotes for a set of distinct symbols in parallel, bounded
// by limit concurrent lookups. A symbol whose lookup fails for any reason
// (network error, bad response, no-data sentinel) is simply absent from the
// result; one bad symbol never aborts the batch. Callers must treat absence
// as "unknown this pass".
func Batch(ctx context.Context, f Fetcher, symbols []string, limit int) map[string]model.Quote {
	out := make(map[string]model.Quote, len(symbols))
	if len(symbols) == 0 {
		return out
	}
	if limit <= 0 {
		limit = len(symbols)
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, symbol := range symbols {
		g.Go(func() error {
			q, err := f.Quote(ctx, symbol)
			if err != nil {
				// per-symbol failures are tolerated; the symbol stays absent
				return nil
			}
			mu.Lock()
			out[symbol] = *q
			mu.Unlock()
			return nil
		})
	}

	// workers never return errors, Wait only synchronizes
	_ = g.Wait()
	return out
}
