package quote

import (
	"context"
	"errors"

	"stockwatch/internal/model"
)

// ErrNoData means the source has no usable quote for the symbol. The
// upstream reports a current price of zero when it has nothing; callers
// treat the symbol as unknown for this pass rather than as a failure.
var ErrNoData = errors.New("quote: no data for symbol")

// Fetcher resolves the latest quote for a single symbol.
type Fetcher interface {
	Quote(ctx context.Context, symbol string) (*model.Quote, error)
	Name() string
}
