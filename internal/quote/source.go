package quote

import (
	"context"
	"errors"
)

// ErrUnavailable is the sentinel returned when an opening price cannot be
// obtained for a symbol. Adapters convert every transport error, non-success
// response and malformed payload into this value at their own boundary;
// callers drop the symbol rather than retrying.
var ErrUnavailable = errors.New("opening price unavailable")

// Source fetches the opening price for one symbol on one trading date
// (calendar date string, e.g. "2024-01-02").
type Source interface {
	Name() string
	OpeningPrice(ctx context.Context, symbol, date string) (float64, error)
}
