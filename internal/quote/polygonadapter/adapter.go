package polygonadapter

import (
	"context"
	"log"

	"stocksim/internal/quote"
	"stocksim/internal/quote/polygon"
)

type Config struct {
	Name string // display name, default: Polygon
}

// Adapter exposes the Polygon daily open/close endpoint as a quote.Source.
// Every failure — transport error, non-success status, missing or
// non-positive open field — is logged and mapped to quote.ErrUnavailable;
// nothing propagates past this boundary.
type Adapter struct {
	cfg    Config
	client *polygon.Client
}

func New(cfg Config, client *polygon.Client) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "Polygon"
	}
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) OpeningPrice(ctx context.Context, symbol, date string) (float64, error) {
	res, err := a.client.GetDailyOpenClose(ctx, symbol, date)
	if err != nil {
		log.Printf("%s: open price for %s on %s: %v", a.cfg.Name, symbol, date, err)
		return 0, quote.ErrUnavailable
	}
	if res.Open == nil || *res.Open <= 0 {
		log.Printf("%s: open price for %s on %s: missing or non-positive open", a.cfg.Name, symbol, date)
		return 0, quote.ErrUnavailable
	}
	return *res.Open, nil
}
