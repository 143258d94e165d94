package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
)

// DailyOpenClose is the open/close summary for one ticker on one trading day.
// Numeric fields are pointers because Polygon omits them for days without data.
type DailyOpenClose struct {
	Status string   `json:"status"`
	From   string   `json:"from"`
	Symbol string   `json:"symbol"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *float64 `json:"volume"`
}

// GetDailyOpenClose retrieves the open/close summary for a ticker on a
// calendar date (YYYY-MM-DD). Prices are split-adjusted.
func (c *Client) GetDailyOpenClose(ctx context.Context, symbol, date string, opts ...ClientOption) (DailyOpenClose, error) {
	var override = &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      c.query,
	}
	for _, opt := range opts {
		opt(override)
	}

	query := maps.Clone(override.query)
	query.Add("adjusted", "true")

	u := fmt.Sprintf("%s/v1/open-close/%s/%s?%s",
		override.baseURL, url.PathEscape(symbol), url.PathEscape(date), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return DailyOpenClose{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = override.header

	res, err := override.httpClient.Do(req)
	if err != nil {
		return DailyOpenClose{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusNotFound:
		return DailyOpenClose{}, fmt.Errorf("no data for %s on %s", symbol, date)

	case http.StatusUnauthorized, http.StatusForbidden:
		return DailyOpenClose{}, fmt.Errorf("unauthorized")

	case http.StatusTooManyRequests:
		return DailyOpenClose{}, fmt.Errorf("rate limited")

	default:
		return DailyOpenClose{}, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	var out DailyOpenClose
	dec := json.NewDecoder(res.Body)
	if err := dec.Decode(&out); err != nil {
		return DailyOpenClose{}, fmt.Errorf("decoding open-close response: %w", err)
	}
	if out.Status != "" && out.Status != "OK" {
		return DailyOpenClose{}, fmt.Errorf("provider status %q for %s on %s", out.Status, symbol, date)
	}
	return out, nil
}
