package polygonadapter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"stocksim/internal/quote"
	"stocksim/internal/quote/polygon"
	"stocksim/internal/quote/polygonadapter"
)

func newAdapter(t *testing.T, h http.HandlerFunc) *polygonadapter.Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client, err := polygon.NewClient("test-key", polygon.WithBaseURL(srv.URL))
	require.NoError(t, err)
	return polygonadapter.New(polygonadapter.Config{}, client)
}

func TestOpeningPrice(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","from":"2024-01-02","symbol":"AAPL","open":185.0,"close":185.64}`))
	})

	open, err := a.OpeningPrice(context.Background(), "AAPL", "2024-01-02")
	require.NoError(t, err)
	require.InEpsilon(t, 185.0, open, 0.0001)
}

func TestOpeningPrice_UpstreamErrorIsUnavailable(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := a.OpeningPrice(context.Background(), "AAPL", "2024-01-02")
	require.Truef(t, errors.Is(err, quote.ErrUnavailable), "want ErrUnavailable, got %v", err)
}

func TestOpeningPrice_MissingOpenIsUnavailable(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","from":"2024-01-02","symbol":"AAPL"}`))
	})

	_, err := a.OpeningPrice(context.Background(), "AAPL", "2024-01-02")
	require.Truef(t, errors.Is(err, quote.ErrUnavailable), "want ErrUnavailable, got %v", err)
}

func TestOpeningPrice_NonPositiveOpenIsUnavailable(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","from":"2024-01-02","symbol":"AAPL","open":0}`))
	})

	_, err := a.OpeningPrice(context.Background(), "AAPL", "2024-01-02")
	require.Truef(t, errors.Is(err, quote.ErrUnavailable), "want ErrUnavailable, got %v", err)
}

func TestOpeningPrice_MalformedBodyIsUnavailable(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := a.OpeningPrice(context.Background(), "AAPL", "2024-01-02")
	require.Truef(t, errors.Is(err, quote.ErrUnavailable), "want ErrUnavailable, got %v", err)
}
