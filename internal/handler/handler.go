package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stocksim/internal/engine"
	"stocksim/internal/market"
)

// stockResponse is the JSON response for GET /api/stock/{symbol}. The list
// endpoint returns full records; the single endpoint only the live price.
type stockResponse struct {
	Symbol       string  `json:"symbol"`
	CurrentPrice float64 `json:"currentPrice"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves read-only queries against the price engine.
type Handler struct {
	eng *engine.Engine
}

// NewRouter creates the query-service router wrapped in the shared
// middleware chain (JSON/CORS headers, gzip, panic recovery).
func NewRouter(eng *engine.Engine, corsOrigin string) http.Handler {
	h := &Handler{eng: eng}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/api/stocks", h.ListStocks)
	r.Get("/api/stock/{symbol}", h.GetStock)

	return withJSONHeaders(corsOrigin, withGzip(recoverPanic(r)))
}

// ListStocks handles GET /api/stocks: the full ordered instrument collection.
func (h *Handler) ListStocks(w http.ResponseWriter, r *http.Request) {
	instruments, err := h.eng.ListAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, instruments)
}

// GetStock handles GET /api/stock/{symbol}.
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	in, err := h.eng.Get(symbol)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stockResponse{Symbol: in.Symbol, CurrentPrice: in.CurrentPrice})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeError maps engine errors onto the HTTP surface. Unknown symbols are
// an expected not-found result; a not-yet-seeded engine signals that the
// service is still initializing rather than failing.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Stock not found"})
	case errors.Is(err, market.ErrNotReady):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "price data initializing"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
