package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/d-wern/portfolio-assistant/internal/middleware"
	"github.com/d-wern/portfolio-assistant/internal/model"
)

// defaultExchangeLimit is the page size when none is requested.
const defaultExchangeLimit = 50

// ExchangeReader reads back recorded exchanges.
type ExchangeReader interface {
	RecentExchanges(ctx context.Context, limit int) ([]model.Exchange, error)
}

// ExchangesHandler serves the admin exchange listing.
type ExchangesHandler struct {
	reader ExchangeReader
}

// NewExchangesHandler creates a new exchanges handler. reader may be
// nil when exchange recording is not configured.
func NewExchangesHandler(reader ExchangeReader) *ExchangesHandler {
	return &ExchangesHandler{reader: reader}
}

// List handles GET /api/v1/exchanges
func (h *ExchangesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.reader == nil {
		writeError(w, http.StatusServiceUnavailable, "exchange recording is not configured")
		return
	}

	limit := defaultExchangeLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	if err := middleware.ValidateLimit(limit); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	exchanges, err := h.reader.RecentExchanges(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read exchanges")
		return
	}

	writeJSON(w, http.StatusOK, model.ListExchangesResponse{
		Exchanges: exchanges,
		HasMore:   len(exchanges) == limit,
	})
}
