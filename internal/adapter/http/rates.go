package httpadapter

import (
	"net/http"
	"strconv"

	"bazaar-ads/internal/core/domain"
)

func (h *Handler) handleRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.Pricing.Rates(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

// handleQuote prices a campaign of ?type for ?days at the current rates.
func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := strconv.Atoi(q.Get("days"))
	if err != nil {
		h.badRequest(w, "invalid 'days'")
		return
	}
	t := domain.CampaignType(q.Get("type"))
	total, err := h.Pricing.Quote(r.Context(), t, days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		Type:         t,
		DurationDays: days,
		CostPerDay:   total / int64(days),
		TotalCost:    total,
	})
}

// handleUpdateRates replaces the rates present in the body, e.g.
// {"banner_ad": 650}.
func (h *Handler) handleUpdateRates(w http.ResponseWriter, r *http.Request) {
	var rates domain.AdRates
	if err := decode(r, &rates); err != nil {
		h.badRequest(w, "invalid JSON")
		return
	}
	out, err := h.Pricing.UpdateRates(r.Context(), actorFrom(r), rates)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
