package httpadapter

import "net/http"

// handleOverview returns campaign counts, revenue and traffic totals for
// the admin dashboard.
func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	o, err := h.Campaigns.Overview(r.Context(), actorFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
