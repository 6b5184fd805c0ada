package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bazaar-ads/internal/core/domain"
)

func (h *Handler) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid JSON")
		return
	}
	l, err := h.Listings.Create(r.Context(), actorFrom(r), domain.Listing{
		Title:    req.Title,
		ImageURL: req.ImageURL,
		Location: req.Location,
		Price:    req.Price,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) handleGetListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.Listings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleListListings serves the home feed: promoted listings first.
func (h *Handler) handleListListings(w http.ResponseWriter, r *http.Request) {
	out, err := h.Listings.List(r.Context(), pageFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
