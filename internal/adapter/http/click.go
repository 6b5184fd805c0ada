package httpadapter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// trackHandler serves a counter endpoint. Counters are best effort: a
// failure is logged and the client still gets 204.
func (h *Handler) trackHandler(event string, fn func(ctx context.Context, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := fn(r.Context(), id); err != nil {
			h.logger.Warn("tracking failed",
				slog.String("event", event),
				slog.String("id", id),
				slog.Any("error", err),
			)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleImpression counts an impression for the active campaign of the
// listing.
func (h *Handler) handleImpression(w http.ResponseWriter, r *http.Request) {
	h.trackHandler("impression", h.Campaigns.TrackImpression)(w, r)
}

// handleView counts a listing view and, when the listing is promoted, a
// click on its active campaign.
func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	h.trackHandler("view", func(ctx context.Context, id string) error {
		if err := h.Listings.RecordView(ctx, id); err != nil {
			return err
		}
		return h.Campaigns.TrackClick(ctx, id)
	})(w, r)
}

func (h *Handler) handleConversion(w http.ResponseWriter, r *http.Request) {
	h.trackHandler("conversion", h.Campaigns.TrackConversion)(w, r)
}
