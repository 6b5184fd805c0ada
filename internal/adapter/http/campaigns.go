package httpadapter

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port"
)

func (h *Handler) handleSubmitCampaign(w http.ResponseWriter, r *http.Request) {
	var req domain.CampaignRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid JSON")
		return
	}
	c, err := h.Campaigns.Submit(r.Context(), actorFrom(r), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// handleListCampaigns lists the caller's campaigns. Admins see every
// campaign and may filter by vendorId. Both may filter by listingId and a
// comma separated status list.
func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := port.CampaignFilter{
		VendorID:  q.Get("vendorId"),
		ListingID: q.Get("listingId"),
		Page:      pageFrom(r),
	}
	if raw := q.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, domain.CampaignStatus(strings.TrimSpace(s)))
		}
	}
	out, err := h.Campaigns.List(r.Context(), actorFrom(r), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.Campaigns.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type transitionFunc func(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error)

// transitionHandler serves the lifecycle endpoints that take no body.
func (h *Handler) transitionHandler(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := fn(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func (h *Handler) handleApproveCampaign(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(h.Campaigns.Approve)(w, r)
}

func (h *Handler) handleCancelCampaign(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(h.Campaigns.Cancel)(w, r)
}

func (h *Handler) handlePauseCampaign(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(h.Campaigns.Pause)(w, r)
}

func (h *Handler) handleResumeCampaign(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(h.Campaigns.Resume)(w, r)
}

// handleRejectCampaign accepts an optional {"reason"} body.
func (h *Handler) handleRejectCampaign(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			h.badRequest(w, "invalid JSON")
			return
		}
	}
	c, err := h.Campaigns.Reject(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleStopCampaign ends the campaign early and reports the refund paid
// back to the vendor.
func (h *Handler) handleStopCampaign(w http.ResponseWriter, r *http.Request) {
	c, refund, err := h.Campaigns.Stop(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stopResponse{Campaign: c, Refund: refund})
}
