package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bazaar-ads/internal/core/domain"
)

// handleRegister creates the caller's user record. Calling it again returns
// the existing record with 200 instead of 201.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			h.badRequest(w, "invalid JSON")
			return
		}
	}
	user, err := h.Ledger.Register(r.Context(), actorFrom(r), req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handlePushToken(w http.ResponseWriter, r *http.Request) {
	var req pushTokenRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid JSON")
		return
	}
	if err := h.Ledger.SetPushToken(r.Context(), actorFrom(r), req.Token); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	out, err := h.Ledger.Notifications(r.Context(), actorFrom(r).UserID, pageFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleWallet(w http.ResponseWriter, r *http.Request) {
	user, err := h.Ledger.Wallet(r.Context(), actorFrom(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Wallet)
}

func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	history, err := h.Ledger.History(r.Context(), actorFrom(r).UserID, pageFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// handleAdjustFunds lets an admin credit or debit any wallet. The type
// decides the direction.
func (h *Handler) handleAdjustFunds(w http.ResponseWriter, r *http.Request) {
	var req fundsRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid JSON")
		return
	}
	t, err := h.Ledger.AdjustFunds(r.Context(), actorFrom(r), chi.URLParam(r, "id"), domain.LedgerEntry{
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}
