package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bazaar-ads/internal/core/port"
)

// Services bundles the use cases served over HTTP. Feed may be nil, in
// which case the live endpoint answers 503.
type Services struct {
	Ledger    port.LedgerUseCase
	Campaigns port.CampaignUseCase
	Listings  port.ListingUseCase
	Pricing   port.PricingUseCase
	Feed      port.ChangeSubscriber
}

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// Routes are registered on a chi.Router; the caller's identity is taken
// from the headers set by the upstream gateway.
type Handler struct {
	Services
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc Services, logger *slog.Logger) *Handler {
	h := &Handler{Services: svc, logger: logger}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(instrument)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/listings", h.handleListListings)
		r.Get("/listings/{id}", h.handleGetListing)
		r.Post("/listings/{id}/impressions", h.handleImpression)
		r.Post("/listings/{id}/views", h.handleView)
		r.Post("/campaigns/{id}/conversions", h.handleConversion)
		r.Get("/rates", h.handleRates)
		r.Get("/rates/quote", h.handleQuote)

		r.Group(func(r chi.Router) {
			r.Use(identify)

			r.Post("/me", h.handleRegister)
			r.Put("/me/push-token", h.handlePushToken)
			r.Get("/me/notifications", h.handleNotifications)
			r.Get("/wallet", h.handleWallet)
			r.Get("/wallet/transactions", h.handleTransactions)

			r.Post("/listings", h.handleCreateListing)

			r.Post("/campaigns", h.handleSubmitCampaign)
			r.Get("/campaigns", h.handleListCampaigns)
			r.Get("/campaigns/{id}", h.handleGetCampaign)
			r.Post("/campaigns/{id}/cancel", h.handleCancelCampaign)
			r.Post("/campaigns/{id}/pause", h.handlePauseCampaign)
			r.Post("/campaigns/{id}/resume", h.handleResumeCampaign)
			r.Post("/campaigns/{id}/stop", h.handleStopCampaign)

			r.Get("/live", h.handleLive)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/users/{id}/funds", h.handleAdjustFunds)
				r.Post("/campaigns/{id}/approve", h.handleApproveCampaign)
				r.Post("/campaigns/{id}/reject", h.handleRejectCampaign)
				r.Get("/overview", h.handleOverview)
				r.Put("/rates", h.handleUpdateRates)
			})
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
