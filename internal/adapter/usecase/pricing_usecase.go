package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port"
)

// PricingUseCase owns the shared rate table. Campaigns copy the price at
// submission, so rate changes never touch existing campaigns.
type PricingUseCase struct {
	store  port.Store
	logger *slog.Logger
}

// NewPricingUseCase returns a PricingUseCase backed by store.
func NewPricingUseCase(store port.Store, logger *slog.Logger) *PricingUseCase {
	return &PricingUseCase{store: store, logger: logger}
}

// Rates returns the stored rates completed with defaults for types that
// have no row.
func (u *PricingUseCase) Rates(ctx context.Context) (domain.AdRates, error) {
	stored, err := u.store.GetAdRates(ctx)
	if err != nil {
		return nil, wrap("rates", err)
	}
	out := domain.DefaultAdRates()
	for t, v := range stored {
		if v > 0 {
			out[t] = v
		}
	}
	return out, nil
}

// UpdateRates replaces the rates named in rates. Admin only.
func (u *PricingUseCase) UpdateRates(ctx context.Context, actor domain.Actor, rates domain.AdRates) (domain.AdRates, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("update rates: %w", domain.ErrForbidden)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("update rates: %w: no rates given", domain.ErrInvalidCampaign)
	}
	if err := rates.Validate(); err != nil {
		return nil, wrap("update rates", err)
	}
	if err := u.store.PutAdRates(ctx, rates); err != nil {
		return nil, wrap("update rates", err)
	}
	for t, v := range rates {
		u.logger.Info("ad rate updated", slog.String("type", string(t)), slog.Int64("cost_per_day", v), slog.String("actor_id", actor.UserID))
	}
	return u.Rates(ctx)
}

// Quote prices a campaign at the current rates.
func (u *PricingUseCase) Quote(ctx context.Context, t domain.CampaignType, days int) (int64, error) {
	rates, err := u.Rates(ctx)
	if err != nil {
		return 0, err
	}
	cost, err := rates.Quote(t, days)
	return cost, wrap("quote", err)
}
