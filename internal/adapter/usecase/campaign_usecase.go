package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port"
)

// expiryBatch caps how many campaigns one ExpireDue pass completes.
const expiryBatch = 100

// CampaignUseCase runs the campaign lifecycle. Each transition locks the
// campaign and applies the campaign update, the listing promoted flag, the
// wallet movement and the vendor notification in one store transaction.
type CampaignUseCase struct {
	store     port.Store
	rates     port.RateProvider
	publisher port.ChangePublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewCampaignUseCase wires the lifecycle. rates is consulted only when a
// campaign is submitted; publisher may be nil.
func NewCampaignUseCase(store port.Store, rates port.RateProvider, publisher port.ChangePublisher, logger *slog.Logger) *CampaignUseCase {
	return &CampaignUseCase{store: store, rates: rates, publisher: publisher, logger: logger, now: time.Now}
}

// Submit debits the full campaign cost from the vendor and files the
// request for approval. Nothing is stored when the wallet cannot cover it.
func (u *CampaignUseCase) Submit(ctx context.Context, actor domain.Actor, req domain.CampaignRequest) (c *domain.Campaign, err error) {
	ctx, span := tracer.Start(ctx, "campaign.Submit")
	span.SetAttributes(
		attribute.String("vendor.id", actor.UserID),
		attribute.String("listing.id", req.ListingID),
		attribute.String("campaign.type", string(req.Type)),
		attribute.Int("campaign.duration_days", req.DurationDays),
	)
	defer func() { endSpan(span, err) }()

	if !actor.Verified {
		return nil, fmt.Errorf("submit: %w: verified account required", domain.ErrForbidden)
	}
	if err = req.Normalize(); err != nil {
		return nil, wrap("submit", err)
	}
	rates, err := u.rates.Rates(ctx)
	if err != nil {
		return nil, wrap("submit: load rates", err)
	}
	cost, err := rates.Quote(req.Type, req.DurationDays)
	if err != nil {
		return nil, wrap("submit", err)
	}

	now := u.now().UTC()
	var charge *domain.Transaction
	err = u.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		listing, err := tx.GetListing(ctx, req.ListingID)
		if err != nil {
			return err
		}
		if listing.VendorID != actor.UserID {
			return fmt.Errorf("%w: listing belongs to another vendor", domain.ErrForbidden)
		}
		open, err := tx.HasOpenCampaign(ctx, listing.ID)
		if err != nil {
			return err
		}
		if open {
			return domain.ErrListingAlreadyPromoted
		}

		c = &domain.Campaign{
			ID:             uuid.NewString(),
			VendorID:       actor.UserID,
			ListingID:      listing.ID,
			ListingTitle:   listing.Title,
			ListingImage:   listing.ImageURL,
			Type:           req.Type,
			DurationDays:   req.DurationDays,
			TotalCost:      cost,
			TargetLocation: req.TargetLocation,
			Goal:           req.Goal,
			Priority:       req.Priority,
			Status:         domain.StatusPendingApproval,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		charge, err = post(ctx, tx, actor.UserID, domain.LedgerEntry{
			Amount:      cost,
			Type:        domain.TransactionPromotion,
			Description: fmt.Sprintf("Ad Campaign: %s for %s", c.Type, listing.Title),
			CampaignID:  c.ID,
		}, false, now)
		if err != nil {
			return err
		}
		return tx.InsertCampaign(ctx, c)
	})
	if err != nil {
		return nil, wrap("submit", err)
	}

	observeTransaction(charge)
	campaignTransitions.WithLabelValues("submit").Inc()
	u.logger.Info("campaign submitted",
		slog.String("campaign_id", c.ID),
		slog.String("vendor_id", c.VendorID),
		slog.String("listing_id", c.ListingID),
		slog.Int64("total_cost", c.TotalCost),
	)
	publish(ctx, u.publisher, u.logger,
		campaignChanged(c, now),
		walletChanged(c.VendorID, now),
	)
	return c, nil
}

// Approve activates a pending campaign and promotes its listing.
func (u *CampaignUseCase) Approve(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error) {
	c, _, err := u.transition(ctx, "approve", actor, id, requireAdmin,
		func(ctx context.Context, tx port.Tx, c *domain.Campaign, now time.Time) (*domain.Transaction, error) {
			if err := c.Approve(now); err != nil {
				return nil, err
			}
			if err := setPromoted(ctx, tx, c, true); err != nil {
				return nil, err
			}
			return nil, notify(ctx, tx, c, domain.NotificationAdApproved, "Ad Request Approved!",
				fmt.Sprintf("Your ad for %s is now live in %s.", c.ListingTitle, c.TargetLocation), now)
		})
	return c, err
}

// Reject turns a pending request down and refunds its full cost.
func (u *CampaignUseCase) Reject(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Campaign, error) {
	if reason == "" {
		reason = "Rejected by admin"
	}
	c, _, err := u.transition(ctx, "reject", actor, id, requireAdmin,
		func(ctx context.Context, tx port.Tx, c *domain.Campaign, now time.Time) (*domain.Transaction, error) {
			refund, err := c.Reject(now, reason)
			if err != nil {
				return nil, err
			}
			t, err := refundVendor(ctx, tx, c, refund, "Ad Refund: "+reason, now)
			if err != nil {
				return nil, err
			}
			return t, notify(ctx, tx, c, domain.NotificationAdRejected, "Ad Request Rejected",
				fmt.Sprintf("Your ad for %s was rejected: %s. Rs. %d has been refunded to your wallet.", c.ListingTitle, reason, refund), now)
		})
	return c, err
}

// Cancel lets the vendor withdraw a pending request for a full refund.
func (u *CampaignUseCase) Cancel(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error) {
	c, _, err := u.transition(ctx, "cancel", actor, id, requireOwner,
		func(ctx context.Context, tx port.Tx, c *domain.Campaign, now time.Time) (*domain.Transaction, error) {
			refund, err := c.Cancel(now)
			if err != nil {
				return nil, err
			}
			return refundVendor(ctx, tx, c, refund,
				fmt.Sprintf("Ad Refund: %s... (Cancelled)", domain.TruncateTitle(c.ListingTitle, 10)), now)
		})
	return c, err
}

// Pause suspends an active campaign. Nothing is refunded.
func (u *CampaignUseCase) Pause(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error) {
	c, _, err := u.transition(ctx, "pause", actor, id, requireManager,
		func(ctx context.Context, tx port.Tx, c *domain.Campaign, now time.Time) (*domain.Transaction, error) {
			if err := c.Pause(now); err != nil {
				return nil, err
			}
			return nil, setPromoted(ctx, tx, c, false)
		})
	return c, err
}

// Resume reactivates a paused campaign. Nothing is charged and the end
// date stays where it was.
func (u *CampaignUseCase) Resume(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error) {
	c, _, err := u.transition(ctx, "resume", actor, id, requireManager,
		func(ctx context.Context, tx port.Tx, c *domain.Campaign, now time.Time) (*domain.Transaction, error) {
			if err := c.Resume(now); err != nil {
				return nil, err
			}
			return nil, setPromoted(ctx, tx, c, true)
		})
	return c, err
}

// Stop completes an active or paused campaign early with a pro-rated
// refund of the whole days left. A zero refund writes no transaction.
func (u *CampaignUseCase) Stop(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, int64, error) {
	var refund int64
	c, _, err := u.transition(ctx, "stop", actor, id, requireManager,
		func(ctx context.Context, tx port.Tx, c *domain.Campaign, now time.Time) (*domain.Transaction, error) {
			var err error
			refund, err = c.Stop(now)
			if err != nil {
				return nil, err
			}
			if err = setPromoted(ctx, tx, c, false); err != nil {
				return nil, err
			}
			description := fmt.Sprintf("Ad Refund: %s... (Stopped early)", domain.TruncateTitle(c.ListingTitle, 10))
			if actor.UserID != c.VendorID {
				description = fmt.Sprintf("Admin Refund: Stopped Ad %s...", domain.TruncateTitle(c.ListingTitle, 10))
			}
			t, err := refundVendor(ctx, tx, c, refund, description, now)
			if err != nil {
				return nil, err
			}
			if actor.UserID == c.VendorID {
				return t, nil
			}
			return t, notify(ctx, tx, c, domain.NotificationAdStopped, "Ad Stopped",
				fmt.Sprintf("Your ad for %s was stopped. Rs. %d has been refunded to your wallet.", c.ListingTitle, refund), now)
		})
	if err != nil {
		return nil, 0, err
	}
	return c, refund, nil
}

// systemActor is used by background jobs.
var systemActor = domain.Actor{UserID: "system", Verified: true, Admin: true}

// ExpireDue completes active and paused campaigns whose end date has
// passed. Their refund is zero; the point is clearing the promoted flag.
func (u *CampaignUseCase) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := u.store.ListCampaigns(ctx, port.CampaignFilter{
		Statuses:   []domain.CampaignStatus{domain.StatusActive, domain.StatusPaused},
		EndsBefore: &now,
		Page:       port.Page{Limit: expiryBatch},
	})
	if err != nil {
		return 0, wrap("expire", err)
	}

	var expired int
	for _, c := range due {
		_, _, err = u.transition(ctx, "expire", systemActor, c.ID, requireAdmin,
			func(ctx context.Context, tx port.Tx, c *domain.Campaign, _ time.Time) (*domain.Transaction, error) {
				if !c.Expired(now) {
					return nil, fmt.Errorf("%w: campaign no longer due", domain.ErrInvalidTransition)
				}
				if _, err := c.Stop(now); err != nil {
					return nil, err
				}
				return nil, setPromoted(ctx, tx, c, false)
			})
		switch {
		case err == nil:
			expired++
		case errors.Is(err, domain.ErrInvalidTransition):
			// stopped or resumed concurrently
		default:
			return expired, err
		}
	}
	return expired, nil
}

// Get returns a campaign visible to the actor.
func (u *CampaignUseCase) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error) {
	c, err := u.store.GetCampaign(ctx, id)
	if err != nil {
		return nil, wrap("get campaign", err)
	}
	if !actor.CanManage(c) {
		return nil, fmt.Errorf("get campaign: %w", domain.ErrForbidden)
	}
	return c, nil
}

// List returns campaigns matching filter. Vendors only see their own.
func (u *CampaignUseCase) List(ctx context.Context, actor domain.Actor, filter port.CampaignFilter) ([]domain.Campaign, error) {
	if !actor.Admin {
		filter.VendorID = actor.UserID
	}
	filter.Page = filter.Page.Normalize()
	out, err := u.store.ListCampaigns(ctx, filter)
	return out, wrap("list campaigns", err)
}

// Overview aggregates every campaign for the admin dashboard.
func (u *CampaignUseCase) Overview(ctx context.Context, actor domain.Actor) (*domain.Overview, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("overview: %w", domain.ErrForbidden)
	}
	all, err := u.store.ListCampaigns(ctx, port.CampaignFilter{})
	if err != nil {
		return nil, wrap("overview", err)
	}
	o := domain.NewOverview(all)
	return &o, nil
}

// TrackImpression counts an impression on the listing's active campaign.
// A listing without one is not an error.
func (u *CampaignUseCase) TrackImpression(ctx context.Context, listingID string) error {
	return u.track(ctx, "impression", func(ctx context.Context, tx port.Tx) (*domain.Campaign, error) {
		c, err := tx.LockActiveCampaign(ctx, listingID)
		if err != nil {
			return nil, err
		}
		c.RecordImpression()
		return c, nil
	})
}

// TrackClick counts a click on the listing's active campaign.
func (u *CampaignUseCase) TrackClick(ctx context.Context, listingID string) error {
	return u.track(ctx, "click", func(ctx context.Context, tx port.Tx) (*domain.Campaign, error) {
		c, err := tx.LockActiveCampaign(ctx, listingID)
		if err != nil {
			return nil, err
		}
		c.RecordClick()
		return c, nil
	})
}

// TrackConversion counts a conversion on a campaign.
func (u *CampaignUseCase) TrackConversion(ctx context.Context, campaignID string) error {
	return u.track(ctx, "conversion", func(ctx context.Context, tx port.Tx) (*domain.Campaign, error) {
		c, err := tx.LockCampaign(ctx, campaignID)
		if err != nil {
			return nil, err
		}
		c.RecordConversion()
		return c, nil
	})
}

func (u *CampaignUseCase) track(ctx context.Context, event string, apply func(ctx context.Context, tx port.Tx) (*domain.Campaign, error)) error {
	err := u.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		c, err := apply(ctx, tx)
		if err != nil {
			return err
		}
		return tx.UpdateCampaign(ctx, c)
	})
	switch {
	case err == nil:
		trackingEvents.WithLabelValues(event, "counted").Inc()
		return nil
	case errors.Is(err, domain.ErrCampaignNotFound):
		trackingEvents.WithLabelValues(event, "no_campaign").Inc()
		return nil
	default:
		trackingEvents.WithLabelValues(event, "failed").Inc()
		return wrap("track "+event, err)
	}
}

type (
	authorizeFunc func(actor domain.Actor, c *domain.Campaign) error
	applyFunc     func(ctx context.Context, tx port.Tx, c *domain.Campaign, now time.Time) (*domain.Transaction, error)
)

func requireAdmin(actor domain.Actor, _ *domain.Campaign) error {
	if !actor.Admin {
		return fmt.Errorf("%w: admin only", domain.ErrForbidden)
	}
	return nil
}

func requireOwner(actor domain.Actor, c *domain.Campaign) error {
	if actor.UserID != c.VendorID {
		return fmt.Errorf("%w: not the campaign owner", domain.ErrForbidden)
	}
	return nil
}

func requireManager(actor domain.Actor, c *domain.Campaign) error {
	if !actor.CanManage(c) {
		return fmt.Errorf("%w: not the campaign owner", domain.ErrForbidden)
	}
	return nil
}

// transition locks the campaign, checks the actor, applies the event and
// stores the result, all inside one store transaction.
func (u *CampaignUseCase) transition(ctx context.Context, event string, actor domain.Actor, id string, authorize authorizeFunc, apply applyFunc) (c *domain.Campaign, t *domain.Transaction, err error) {
	ctx, span := tracer.Start(ctx, "campaign."+event)
	span.SetAttributes(
		attribute.String("campaign.id", id),
		attribute.String("actor.id", actor.UserID),
	)
	defer func() { endSpan(span, err) }()

	now := u.now().UTC()
	err = u.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var txErr error
		if c, txErr = tx.LockCampaign(ctx, id); txErr != nil {
			return txErr
		}
		if txErr = authorize(actor, c); txErr != nil {
			return txErr
		}
		if t, txErr = apply(ctx, tx, c, now); txErr != nil {
			return txErr
		}
		return tx.UpdateCampaign(ctx, c)
	})
	if err != nil {
		return nil, nil, wrap(event, err)
	}

	observeTransaction(t)
	campaignTransitions.WithLabelValues(event).Inc()
	attrs := []any{
		slog.String("campaign_id", c.ID),
		slog.String("actor_id", actor.UserID),
		slog.String("status", string(c.Status)),
	}
	events := []domain.ChangeEvent{
		campaignChanged(c, now),
		{Kind: domain.ChangeListing, ID: c.ListingID, UserID: c.VendorID, At: now},
	}
	if t != nil {
		campaignRefunds.Add(float64(t.Amount))
		attrs = append(attrs, slog.Int64("refund", t.Amount))
		events = append(events, walletChanged(c.VendorID, now))
	}
	u.logger.Info("campaign "+event, attrs...)
	publish(ctx, u.publisher, u.logger, events...)
	return c, t, nil
}

// setPromoted is the only writer of the listing promoted flag.
func setPromoted(ctx context.Context, tx port.Tx, c *domain.Campaign, promoted bool) error {
	return tx.SetListingPromoted(ctx, c.ListingID, promoted)
}

// refundVendor credits amount back to the campaign's vendor as a refund of
// spend. A non-positive amount writes nothing.
func refundVendor(ctx context.Context, tx port.Tx, c *domain.Campaign, amount int64, description string, now time.Time) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, nil
	}
	return post(ctx, tx, c.VendorID, domain.LedgerEntry{
		Amount:       amount,
		Type:         domain.TransactionAdjustment,
		Description:  description,
		RefundsSpend: true,
		CampaignID:   c.ID,
	}, true, now)
}

func notify(ctx context.Context, tx port.Tx, c *domain.Campaign, kind domain.NotificationKind, title, body string, now time.Time) error {
	return tx.InsertNotification(ctx, &domain.Notification{
		ID:         uuid.NewString(),
		UserID:     c.VendorID,
		Kind:       kind,
		Title:      title,
		Body:       body,
		CampaignID: c.ID,
		CreatedAt:  now,
	})
}

func campaignChanged(c *domain.Campaign, now time.Time) domain.ChangeEvent {
	return domain.ChangeEvent{Kind: domain.ChangeCampaign, ID: c.ID, UserID: c.VendorID, At: now}
}
