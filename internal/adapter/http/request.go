package httpadapter

import "bazaar-ads/internal/core/domain"

type registerRequest struct {
	Email string `json:"email"`
}

type pushTokenRequest struct {
	Token string `json:"token"`
}

type fundsRequest struct {
	Type        domain.TransactionType `json:"type"`
	Amount      int64                  `json:"amount"`
	Description string                 `json:"description"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type listingRequest struct {
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
	Location string `json:"location"`
	Price    int64  `json:"price"`
}

type stopResponse struct {
	Campaign *domain.Campaign `json:"campaign"`
	Refund   int64            `json:"refund"`
}

type quoteResponse struct {
	Type         domain.CampaignType `json:"type"`
	DurationDays int                 `json:"durationDays"`
	CostPerDay   int64               `json:"costPerDay"`
	TotalCost    int64               `json:"totalCost"`
}
