package domain

// Overview aggregates campaigns for the admin dashboard.
type Overview struct {
	ByStatus      map[CampaignStatus]int64 `json:"byStatus"`
	TotalRevenue  int64                    `json:"totalRevenue"`
	RevenueByType map[CampaignType]int64   `json:"revenueByType"`
	Impressions   int64                    `json:"impressions"`
	Clicks        int64                    `json:"clicks"`
	Conversions   int64                    `json:"conversions"`
}

// NewOverview folds campaigns into an Overview. Revenue counts campaigns
// that were approved at some point.
func NewOverview(campaigns []Campaign) Overview {
	o := Overview{
		ByStatus:      make(map[CampaignStatus]int64),
		RevenueByType: make(map[CampaignType]int64),
	}
	for _, c := range campaigns {
		o.ByStatus[c.Status]++
		o.Impressions += c.Metrics.Impressions
		o.Clicks += c.Metrics.Clicks
		o.Conversions += c.Metrics.Conversions
		if c.Status == StatusRejected || c.Status == StatusPendingApproval {
			continue
		}
		o.TotalRevenue += c.TotalCost
		o.RevenueByType[c.Type] += c.TotalCost
	}
	return o
}
