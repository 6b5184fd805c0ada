package domain

import "time"

// Listing is a product or service offered by a vendor. IsPromoted mirrors
// whether the listing has an active campaign and is only written by the
// campaign lifecycle.
type Listing struct {
	ID         string    `json:"id"`
	VendorID   string    `json:"vendorId"`
	Title      string    `json:"title"`
	ImageURL   string    `json:"imageUrl"`
	Location   string    `json:"location"`
	Price      int64     `json:"price"`
	IsPromoted bool      `json:"isPromoted"`
	Views      int64     `json:"views"`
	CreatedAt  time.Time `json:"createdAt"`
}
