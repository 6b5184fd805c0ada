package domain

import "time"

// Role is the privilege level of a user.
type Role string

const (
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

// User owns a wallet. The id is the opaque identifier handed out by the
// identity provider.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	Wallet    Wallet    `json:"wallet"`
	PushToken string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID   string
	Verified bool
	Admin    bool
}

// CanManage reports whether the actor may pause, resume or stop c.
func (a Actor) CanManage(c *Campaign) bool {
	return a.Admin || a.UserID == c.VendorID
}
