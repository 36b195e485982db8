package accesscontrol

import "time"

type RoleName string

const (
	RoleAdmin    RoleName = "admin"
	RoleBusiness RoleName = "business"
	RoleCustomer RoleName = "customer"
)

// Subscription is a user's current plan. Only an active, unexpired row
// grants full access.
type Subscription struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Plan      string     `json:"plan"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Grant is a one-time unlock of a single review for a single user,
// usually bought with credits. A grant never extends to other reviews.
type Grant struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ReviewID  int64     `json:"review_id"`
	GrantedAt time.Time `json:"granted_at"`
}
