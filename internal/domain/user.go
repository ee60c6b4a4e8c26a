package domain

const (
	RoleAdmin      = "admin"
	RoleStoreOwner = "store_owner"
	RoleCustomer   = "customer"
)

type User struct {
	ID                string `db:"id" json:"id"`
	Email             string `db:"email" json:"email"`
	Phone             string `db:"phone" json:"phone,omitempty"`
	Hash              string `db:"password_hash" json:"-"`
	Role              string `db:"role" json:"role"`
	FullName          string `db:"full_name" json:"fullName"`
	PreferredLanguage string `db:"preferred_language" json:"preferredLanguage"`
	Active            bool   `db:"is_active" json:"isActive"`
	CreatedAt         string `db:"created_at" json:"createdAt"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Identity is who a cart or order belongs to: either a logged-in user or an
// anonymous browser session. Exactly one of the two fields is set.
type Identity struct {
	UserID       string
	SessionToken string
}

func Authenticated(userID string) Identity { return Identity{UserID: userID} }

func Anonymous(sessionToken string) Identity { return Identity{SessionToken: sessionToken} }

func (i Identity) IsAuthenticated() bool { return i.UserID != "" }

func (i Identity) IsZero() bool { return i.UserID == "" && i.SessionToken == "" }

// Capability is a caller's standing towards one store.
type Capability int

const (
	CapNone Capability = iota
	CapOwner
	CapAdmin
)

func (c Capability) CanManage() bool { return c == CapOwner || c == CapAdmin }

func (c Capability) String() string {
	switch c {
	case CapOwner:
		return "owner"
	case CapAdmin:
		return "admin"
	default:
		return "none"
	}
}
