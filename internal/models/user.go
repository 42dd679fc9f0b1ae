package models

import "time"

// User roles.
const (
	RoleAdmin    = "admin"
	RoleBusiness = "business"
	RoleUser     = "user"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	Role         string
	Phone        string
	Latitude     *float64
	Longitude    *float64
	LocationName string

	NotificationsEnabled bool

	// Business-account fields; zero values for regular users.
	BusinessName        string
	BusinessDescription string
	BusinessVerified    bool
	BusinessVetted      bool
	VetoReason          string

	CreatedAt time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsBusiness() bool {
	return u.Role == RoleBusiness
}

// CanCreateOffers reports whether the account may publish offers: a verified,
// non-vetted business.
func (u *User) CanCreateOffers() bool {
	return u.IsBusiness() && u.BusinessVerified && !u.BusinessVetted
}

// HasLocation reports whether both coordinates are set.
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}
