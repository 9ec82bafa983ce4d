package domain

import "time"

// Recipient is a delivery address owned by a user. At most one recipient per
// user has IsDefault set.
type Recipient struct {
	ID          string
	UserID      string
	Name        string
	Phone       string
	AddressLine string
	City        string
	Country     string
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
