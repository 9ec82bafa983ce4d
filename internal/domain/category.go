package domain

import "time"

// Category groups products. It does not own them: a category that still has
// products cannot be deleted.
type Category struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
