package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// FeaturedLimit is the number of products on the featured shelf.
const FeaturedLimit = 5

// Product is a catalog entry. Images are ordered by Position and exactly one
// of them is the thumbnail once any image exists.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	IsActive      bool
	IsFeatured    bool
	CategoryID    string
	CategoryName  string
	Images        []ProductImage
	AverageRating float64
	RatingCount   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Thumbnail returns the thumbnail image, or nil when the product has none.
func (p *Product) Thumbnail() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsThumbnail {
			return &p.Images[i]
		}
	}
	return nil
}

// ProductImage is an uploaded asset. Its lifecycle is bound to the product.
type ProductImage struct {
	ID          string
	ProductID   string
	Key         string
	URL         string
	IsThumbnail bool
	Position    int
	CreatedAt   time.Time
}

// ProductRating is one user's score for a product. A user rates a product at
// most once; rating again replaces the score.
type ProductRating struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int
	CreatedAt time.Time
}

// ValidRating reports whether r is within MinRating..MaxRating.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
