// Package search implements the full-text product index. Only active
// products are returned by Search; inactive ones stay indexed so that
// reactivation needs no reindex.
package search

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dungpham-npc/storefront/internal/domain"
)

// Document is the indexed form of a product.
type Document struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         string    `json:"price"`
	PriceValue    float64   `json:"price_value"`
	CategoryID    string    `json:"category_id"`
	CategoryName  string    `json:"category_name"`
	IsActive      bool      `json:"is_active"`
	IsFeatured    bool      `json:"is_featured"`
	ThumbnailURL  string    `json:"thumbnail_url,omitempty"`
	ThumbnailKey  string    `json:"thumbnail_key,omitempty"`
	AverageRating float64   `json:"average_rating"`
	RatingCount   int       `json:"rating_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewDocument converts a product for indexing.
func NewDocument(p *domain.Product) Document {
	doc := Document{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.StringFixed(2),
		PriceValue:    p.Price.InexactFloat64(),
		CategoryID:    p.CategoryID,
		CategoryName:  p.CategoryName,
		IsActive:      p.IsActive,
		IsFeatured:    p.IsFeatured,
		AverageRating: p.AverageRating,
		RatingCount:   p.RatingCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if thumb := p.Thumbnail(); thumb != nil {
		doc.ThumbnailURL = thumb.URL
		doc.ThumbnailKey = thumb.Key
	}
	return doc
}

// Product converts a document back into the product shape used by
// listings. Only the thumbnail image is carried.
func (d Document) Product() domain.Product {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		price = decimal.NewFromFloat(d.PriceValue)
	}
	p := domain.Product{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Price:         price,
		IsActive:      d.IsActive,
		IsFeatured:    d.IsFeatured,
		CategoryID:    d.CategoryID,
		CategoryName:  d.CategoryName,
		AverageRating: d.AverageRating,
		RatingCount:   d.RatingCount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.ThumbnailURL != "" {
		p.Images = []domain.ProductImage{{
			ProductID:   d.ID,
			Key:         d.ThumbnailKey,
			URL:         d.ThumbnailURL,
			IsThumbnail: true,
			Position:    1,
		}}
	}
	return p
}
