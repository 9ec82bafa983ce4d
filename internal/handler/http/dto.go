package http

import (
	"time"

	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/repository"
	"github.com/dungpham-npc/storefront/internal/service"
)

// --- Response DTOs ---

type authResponse struct {
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type roleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type recipientResponse struct {
	ID          string `json:"id"`
	Name        string `json:"recipientName"`
	Phone       string `json:"phone"`
	AddressLine string `json:"addressLine"`
	City        string `json:"city"`
	Country     string `json:"country"`
	IsDefault   bool   `json:"isDefault"`
}

type categoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

type imageResponse struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	IsThumbnail bool   `json:"isThumbnail"`
	Position    int    `json:"position"`
}

// productSummaryResponse is a product in a listing.
type productSummaryResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        string  `json:"price"`
	IsActive     bool    `json:"isActive"`
	IsFeatured   bool    `json:"isFeatured"`
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Thumbnail    *string `json:"thumbnail"`
}

// productResponse is a product detail.
type productResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         string          `json:"price"`
	IsActive      bool            `json:"isActive"`
	IsFeatured    bool            `json:"isFeatured"`
	CategoryID    string          `json:"categoryId"`
	CategoryName  string          `json:"categoryName"`
	Images        []imageResponse `json:"images"`
	AverageRating float64         `json:"averageRating"`
	RatingCount   int             `json:"ratingCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type ratingResponse struct {
	ProductID     string  `json:"productId"`
	Rating        int     `json:"rating"`
	AverageRating float64 `json:"averageRating"`
	RatingCount   int     `json:"ratingCount"`
}

type cartItemResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

type cartResponse struct {
	ID         string             `json:"id"`
	Items      []cartItemResponse `json:"items"`
	ItemCount  int                `json:"itemCount"`
	TotalPrice string             `json:"totalPrice"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// --- Mappers ---

func toAuthResponse(r *service.AuthResult) authResponse {
	return authResponse{Email: r.Email, AccessToken: r.AccessToken, Role: r.Role}
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toRoleResponses(roles []domain.Role) []roleResponse {
	out := make([]roleResponse, len(roles))
	for i, r := range roles {
		out[i] = roleResponse{ID: r.ID, Name: r.Name}
	}
	return out
}

func toRecipientResponse(r domain.Recipient) recipientResponse {
	return recipientResponse{
		ID:          r.ID,
		Name:        r.Name,
		Phone:       r.Phone,
		AddressLine: r.AddressLine,
		City:        r.City,
		Country:     r.Country,
		IsDefault:   r.IsDefault,
	}
}

func toRecipientResponses(rs []domain.Recipient) []recipientResponse {
	out := make([]recipientResponse, len(rs))
	for i, r := range rs {
		out[i] = toRecipientResponse(r)
	}
	return out
}

func toCategoryResponse(c domain.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, IsActive: c.IsActive}
}

func toCategoryResponses(cs []domain.Category) []categoryResponse {
	out := make([]categoryResponse, len(cs))
	for i, c := range cs {
		out[i] = toCategoryResponse(c)
	}
	return out
}

func toImageResponse(img domain.ProductImage) imageResponse {
	return imageResponse{ID: img.ID, URL: img.URL, IsThumbnail: img.IsThumbnail, Position: img.Position}
}

func toProductSummaryResponse(p domain.Product) productSummaryResponse {
	resp := productSummaryResponse{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price.StringFixed(2),
		IsActive:     p.IsActive,
		IsFeatured:   p.IsFeatured,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
	}
	if thumb := p.Thumbnail(); thumb != nil {
		url := thumb.URL
		resp.Thumbnail = &url
	}
	return resp
}

func toProductSummaryResponses(ps []domain.Product) []productSummaryResponse {
	out := make([]productSummaryResponse, len(ps))
	for i, p := range ps {
		out[i] = toProductSummaryResponse(p)
	}
	return out
}

func toProductResponse(p domain.Product) productResponse {
	images := make([]imageResponse, len(p.Images))
	for i, img := range p.Images {
		images[i] = toImageResponse(img)
	}
	return productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.StringFixed(2),
		IsActive:      p.IsActive,
		IsFeatured:    p.IsFeatured,
		CategoryID:    p.CategoryID,
		CategoryName:  p.CategoryName,
		Images:        images,
		AverageRating: p.AverageRating,
		RatingCount:   p.RatingCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toRatingResponse(productID string, rating int, s repository.RatingSummary) ratingResponse {
	return ratingResponse{
		ProductID:     productID,
		Rating:        rating,
		AverageRating: s.Average,
		RatingCount:   s.Count,
	}
}

func toCartResponse(c *domain.Cart) cartResponse {
	items := make([]cartItemResponse, len(c.Items))
	for i, item := range c.Items {
		items[i] = cartItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price.StringFixed(2),
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal().StringFixed(2),
		}
	}
	return cartResponse{
		ID:         c.ID,
		Items:      items,
		ItemCount:  c.ItemCount(),
		TotalPrice: c.TotalPrice.StringFixed(2),
		UpdatedAt:  c.UpdatedAt,
	}
}
