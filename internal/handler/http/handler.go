// Package http exposes the storefront services over a chi router. Handlers
// decode and validate requests, call a service and map the result into a
// response DTO; they hold no business rules.
package http

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dungpham-npc/storefront/internal/catalog"
	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/repository"
	"github.com/dungpham-npc/storefront/internal/service"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/middleware"
	"github.com/dungpham-npc/storefront/pkg/pagination"
)

// AuthService is the part of service.AuthService the handlers use.
type AuthService interface {
	Login(ctx context.Context, input service.LoginInput) (*service.AuthResult, error)
	Register(ctx context.Context, input service.RegisterInput) (*service.AuthResult, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, userID string, input service.ChangePasswordInput) error
}

// UserService is the part of service.UserService the handlers use.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input service.UpdateProfileInput) (*domain.User, error)
	ListUsers(ctx context.Context, filter repository.UserFilter, params pagination.Params) (pagination.Page[domain.User], error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
	CreateUser(ctx context.Context, input service.CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, actorID, id string, input service.AdminUpdateUserInput) (*domain.User, error)
	DeactivateUser(ctx context.Context, actorID, id string) error
}

// RecipientService is the part of service.RecipientService the handlers use.
type RecipientService interface {
	List(ctx context.Context, userID string) ([]domain.Recipient, error)
	Add(ctx context.Context, userID string, input service.RecipientInput) (*domain.Recipient, error)
	Update(ctx context.Context, userID, id string, input service.RecipientInput) (*domain.Recipient, error)
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
}

// CategoryService is the part of service.CategoryService the handlers use.
type CategoryService interface {
	ListActive(ctx context.Context) ([]domain.Category, error)
	ListAll(ctx context.Context) ([]domain.Category, error)
	GetActive(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, input service.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, id string, input service.CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

// ProductService is the part of service.ProductService the handlers use.
type ProductService interface {
	List(ctx context.Context, filter catalog.Filter, sort *pagination.Sort, params pagination.Params) (pagination.Page[domain.Product], error)
	Featured(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Search(ctx context.Context, query string, params pagination.Params) (pagination.Page[domain.Product], error)
	Rate(ctx context.Context, userID, productID string, rating int) (repository.RatingSummary, error)
	Create(ctx context.Context, input service.CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, input service.UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, productID string, upload service.ImageUpload) (*domain.ProductImage, error)
	DeleteImage(ctx context.Context, productID, imageID string) error
	SetThumbnail(ctx context.Context, productID, imageID string) error
	Export(ctx context.Context, filter catalog.Filter, w io.Writer) error
	Reindex(ctx context.Context) (int, error)
}

// CartService is the part of service.CartService the handlers use.
type CartService interface {
	GetOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddToCart(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) (*domain.Cart, error)
}

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// currentUser returns the authenticated caller's id. Routes behind the auth
// middleware always carry claims; a missing value means the route was wired
// without it.
func currentUser(r *http.Request) (string, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.UserID == "" {
		return "", apperrors.Unauthorized(r.URL.Path)
	}
	return claims.UserID, nil
}

func limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
}

func queryString(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}

func queryBool(r *http.Request, name string) (*bool, error) {
	v := queryString(r, name)
	if v == nil {
		return nil, nil
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		return nil, apperrors.InvalidArgument(name, "must be true or false")
	}
	return &b, nil
}

func queryDecimal(r *http.Request, name string) (*decimal.Decimal, error) {
	v := queryString(r, name)
	if v == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*v)
	if err != nil {
		return nil, apperrors.InvalidArgument(name, "must be a number")
	}
	return &d, nil
}

// productFilter reads the product listing criteria from the query string.
func productFilter(r *http.Request) (catalog.Filter, error) {
	var (
		f   catalog.Filter
		err error
	)
	f.Name = queryString(r, "productName")
	f.CategoryID = queryString(r, "categoryId")
	if f.MinPrice, err = queryDecimal(r, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryDecimal(r, "maxPrice"); err != nil {
		return f, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return f, apperrors.InvalidArgument("minPrice", "must not exceed maxPrice")
	}
	if f.Featured, err = queryBool(r, "featured"); err != nil {
		return f, err
	}
	return f, nil
}
