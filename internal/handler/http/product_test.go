package http

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dungpham-npc/storefront/internal/catalog"
	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/repository"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/pagination"
)

func sampleProduct() domain.Product {
	return domain.Product{
		ID:           productID,
		Name:         "Espresso Cup",
		Description:  "Porcelain",
		Price:        decimal.RequireFromString("19.9"),
		IsActive:     true,
		CategoryID:   categoryID,
		CategoryName: "Kitchen",
		Images: []domain.ProductImage{
			{ID: imageID, URL: "https://cdn.example.com/a.png", IsThumbnail: true},
		},
		AverageRating: 4.5,
		RatingCount:   2,
	}
}

func TestListProducts_ForcesActiveAndParsesFilters(t *testing.T) {
	env := newTestEnv(t)
	page := pagination.NewPage([]domain.Product{sampleProduct()}, 1, pagination.Params{Page: 2, Size: 5})
	env.products.On("List", mock.Anything,
		mock.MatchedBy(func(f catalog.Filter) bool {
			return f.Active != nil && *f.Active &&
				f.Name != nil && *f.Name == "cup" &&
				f.MinPrice != nil && f.MinPrice.Equal(decimal.RequireFromString("10")) &&
				f.MaxPrice != nil && f.MaxPrice.Equal(decimal.RequireFromString("25.50")) &&
				f.CategoryID != nil && *f.CategoryID == categoryID &&
				f.Featured != nil && !*f.Featured
		}),
		&pagination.Sort{Field: "price", Direction: pagination.Desc},
		mock.MatchedBy(func(p pagination.Params) bool { return p.Page == 2 && p.Size == 5 && p.Offset == 5 }),
	).Return(page, nil)

	rec := env.do(http.MethodGet,
		"/api/v1/products?productName=cup&minPrice=10&maxPrice=25.50&categoryId="+categoryID+"&featured=false&page=2&size=5&sort=price,desc",
		"", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data pagination.Page[productSummaryResponse]
	decodeData(t, rec, &data)
	require.Len(t, data.Content, 1)
	assert.Equal(t, "19.90", data.Content[0].Price)
	require.NotNil(t, data.Content[0].Thumbnail)
	assert.Equal(t, "https://cdn.example.com/a.png", *data.Content[0].Thumbnail)
	assert.Equal(t, 2, data.Page)
}

func TestListProducts_ActiveQueryIsIgnoredOnPublicListing(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("List", mock.Anything,
		mock.MatchedBy(func(f catalog.Filter) bool { return f.Active != nil && *f.Active }),
		(*pagination.Sort)(nil), mock.Anything,
	).Return(pagination.NewPage([]domain.Product{}, 0, pagination.DefaultParams()), nil)

	rec := env.do(http.MethodGet, "/api/v1/products?active=false", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListProducts_BadQueryValues(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		message string
	}{
		{"min price", "minPrice=cheap", "Invalid argument: minPrice - must be a number"},
		{"max price", "maxPrice=ten", "Invalid argument: maxPrice - must be a number"},
		{"featured", "featured=maybe", "Invalid argument: featured - must be true or false"},
		{"inverted range", "minPrice=30&maxPrice=10", "Invalid argument: minPrice - must not exceed maxPrice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(http.MethodGet, "/api/v1/products?"+tt.query, "", nil)
			assertError(t, rec, http.StatusBadRequest, tt.message)
		})
	}
}

func TestListProducts_UnsupportedSortField(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("List", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(pagination.Page[domain.Product]{}, apperrors.InvalidArgument("sort", `unsupported field "password"`))

	rec := env.do(http.MethodGet, "/api/v1/products?sort=password,asc", "", nil)

	assertError(t, rec, http.StatusBadRequest, `Invalid argument: sort - unsupported field "password"`)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	p := sampleProduct()
	env.products.On("Get", mock.Anything, productID).Return(&p, nil)

	rec := env.do(http.MethodGet, "/api/v1/products/"+productID, "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var data productResponse
	decodeData(t, rec, &data)
	assert.Equal(t, "Espresso Cup", data.Name)
	assert.Equal(t, 4.5, data.AverageRating)
	require.Len(t, data.Images, 1)
	assert.True(t, data.Images[0].IsThumbnail)
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Get", mock.Anything, productID).Return(nil, apperrors.NotFound("Product"))

	rec := env.do(http.MethodGet, "/api/v1/products/"+productID, "", nil)

	assertError(t, rec, http.StatusNotFound, "Product not found")
}

func TestSearchProducts(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Search", mock.Anything, "espresso", mock.Anything).
		Return(pagination.NewPage([]domain.Product{sampleProduct()}, 1, pagination.DefaultParams()), nil)

	rec := env.do(http.MethodGet, "/api/v1/products/search?q=+espresso+", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var data pagination.Page[productSummaryResponse]
	decodeData(t, rec, &data)
	assert.Equal(t, 1, data.TotalElements)
}

func TestRateProduct(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Rate", mock.Anything, customerID, productID, 4).
		Return(repository.RatingSummary{Average: 4.25, Count: 4}, nil)

	rec := env.do(http.MethodPost, "/api/v1/products/"+productID+"/ratings", customerToken, map[string]int{"rating": 4})

	require.Equal(t, http.StatusOK, rec.Code)
	var data ratingResponse
	decodeData(t, rec, &data)
	assert.Equal(t, ratingResponse{ProductID: productID, Rating: 4, AverageRating: 4.25, RatingCount: 4}, data)
}

func TestRateProduct_OutOfRange(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/products/"+productID+"/ratings", customerToken, map[string]int{"rating": 6})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)
	env.categories.On("ListActive", mock.Anything).Return([]domain.Category{
		{ID: categoryID, Name: "Kitchen", IsActive: true},
	}, nil)
	env.categories.On("GetActive", mock.Anything, categoryID).Return(nil, apperrors.NotFound("Category"))

	rec := env.do(http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []categoryResponse
	decodeData(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Kitchen", list[0].Name)

	rec = env.do(http.MethodGet, "/api/v1/categories/"+categoryID, "", nil)
	assertError(t, rec, http.StatusNotFound, "Category not found")
}
