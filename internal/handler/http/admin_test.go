package http

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dungpham-npc/storefront/internal/catalog"
	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/export"
	"github.com/dungpham-npc/storefront/internal/repository"
	"github.com/dungpham-npc/storefront/internal/service"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/pagination"
)

// ============================================================================
// Users
// ============================================================================

func TestAdminListUsers(t *testing.T) {
	env := newTestEnv(t)
	users := []domain.User{{ID: customerID, Email: "jane@example.com", Role: domain.RoleCustomer, IsActive: true}}
	env.users.On("ListUsers", mock.Anything,
		mock.MatchedBy(func(f repository.UserFilter) bool { return f.Email != nil && *f.Email == "jane" }),
		mock.MatchedBy(func(p pagination.Params) bool { return p.Page == 1 && p.Size == 10 }),
	).Return(pagination.NewPage(users, 1, pagination.Params{Page: 1, Size: 10}), nil)

	rec := env.do(http.MethodGet, "/api/v1/admin/users?email=jane&size=10", adminToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var data pagination.Page[userResponse]
	decodeData(t, rec, &data)
	require.Len(t, data.Content, 1)
	assert.Equal(t, "jane@example.com", data.Content[0].Email)
}

func TestAdminCreateUser(t *testing.T) {
	env := newTestEnv(t)
	env.users.On("CreateUser", mock.Anything, service.CreateUserInput{
		Email: "ops@example.com", Password: "long-enough", Role: domain.RoleAdmin,
	}).Return(&domain.User{ID: adminID, Email: "ops@example.com", Role: domain.RoleAdmin, IsActive: true}, nil)

	rec := env.do(http.MethodPost, "/api/v1/admin/users", adminToken, map[string]string{
		"email":    "ops@example.com",
		"password": "long-enough",
		"role":     "ADMIN",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAdminCreateUser_UnknownRole(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/admin/users", adminToken, map[string]string{
		"email":    "ops@example.com",
		"password": "long-enough",
		"role":     "ROOT",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var fields []apperrors.FieldError
	decodeData(t, rec, &fields)
	require.Len(t, fields, 1)
	assert.Equal(t, "role", fields[0].Field)
}

func TestAdminUpdateUser_PassesActor(t *testing.T) {
	env := newTestEnv(t)
	env.users.On("UpdateUser", mock.Anything, adminID, customerID, mock.MatchedBy(func(in service.AdminUpdateUserInput) bool {
		return in.IsActive != nil && !*in.IsActive && in.Role == nil
	})).Return(&domain.User{ID: customerID, IsActive: false}, nil)

	rec := env.do(http.MethodPut, "/api/v1/admin/users/"+customerID, adminToken, map[string]bool{"isActive": false})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminDeactivateUser_Self(t *testing.T) {
	env := newTestEnv(t)
	env.users.On("DeactivateUser", mock.Anything, adminID, adminID).
		Return(apperrors.InvalidArgument("id", "cannot deactivate yourself"))

	rec := env.do(http.MethodDelete, "/api/v1/admin/users/"+adminID, adminToken, nil)

	assertError(t, rec, http.StatusBadRequest, "Invalid argument: id - cannot deactivate yourself")
}

func TestAdminListRoles(t *testing.T) {
	env := newTestEnv(t)
	env.users.On("ListRoles", mock.Anything).Return([]domain.Role{{ID: "r1", Name: domain.RoleAdmin}, {ID: "r2", Name: domain.RoleCustomer}}, nil)

	rec := env.do(http.MethodGet, "/api/v1/admin/roles", adminToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var roles []roleResponse
	decodeData(t, rec, &roles)
	assert.Len(t, roles, 2)
}

// ============================================================================
// Products
// ============================================================================

func TestAdminListProducts_ActiveFilterIsOptional(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("List", mock.Anything,
		mock.MatchedBy(func(f catalog.Filter) bool { return f.Active == nil }),
		mock.Anything, mock.Anything,
	).Return(pagination.NewPage([]domain.Product{}, 0, pagination.DefaultParams()), nil).Once()
	env.products.On("List", mock.Anything,
		mock.MatchedBy(func(f catalog.Filter) bool { return f.Active != nil && !*f.Active }),
		mock.Anything, mock.Anything,
	).Return(pagination.NewPage([]domain.Product{}, 0, pagination.DefaultParams()), nil).Once()

	rec := env.do(http.MethodGet, "/api/v1/admin/products", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/admin/products?active=false", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateProductInput) bool {
		return in.Name == "Espresso Cup" && in.Price.Equal(decimal.RequireFromString("19.99")) &&
			in.CategoryID == categoryID && in.IsActive == nil && in.IsFeatured
	})).Return(&domain.Product{ID: productID, Name: "Espresso Cup", Price: decimal.RequireFromString("19.99"), IsActive: true}, nil)

	rec := env.do(http.MethodPost, "/api/v1/admin/products", adminToken,
		`{"name":"Espresso Cup","price":"19.99","categoryId":"`+categoryID+`","isFeatured":true}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var data productResponse
	decodeData(t, rec, &data)
	assert.Equal(t, "19.99", data.Price)
}

func TestAdminCreateProduct_MissingPrice(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/admin/products", adminToken,
		`{"name":"Espresso Cup","categoryId":"`+categoryID+`"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminCreateProduct_NegativePrice(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperrors.InvalidArgument("price", "must not be negative"))

	rec := env.do(http.MethodPost, "/api/v1/admin/products", adminToken,
		`{"name":"Espresso Cup","price":-1,"categoryId":"`+categoryID+`"}`)

	assertError(t, rec, http.StatusBadRequest, "Invalid argument: price - must not be negative")
}

func TestAdminUpdateAndDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Update", mock.Anything, productID, mock.MatchedBy(func(in service.UpdateProductInput) bool {
		return in.Price != nil && in.Price.Equal(decimal.RequireFromString("5")) && in.Name == nil
	})).Return(&domain.Product{ID: productID, Price: decimal.RequireFromString("5")}, nil)
	env.products.On("Delete", mock.Anything, productID).Return(nil)

	rec := env.do(http.MethodPut, "/api/v1/admin/products/"+productID, adminToken, `{"price":5}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodDelete, "/api/v1/admin/products/"+productID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func multipartImage(t *testing.T, filename, contentType string, body []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAdminUploadImage(t *testing.T) {
	env := newTestEnv(t)
	var (
		upload service.ImageUpload
		data   []byte
	)
	env.products.On("AddImage", mock.Anything, productID, mock.Anything).Run(func(args mock.Arguments) {
		upload = args.Get(2).(service.ImageUpload)
		data, _ = io.ReadAll(upload.Body)
	}).Return(&domain.ProductImage{ID: imageID, ProductID: productID, URL: "https://cdn.example.com/front.png", IsThumbnail: true}, nil)

	body, ct := multipartImage(t, "front.png", "image/png", []byte("png!"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/"+productID+"/images", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "front.png", upload.Filename)
	assert.Equal(t, "image/png", upload.ContentType)
	assert.EqualValues(t, 4, upload.Size)
	assert.Equal(t, "png!", string(data))

	var resp imageResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, imageID, resp.ID)
	assert.True(t, resp.IsThumbnail)
}

func TestAdminUploadImage_RejectsNonImage(t *testing.T) {
	env := newTestEnv(t)

	body, ct := multipartImage(t, "notes.txt", "", []byte("plain text, not an image"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/"+productID+"/images", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assertError(t, rec, http.StatusBadRequest, "Invalid argument: file - must be an image")
}

func TestAdminUploadImage_MissingFile(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/"+productID+"/images", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminImageThumbnailAndDelete(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("SetThumbnail", mock.Anything, productID, imageID).Return(nil)
	env.products.On("DeleteImage", mock.Anything, productID, imageID).Return(apperrors.NotFound("Product image"))

	rec := env.do(http.MethodPut, "/api/v1/admin/products/"+productID+"/images/"+imageID+"/thumbnail", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodDelete, "/api/v1/admin/products/"+productID+"/images/"+imageID, adminToken, nil)
	assertError(t, rec, http.StatusNotFound, "Product image not found")
}

func TestAdminExportProducts(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Export", mock.Anything,
		mock.MatchedBy(func(f catalog.Filter) bool { return f.Active != nil && *f.Active }),
		mock.Anything,
	).Run(func(args mock.Arguments) {
		_, _ = args.Get(2).(io.Writer).Write([]byte("xlsx-bytes"))
	}).Return(nil)

	rec := env.do(http.MethodGet, "/api/v1/admin/products/export?active=true", adminToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=")
	assert.Equal(t, "xlsx-bytes", rec.Body.String())
}

func TestAdminExportProducts_FailureIsJSON(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Export", mock.Anything, mock.Anything, mock.Anything).Return(apperrors.Internal(assert.AnError))

	rec := env.do(http.MethodGet, "/api/v1/admin/products/export", adminToken, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestAdminReindexProducts(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Reindex", mock.Anything).Return(12, nil)

	rec := env.do(http.MethodPost, "/api/v1/admin/products/reindex", adminToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var data map[string]int
	decodeData(t, rec, &data)
	assert.Equal(t, 12, data["indexed"])
}

// ============================================================================
// Categories
// ============================================================================

func TestAdminCategories(t *testing.T) {
	env := newTestEnv(t)
	inactive := false
	env.categories.On("ListAll", mock.Anything).Return([]domain.Category{{ID: categoryID, Name: "Kitchen"}}, nil)
	env.categories.On("Create", mock.Anything, service.CategoryInput{Name: "Garden", IsActive: &inactive}).
		Return(&domain.Category{ID: categoryID, Name: "Garden"}, nil)
	env.categories.On("Update", mock.Anything, categoryID, service.CategoryInput{Name: "Garden", Description: "Outdoor"}).
		Return(&domain.Category{ID: categoryID, Name: "Garden", Description: "Outdoor"}, nil)

	rec := env.do(http.MethodGet, "/api/v1/admin/categories", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/admin/categories", adminToken, map[string]any{"name": "Garden", "isActive": false})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPut, "/api/v1/admin/categories/"+categoryID, adminToken, map[string]any{"name": "Garden", "description": "Outdoor"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminDeleteCategory_WithProducts(t *testing.T) {
	env := newTestEnv(t)
	env.categories.On("Delete", mock.Anything, categoryID).
		Return(apperrors.InvalidArgument("Category", "still has products"))

	rec := env.do(http.MethodDelete, "/api/v1/admin/categories/"+categoryID, adminToken, nil)

	assertError(t, rec, http.StatusBadRequest, "Invalid argument: Category - still has products")
}
