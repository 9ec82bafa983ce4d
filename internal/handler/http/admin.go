package http

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dungpham-npc/storefront/internal/export"
	"github.com/dungpham-npc/storefront/internal/repository"
	"github.com/dungpham-npc/storefront/internal/service"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/httputil"
	"github.com/dungpham-npc/storefront/pkg/pagination"
	"github.com/dungpham-npc/storefront/pkg/validator"
)

// maxImageSize bounds a single image upload.
const maxImageSize = 10 << 20

// AdminHandler handles the /admin endpoints. Routes are mounted behind the
// admin role check.
type AdminHandler struct {
	users      UserService
	products   ProductService
	categories CategoryService
	logger     *slog.Logger
	now        func() time.Time
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(users UserService, products ProductService, categories CategoryService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:      users,
		products:   products,
		categories: categories,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// --- Request DTOs ---

// CreateUserRequest is the JSON request body for an admin-created account.
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Role      string `json:"role" validate:"required,oneof=CUSTOMER ADMIN"`
}

// UpdateUserRequest is the JSON request body for changing an account.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Role      *string `json:"role" validate:"omitempty,oneof=CUSTOMER ADMIN"`
	IsActive  *bool   `json:"isActive"`
}

// CreateProductRequest is the JSON request body for creating a product.
// Price accepts a JSON number or a decimal string.
type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required,min=1,max=255"`
	Description string           `json:"description" validate:"max=5000"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	CategoryID  string           `json:"categoryId" validate:"required,uuid"`
	IsActive    *bool            `json:"isActive"`
	IsFeatured  bool             `json:"isFeatured"`
}

// UpdateProductRequest is the JSON request body for updating a product.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *string          `json:"categoryId" validate:"omitempty,uuid"`
	IsActive    *bool            `json:"isActive"`
	IsFeatured  *bool            `json:"isFeatured"`
}

// CategoryRequest is the JSON request body for creating or updating a
// category.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=1000"`
	IsActive    *bool  `json:"isActive"`
}

func (req CategoryRequest) input() service.CategoryInput {
	return service.CategoryInput{Name: req.Name, Description: req.Description, IsActive: req.IsActive}
}

// --- Users ---

// ListUsers handles GET /api/v1/admin/users?page=&size=&email=
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.UserFilter{Email: queryString(r, "email")}

	page, err := h.users.ListUsers(r.Context(), filter, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, pagination.Map(page, toUserResponse))
}

// CreateUser handles POST /api/v1/admin/users
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var req CreateUserRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.users.CreateUser(r.Context(), service.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusCreated, toUserResponse(*user))
}

// GetUser handles GET /api/v1/admin/users/{id}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toUserResponse(*user))
}

// UpdateUser handles PUT /api/v1/admin/users/{id}
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actorID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	limitBody(w, r)
	var req UpdateUserRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.users.UpdateUser(r.Context(), actorID, id, service.AdminUpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
		IsActive:  req.IsActive,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toUserResponse(*user))
}

// DeactivateUser handles DELETE /api/v1/admin/users/{id}. Accounts are
// deactivated, never removed.
func (h *AdminHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	actorID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.users.DeactivateUser(r.Context(), actorID, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, nil)
}

// ListRoles handles GET /api/v1/admin/roles
func (h *AdminHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.users.ListRoles(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toRoleResponses(roles))
}

// --- Products ---

// ListProducts handles GET /api/v1/admin/products. Unlike the public
// listing, inactive products are included unless ?active= says otherwise.
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilter(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if filter.Active, err = queryBool(r, "active"); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	params := pagination.FromRequest(r)
	page, err := h.products.List(r.Context(), filter, params.Sort, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, pagination.Map(page, toProductSummaryResponse))
}

// CreateProduct handles POST /api/v1/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var req CreateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.products.Create(r.Context(), service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
		IsFeatured:  req.IsFeatured,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusCreated, toProductResponse(*product))
}

// UpdateProduct handles PUT /api/v1/admin/products/{id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	limitBody(w, r)
	var req UpdateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.products.Update(r.Context(), id, service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
		IsFeatured:  req.IsFeatured,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toProductResponse(*product))
}

// DeleteProduct handles DELETE /api/v1/admin/products/{id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, nil)
}

// UploadImage handles POST /api/v1/admin/products/{id}/images as a
// multipart form with a "file" part.
func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+maxJSONBody)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidArgument("file", "must be a multipart upload of at most 10 MB"), h.logger)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidArgument("file", "is required"), h.logger)
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		httputil.WriteError(w, r, apperrors.InvalidArgument("file", "must be at most 10 MB"), h.logger)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		sniff := make([]byte, 512)
		n, _ := file.Read(sniff)
		contentType = http.DetectContentType(sniff[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
			return
		}
	}
	if !strings.HasPrefix(contentType, "image/") {
		httputil.WriteError(w, r, apperrors.InvalidArgument("file", "must be an image"), h.logger)
		return
	}

	image, err := h.products.AddImage(r.Context(), id, service.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusCreated, toImageResponse(*image))
}

// DeleteImage handles DELETE /api/v1/admin/products/{id}/images/{imageId}
func (h *AdminHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	imageID, ok := httputil.ParseUUID(w, "imageId", chi.URLParam(r, "imageId"))
	if !ok {
		return
	}

	if err := h.products.DeleteImage(r.Context(), id, imageID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, nil)
}

// SetThumbnail handles PUT /api/v1/admin/products/{id}/images/{imageId}/thumbnail
func (h *AdminHandler) SetThumbnail(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	imageID, ok := httputil.ParseUUID(w, "imageId", chi.URLParam(r, "imageId"))
	if !ok {
		return
	}

	if err := h.products.SetThumbnail(r.Context(), id, imageID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, nil)
}

// ExportProducts handles GET /api/v1/admin/products/export. The workbook is
// built in memory so that a failure can still be reported as JSON.
func (h *AdminHandler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilter(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if filter.Active, err = queryBool(r, "active"); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var buf bytes.Buffer
	if err := h.products.Export(r.Context(), filter, &buf); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write product export", slog.String("error", err.Error()))
	}
}

// ReindexProducts handles POST /api/v1/admin/products/reindex
func (h *AdminHandler) ReindexProducts(w http.ResponseWriter, r *http.Request) {
	n, err := h.products.Reindex(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, map[string]int{"indexed": n})
}

// --- Categories ---

// ListCategories handles GET /api/v1/admin/categories, including inactive
// ones.
func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListAll(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toCategoryResponses(categories))
}

// CreateCategory handles POST /api/v1/admin/categories
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var req CategoryRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	category, err := h.categories.Create(r.Context(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusCreated, toCategoryResponse(*category))
}

// UpdateCategory handles PUT /api/v1/admin/categories/{id}
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	limitBody(w, r)
	var req CategoryRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	category, err := h.categories.Update(r.Context(), id, req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toCategoryResponse(*category))
}

// DeleteCategory handles DELETE /api/v1/admin/categories/{id}. Categories
// that still have products are refused.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, nil)
}
