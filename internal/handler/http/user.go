package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dungpham-npc/storefront/internal/service"
	"github.com/dungpham-npc/storefront/pkg/httputil"
	"github.com/dungpham-npc/storefront/pkg/validator"
)

// UserHandler handles the caller's profile and recipient addresses.
type UserHandler struct {
	users      UserService
	recipients RecipientService
	logger     *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(users UserService, recipients RecipientService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, recipients: recipients, logger: logger}
}

// --- Request DTOs ---

// UpdateProfileRequest is the JSON request body for updating the profile.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
}

// RecipientRequest is the JSON request body for adding or replacing a
// recipient address.
type RecipientRequest struct {
	Name        string `json:"recipientName" validate:"required,min=1,max=200"`
	Phone       string `json:"phone" validate:"required,max=20"`
	AddressLine string `json:"addressLine" validate:"required,min=1,max=500"`
	City        string `json:"city" validate:"required,min=1,max=100"`
	Country     string `json:"country" validate:"required,min=1,max=100"`
	IsDefault   bool   `json:"isDefault"`
}

func (req RecipientRequest) input() service.RecipientInput {
	return service.RecipientInput{
		Name:        req.Name,
		Phone:       req.Phone,
		AddressLine: req.AddressLine,
		City:        req.City,
		Country:     req.Country,
		IsDefault:   req.IsDefault,
	}
}

// --- Profile ---

// GetProfile handles GET /api/v1/users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toUserResponse(*user))
}

// UpdateProfile handles PUT /api/v1/users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	limitBody(w, r)
	var req UpdateProfileRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toUserResponse(*user))
}

// --- Recipients ---

// ListRecipients handles GET /api/v1/users/me/recipients
func (h *UserHandler) ListRecipients(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	recipients, err := h.recipients.List(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toRecipientResponses(recipients))
}

// AddRecipient handles POST /api/v1/users/me/recipients
func (h *UserHandler) AddRecipient(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	limitBody(w, r)
	var req RecipientRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	recipient, err := h.recipients.Add(r.Context(), userID, req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusCreated, toRecipientResponse(*recipient))
}

// UpdateRecipient handles PUT /api/v1/users/me/recipients/{id}
func (h *UserHandler) UpdateRecipient(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	limitBody(w, r)
	var req RecipientRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	recipient, err := h.recipients.Update(r.Context(), userID, id, req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toRecipientResponse(*recipient))
}

// DeleteRecipient handles DELETE /api/v1/users/me/recipients/{id}
func (h *UserHandler) DeleteRecipient(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.recipients.Delete(r.Context(), userID, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, nil)
}

// SetDefaultRecipient handles PUT /api/v1/users/me/recipients/{id}/default
func (h *UserHandler) SetDefaultRecipient(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.recipients.SetDefault(r.Context(), userID, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, nil)
}
