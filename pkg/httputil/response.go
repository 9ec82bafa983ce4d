package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/logger"
)

// Response is the envelope wrapped around every payload. Status is internal
// and never serialized; Code and Message are null on success.
type Response struct {
	Status  bool    `json:"-"`
	Code    *string `json:"code"`
	Message *string `json:"message"`
	Data    any     `json:"data"`
}

// Success wraps data in a successful envelope.
func Success(data any) Response {
	return Response{Status: true, Data: data}
}

// Failure wraps an AppError. Field-level validation failures become the data.
func Failure(appErr *apperrors.AppError) Response {
	code, message := appErr.Code, appErr.Message
	resp := Response{Code: &code, Message: &message}
	if len(appErr.Fields) > 0 {
		resp.Data = appErr.Fields
	}
	return resp
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOK writes data inside a success envelope.
func WriteOK(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Success(data))
}

// WriteError translates err into its HTTP status and an error envelope. It is
// the single place where error kinds become status codes. Unclassified errors
// are reported as InternalError with the underlying message.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	appErr := apperrors.From(err)

	if appErr.Status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context())
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, appErr.Status, Failure(appErr))
}

// ParseUUID validates a path parameter. On failure it writes an
// InvalidArgument response and returns false.
func ParseUUID(w http.ResponseWriter, name, value string) (string, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, Failure(apperrors.InvalidArgument(name, "must be a valid UUID")))
		return "", false
	}
	return id.String(), true
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
