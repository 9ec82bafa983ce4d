package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is one of the closed set of application error kinds.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindBadRequest
	KindUnauthorized
	KindValidation
	KindConflict
	KindForbidden
	KindInvalidToken
	KindRateLimitExceeded
	KindInternal
	KindInvalidArgument
)

// Sentinel errors, one per kind. AppError values match their kind's sentinel
// with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidToken      = errors.New("invalid token")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrInternal          = errors.New("internal error")
	ErrInvalidArgument   = errors.New("invalid argument")
)

type kindDef struct {
	name     string
	code     string
	template string
	status   int
	sentinel error
}

var kinds = map[Kind]kindDef{
	KindNotFound:          {"NotFound", "404", "%s not found", http.StatusNotFound, ErrNotFound},
	KindBadRequest:        {"BadRequest", "400", "%s is invalid", http.StatusBadRequest, ErrBadRequest},
	KindUnauthorized:      {"Unauthorized", "401", "Unauthorized access to %s", http.StatusUnauthorized, ErrUnauthorized},
	KindValidation:        {"ValidationError", "422", "Validation error: %s", http.StatusUnprocessableEntity, ErrValidation},
	KindConflict:          {"Conflict", "409", "%s already exists", http.StatusConflict, ErrConflict},
	KindForbidden:         {"Forbidden", "403", "Access to %s is forbidden", http.StatusForbidden, ErrForbidden},
	KindInvalidToken:      {"InvalidToken", "401", "Token is invalid or expired", http.StatusUnauthorized, ErrInvalidToken},
	KindRateLimitExceeded: {"RateLimitExceeded", "429", "Rate limit exceeded for %s", http.StatusTooManyRequests, ErrRateLimitExceeded},
	KindInternal:          {"InternalError", "500", "An unexpected error occurred: %s", http.StatusInternalServerError, ErrInternal},
	KindInvalidArgument:   {"InvalidArgument", "400", "Invalid argument: %s - %s", http.StatusBadRequest, ErrInvalidArgument},
}

func (k Kind) def() kindDef {
	if s, ok := kinds[k]; ok {
		return s
	}
	return kinds[KindInternal]
}

func (k Kind) String() string { return k.def().name }

// Code returns the stable machine-readable code of the kind.
func (k Kind) Code() string { return k.def().code }

// Status returns the HTTP status the kind maps to.
func (k Kind) Status() int { return k.def().status }

// Template returns the raw message template.
func (k Kind) Template() string { return k.def().template }

// Format renders the kind's template with the given arguments. It never
// panics: when the number of arguments does not match the template's
// placeholders it returns the first argument, or the raw template when no
// arguments were given.
func (k Kind) Format(args ...any) string {
	tmpl := k.Template()
	placeholders := strings.Count(tmpl, "%s")

	if len(args) == placeholders {
		if placeholders == 0 {
			return tmpl
		}
		return fmt.Sprintf(tmpl, args...)
	}
	if len(args) > 0 {
		return fmt.Sprint(args[0])
	}
	return tmpl
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Kind    Kind         `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"-"`
	Fields  []FieldError `json:"fields,omitempty"`
	Err     error        `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the error's kind.
func (e *AppError) Is(target error) bool {
	return target == e.Kind.def().sentinel
}

// WithCause returns a copy of the error carrying err as its cause.
func (e *AppError) WithCause(err error) *AppError {
	cpy := *e
	cpy.Err = err
	return &cpy
}

// New builds an AppError of the given kind, formatting its message from args.
func New(kind Kind, args ...any) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    kind.Code(),
		Message: kind.Format(args...),
		Status:  kind.Status(),
	}
}

// NotFound creates a 404 error, e.g. "User not found".
func NotFound(subject string) *AppError {
	return New(KindNotFound, subject)
}

// BadRequest creates a 400 error.
func BadRequest(subject string) *AppError {
	return New(KindBadRequest, subject)
}

// Unauthorized creates a 401 error.
func Unauthorized(subject string) *AppError {
	return New(KindUnauthorized, subject)
}

// Validation creates a 422 error carrying the per-field failures.
func Validation(detail string, fields ...FieldError) *AppError {
	e := New(KindValidation, detail)
	e.Fields = fields
	return e
}

// Conflict creates a 409 error.
func Conflict(subject string) *AppError {
	return New(KindConflict, subject)
}

// Forbidden creates a 403 error.
func Forbidden(subject string) *AppError {
	return New(KindForbidden, subject)
}

// InvalidToken creates a 401 error for a missing, malformed, expired or revoked token.
func InvalidToken() *AppError {
	return New(KindInvalidToken)
}

// RateLimitExceeded creates a 429 error.
func RateLimitExceeded(subject string) *AppError {
	return New(KindRateLimitExceeded, subject)
}

// Internal creates a 500 error exposing the underlying message.
func Internal(err error) *AppError {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	e := New(KindInternal, detail)
	e.Err = err
	return e
}

// InvalidArgument creates a 400 error, e.g. "Invalid argument: Password - mismatch".
func InvalidArgument(name, reason string) *AppError {
	return New(KindInvalidArgument, name, reason)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// KindOf returns the kind of err, or KindInternal for errors that are not AppErrors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	for k, s := range kinds {
		if errors.Is(err, s.sentinel) {
			return k
		}
	}
	return KindInternal
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return KindOf(err).Status()
}

// From converts any error into an AppError. Unclassified errors become
// InternalError with the underlying message.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if k := KindOf(err); k != KindInternal {
		e := New(k, err.Error())
		e.Err = err
		return e
	}
	return Internal(err)
}
