package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
)

// downstreamEnvelope is the {code, message, data} body the storefront and
// compatible hosts answer with.
type downstreamEnvelope struct {
	Code    *string `json:"code"`
	Message *string `json:"message"`
}

var kindByStatus = map[int]apperrors.Kind{
	http.StatusBadRequest:          apperrors.KindBadRequest,
	http.StatusUnauthorized:        apperrors.KindUnauthorized,
	http.StatusForbidden:           apperrors.KindForbidden,
	http.StatusNotFound:            apperrors.KindNotFound,
	http.StatusConflict:            apperrors.KindConflict,
	http.StatusUnprocessableEntity: apperrors.KindValidation,
	http.StatusTooManyRequests:     apperrors.KindRateLimitExceeded,
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// turns it into an error. 4xx answers become AppErrors of the matching kind
// with the downstream message prefixed by service; anything else is a plain
// error, which the HTTP boundary reports as InternalError.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", service, resp.StatusCode, err)
	}

	message := string(body)
	var env downstreamEnvelope
	if json.Unmarshal(body, &env) == nil && env.Message != nil {
		message = *env.Message
	}

	if !IsClientError(resp.StatusCode) {
		return fmt.Errorf("%s returned status %d: %s", service, resp.StatusCode, message)
	}

	kind, ok := kindByStatus[resp.StatusCode]
	if !ok {
		kind = apperrors.KindBadRequest
	}
	return &apperrors.AppError{
		Kind:    kind,
		Code:    kind.Code(),
		Message: fmt.Sprintf("%s: %s", service, message),
		Status:  kind.Status(),
	}
}

// IsClientError reports whether status is 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
