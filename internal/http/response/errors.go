package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/levelup-backend/internal/domain/aggregates"
	"github.com/yungbote/levelup-backend/internal/platform/apierr"
)

// StatusFor maps a service or aggregate error onto an HTTP status and error code.
func StatusFor(err error) (int, string) {
	if ae, ok := apierr.As(err); ok {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, ae.Code
	}
	resource := domainagg.ResourceOf(err)
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return http.StatusBadRequest, codeFor("invalid_", resource, "", "invalid_request")
	case domainagg.CodeNotFound:
		return http.StatusNotFound, codeFor("", resource, "_not_found", "not_found")
	case domainagg.CodeConflict:
		return http.StatusConflict, "conflict"
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable, "retry_later"
	}
	return http.StatusInternalServerError, "internal_error"
}

func codeFor(prefix, resource, suffix, fallback string) string {
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return fallback
	}
	return prefix + resource + suffix
}

// retryAfterSeconds is advertised on 503s; submission lock contention clears well within it.
const retryAfterSeconds = "1"

// RespondErr writes the error envelope for err and attaches err to the gin context for the access
// log. Internal failures hide the underlying message.
func RespondErr(c *gin.Context, err error) {
	_ = c.Error(err)
	status, code := StatusFor(err)
	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", retryAfterSeconds)
	}
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		RespondError(c, status, code, errors.New("internal server error"))
		return
	}
	RespondError(c, status, code, err)
}
