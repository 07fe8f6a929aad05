package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/warp/leave-engine/leave"
)

// errMalformed marks request bodies and path values that could not be decoded.
var errMalformed = errors.New("malformed input")

// statusFor maps an engine error to its HTTP status.
func statusFor(err error) int {
	switch {
	case leave.IsNotFound(err):
		return http.StatusNotFound
	case leave.IsValidation(err), errors.Is(err, errMalformed):
		return http.StatusUnprocessableEntity
	case leave.IsClientError(err):
		return http.StatusBadRequest
	case leave.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status it maps to. Rule errors keep their message;
// anything unclassified is logged and reported with fallback.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, fallback string, err error) {
	status := statusFor(err)

	var rule *leave.RuleError
	switch {
	case errors.As(err, &rule):
		writeError(w, status, rule.Message, nil)
	case status == http.StatusInternalServerError:
		h.Logger.Error(fallback, zap.Error(err), zap.String("path", r.URL.Path))
		writeError(w, status, fallback, err)
	default:
		writeError(w, status, fallback, err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
