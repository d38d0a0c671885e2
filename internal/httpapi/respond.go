package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/mindsoothe/backend/internal/errors"
	"github.com/mindsoothe/backend/pkg/logger"
)

// decodeJSON reads the request body into v. Unknown fields are tolerated;
// field whitelisting happens through the target type's shape.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.InvalidInput("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.InvalidInput("invalid JSON body")
	}
	return nil
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto the `{"error": ...}` envelope. Anything
// that is not a ServiceError becomes an opaque 500.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	if svcErr := errors.GetServiceError(err); svcErr != nil {
		if svcErr.HTTPStatus >= http.StatusInternalServerError && log != nil {
			log.WithError(err).Error("request failed")
		}
		writeJSON(w, svcErr.HTTPStatus, map[string]string{"error": svcErr.Message})
		return
	}
	if log != nil {
		log.WithError(err).Error("unhandled error")
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
