package errors

import (
	"encoding/json"
	"net/http"

	"github.com/idryos/idryos-auth/internal/observability/logger"
)

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// WriteError escribe {error, status}. Los 5xx se loguean con la causa.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := FromError(err)

	if appErr.HTTPStatus >= http.StatusInternalServerError && r != nil {
		logger.From(r.Context()).Error("request failed",
			logger.String("kind", string(appErr.Kind)),
			logger.Err(appErr.Err),
		)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: appErr.Message, Status: appErr.HTTPStatus})
}
