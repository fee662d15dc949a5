package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rchavali/ClearanceAPI/internal/access"
	"github.com/rchavali/ClearanceAPI/internal/api"
	"github.com/rchavali/ClearanceAPI/internal/config"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	writeJsonResponse(w, httpCode, api.ErrorResponse{Code: httpCode, Message: message})
}

// identity reads what the middleware stashed in the context.
func identity(ctx context.Context) (userId string, role access.Role) {
	if v, ok := ctx.Value(config.USER_ID_KEY).(string); ok {
		userId = v
	}
	if v, ok := ctx.Value(config.USER_ROLE_KEY).(string); ok {
		role = access.Role(v)
	}
	return userId, role
}

func traceId(ctx context.Context) string {
	if v, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		return v
	}
	return ""
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", "error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logRH.Warn("context cancelled")
		return false
	default:
		return true
	}
}
