package handlers

import (
	"net/http"

	"github.com/rchavali/ClearanceAPI/internal/adapter"
	"github.com/rchavali/ClearanceAPI/internal/api"
)

// GetHistoryHandler returns the caller's own query audit trail, newest first.
// Audit records outlive session soft-deletion, so this shows every query the
// user ever ran.
func GetHistoryHandler(w http.ResponseWriter, request *http.Request) {
	userId, _ := identity(request.Context())

	records, err := handlerInstance.audit.ListRecords(request.Context(), userId)
	if err != nil {
		logRH.Error("Error listing audit history", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not list history")
		return
	}

	out := make([]api.AuditEntryResponse, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- { //stored oldest first
		out = append(out, adapter.ToAuditEntryResponse(records[i]))
	}
	writeJsonResponse(w, http.StatusOK, out)
}
