package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rchavali/ClearanceAPI/internal/adapter"
	"github.com/rchavali/ClearanceAPI/internal/api"
	"github.com/rchavali/ClearanceAPI/internal/rag/answer"
	"github.com/rchavali/ClearanceAPI/internal/rag/llm"
)

// QueryHandler answers synchronously. A refusal is a normal 200, the body
// says NO_RESULTS.
func QueryHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		WriteErrorResponse(w, http.StatusRequestTimeout, "request cancelled")
		return
	}

	var requestData api.QueryRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the query reader :", err)
		}
	}(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || requestData.Query == "" {
		logRH.Warn("Bad query request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "query is required")
		return
	}

	userId, role := identity(request.Context())

	sessionId := requestData.SessionId
	if sessionId == "" {
		created, err := handlerInstance.sessions.Create(request.Context(), userId)
		if err != nil {
			logRH.Error("Error creating session", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "could not create session")
			return
		}
		sessionId = created.Id
	} else {
		if _, _, err := handlerInstance.sessions.Get(request.Context(), sessionId, userId); err != nil {
			WriteErrorResponse(w, http.StatusNotFound, "session not found")
			return
		}
	}

	msg, err := handlerInstance.answerSvc.Answer(request.Context(), answer.Request{
		UserId:    userId,
		Role:      role,
		SessionId: sessionId,
		Query:     requestData.Query,
		Mode:      llm.Profile(requestData.Mode),
	})
	if err != nil {
		logRH.Error("Error answering query", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not answer query")
		return
	}

	msg.SessionId = sessionId
	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(msg))
}
