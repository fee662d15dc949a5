package handlers

import (
	"errors"
	"net/http"

	"github.com/rchavali/ClearanceAPI/internal/adapter"
	"github.com/rchavali/ClearanceAPI/internal/adapter/utils"
	"github.com/rchavali/ClearanceAPI/internal/api"
	"github.com/rchavali/ClearanceAPI/internal/session"
)

func CreateSessionHandler(w http.ResponseWriter, request *http.Request) {
	userId, _ := identity(request.Context())

	created, err := handlerInstance.sessions.Create(request.Context(), userId)
	if err != nil {
		logRH.Error("Error creating session", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not create session")
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToSessionResponse(created))
}

func ListSessionsHandler(w http.ResponseWriter, request *http.Request) {
	userId, _ := identity(request.Context())

	sessions, err := handlerInstance.sessions.List(request.Context(), userId)
	if err != nil {
		logRH.Error("Error listing sessions", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not list sessions")
		return
	}

	out := make([]api.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, adapter.ToSessionResponse(s))
	}
	writeJsonResponse(w, http.StatusOK, out)
}

func GetSessionHandler(w http.ResponseWriter, request *http.Request) {
	userId, _ := identity(request.Context())
	id := utils.GetChiURLParam(request, "id")

	sess, messages, err := handlerInstance.sessions.Get(request.Context(), id, userId)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			WriteErrorResponse(w, http.StatusNotFound, "session not found")
			return
		}
		logRH.Error("Error reading session", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not read session")
		return
	}

	msgs := make([]api.MessageResponse, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, adapter.ToMessageResponse(m))
	}
	writeJsonResponse(w, http.StatusOK, struct {
		Session  api.SessionResponse   `json:"session"`
		Messages []api.MessageResponse `json:"messages"`
	}{adapter.ToSessionResponse(sess), msgs})
}

func DeleteSessionHandler(w http.ResponseWriter, request *http.Request) {
	userId, _ := identity(request.Context())
	id := utils.GetChiURLParam(request, "id")

	if err := handlerInstance.sessions.Delete(request.Context(), id, userId); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			WriteErrorResponse(w, http.StatusNotFound, "session not found")
			return
		}
		logRH.Error("Error deleting session", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
