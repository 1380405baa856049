package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func sessionIDFromRequest(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "session_id"))
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	sessionID, err := sessionIDFromRequest(r)
	if err != nil {
		writeValidationError(r.Context(), w, "get_session", errors.New("invalid session_id"))
		return
	}

	detail, err := h.service.GetSession(r.Context(), actor, sessionID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_session", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"session": toSessionView(detail.Session),
		"bounty":  toBountyView(detail.Bounty),
		"role":    string(detail.Role),
	})
}

func (h *Handler) mySessions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), 0)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
	items, err := h.service.MySessions(r.Context(), actor, limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "my_sessions", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"sessions": toSessionViews(items)})
}

func (h *Handler) heartbeat(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	sessionID, err := sessionIDFromRequest(r)
	if err != nil {
		writeValidationError(r.Context(), w, "session_heartbeat", errors.New("invalid session_id"))
		return
	}

	if err := h.service.Heartbeat(r.Context(), actor, sessionID); err != nil {
		writeMappedError(r.Context(), w, "session_heartbeat", err)
		return
	}
	writeMessage(w, http.StatusOK, "activity recorded")
}

func (h *Handler) recordEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	sessionID, err := sessionIDFromRequest(r)
	if err != nil {
		writeValidationError(r.Context(), w, "record_session_event", errors.New("invalid session_id"))
		return
	}

	var req struct {
		EventType string          `json:"event_type"`
		Metadata  json.RawMessage `json:"metadata"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "record_session_event", err)
		return
	}

	event, err := h.service.RecordParticipantEvent(r.Context(), actor, sessionID, req.EventType, req.Metadata)
	if err != nil {
		writeMappedError(r.Context(), w, "record_session_event", err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"event": toEventView(event)})
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	sessionID, err := sessionIDFromRequest(r)
	if err != nil {
		writeValidationError(r.Context(), w, "list_session_events", errors.New("invalid session_id"))
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), 0)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
	items, err := h.service.ListSessionEvents(r.Context(), actor, sessionID, limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "list_session_events", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"events": toEventViews(items)})
}

func (h *Handler) finishSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	sessionID, err := sessionIDFromRequest(r)
	if err != nil {
		writeValidationError(r.Context(), w, "finish_session", errors.New("invalid session_id"))
		return
	}

	var req struct {
		Approved *bool `json:"approved"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "finish_session", err)
		return
	}
	if req.Approved == nil {
		writeValidationError(r.Context(), w, "finish_session", errors.New("approved is required"))
		return
	}

	result, err := h.service.FinishSession(r.Context(), actor, sessionID, *req.Approved)
	if err != nil {
		writeMappedError(r.Context(), w, "finish_session", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"session":  toSessionView(result.Session),
		"bounty":   toBountyView(result.Bounty),
		"credited": result.Credited,
	})
}

func (h *Handler) issueGrant(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	sessionID, err := sessionIDFromRequest(r)
	if err != nil {
		writeValidationError(r.Context(), w, "issue_grant", errors.New("invalid session_id"))
		return
	}

	grant, err := h.service.IssueGrant(r.Context(), actor, sessionID)
	if err != nil {
		writeMappedError(r.Context(), w, "issue_grant", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"token":     grant.Token,
		"room_name": grant.RoomName,
		"role":      string(grant.Role),
	})
}

func (h *Handler) streamEnded(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	sessionID, err := sessionIDFromRequest(r)
	if err != nil {
		writeValidationError(r.Context(), w, "stream_ended", errors.New("invalid session_id"))
		return
	}

	if err := h.service.MarkStreamEnded(r.Context(), actor, sessionID); err != nil {
		writeMappedError(r.Context(), w, "stream_ended", err)
		return
	}
	writeMessage(w, http.StatusOK, "stream end recorded")
}
