package http

import "net/http"

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	user, err := h.service.Me(r.Context(), actor)
	if err != nil {
		writeMappedError(r.Context(), w, "get_me", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"user": toUserView(user)})
}
