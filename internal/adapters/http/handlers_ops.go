package http

import (
	"errors"
	"net/http"
	"strings"
)

// cleanupSessions runs one idle-session reclamation pass on behalf of the
// external scheduler. The caller authenticates with a shared secret rather
// than a user token.
func (h *Handler) cleanupSessions(w http.ResponseWriter, r *http.Request) {
	secret := strings.TrimSpace(r.Header.Get("X-Cleanup-Secret"))
	if secret == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing cleanup secret")
		return
	}
	if h.cleanup == nil {
		writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "cleanup endpoint not configured")
		return
	}
	if err := h.cleanup.Compare(secret); err != nil {
		logHTTPOperationError(r.Context(), "cleanup_sessions", http.StatusUnauthorized, "UNAUTHORIZED", "invalid cleanup secret", errors.New("secret mismatch"))
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid cleanup secret")
		return
	}

	report, err := h.service.SweepIdleSessions(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "cleanup_sessions", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"skipped":   report.Skipped,
		"scanned":   report.Scanned,
		"reclaimed": report.Reclaimed,
		"failed":    report.Failed,
	})
}
