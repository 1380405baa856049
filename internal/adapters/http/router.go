package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spotcast-live/spotcast/internal/application"
	"github.com/spotcast-live/spotcast/internal/ports"
)

// Handler is the HTTP adapter entrypoint for bounty and session use-cases.
// Identity resolution happens here; the application layer only ever sees an
// already-authenticated actor.
type Handler struct {
	service    *application.Service
	identities ports.IdentityVerifier
	cleanup    ports.CleanupSecretVerifier
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service, identities ports.IdentityVerifier, cleanup ports.CleanupSecretVerifier) *Handler {
	return &Handler{service: service, identities: identities, cleanup: cleanup}
}

// NewRouter registers the HTTP routes and middleware stack.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/bounties/v1", func(r chi.Router) {
		r.Use(handler.authMiddleware)
		r.Post("/", handler.createBounty)
		r.Get("/nearby", handler.nearbyBounties)
		r.Get("/mine", handler.myBounties)
		r.Get("/{bounty_id}", handler.getBounty)
		r.Post("/{bounty_id}/claim", handler.claimBounty)
	})

	r.Route("/sessions/v1", func(r chi.Router) {
		r.Use(handler.authMiddleware)
		r.Get("/mine", handler.mySessions)
		r.Get("/{session_id}", handler.getSession)
		r.Post("/{session_id}/heartbeat", handler.heartbeat)
		r.Post("/{session_id}/events", handler.recordEvent)
		r.Get("/{session_id}/events", handler.listEvents)
		r.Post("/{session_id}/finish", handler.finishSession)
		r.Post("/{session_id}/grant", handler.issueGrant)
		r.Post("/{session_id}/stream-ended", handler.streamEnded)
	})

	r.Route("/users/v1", func(r chi.Router) {
		r.Use(handler.authMiddleware)
		r.Get("/me", handler.me)
	})

	r.Post("/ops/v1/cleanup", handler.cleanupSessions)

	return r
}
