package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spotcast-live/spotcast/internal/application"
)

func (h *Handler) createBounty(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	var req application.CreateBountyInput
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_bounty", err)
		return
	}

	bounty, err := h.service.CreateBounty(r.Context(), actor, req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_bounty", err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"bounty": toBountyView(bounty)})
}

func (h *Handler) getBounty(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	bountyID, err := uuid.Parse(chi.URLParam(r, "bounty_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "get_bounty", errors.New("invalid bounty_id"))
		return
	}

	bounty, err := h.service.GetBounty(r.Context(), actor, bountyID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_bounty", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"bounty": toBountyView(bounty)})
}

func (h *Handler) nearbyBounties(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	lat, err := parseFloatQuery(r.URL.Query().Get("lat"))
	if err != nil {
		writeValidationError(r.Context(), w, "nearby_bounties", errors.New("invalid lat"))
		return
	}
	lng, err := parseFloatQuery(r.URL.Query().Get("lng"))
	if err != nil {
		writeValidationError(r.Context(), w, "nearby_bounties", errors.New("invalid lng"))
		return
	}
	radiusKM := 0.0
	if raw := r.URL.Query().Get("radius_km"); raw != "" {
		radiusKM, err = parseFloatQuery(raw)
		if err != nil {
			writeValidationError(r.Context(), w, "nearby_bounties", errors.New("invalid radius_km"))
			return
		}
	}

	items, err := h.service.NearbyBounties(r.Context(), actor, lat, lng, radiusKM)
	if err != nil {
		writeMappedError(r.Context(), w, "nearby_bounties", err)
		return
	}

	views := make([]bountyView, 0, len(items))
	for _, item := range items {
		views = append(views, toNearbyBountyView(item))
	}
	writeSuccess(w, http.StatusOK, map[string]any{"bounties": views})
}

func (h *Handler) myBounties(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), 0)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
	items, err := h.service.MyBounties(r.Context(), actor, limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "my_bounties", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"bounties": toBountyViews(items)})
}

func (h *Handler) claimBounty(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	bountyID, err := uuid.Parse(chi.URLParam(r, "bounty_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "claim_bounty", errors.New("invalid bounty_id"))
		return
	}

	session, err := h.service.ClaimBounty(r.Context(), actor, bountyID)
	if err != nil {
		writeMappedError(r.Context(), w, "claim_bounty", err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"session": toSessionView(session)})
}
