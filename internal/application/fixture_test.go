package application_test

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spotcast-live/spotcast/internal/application"
	"github.com/spotcast-live/spotcast/internal/domain"
	"github.com/spotcast-live/spotcast/internal/ports"
)

type fixture struct {
	store     *memStore
	sweepLock *fakeSweepLock
	throttle  *fakeThrottle
	signer    *fakeSigner
	service   *application.Service
}

func newFixture() *fixture {
	return newFixtureWithConfig(application.Config{})
}

func newFixtureWithConfig(cfg application.Config) *fixture {
	store := newMemStore()
	sweepLock := &fakeSweepLock{}
	throttle := &fakeThrottle{persisted: map[uuid.UUID]bool{}}
	signer := &fakeSigner{}

	svc := application.NewService(application.Dependencies{
		Config:    cfg,
		Bounties:  &fakeBounties{store: store},
		Sessions:  &fakeSessions{store: store},
		Users:     &fakeUsers{store: store},
		Events:    &fakeEvents{store: store},
		Outbox:    &fakeOutbox{store: store},
		SweepLock: sweepLock,
		Throttle:  throttle,
		Signer:    signer,
	})

	return &fixture{
		store:     store,
		sweepLock: sweepLock,
		throttle:  throttle,
		signer:    signer,
		service:   svc,
	}
}

func (f *fixture) newUser(email string, balance int64) application.Actor {
	id := uuid.New()
	now := time.Now().UTC()
	f.store.mu.Lock()
	f.store.users[id] = domain.User{
		UserID:        id,
		Email:         email,
		PointsBalance: balance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.store.mu.Unlock()
	return application.Actor{UserID: id, Email: email, RequestID: uuid.NewString()}
}

func (f *fixture) newOpenBounty(creatorID uuid.UUID, amount int64) domain.Bounty {
	return f.newOpenBountyAt(creatorID, amount, 40.7, -74.0)
}

func (f *fixture) newOpenBountyAt(creatorID uuid.UUID, amount int64, lat, lng float64) domain.Bounty {
	now := time.Now().UTC()
	bounty := domain.Bounty{
		BountyID:  uuid.New(),
		CreatorID: creatorID,
		Title:     "test bounty",
		Amount:    amount,
		Lat:       lat,
		Lng:       lng,
		Status:    domain.BountyStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.store.mu.Lock()
	f.store.bounties[bounty.BountyID] = bounty
	f.store.mu.Unlock()
	return bounty
}

// memStore backs all repository fakes with one mutex so the cross-entity
// claim and resolve transactions stay atomic, matching the storage layer's
// conditional-update behavior.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]domain.User
	bounties map[uuid.UUID]domain.Bounty
	sessions map[uuid.UUID]domain.Session
	events   []domain.StreamEvent
	outbox   []ports.OutboxEvent

	// beforeResolve, when set, runs once at the top of the next ResolveTx
	// call, before the conditional update. Used to stage races.
	beforeResolve func()
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]domain.User{},
		bounties: map[uuid.UUID]domain.Bounty{},
		sessions: map[uuid.UUID]domain.Session{},
	}
}

func (s *memStore) bounty(t *testing.T, id uuid.UUID) domain.Bounty {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bounties[id]
	if !ok {
		t.Fatalf("bounty %s not found", id)
	}
	return b
}

func (s *memStore) session(t *testing.T, id uuid.UUID) domain.Session {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		t.Fatalf("session %s not found", id)
	}
	return sess
}

func (s *memStore) balance(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		t.Fatalf("user %s not found", id)
	}
	return u.PointsBalance
}

func (s *memStore) sessionCountForBounty(bountyID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.sessions {
		if sess.BountyID == bountyID {
			n++
		}
	}
	return n
}

func (s *memStore) setLastActivity(sessionID uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[sessionID]
	sess.LastActivityAt = at
	s.sessions[sessionID] = sess
}

func (s *memStore) eventTypes(sessionID uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var types []string
	for _, e := range s.events {
		if e.SessionID == sessionID {
			types = append(types, e.EventType)
		}
	}
	return types
}

func (s *memStore) outboxEvents(eventType string) []ports.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []ports.OutboxEvent
	for _, e := range s.outbox {
		if e.EventType == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

type fakeBounties struct {
	store *memStore
}

func (f *fakeBounties) Create(_ context.Context, bounty domain.Bounty) (domain.Bounty, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.bounties[bounty.BountyID] = bounty
	return bounty, nil
}

func (f *fakeBounties) GetByID(_ context.Context, bountyID uuid.UUID) (domain.Bounty, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	b, ok := f.store.bounties[bountyID]
	if !ok {
		return domain.Bounty{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeBounties) ListByCreator(_ context.Context, creatorID uuid.UUID, limit, offset int) ([]domain.Bounty, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var items []domain.Bounty
	for _, b := range f.store.bounties {
		if b.CreatorID == creatorID {
			items = append(items, b)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return paginate(items, limit, offset), nil
}

func (f *fakeBounties) Nearby(_ context.Context, lat, lng, radiusKM float64, limit int) ([]domain.NearbyBounty, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var items []domain.NearbyBounty
	for _, b := range f.store.bounties {
		if b.Status != domain.BountyStatusOpen {
			continue
		}
		d := haversineKM(lat, lng, b.Lat, b.Lng)
		if d <= radiusKM {
			items = append(items, domain.NearbyBounty{Bounty: b, DistanceKM: d})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DistanceKM < items[j].DistanceKM })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (f *fakeBounties) ClaimTx(_ context.Context, params ports.ClaimParams) (domain.Session, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	b, ok := f.store.bounties[params.BountyID]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	if b.Status != domain.BountyStatusOpen {
		return domain.Session{}, fmt.Errorf("%w: bounty no longer open", domain.ErrConflict)
	}

	claimant := params.Claimant
	b.Status = domain.BountyStatusAccepted
	b.AcceptedBy = &claimant
	b.UpdatedAt = params.Now
	f.store.bounties[params.BountyID] = b

	session := domain.Session{
		SessionID:      params.SessionID,
		BountyID:       params.BountyID,
		StreamerID:     params.Claimant,
		Status:         domain.SessionStatusActive,
		StartedAt:      params.Now,
		LastActivityAt: params.Now,
		CreatedAt:      params.Now,
		UpdatedAt:      params.Now,
	}
	f.store.sessions[session.SessionID] = session
	f.store.outbox = append(f.store.outbox, params.Outbox)
	return session, nil
}

type fakeSessions struct {
	store *memStore
}

func (f *fakeSessions) GetByID(_ context.Context, sessionID uuid.UUID) (domain.Session, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	s, ok := f.store.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessions) GetWithBounty(_ context.Context, sessionID uuid.UUID) (domain.Session, domain.Bounty, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	s, ok := f.store.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.Bounty{}, domain.ErrNotFound
	}
	b, ok := f.store.bounties[s.BountyID]
	if !ok {
		return domain.Session{}, domain.Bounty{}, domain.ErrNotFound
	}
	return s, b, nil
}

func (f *fakeSessions) ListByStreamer(_ context.Context, streamerID uuid.UUID, limit, offset int) ([]domain.Session, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var items []domain.Session
	for _, s := range f.store.sessions {
		if s.StreamerID == streamerID {
			items = append(items, s)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return paginate(items, limit, offset), nil
}

func (f *fakeSessions) ListIdleActive(_ context.Context, cutoff time.Time, limit int) ([]domain.Session, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var items []domain.Session
	for _, s := range f.store.sessions {
		if s.Status == domain.SessionStatusActive && s.LastActivityAt.Before(cutoff) {
			items = append(items, s)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].LastActivityAt.Before(items[j].LastActivityAt) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (f *fakeSessions) TouchActivity(_ context.Context, sessionID uuid.UUID, touchedAt time.Time) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	s, ok := f.store.sessions[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	if s.Status != domain.SessionStatusActive {
		return domain.ErrInvalidState
	}
	s.LastActivityAt = touchedAt
	s.UpdatedAt = touchedAt
	f.store.sessions[sessionID] = s
	return nil
}

func (f *fakeSessions) EnsureRoomName(_ context.Context, sessionID uuid.UUID, roomName string, at time.Time) (string, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	s, ok := f.store.sessions[sessionID]
	if !ok {
		return "", domain.ErrNotFound
	}
	if s.RoomName != nil {
		return *s.RoomName, nil
	}
	s.RoomName = &roomName
	s.UpdatedAt = at
	f.store.sessions[sessionID] = s
	return roomName, nil
}

func (f *fakeSessions) MarkStreamStarted(_ context.Context, sessionID uuid.UUID, at time.Time) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	s, ok := f.store.sessions[sessionID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if s.Status != domain.SessionStatusActive || s.StreamStartedAt != nil {
		return false, nil
	}
	at = at.UTC()
	s.StreamStartedAt = &at
	s.UpdatedAt = at
	f.store.sessions[sessionID] = s
	return true, nil
}

func (f *fakeSessions) MarkStreamEnded(_ context.Context, sessionID uuid.UUID, at time.Time) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	s, ok := f.store.sessions[sessionID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if s.StreamStartedAt == nil || s.StreamEndedAt != nil {
		return false, nil
	}
	at = at.UTC()
	s.StreamEndedAt = &at
	s.UpdatedAt = at
	f.store.sessions[sessionID] = s
	return true, nil
}

func (f *fakeSessions) ResolveTx(_ context.Context, params ports.ResolveParams) (ports.ResolveResult, error) {
	if hook := f.store.beforeResolve; hook != nil {
		f.store.beforeResolve = nil
		hook()
	}

	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	s, ok := f.store.sessions[params.SessionID]
	if !ok {
		return ports.ResolveResult{}, domain.ErrNotFound
	}
	if s.Status != domain.SessionStatusActive {
		return ports.ResolveResult{}, domain.ErrInvalidState
	}

	now := params.Now
	approvedTrue := true
	approvedFalse := false
	switch params.Outcome {
	case domain.OutcomeApproved:
		s.Status = domain.SessionStatusCompleted
		s.Approved = &approvedTrue
	case domain.OutcomeRejected:
		s.Status = domain.SessionStatusCompleted
		s.Approved = &approvedFalse
	case domain.OutcomeTimedOut:
		s.Status = domain.SessionStatusCancelled
	default:
		return ports.ResolveResult{}, domain.ErrInvalidInput
	}
	s.CompletedAt = &now
	if s.StreamStartedAt != nil && s.StreamEndedAt == nil {
		s.StreamEndedAt = &now
	}
	s.UpdatedAt = now
	f.store.sessions[params.SessionID] = s

	b, ok := f.store.bounties[s.BountyID]
	if !ok || b.Status != domain.BountyStatusAccepted {
		return ports.ResolveResult{}, domain.ErrInvalidState
	}
	var credited int64
	if params.Outcome == domain.OutcomeApproved {
		b.Status = domain.BountyStatusCompleted
		streamer := f.store.users[s.StreamerID]
		streamer.PointsBalance += b.Amount
		streamer.UpdatedAt = now
		f.store.users[s.StreamerID] = streamer
		credited = b.Amount
	} else {
		b.Status = domain.BountyStatusOpen
		b.AcceptedBy = nil
	}
	b.UpdatedAt = now
	f.store.bounties[s.BountyID] = b

	f.store.events = append(f.store.events, params.Events...)
	f.store.outbox = append(f.store.outbox, params.Outbox)

	return ports.ResolveResult{Session: s, Bounty: b, Credited: credited}, nil
}

type fakeUsers struct {
	store *memStore
}

func (f *fakeUsers) GetByID(_ context.Context, userID uuid.UUID) (domain.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	u, ok := f.store.users[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Credit(_ context.Context, userID uuid.UUID, amount int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	u, ok := f.store.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.PointsBalance += amount
	f.store.users[userID] = u
	return nil
}

func (f *fakeUsers) Debit(_ context.Context, userID uuid.UUID, amount int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	u, ok := f.store.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if u.PointsBalance < amount {
		return domain.ErrInsufficientFunds
	}
	u.PointsBalance -= amount
	f.store.users[userID] = u
	return nil
}

type fakeEvents struct {
	store *memStore
}

func (f *fakeEvents) Append(_ context.Context, event domain.StreamEvent) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.events = append(f.store.events, event)
	return nil
}

func (f *fakeEvents) ListBySession(_ context.Context, sessionID uuid.UUID, limit, offset int) ([]domain.StreamEvent, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var items []domain.StreamEvent
	for _, e := range f.store.events {
		if e.SessionID == sessionID {
			items = append(items, e)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].OccurredAt.Before(items[j].OccurredAt) })
	return paginate(items, limit, offset), nil
}

type fakeOutbox struct {
	store *memStore
}

func (f *fakeOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.outbox = append(f.store.outbox, event)
	return nil
}

func (f *fakeOutbox) ClaimUnpublished(_ context.Context, limit int, _ string, _ time.Time) ([]ports.OutboxRecord, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var records []ports.OutboxRecord
	for _, e := range f.store.outbox {
		if limit > 0 && len(records) >= limit {
			break
		}
		records = append(records, ports.OutboxRecord{
			OutboxID:     e.EventID,
			EventType:    e.EventType,
			PartitionKey: e.PartitionKey,
			Payload:      e.Payload,
			CreatedAt:    e.OccurredAt,
		})
	}
	return records, nil
}

func (f *fakeOutbox) MarkPublished(context.Context, uuid.UUID, string, time.Time) error { return nil }

func (f *fakeOutbox) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}
func (f *fakeOutbox) MarkDeadLettered(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

type fakeSweepLock struct {
	mu       sync.Mutex
	held     bool
	acquires int
	releases int
}

func (l *fakeSweepLock) TryAcquire(_ context.Context, _ string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return false, nil
	}
	l.held = true
	l.acquires++
	return true, nil
}

func (l *fakeSweepLock) Release(_ context.Context, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	l.releases++
	return nil
}

// fakeThrottle persists the first touch per session and suppresses the rest,
// mimicking an unexpired coalescing window.
type fakeThrottle struct {
	mu        sync.Mutex
	persisted map[uuid.UUID]bool
}

func (t *fakeThrottle) ShouldPersist(_ context.Context, sessionID uuid.UUID, _ time.Duration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.persisted[sessionID] {
		return false, nil
	}
	t.persisted[sessionID] = true
	return true, nil
}

type fakeSigner struct {
	mu        sync.Mutex
	lastGrant ports.MediaGrant
	err       error
}

func (s *fakeSigner) Sign(grant ports.MediaGrant) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.lastGrant = grant
	return "media-token-" + grant.Identity.String(), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKM = 6371
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
