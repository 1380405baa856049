package domain

import (
	"time"

	"github.com/google/uuid"
)

// BountyStatus is the lifecycle state of a posted bounty.
type BountyStatus string

const (
	BountyStatusOpen      BountyStatus = "open"
	BountyStatusAccepted  BountyStatus = "accepted"
	BountyStatusCompleted BountyStatus = "completed"
	BountyStatusCancelled BountyStatus = "cancelled"
)

// ResolutionOutcome is how an accepted bounty's session was resolved.
// Approved completes the bounty and pays the streamer; rejected and timed-out
// reopen the bounty so it can be claimed again.
type ResolutionOutcome string

const (
	OutcomeApproved ResolutionOutcome = "approved"
	OutcomeRejected ResolutionOutcome = "rejected"
	OutcomeTimedOut ResolutionOutcome = "timed_out"
)

// Bounty is a location-tagged task posted by a requester with a points
// reward. AcceptedBy is non-nil exactly while the bounty is accepted or
// completed; while accepted, exactly one active session references it.
type Bounty struct {
	BountyID    uuid.UUID
	CreatorID   uuid.UUID
	Title       string
	Description string
	Amount      int64
	Lat         float64
	Lng         float64
	Status      BountyStatus
	AcceptedBy  *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Terminal reports whether the bounty has reached a final state.
func (b Bounty) Terminal() bool {
	return b.Status == BountyStatusCompleted || b.Status == BountyStatusCancelled
}

// NearbyBounty is the result shape of the spatial lookup collaborator:
// an open bounty plus its distance from the queried coordinate.
type NearbyBounty struct {
	Bounty
	DistanceKM float64
}
