package interest

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the outcome of one swipe.
type Kind string

const (
	KindPass     Kind = "pass"
	KindInterest Kind = "interest"
)

func (k Kind) Valid() bool {
	return k == KindPass || k == KindInterest
}

// CrushEntry is one email on an owner's crush list. Mutuality is derived
// from two owners listing each other, never stored on the entry.
type CrushEntry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OwnerUserID uuid.UUID `db:"owner_user_id" json:"ownerUserId"`
	CampaignID  uuid.UUID `db:"campaign_id" json:"campaignId"`
	TargetEmail string    `db:"target_email" json:"targetEmail"`
	TargetName  string    `db:"target_name" json:"targetName,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Admirer is a user whose crush list names a given email.
type Admirer struct {
	UserID uuid.UUID `db:"owner_user_id"`
	Email  string    `db:"email"`
}

// Interaction is the latest swipe of actor on target. A later swipe
// overwrites it.
type Interaction struct {
	CampaignID uuid.UUID `db:"campaign_id" json:"campaignId"`
	ActorID    uuid.UUID `db:"actor_id" json:"actorId"`
	TargetID   uuid.UUID `db:"target_id" json:"targetId"`
	Kind       Kind      `db:"kind" json:"kind"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// CrushEntryInput is one submitted entry before normalization.
type CrushEntryInput struct {
	Email string `json:"email" validate:"required,max=255"`
	Name  string `json:"name" validate:"max=200"`
}

type SubmitCrushListRequest struct {
	Entries []CrushEntryInput `json:"entries" validate:"dive"`
}

type SwipeRequest struct {
	Kind Kind `json:"kind" validate:"required,oneof=pass interest"`
}

// CrushListResult is returned after a submission.
type CrushListResult struct {
	Entries     []*CrushEntry `json:"entries"`
	MutualCount int           `json:"mutualCount"`
}

// MutualCrush is a partner who listed the caller back.
type MutualCrush struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
}

// SwipeResult reports whether the swipe completed a mutual pair.
type SwipeResult struct {
	Kind    Kind       `json:"kind"`
	Matched bool       `json:"matched"`
	MatchID *uuid.UUID `json:"matchId,omitempty"`
	Message string     `json:"message,omitempty"`
}
