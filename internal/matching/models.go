package matching

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tier is the ordinal band a compatibility score falls in.
type Tier string

const (
	TierPerfect   Tier = "perfect"
	TierExcellent Tier = "excellent"
	TierGreat     Tier = "great"
	TierGood      Tier = "good"
	TierFair      Tier = "fair"
)

// TierFor uses inclusive lower bounds.
func TierFor(score float64) Tier {
	switch {
	case score >= 90:
		return TierPerfect
	case score >= 75:
		return TierExcellent
	case score >= 60:
		return TierGreat
	case score >= 45:
		return TierGood
	default:
		return TierFair
	}
}

// Pair is an unordered pair of users stored in canonical order.
type Pair struct {
	User1 uuid.UUID
	User2 uuid.UUID
}

// NewPair orders a and b lexicographically by their string form.
func NewPair(a, b uuid.UUID) Pair {
	if a.String() > b.String() {
		a, b = b, a
	}
	return Pair{User1: a, User2: b}
}

func (p Pair) String() string {
	return p.User1.String() + ":" + p.User2.String()
}

// Has reports whether id is one side of the pair.
func (p Pair) Has(id uuid.UUID) bool {
	return p.User1 == id || p.User2 == id
}

// Other returns the side that is not id.
func (p Pair) Other(id uuid.UUID) uuid.UUID {
	if p.User1 == id {
		return p.User2
	}
	return p.User1
}

// QuestionIDs is a JSONB list of question ids.
type QuestionIDs []uuid.UUID

func (q *QuestionIDs) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*q = QuestionIDs{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported shared_interests type %T", src)
	}
	ids := QuestionIDs{}
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("invalid shared_interests: %w", err)
	}
	*q = ids
	return nil
}

func (q QuestionIDs) Value() (driver.Value, error) {
	if q == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]uuid.UUID(q))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Match is a stored pair recommendation for one campaign.
type Match struct {
	ID                 uuid.UUID     `db:"id" json:"id"`
	CampaignID         uuid.UUID     `db:"campaign_id" json:"campaignId"`
	User1ID            uuid.UUID     `db:"user1_id" json:"user1Id"`
	User2ID            uuid.UUID     `db:"user2_id" json:"user2Id"`
	CompatibilityScore float64       `db:"compatibility_score" json:"compatibilityScore"`
	MatchTier          Tier          `db:"match_tier" json:"matchTier"`
	SharedInterests    QuestionIDs   `db:"shared_interests" json:"sharedInterests"`
	RankForUser1       int           `db:"rank_for_user1" json:"rankForUser1"`
	RankForUser2       int           `db:"rank_for_user2" json:"rankForUser2"`
	IsRevealed         bool          `db:"is_revealed" json:"isRevealed"`
	IsMutualInterest   bool          `db:"is_mutual_interest" json:"isMutualInterest"`
	GenerationID       uuid.NullUUID `db:"generation_id" json:"generationId"`
	CreatedAt          time.Time     `db:"created_at" json:"createdAt"`
	RevealedAt         *time.Time    `db:"revealed_at" json:"revealedAt,omitempty"`
}

func (m *Match) Pair() Pair {
	return Pair{User1: m.User1ID, User2: m.User2ID}
}

// RankFor returns the rank of this match in userID's list.
func (m *Match) RankFor(userID uuid.UUID) int {
	if m.User1ID == userID {
		return m.RankForUser1
	}
	return m.RankForUser2
}

// Partner is the other user's public profile, loaded alongside a match.
type Partner struct {
	ID              uuid.UUID `db:"id" json:"id"`
	FirstName       string    `db:"first_name" json:"firstName"`
	LastName        string    `db:"last_name" json:"lastName"`
	Program         string    `db:"program" json:"program"`
	YearLevel       int       `db:"year_level" json:"yearLevel"`
	Bio             string    `db:"bio" json:"bio"`
	InstagramHandle string    `db:"instagram_handle" json:"instagramHandle"`
}

// UserMatch is a match row joined with the partner of the requesting user.
type UserMatch struct {
	Match
	Partner Partner `db:"partner"`
}

// MatchView is what a participant sees. The partner is hidden until the
// match is revealed.
type MatchView struct {
	ID                 uuid.UUID   `json:"id"`
	CompatibilityScore float64     `json:"compatibilityScore"`
	MatchTier          Tier        `json:"matchTier"`
	SharedInterests    QuestionIDs `json:"sharedInterests"`
	Rank               int         `json:"rank"`
	IsRevealed         bool        `json:"isRevealed"`
	IsMutualInterest   bool        `json:"isMutualInterest"`
	CreatedAt          time.Time   `json:"createdAt"`
	RevealedAt         *time.Time  `json:"revealedAt,omitempty"`
	Partner            *Partner    `json:"partner,omitempty"`
}

func newMatchView(um *UserMatch, userID uuid.UUID) *MatchView {
	v := &MatchView{
		ID:                 um.ID,
		CompatibilityScore: um.CompatibilityScore,
		MatchTier:          um.MatchTier,
		SharedInterests:    um.SharedInterests,
		Rank:               um.RankFor(userID),
		IsRevealed:         um.IsRevealed,
		IsMutualInterest:   um.IsMutualInterest,
		CreatedAt:          um.CreatedAt,
		RevealedAt:         um.RevealedAt,
	}
	if um.IsRevealed || um.IsMutualInterest {
		p := um.Partner
		v.Partner = &p
	}
	return v
}

// GenerationSummary describes one completed generation run.
type GenerationSummary struct {
	GenerationID    uuid.UUID `json:"generationId"`
	CampaignID      uuid.UUID `json:"campaignId"`
	Phase           string    `json:"phase"`
	EligibleUsers   int       `json:"eligibleUsers"`
	PairsConsidered int       `json:"pairsConsidered"`
	PairsScored     int       `json:"pairsScored"`
	PairsSkipped    int       `json:"pairsSkipped"`
	MatchesWritten  int       `json:"matchesWritten"`
	CarriedForward  int       `json:"carriedForward"`
	Retained        int       `json:"retained"`
	Removed         int       `json:"removed"`
	StartedAt       time.Time `json:"startedAt"`
	DurationMs      int64     `json:"durationMs"`
}
