package matching

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatch(campaignID uuid.UUID, a, b uuid.UUID, score float64) *Match {
	p := NewPair(a, b)
	return &Match{
		ID:                 uuid.New(),
		CampaignID:         campaignID,
		User1ID:            p.User1,
		User2ID:            p.User2,
		CompatibilityScore: score,
		MatchTier:          TierFor(score),
		SharedInterests:    QuestionIDs{},
		CreatedAt:          time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
	}
}

func findPair(matches []*Match, p Pair) *Match {
	for _, m := range matches {
		if m.Pair() == p {
			return m
		}
	}
	return nil
}

func TestCarryForwardKeepsUserState(t *testing.T) {
	campaignID := uuid.New()
	u1, u2, u3, u4 := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	revealedAt := time.Date(2026, 2, 12, 9, 0, 0, 0, time.UTC)

	revealed := newTestMatch(campaignID, u1, u2, 80)
	revealed.IsRevealed = true
	revealed.RevealedAt = &revealedAt

	mutual := newTestMatch(campaignID, u1, u3, 50)
	mutual.IsMutualInterest = true

	plain := newTestMatch(campaignID, u2, u3, 40)
	orphanMutual := newTestMatch(campaignID, u3, u4, 0)
	orphanMutual.IsMutualInterest = true
	orphanPlain := newTestMatch(campaignID, u2, u4, 30)

	previous := []*Match{revealed, mutual, plain, orphanMutual, orphanPlain}

	next := []*Match{
		newTestMatch(campaignID, u1, u2, 20),
		newTestMatch(campaignID, u1, u3, 65),
		newTestMatch(campaignID, u2, u3, 70),
		newTestMatch(campaignID, u1, u4, 90),
	}

	merged, res := CarryForward(previous, next)

	assert.Equal(t, ReplaceResult{Written: 5, CarriedForward: 2, Retained: 1, Removed: 1}, res)
	require.Len(t, merged, 5)

	got := findPair(merged, revealed.Pair())
	require.NotNil(t, got)
	assert.Equal(t, revealed.ID, got.ID)
	assert.True(t, got.IsRevealed)
	assert.Equal(t, &revealedAt, got.RevealedAt)
	assert.Equal(t, 80.0, got.CompatibilityScore, "revealed score is frozen")
	assert.Equal(t, TierExcellent, got.MatchTier)

	got = findPair(merged, mutual.Pair())
	require.NotNil(t, got)
	assert.Equal(t, mutual.ID, got.ID)
	assert.True(t, got.IsMutualInterest)
	assert.Equal(t, 65.0, got.CompatibilityScore, "unrevealed score follows the new run")

	got = findPair(merged, plain.Pair())
	require.NotNil(t, got)
	assert.Equal(t, plain.ID, got.ID)
	assert.Equal(t, 70.0, got.CompatibilityScore)

	assert.NotNil(t, findPair(merged, orphanMutual.Pair()))
	assert.Nil(t, findPair(merged, orphanPlain.Pair()))
	assert.NotNil(t, findPair(merged, NewPair(u1, u4)))

	for i := 1; i < len(merged); i++ {
		prev, cur := merged[i-1].Pair(), merged[i].Pair()
		assert.True(t, prev.User1.String() < cur.User1.String() ||
			(prev.User1 == cur.User1 && prev.User2.String() < cur.User2.String()))
	}
}

func TestCarryForwardDoesNotMutateInputs(t *testing.T) {
	campaignID := uuid.New()
	u1, u2 := uuid.New(), uuid.New()

	prev := newTestMatch(campaignID, u1, u2, 50)
	prev.IsMutualInterest = true
	next := newTestMatch(campaignID, u1, u2, 60)
	nextID := next.ID

	CarryForward([]*Match{prev}, []*Match{next})

	assert.Equal(t, nextID, next.ID)
	assert.False(t, next.IsMutualInterest)
}

func TestAssignRanks(t *testing.T) {
	campaignID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	ab := newTestMatch(campaignID, a, b, 90)
	ac := newTestMatch(campaignID, a, c, 50)
	bc := newTestMatch(campaignID, b, c, 70)

	assignRanks([]*Match{ab, ac, bc})

	assert.Equal(t, 1, ab.RankFor(a))
	assert.Equal(t, 2, ac.RankFor(a))
	assert.Equal(t, 1, ab.RankFor(b))
	assert.Equal(t, 2, bc.RankFor(b))
	assert.Equal(t, 1, bc.RankFor(c))
	assert.Equal(t, 2, ac.RankFor(c))
}

func TestAssignRanksBreaksTiesByPartner(t *testing.T) {
	campaignID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	ab := newTestMatch(campaignID, a, b, 60)
	ac := newTestMatch(campaignID, a, c, 60)
	assignRanks([]*Match{ac, ab})

	first, second := ab, ac
	if c.String() < b.String() {
		first, second = ac, ab
	}
	assert.Equal(t, 1, first.RankFor(a))
	assert.Equal(t, 2, second.RankFor(a))
}

func TestCarryForwardRanksMergedSet(t *testing.T) {
	campaignID := uuid.New()
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	revealed := newTestMatch(campaignID, a, b, 95)
	revealed.IsRevealed = true
	revealed.RankForUser1, revealed.RankForUser2 = 1, 1
	orphan := newTestMatch(campaignID, a, d, 60)
	orphan.IsMutualInterest = true
	orphan.RankForUser1, orphan.RankForUser2 = 1, 1

	next := []*Match{
		newTestMatch(campaignID, a, b, 10),
		newTestMatch(campaignID, a, c, 70),
	}

	merged, res := CarryForward([]*Match{revealed, orphan}, next)
	require.Equal(t, 1, res.Retained)
	require.Len(t, merged, 3)

	ab := findPair(merged, NewPair(a, b))
	ac := findPair(merged, NewPair(a, c))
	ad := findPair(merged, NewPair(a, d))
	require.NotNil(t, ab)
	require.NotNil(t, ac)
	require.NotNil(t, ad)

	assert.Equal(t, 95.0, ab.CompatibilityScore)
	assert.Equal(t, 1, ab.RankFor(a), "frozen score ranks first")
	assert.Equal(t, 2, ac.RankFor(a))
	assert.Equal(t, 3, ad.RankFor(a), "retained row is re-ranked")
	assert.Equal(t, 1, ad.RankFor(d))
	assert.Equal(t, 1, ab.RankFor(b))
}
