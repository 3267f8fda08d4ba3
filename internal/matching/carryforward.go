package matching

import (
	"sort"
)

// ReplaceResult reports what a replacement did to the stored set.
type ReplaceResult struct {
	Written        int
	CarriedForward int
	Retained       int
	Removed        int
}

// CarryForward merges a freshly generated set into the previous one for
// the same campaign. Rows are keyed by canonical pair:
//
//   - a pair present in both keeps its id, createdAt, reveal state and
//     mutual flag; if it was already revealed its score, tier and shared
//     interests are kept too, so a visible match never changes under a user
//   - a pair only in previous is kept unchanged when it is revealed or
//     mutual, and dropped otherwise
//   - a pair only in next is inserted as generated
//
// Ranks are assigned over the merged set, so frozen and retained rows rank
// by the score they will actually show. The result is ordered by pair.
func CarryForward(previous, next []*Match) ([]*Match, ReplaceResult) {
	prevByPair := make(map[Pair]*Match, len(previous))
	for _, p := range previous {
		prevByPair[p.Pair()] = p
	}

	var res ReplaceResult
	seen := make(map[Pair]struct{}, len(next))
	merged := make([]*Match, 0, len(next))

	for _, n := range next {
		m := *n
		pair := m.Pair()
		seen[pair] = struct{}{}

		if p, ok := prevByPair[pair]; ok {
			m.ID = p.ID
			m.CreatedAt = p.CreatedAt
			m.IsRevealed = p.IsRevealed || m.IsRevealed
			m.RevealedAt = p.RevealedAt
			m.IsMutualInterest = p.IsMutualInterest || m.IsMutualInterest
			if p.IsRevealed {
				m.CompatibilityScore = p.CompatibilityScore
				m.MatchTier = p.MatchTier
				m.SharedInterests = p.SharedInterests
			}
			if p.IsRevealed || p.IsMutualInterest {
				res.CarriedForward++
			}
		}
		merged = append(merged, &m)
	}

	for _, p := range previous {
		if _, ok := seen[p.Pair()]; ok {
			continue
		}
		if p.IsRevealed || p.IsMutualInterest {
			kept := *p
			merged = append(merged, &kept)
			res.Retained++
			continue
		}
		res.Removed++
	}

	assignRanks(merged)
	sortByPair(merged)
	res.Written = len(merged)
	return merged, res
}

func sortByPair(matches []*Match) {
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.User1ID != b.User1ID {
			return a.User1ID.String() < b.User1ID.String()
		}
		return a.User2ID.String() < b.User2ID.String()
	})
}

// assignRanks numbers each user's matches from 1, best score first, ties
// broken by the partner's id.
func assignRanks(matches []*Match) {
	type entry struct {
		m     *Match
		other string
		first bool
	}
	byUser := make(map[string][]entry)
	for _, m := range matches {
		u1, u2 := m.User1ID.String(), m.User2ID.String()
		byUser[u1] = append(byUser[u1], entry{m: m, other: u2, first: true})
		byUser[u2] = append(byUser[u2], entry{m: m, other: u1, first: false})
	}

	for _, entries := range byUser {
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].m.CompatibilityScore != entries[j].m.CompatibilityScore {
				return entries[i].m.CompatibilityScore > entries[j].m.CompatibilityScore
			}
			return entries[i].other < entries[j].other
		})
		for i, e := range entries {
			if e.first {
				e.m.RankForUser1 = i + 1
			} else {
				e.m.RankForUser2 = i + 1
			}
		}
	}
}
