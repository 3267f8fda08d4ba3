package interest

import (
	"sort"

	"github.com/google/uuid"
)

// CrushSnapshot is everything crush mutuality for one owner depends on,
// read after the owner's list was written.
type CrushSnapshot struct {
	OwnerID     uuid.UUID
	OwnerEmails map[string]struct{} // normalized emails on the owner's list
	Admirers    []Admirer           // users whose lists name the owner
}

// ReconcileCrushes returns the admirers the owner listed back, ordered by
// id. Emails are compared in normalized form.
func ReconcileCrushes(s CrushSnapshot) []Admirer {
	var mutual []Admirer
	seen := make(map[uuid.UUID]struct{})
	for _, a := range s.Admirers {
		if a.UserID == s.OwnerID {
			continue
		}
		if _, dup := seen[a.UserID]; dup {
			continue
		}
		if _, ok := s.OwnerEmails[normalizeEmail(a.Email)]; ok {
			mutual = append(mutual, a)
			seen[a.UserID] = struct{}{}
		}
	}
	sort.Slice(mutual, func(i, j int) bool {
		return mutual[i].UserID.String() < mutual[j].UserID.String()
	})
	return mutual
}

// SwipeSnapshot is the actor's new swipe plus the target's latest swipe on
// the actor, if any.
type SwipeSnapshot struct {
	Kind    Kind
	Reverse *Interaction
}

// ReconcileSwipe reports whether both sides now hold interest. A pass
// never revokes an earlier mutual match; it only withholds a new one.
func ReconcileSwipe(s SwipeSnapshot) bool {
	return s.Kind == KindInterest && s.Reverse != nil && s.Reverse.Kind == KindInterest
}
