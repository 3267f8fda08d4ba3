package survey

import (
	"sort"

	"github.com/google/uuid"
)

// AnswerVector maps question id to a scorable answer. It only ever holds
// ChoiceAnswer and ScaleAnswer values.
type AnswerVector map[uuid.UUID]Answer

// Catalog is the active, scorable question set of a campaign, in
// deterministic order.
type Catalog struct {
	Questions []*Question
	byID      map[uuid.UUID]*Question
}

// NewCatalog keeps active multiple choice and scale questions and orders
// them by orderIndex, then id.
func NewCatalog(questions []*Question) *Catalog {
	c := &Catalog{byID: make(map[uuid.UUID]*Question)}
	for _, q := range questions {
		if !q.IsActive || q.QuestionType == TypeText {
			continue
		}
		c.Questions = append(c.Questions, q)
		c.byID[q.ID] = q
	}
	sort.Slice(c.Questions, func(i, j int) bool {
		a, b := c.Questions[i], c.Questions[j]
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		return a.ID.String() < b.ID.String()
	})
	return c
}

func (c *Catalog) Get(id uuid.UUID) (*Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

func (c *Catalog) Len() int { return len(c.Questions) }

// Aggregation is the aggregator output for one campaign.
type Aggregation struct {
	Vectors map[uuid.UUID]AnswerVector
	// Users in order; only users with at least one scorable answer.
	Users []uuid.UUID
	// Responses dropped because they referenced inactive or unscorable
	// questions, or did not match the question's type.
	Dropped int
}

// Aggregate builds answer vectors for the eligible users only. Responses
// from anyone outside eligible are ignored, so an empty set yields nothing.
func Aggregate(catalog *Catalog, responses []*Response, eligible []uuid.UUID) *Aggregation {
	allowed := make(map[uuid.UUID]struct{}, len(eligible))
	for _, id := range eligible {
		allowed[id] = struct{}{}
	}

	agg := &Aggregation{Vectors: make(map[uuid.UUID]AnswerVector)}
	for _, r := range responses {
		if _, ok := allowed[r.UserID]; !ok {
			continue
		}

		q, ok := catalog.Get(r.QuestionID)
		if !ok || q.QuestionType != r.AnswerType {
			agg.Dropped++
			continue
		}

		a, err := r.Answer()
		if err != nil {
			agg.Dropped++
			continue
		}

		vec, ok := agg.Vectors[r.UserID]
		if !ok {
			vec = make(AnswerVector)
			agg.Vectors[r.UserID] = vec
		}
		vec[r.QuestionID] = a
	}

	for id := range agg.Vectors {
		agg.Users = append(agg.Users, id)
	}
	sort.Slice(agg.Users, func(i, j int) bool {
		return agg.Users[i].String() < agg.Users[j].String()
	})
	return agg
}
