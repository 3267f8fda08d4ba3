package matching

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/kurtgav/wizardmatch-sub001/internal/survey"
)

// ScoreResult is the scorer output for one pair.
type ScoreResult struct {
	Score           float64
	Tier            Tier
	SharedInterests []uuid.UUID
	Overlap         int
}

// Score compares two answer vectors over the catalog. ok is false when the
// users share no answered question; such a pair gets no match. The
// catalog is walked in its fixed order so repeated and swapped calls sum
// in the same sequence and produce identical floats.
func Score(catalog *survey.Catalog, a, b survey.AnswerVector) (res ScoreResult, ok bool, err error) {
	var weighted, totalWeight float64

	for _, q := range catalog.Questions {
		ansA, okA := a[q.ID]
		ansB, okB := b[q.ID]
		if !okA || !okB {
			continue
		}
		if q.Weight <= 0 {
			return ScoreResult{}, false, fmt.Errorf("question %s has non-positive weight %v", q.ID, q.Weight)
		}

		sim, err := similarity(q, ansA, ansB)
		if err != nil {
			return ScoreResult{}, false, err
		}

		weighted += sim * q.Weight
		totalWeight += q.Weight
		res.Overlap++

		if q.QuestionType == survey.TypeMultipleChoice && sim == 1 {
			res.SharedInterests = append(res.SharedInterests, q.ID)
		}
	}

	if res.Overlap == 0 {
		return ScoreResult{}, false, nil
	}

	res.Score = roundScore(weighted / totalWeight)
	res.Tier = TierFor(res.Score)
	return res, true, nil
}

func similarity(q *survey.Question, a, b survey.Answer) (float64, error) {
	switch q.QuestionType {
	case survey.TypeMultipleChoice:
		ca, okA := a.(survey.ChoiceAnswer)
		cb, okB := b.(survey.ChoiceAnswer)
		if !okA || !okB {
			return 0, fmt.Errorf("question %s: expected multiple choice answers", q.ID)
		}
		if ca.Option == cb.Option {
			return 1, nil
		}
		return 0, nil

	case survey.TypeScale:
		sa, okA := a.(survey.ScaleAnswer)
		sb, okB := b.(survey.ScaleAnswer)
		if !okA || !okB {
			return 0, fmt.Errorf("question %s: expected scale answers", q.ID)
		}
		span := q.Options.Max - q.Options.Min
		if span <= 0 {
			return 0, fmt.Errorf("question %s: scale bounds [%d,%d] are empty", q.ID, q.Options.Min, q.Options.Max)
		}
		diff := math.Abs(float64(sa.Value - sb.Value))
		return clamp01(1 - diff/float64(span)), nil

	default:
		return 0, fmt.Errorf("question %s: type %q is not scorable", q.ID, q.QuestionType)
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// roundScore turns a [0,1] similarity into a percentage with two decimals.
func roundScore(raw float64) float64 {
	return math.Round(raw*100*100) / 100
}
