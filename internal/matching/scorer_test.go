package matching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurtgav/wizardmatch-sub001/internal/survey"
)

func choiceQuestion(order int, weight float64, choices ...string) *survey.Question {
	return &survey.Question{
		ID:           uuid.New(),
		QuestionType: survey.TypeMultipleChoice,
		Options:      survey.Options{Choices: choices},
		Weight:       weight,
		OrderIndex:   order,
		IsActive:     true,
	}
}

func scaleQuestion(order int, weight float64, min, max int) *survey.Question {
	return &survey.Question{
		ID:           uuid.New(),
		QuestionType: survey.TypeScale,
		Options:      survey.Options{Min: min, Max: max},
		Weight:       weight,
		OrderIndex:   order,
		IsActive:     true,
	}
}

func TestScoreWeightedAverage(t *testing.T) {
	q1 := choiceQuestion(1, 2.0, "coffee", "tea")
	q2 := choiceQuestion(2, 1.0, "beach", "mountains")
	q3 := scaleQuestion(3, 1.0, 1, 5)
	catalog := survey.NewCatalog([]*survey.Question{q1, q2, q3})

	a := survey.AnswerVector{
		q1.ID: survey.ChoiceAnswer{Option: "coffee"},
		q2.ID: survey.ChoiceAnswer{Option: "beach"},
		q3.ID: survey.ScaleAnswer{Value: 2},
	}
	b := survey.AnswerVector{
		q1.ID: survey.ChoiceAnswer{Option: "coffee"},
		q2.ID: survey.ChoiceAnswer{Option: "beach"},
		q3.ID: survey.ScaleAnswer{Value: 4},
	}

	res, ok, err := Score(catalog, a, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 87.5, res.Score)
	assert.Equal(t, TierExcellent, res.Tier)
	assert.Equal(t, 3, res.Overlap)
	assert.Equal(t, []uuid.UUID{q1.ID, q2.ID}, res.SharedInterests)
}

func TestScoreIsSymmetricAndDeterministic(t *testing.T) {
	questions := []*survey.Question{
		choiceQuestion(1, 1.3, "a", "b", "c"),
		scaleQuestion(2, 0.7, 1, 10),
		scaleQuestion(3, 2.9, 0, 7),
		choiceQuestion(4, 0.1, "x", "y"),
	}
	catalog := survey.NewCatalog(questions)

	a := survey.AnswerVector{
		questions[0].ID: survey.ChoiceAnswer{Option: "a"},
		questions[1].ID: survey.ScaleAnswer{Value: 3},
		questions[2].ID: survey.ScaleAnswer{Value: 6},
		questions[3].ID: survey.ChoiceAnswer{Option: "y"},
	}
	b := survey.AnswerVector{
		questions[0].ID: survey.ChoiceAnswer{Option: "b"},
		questions[1].ID: survey.ScaleAnswer{Value: 9},
		questions[2].ID: survey.ScaleAnswer{Value: 1},
		questions[3].ID: survey.ChoiceAnswer{Option: "y"},
	}

	ab, ok, err := Score(catalog, a, b)
	require.NoError(t, err)
	require.True(t, ok)

	for i := 0; i < 20; i++ {
		ba, _, err := Score(catalog, b, a)
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	}
	assert.GreaterOrEqual(t, ab.Score, 0.0)
	assert.LessOrEqual(t, ab.Score, 100.0)
}

func TestScoreOnlyCountsSharedQuestions(t *testing.T) {
	q1 := choiceQuestion(1, 5, "a", "b")
	q2 := choiceQuestion(2, 1, "a", "b")
	catalog := survey.NewCatalog([]*survey.Question{q1, q2})

	a := survey.AnswerVector{q1.ID: survey.ChoiceAnswer{Option: "a"}, q2.ID: survey.ChoiceAnswer{Option: "a"}}
	b := survey.AnswerVector{q2.ID: survey.ChoiceAnswer{Option: "a"}}

	res, ok, err := Score(catalog, a, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, TierPerfect, res.Tier)
	assert.Equal(t, 1, res.Overlap)
}

func TestScoreNoOverlap(t *testing.T) {
	q1 := choiceQuestion(1, 1, "a", "b")
	q2 := scaleQuestion(2, 1, 1, 5)
	catalog := survey.NewCatalog([]*survey.Question{q1, q2})

	a := survey.AnswerVector{q1.ID: survey.ChoiceAnswer{Option: "a"}}
	b := survey.AnswerVector{q2.ID: survey.ScaleAnswer{Value: 3}}

	_, ok, err := Score(catalog, a, b)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = Score(catalog, survey.AnswerVector{}, survey.AnswerVector{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScoreIgnoresTextQuestions(t *testing.T) {
	text := &survey.Question{ID: uuid.New(), QuestionType: survey.TypeText, Weight: 10, IsActive: true}
	q := choiceQuestion(1, 1, "a", "b")
	catalog := survey.NewCatalog([]*survey.Question{text, q})
	require.Equal(t, 1, catalog.Len())

	a := survey.AnswerVector{q.ID: survey.ChoiceAnswer{Option: "a"}, text.ID: survey.TextAnswer{Text: "hi"}}
	b := survey.AnswerVector{q.ID: survey.ChoiceAnswer{Option: "b"}, text.ID: survey.TextAnswer{Text: "hi"}}

	res, ok, err := Score(catalog, a, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, TierFair, res.Tier)
	assert.Empty(t, res.SharedInterests)
}

func TestScoreClampsOutOfRangeScale(t *testing.T) {
	q := scaleQuestion(1, 1, 1, 5)
	catalog := survey.NewCatalog([]*survey.Question{q})

	a := survey.AnswerVector{q.ID: survey.ScaleAnswer{Value: -20}}
	b := survey.AnswerVector{q.ID: survey.ScaleAnswer{Value: 5}}

	res, ok, err := Score(catalog, a, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.0, res.Score)
}

func TestScoreErrors(t *testing.T) {
	tests := []struct {
		name string
		q    *survey.Question
		a, b survey.Answer
	}{
		{
			name: "empty scale bounds",
			q:    scaleQuestion(1, 1, 3, 3),
			a:    survey.ScaleAnswer{Value: 3},
			b:    survey.ScaleAnswer{Value: 3},
		},
		{
			name: "zero weight",
			q:    choiceQuestion(1, 0, "a"),
			a:    survey.ChoiceAnswer{Option: "a"},
			b:    survey.ChoiceAnswer{Option: "a"},
		},
		{
			name: "mismatched answer shape",
			q:    scaleQuestion(1, 1, 1, 5),
			a:    survey.ScaleAnswer{Value: 3},
			b:    survey.ChoiceAnswer{Option: "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := survey.NewCatalog([]*survey.Question{tt.q})
			_, _, err := Score(catalog,
				survey.AnswerVector{tt.q.ID: tt.a},
				survey.AnswerVector{tt.q.ID: tt.b},
			)
			assert.Error(t, err)
		})
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{100, TierPerfect},
		{90, TierPerfect},
		{89.99, TierExcellent},
		{75, TierExcellent},
		{74.99, TierGreat},
		{60, TierGreat},
		{59.99, TierGood},
		{45, TierGood},
		{44.99, TierFair},
		{0, TierFair},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.score), "score %v", tt.score)
	}
}

func TestNewPairIsCanonical(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	p1 := NewPair(a, b)
	p2 := NewPair(b, a)

	assert.Equal(t, p1, p2)
	assert.Less(t, p1.User1.String(), p1.User2.String())
	assert.True(t, p1.Has(a))
	assert.Equal(t, b, p1.Other(a))
}
