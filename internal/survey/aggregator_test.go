package survey

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func intp(v int) *int       { return &v }

func choiceResponse(user, question uuid.UUID, option string) *Response {
	return &Response{UserID: user, QuestionID: question, AnswerType: TypeMultipleChoice, AnswerText: strp(option)}
}

func scaleResponse(user, question uuid.UUID, v int) *Response {
	return &Response{UserID: user, QuestionID: question, AnswerType: TypeScale, AnswerValue: intp(v)}
}

func TestCatalogOrdersAndFilters(t *testing.T) {
	q1 := &Question{ID: uuid.New(), QuestionType: TypeScale, OrderIndex: 2, IsActive: true}
	q2 := &Question{ID: uuid.New(), QuestionType: TypeMultipleChoice, OrderIndex: 1, IsActive: true}
	inactive := &Question{ID: uuid.New(), QuestionType: TypeMultipleChoice, OrderIndex: 0, IsActive: false}
	text := &Question{ID: uuid.New(), QuestionType: TypeText, OrderIndex: 0, IsActive: true}

	c := NewCatalog([]*Question{q1, inactive, text, q2})
	require.Equal(t, 2, c.Len())
	require.Equal(t, q2.ID, c.Questions[0].ID)
	require.Equal(t, q1.ID, c.Questions[1].ID)

	_, ok := c.Get(text.ID)
	require.False(t, ok)
}

func TestAggregate(t *testing.T) {
	mc := &Question{ID: uuid.New(), QuestionType: TypeMultipleChoice, IsActive: true}
	scale := &Question{ID: uuid.New(), QuestionType: TypeScale, IsActive: true, Options: Options{Min: 1, Max: 5}}
	text := &Question{ID: uuid.New(), QuestionType: TypeText, IsActive: true}
	retired := &Question{ID: uuid.New(), QuestionType: TypeMultipleChoice, IsActive: false}
	catalog := NewCatalog([]*Question{mc, scale, text, retired})

	alice, bob, carol, dave := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	responses := []*Response{
		choiceResponse(alice, mc.ID, "Coffee"),
		scaleResponse(alice, scale.ID, 4),
		{UserID: alice, QuestionID: text.ID, AnswerType: TypeText, AnswerText: strp("hi")},
		choiceResponse(bob, mc.ID, "Tea"),
		// carol only answered unscorable questions
		{UserID: carol, QuestionID: text.ID, AnswerType: TypeText, AnswerText: strp("hello")},
		choiceResponse(carol, retired.ID, "Yes"),
		// dave's row does not match the question type
		{UserID: dave, QuestionID: scale.ID, AnswerType: TypeMultipleChoice, AnswerText: strp("4")},
	}

	agg := Aggregate(catalog, responses, []uuid.UUID{alice, bob, carol, dave})

	require.Len(t, agg.Vectors, 2)
	require.Equal(t, ChoiceAnswer{Option: "Coffee"}, agg.Vectors[alice][mc.ID])
	require.Equal(t, ScaleAnswer{Value: 4}, agg.Vectors[alice][scale.ID])
	require.Len(t, agg.Vectors[alice], 2)
	require.Equal(t, ChoiceAnswer{Option: "Tea"}, agg.Vectors[bob][mc.ID])
	require.NotContains(t, agg.Vectors, carol)
	require.NotContains(t, agg.Vectors, dave)
	require.Equal(t, 4, agg.Dropped)

	require.Len(t, agg.Users, 2)
	require.True(t, agg.Users[0].String() < agg.Users[1].String())
}

func TestAggregateRestrictsToEligible(t *testing.T) {
	mc := &Question{ID: uuid.New(), QuestionType: TypeMultipleChoice, IsActive: true}
	catalog := NewCatalog([]*Question{mc})
	alice, bob := uuid.New(), uuid.New()

	agg := Aggregate(catalog, []*Response{
		choiceResponse(alice, mc.ID, "A"),
		choiceResponse(bob, mc.ID, "A"),
	}, []uuid.UUID{alice})

	require.Equal(t, []uuid.UUID{alice}, agg.Users)

	for _, eligible := range [][]uuid.UUID{nil, {}} {
		agg = Aggregate(catalog, []*Response{choiceResponse(alice, mc.ID, "A")}, eligible)
		require.Empty(t, agg.Users)
		require.Empty(t, agg.Vectors)
	}
}

func TestOptionsUnmarshal(t *testing.T) {
	var choices Options
	require.NoError(t, json.Unmarshal([]byte(`["Beach","Mountains"]`), &choices))
	require.True(t, choices.HasChoice("Beach"))
	require.False(t, choices.HasChoice("beach"))

	var scale Options
	require.NoError(t, scale.Scan([]byte(`{"min":1,"max":5,"labels":["Never","Always"]}`)))
	require.Equal(t, 1, scale.Min)
	require.Equal(t, 5, scale.Max)
	require.Len(t, scale.Labels, 2)

	var empty Options
	require.NoError(t, empty.Scan(nil))
	require.Empty(t, empty.Choices)
}

func TestResponseAnswerShapes(t *testing.T) {
	a, err := (&Response{AnswerType: TypeScale, AnswerValue: intp(3)}).Answer()
	require.NoError(t, err)
	require.Equal(t, ScaleAnswer{Value: 3}, a)

	_, err = (&Response{AnswerType: TypeScale}).Answer()
	require.Error(t, err)

	_, err = (&Response{AnswerType: "ranking", AnswerText: strp("x")}).Answer()
	require.Error(t, err)
}
