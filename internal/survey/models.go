package survey

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuestionType discriminates both the option set and the answer shape.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeScale          QuestionType = "scale"
	TypeText           QuestionType = "text"
)

// Options is the stored option set of a question. Multiple choice
// questions store a JSON array of literals; scale questions store an
// object with min, max and optional ordinal labels; text stores nothing.
type Options struct {
	Choices []string `json:"choices,omitempty"`
	Min     int      `json:"min,omitempty"`
	Max     int      `json:"max,omitempty"`
	Labels  []string `json:"labels,omitempty"`
}

func (o *Options) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = Options{}
		return nil
	}
	if data[0] == '[' {
		var choices []string
		if err := json.Unmarshal(data, &choices); err != nil {
			return fmt.Errorf("invalid choice list: %w", err)
		}
		*o = Options{Choices: choices}
		return nil
	}

	type plain Options
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	*o = Options(p)
	return nil
}

// Scan implements sql.Scanner for the JSONB options column.
func (o *Options) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*o = Options{}
		return nil
	case []byte:
		return o.UnmarshalJSON(v)
	case string:
		return o.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported options type %T", src)
	}
}

// Value implements driver.Valuer.
func (o Options) Value() (driver.Value, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// HasChoice reports whether literal is one of the listed options.
func (o Options) HasChoice(literal string) bool {
	for _, c := range o.Choices {
		if c == literal {
			return true
		}
	}
	return false
}

// Question is one catalog entry.
type Question struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	CampaignID   uuid.UUID    `db:"campaign_id" json:"campaignId"`
	Category     string       `db:"category" json:"category"`
	QuestionText string       `db:"question_text" json:"questionText"`
	QuestionType QuestionType `db:"question_type" json:"questionType"`
	Options      Options      `db:"options" json:"options"`
	Weight       float64      `db:"weight" json:"weight"`
	OrderIndex   int          `db:"order_index" json:"orderIndex"`
	IsActive     bool         `db:"is_active" json:"isActive"`
}

// Answer is a tagged union over the three question types. Exactly one of
// the concrete types below implements it.
type Answer interface {
	Type() QuestionType
	isAnswer()
}

// ChoiceAnswer is the selected option literal of a multiple choice question.
type ChoiceAnswer struct {
	Option string
}

// ScaleAnswer is a point on a numeric scale.
type ScaleAnswer struct {
	Value int
}

// TextAnswer is free text. It is stored but never scored.
type TextAnswer struct {
	Text string
}

func (ChoiceAnswer) Type() QuestionType { return TypeMultipleChoice }
func (ScaleAnswer) Type() QuestionType  { return TypeScale }
func (TextAnswer) Type() QuestionType   { return TypeText }

func (ChoiceAnswer) isAnswer() {}
func (ScaleAnswer) isAnswer()  {}
func (TextAnswer) isAnswer()   {}

var errAnswerShape = errors.New("stored answer does not match its type")

// Response is one stored (user, question) answer row.
type Response struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	UserID      uuid.UUID    `db:"user_id" json:"userId"`
	CampaignID  uuid.UUID    `db:"campaign_id" json:"campaignId"`
	QuestionID  uuid.UUID    `db:"question_id" json:"questionId"`
	AnswerType  QuestionType `db:"answer_type" json:"answerType"`
	AnswerText  *string      `db:"answer_text" json:"answerText,omitempty"`
	AnswerValue *int         `db:"answer_value" json:"answerValue,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

// Answer decodes the row into its tagged form.
func (r *Response) Answer() (Answer, error) {
	switch r.AnswerType {
	case TypeMultipleChoice:
		if r.AnswerText == nil {
			return nil, errAnswerShape
		}
		return ChoiceAnswer{Option: *r.AnswerText}, nil
	case TypeScale:
		if r.AnswerValue == nil {
			return nil, errAnswerShape
		}
		return ScaleAnswer{Value: *r.AnswerValue}, nil
	case TypeText:
		if r.AnswerText == nil {
			return nil, errAnswerShape
		}
		return TextAnswer{Text: *r.AnswerText}, nil
	default:
		return nil, fmt.Errorf("unknown answer type %q", r.AnswerType)
	}
}

// setAnswer encodes a into the row columns.
func (r *Response) setAnswer(a Answer) {
	r.AnswerType = a.Type()
	r.AnswerText, r.AnswerValue = nil, nil
	switch v := a.(type) {
	case ChoiceAnswer:
		r.AnswerText = &v.Option
	case ScaleAnswer:
		r.AnswerValue = &v.Value
	case TextAnswer:
		r.AnswerText = &v.Text
	}
}

// Progress reports how much of the active catalog a user answered.
type Progress struct {
	Total       int        `json:"total"`
	Answered    int        `json:"answered"`
	Percentage  int        `json:"percentage"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
