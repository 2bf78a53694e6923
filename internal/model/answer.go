package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrAnswerShape is returned when a submitted value does not match the shape
// required by the question type.
var ErrAnswerShape = errors.New("answer does not match question type")

// Answer is a tagged union over the three question types. Type selects which
// of Choice, Choices or Text is meaningful.
type Answer struct {
	Type    QuestionType
	Choice  *int  // SINGLE_CHOICE, nil when unanswered
	Choices []int // MULTI_CHOICE, sorted and deduplicated
	Text    string
}

// ChoiceAnswer builds a single-choice answer.
func ChoiceAnswer(index int) Answer {
	return Answer{Type: QuestionTypeSingleChoice, Choice: &index}
}

// ChoicesAnswer builds a multi-choice answer; duplicates are dropped.
func ChoicesAnswer(indices ...int) Answer {
	return Answer{Type: QuestionTypeMultiChoice, Choices: normalizeChoices(indices)}
}

// TextAnswer builds a free-text answer.
func TextAnswer(text string) Answer {
	return Answer{Type: QuestionTypeFreeText, Text: text}
}

// Unanswered returns the empty answer for a question type.
func Unanswered(t QuestionType) Answer {
	return Answer{Type: t}
}

// Answered reports whether the respondent supplied a value.
func (a Answer) Answered() bool {
	switch a.Type {
	case QuestionTypeSingleChoice:
		return a.Choice != nil
	case QuestionTypeMultiChoice:
		return len(a.Choices) > 0
	case QuestionTypeFreeText:
		return strings.TrimSpace(a.Text) != ""
	}
	return false
}

// Value returns the untagged wire value of the answer.
func (a Answer) Value() any {
	switch a.Type {
	case QuestionTypeSingleChoice:
		if a.Choice == nil {
			return nil
		}
		return *a.Choice
	case QuestionTypeMultiChoice:
		if a.Choices == nil {
			return nil
		}
		return a.Choices
	case QuestionTypeFreeText:
		return a.Text
	}
	return nil
}

type answerJSON struct {
	Type  QuestionType    `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the answer as {"type": ..., "value": ...}.
func (a Answer) MarshalJSON() ([]byte, error) {
	value, err := json.Marshal(a.Value())
	if err != nil {
		return nil, err
	}
	return json.Marshal(answerJSON{Type: a.Type, Value: value})
}

// UnmarshalJSON decodes the tagged form written by MarshalJSON.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw answerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrAnswerShape, raw.Type)
	}
	decoded, err := decodeValue(raw.Type, raw.Value)
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// DecodeAnswer interprets an untagged submitted value against the question
// it answers. A missing or null value is an unanswered question, never an
// error; a value of the wrong shape is ErrAnswerShape.
func DecodeAnswer(q Question, raw json.RawMessage) (Answer, error) {
	return decodeValue(q.Type, raw)
}

func decodeValue(t QuestionType, raw json.RawMessage) (Answer, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Unanswered(t), nil
	}

	switch t {
	case QuestionTypeSingleChoice:
		var idx int
		if err := json.Unmarshal(trimmed, &idx); err != nil {
			return Answer{}, fmt.Errorf("%w: expected an option index", ErrAnswerShape)
		}
		return ChoiceAnswer(idx), nil
	case QuestionTypeMultiChoice:
		var indices []int
		if err := json.Unmarshal(trimmed, &indices); err != nil {
			return Answer{}, fmt.Errorf("%w: expected a list of option indices", ErrAnswerShape)
		}
		return ChoicesAnswer(indices...), nil
	case QuestionTypeFreeText:
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return Answer{}, fmt.Errorf("%w: expected text", ErrAnswerShape)
		}
		return TextAnswer(text), nil
	}
	return Answer{}, fmt.Errorf("%w: unknown type %q", ErrAnswerShape, t)
}

func normalizeChoices(indices []int) []int {
	if indices == nil {
		return nil
	}
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, len(indices))
	for _, idx := range indices {
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
