package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAnswer(t *testing.T) {
	single := Question{Type: QuestionTypeSingleChoice}
	multi := Question{Type: QuestionTypeMultiChoice}
	text := Question{Type: QuestionTypeFreeText}

	t.Run("single choice index", func(t *testing.T) {
		a, err := DecodeAnswer(single, json.RawMessage(`2`))
		require.NoError(t, err)
		require.NotNil(t, a.Choice)
		assert.Equal(t, 2, *a.Choice)
	})

	t.Run("null is unanswered", func(t *testing.T) {
		a, err := DecodeAnswer(single, json.RawMessage(`null`))
		require.NoError(t, err)
		assert.False(t, a.Answered())
		assert.Equal(t, QuestionTypeSingleChoice, a.Type)
	})

	t.Run("empty raw is unanswered", func(t *testing.T) {
		a, err := DecodeAnswer(text, nil)
		require.NoError(t, err)
		assert.False(t, a.Answered())
	})

	t.Run("multi choice is deduplicated and sorted", func(t *testing.T) {
		a, err := DecodeAnswer(multi, json.RawMessage(`[2, 0, 2]`))
		require.NoError(t, err)
		assert.Equal(t, []int{0, 2}, a.Choices)
	})

	t.Run("free text", func(t *testing.T) {
		a, err := DecodeAnswer(text, json.RawMessage(`"hello"`))
		require.NoError(t, err)
		assert.Equal(t, "hello", a.Text)
		assert.True(t, a.Answered())
	})

	shapeErrors := []struct {
		name string
		q    Question
		raw  string
	}{
		{"text for single choice", single, `"one"`},
		{"list for single choice", single, `[1]`},
		{"index for multi choice", multi, `1`},
		{"number for free text", text, `42`},
	}
	for _, tt := range shapeErrors {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAnswer(tt.q, json.RawMessage(tt.raw))
			assert.ErrorIs(t, err, ErrAnswerShape)
		})
	}
}

func TestAnswerJSONRoundTrip(t *testing.T) {
	answers := []Answer{
		ChoiceAnswer(1),
		Unanswered(QuestionTypeSingleChoice),
		ChoicesAnswer(3, 1),
		Unanswered(QuestionTypeMultiChoice),
		TextAnswer("free text"),
	}

	for _, a := range answers {
		raw, err := json.Marshal(a)
		require.NoError(t, err)

		var back Answer
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, a, back, string(raw))
	}
}

func TestAnswerUnmarshalRejectsUnknownType(t *testing.T) {
	var a Answer
	err := json.Unmarshal([]byte(`{"type":"ESSAY","value":"x"}`), &a)
	assert.ErrorIs(t, err, ErrAnswerShape)
}

func TestGradingState(t *testing.T) {
	script := &AnswerScript{
		Questions: []Question{
			{Type: QuestionTypeSingleChoice},
			{Type: QuestionTypeFreeText},
			{Type: QuestionTypeFreeText},
		},
	}

	assert.Equal(t, GradingStateSubmitted, script.GradingState())

	script.ManualScores = ManualScores{1: 2}
	assert.Equal(t, GradingStatePartiallyGraded, script.GradingState())

	script.ManualScores[2] = 0
	assert.Equal(t, GradingStateFullyGraded, script.GradingState())

	autoOnly := &AnswerScript{Questions: []Question{{Type: QuestionTypeMultiChoice}}}
	assert.Equal(t, GradingStateFullyGraded, autoOnly.GradingState())
}

func TestAttemptExpired(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &Attempt{StartedAt: start, Deadline: start.Add(10 * time.Minute)}

	assert.False(t, a.Expired(a.Deadline, 0))
	assert.False(t, a.Expired(a.Deadline.Add(20*time.Second), 30*time.Second))
	assert.True(t, a.Expired(a.Deadline.Add(31*time.Second), 30*time.Second))
}
