package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhrubajit-says/FormForge/internal/model"
)

func TestAggregateAllSingleChoiceCorrect(t *testing.T) {
	questions := []model.Question{singleChoice(1, 1), singleChoice(0, 1)}
	answers := []model.Answer{model.ChoiceAnswer(1), model.ChoiceAnswer(0)}

	s := Aggregate(questions, answers, nil)

	assert.Equal(t, 2, s.AutoCorrectCount)
	assert.Equal(t, 2, s.AutoTotal)
	assert.False(t, s.PendingManualGrading)
	assert.Equal(t, model.ScoreStatusGraded, s.Status)
	require.NotNil(t, s.FinalPoints)
	assert.Equal(t, 2, *s.FinalPoints)
	assert.Equal(t, 2, s.TotalPossiblePoints)
	require.NotNil(t, s.Percentage)
	assert.Equal(t, 100, *s.Percentage)
	assert.Equal(t, "2/2", s.AutoScore())
	assert.Equal(t, "2/2", s.Display())
}

func TestAggregateMultiChoicePoints(t *testing.T) {
	questions := []model.Question{multiChoice(2, 0, 2)}

	tests := []struct {
		name   string
		answer model.Answer
		want   int
	}{
		{"subset scores nothing", model.ChoicesAnswer(0), 0},
		{"exact set scores full points", model.ChoicesAnswer(0, 2), 2},
		{"superset scores nothing", model.ChoicesAnswer(0, 1, 2), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Aggregate(questions, []model.Answer{tt.answer}, nil)
			require.NotNil(t, s.FinalPoints)
			assert.Equal(t, tt.want, *s.FinalPoints)
			assert.Equal(t, 2, s.TotalPossiblePoints)
		})
	}
}

func TestAggregateFreeTextPendingThenGraded(t *testing.T) {
	questions := []model.Question{singleChoice(0, 1), freeText(3)}

	for _, choice := range []int{0, 2} {
		answers := []model.Answer{model.ChoiceAnswer(choice), model.TextAnswer("an essay")}

		pending := Aggregate(questions, answers, nil)
		assert.True(t, pending.PendingManualGrading)
		assert.Equal(t, model.ScoreStatusPending, pending.Status)
		assert.Nil(t, pending.FinalPoints)
		assert.Nil(t, pending.Percentage)
		assert.Equal(t, []int{1}, pending.PendingQuestions)
		assert.Equal(t, "PENDING", pending.Display())

		graded := Aggregate(questions, answers, model.ManualScores{1: 2})
		assert.False(t, graded.PendingManualGrading)
		require.NotNil(t, graded.FinalPoints)
		expected := 2
		if choice == 0 {
			expected = 3
		}
		assert.Equal(t, expected, *graded.FinalPoints)
		assert.Equal(t, 4, graded.TotalPossiblePoints)
		assert.Equal(t, 2, graded.ManualPoints)
	}
}

func TestAggregateIgnoresManualScoresOnChoiceQuestions(t *testing.T) {
	questions := []model.Question{singleChoice(0, 1)}
	answers := []model.Answer{model.ChoiceAnswer(1)}

	s := Aggregate(questions, answers, model.ManualScores{0: 1})
	require.NotNil(t, s.FinalPoints)
	assert.Equal(t, 0, *s.FinalPoints)
	assert.Zero(t, s.ManualPoints)
}

func TestAggregateIsIdempotent(t *testing.T) {
	questions := []model.Question{singleChoice(1, 2), multiChoice(3, 1, 3), freeText(5)}
	answers := []model.Answer{
		model.ChoiceAnswer(1),
		model.ChoicesAnswer(3, 1),
		model.TextAnswer("text"),
	}
	manual := model.ManualScores{2: 4}

	first := Aggregate(questions, answers, manual)
	second := Aggregate(questions, answers, manual)
	assert.Equal(t, first, second)
}

func TestAggregateManualZeroCountsAsGraded(t *testing.T) {
	questions := []model.Question{freeText(2)}
	answers := []model.Answer{model.TextAnswer("")}

	s := Aggregate(questions, answers, model.ManualScores{0: 0})
	assert.Equal(t, model.ScoreStatusGraded, s.Status)
	require.NotNil(t, s.Percentage)
	assert.Equal(t, 0, *s.Percentage)
}

func TestPercentageRoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		final, total, want int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{1, 200, 1},
		{0, 5, 0},
		{5, 5, 100},
		{3, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.final, tt.total), "%d/%d", tt.final, tt.total)
	}
}
