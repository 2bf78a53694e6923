package scoring

import (
	"math"

	"github.com/Dhrubajit-says/FormForge/internal/model"
)

// Aggregate combines the engine verdicts with the manual scores into a
// summary. Manual scores for indices that are not free-text questions are
// ignored. Calling it twice on the same input yields the same summary.
func Aggregate(questions []model.Question, answers []model.Answer, manual model.ManualScores) model.ScoreSummary {
	s := model.ScoreSummary{PendingQuestions: []int{}}

	for i, q := range questions {
		s.TotalPossiblePoints += q.Points

		if q.Type.AutoGradable() {
			s.AutoTotal++
			res := Evaluate(q, answerAt(answers, i, q.Type))
			if res.Status == StatusCorrect {
				s.AutoCorrectCount++
				s.AutoPoints += res.AutoPoints
			}
			continue
		}

		points, ok := manual[i]
		if !ok {
			s.PendingQuestions = append(s.PendingQuestions, i)
			continue
		}
		s.ManualPoints += points
	}

	if len(s.PendingQuestions) > 0 {
		s.Status = model.ScoreStatusPending
		s.PendingManualGrading = true
		return s
	}

	final := s.AutoPoints + s.ManualPoints
	s.Status = model.ScoreStatusGraded
	s.FinalPoints = &final
	pct := Percentage(final, s.TotalPossiblePoints)
	s.Percentage = &pct
	return s
}

// Percentage returns final/total*100 rounded half away from zero.
func Percentage(final, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(final) * 100 / float64(total)))
}
