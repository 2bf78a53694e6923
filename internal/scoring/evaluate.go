// Package scoring decides per-question correctness and aggregates a
// submission into a score summary. Everything here is pure.
package scoring

import "github.com/Dhrubajit-says/FormForge/internal/model"

// Status is the verdict for a single answer.
type Status string

const (
	StatusCorrect   Status = "CORRECT"
	StatusIncorrect Status = "INCORRECT"
	StatusPending   Status = "PENDING"
)

// Result is the outcome of evaluating one answer.
type Result struct {
	Status     Status
	AutoPoints int
	MaxPoints  int
	Answered   bool
}

// NeedsManual reports whether a grader must score the answer.
func (r Result) NeedsManual() bool {
	return r.Status == StatusPending
}

type evaluator func(q model.Question, a model.Answer) bool

var evaluators = map[model.QuestionType]evaluator{
	model.QuestionTypeSingleChoice: matchSingle,
	model.QuestionTypeMultiChoice:  matchMulti,
}

// Evaluate classifies an answer against its question. Unanswered and
// out-of-range choices are incorrect; free text is always pending.
func Evaluate(q model.Question, a model.Answer) Result {
	res := Result{MaxPoints: q.Points}
	if a.Type == q.Type {
		res.Answered = a.Answered()
	}

	match, ok := evaluators[q.Type]
	if !ok {
		res.Status = StatusPending
		return res
	}

	if a.Type != q.Type || !match(q, a) {
		res.Status = StatusIncorrect
		return res
	}
	res.Status = StatusCorrect
	res.AutoPoints = q.Points
	return res
}

func matchSingle(q model.Question, a model.Answer) bool {
	if a.Choice == nil || q.CorrectOption == nil {
		return false
	}
	return *a.Choice == *q.CorrectOption
}

// matchMulti is all-or-nothing: the deduplicated submitted set must equal
// the correct set exactly.
func matchMulti(q model.Question, a model.Answer) bool {
	if len(a.Choices) == 0 || len(q.CorrectOptions) == 0 {
		return false
	}
	want := toSet(q.CorrectOptions)
	got := toSet(a.Choices)
	if len(want) != len(got) {
		return false
	}
	for k := range got {
		if _, ok := want[k]; !ok {
			return false
		}
	}
	return true
}

func toSet(xs []int) map[int]struct{} {
	m := make(map[int]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}

// Mark evaluates every answer and attaches the auto-grading verdict used for
// storage. Missing trailing answers are treated as unanswered.
func Mark(questions []model.Question, answers []model.Answer) []model.ScriptAnswer {
	out := make([]model.ScriptAnswer, len(questions))
	for i, q := range questions {
		a := answerAt(answers, i, q.Type)
		out[i] = model.ScriptAnswer{Response: a}
		if !q.Type.AutoGradable() {
			continue
		}
		correct := Evaluate(q, a).Status == StatusCorrect
		out[i].IsAutoCorrect = &correct
	}
	return out
}

func answerAt(answers []model.Answer, i int, t model.QuestionType) model.Answer {
	if i < len(answers) {
		return answers[i]
	}
	return model.Unanswered(t)
}
