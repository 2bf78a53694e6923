package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScoreStatus tells whether every question of a script has been scored.
type ScoreStatus string

const (
	ScoreStatusPending ScoreStatus = "PENDING"
	ScoreStatusGraded  ScoreStatus = "GRADED"
)

// GradingState is the lifecycle position of a submitted script, derived from
// the manual scores recorded so far.
type GradingState string

const (
	GradingStateSubmitted       GradingState = "SUBMITTED"
	GradingStatePartiallyGraded GradingState = "PARTIALLY_GRADED"
	GradingStateFullyGraded     GradingState = "FULLY_GRADED"
)

// ScoreSummary is the result of aggregating a script. FinalPoints and
// Percentage stay nil while any free-text answer awaits a manual score.
type ScoreSummary struct {
	Status               ScoreStatus `json:"status"`
	AutoCorrectCount     int         `json:"auto_correct_count"`
	AutoTotal            int         `json:"auto_total"`
	AutoPoints           int         `json:"auto_points"`
	ManualPoints         int         `json:"manual_points"`
	PendingManualGrading bool        `json:"pending_manual_grading"`
	PendingQuestions     []int       `json:"pending_questions"`
	FinalPoints          *int        `json:"final_points"`
	TotalPossiblePoints  int         `json:"total_possible_points"`
	Percentage           *int        `json:"percentage"`
}

// AutoScore renders the auto-grading progress as "correct/total".
func (s ScoreSummary) AutoScore() string {
	return fmt.Sprintf("%d/%d", s.AutoCorrectCount, s.AutoTotal)
}

// Display renders the canonical score: "PENDING" or "final/total" points.
func (s ScoreSummary) Display() string {
	if s.FinalPoints == nil {
		return string(ScoreStatusPending)
	}
	return fmt.Sprintf("%d/%d", *s.FinalPoints, s.TotalPossiblePoints)
}

// ManualScores maps a free-text question index to the points awarded.
type ManualScores map[int]int

// Clone returns an independent copy.
func (m ManualScores) Clone() ManualScores {
	out := make(ManualScores, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ScriptAnswer is one stored answer with its auto-grading verdict.
// IsAutoCorrect is nil for free-text questions.
type ScriptAnswer struct {
	Response      Answer `json:"response"`
	IsAutoCorrect *bool  `json:"is_auto_correct"`
}

// AnswerScript is a single submission against a template. Title and
// questions are snapshots taken at submission time; TemplateID is a weak
// reference that may outlive the template.
type AnswerScript struct {
	ID                   uuid.UUID      `json:"id"`
	TemplateID           uuid.UUID      `json:"template_id"`
	TemplateTitle        string         `json:"template_title"`
	OwnerID              uuid.UUID      `json:"owner_id"`
	Questions            []Question     `json:"questions"`
	RespondentName       string         `json:"respondent_name"`
	RespondentExternalID string         `json:"respondent_external_id"`
	Answers              []ScriptAnswer `json:"answers"`
	AutoScore            string         `json:"auto_score"`
	ManualScores         ManualScores   `json:"manual_scores"`
	Summary              ScoreSummary   `json:"summary"`
	IsPreview            bool           `json:"is_preview"`
	StartedAt            *time.Time     `json:"started_at,omitempty"`
	SubmittedAt          time.Time      `json:"submitted_at"`
	GradedAt             *time.Time     `json:"graded_at,omitempty"`
}

// Responses returns the bare answers in question order.
func (s *AnswerScript) Responses() []Answer {
	out := make([]Answer, len(s.Answers))
	for i, a := range s.Answers {
		out[i] = a.Response
	}
	return out
}

// GradingState derives the lifecycle state from the manual scores present.
// A script without free-text questions is fully graded on submission.
func (s *AnswerScript) GradingState() GradingState {
	manual, graded := 0, 0
	for i, q := range s.Questions {
		if q.Type != QuestionTypeFreeText {
			continue
		}
		manual++
		if _, ok := s.ManualScores[i]; ok {
			graded++
		}
	}
	switch {
	case graded == manual:
		return GradingStateFullyGraded
	case graded == 0:
		return GradingStateSubmitted
	default:
		return GradingStatePartiallyGraded
	}
}

// SubmissionRequest is the public payload for submitting answers. Answers
// are untagged values decoded against the template's questions.
type SubmissionRequest struct {
	RespondentName       string            `json:"respondent_name" binding:"required,min=1,max=200"`
	RespondentExternalID string            `json:"respondent_external_id" binding:"max=200"`
	Answers              []json.RawMessage `json:"answers" binding:"required"`
	AttemptID            *uuid.UUID        `json:"attempt_id"`
}

// ManualScoreRequest sets the points for one free-text question.
type ManualScoreRequest struct {
	Points *int `json:"points" binding:"required"`
}

// BulkManualScoreRequest sets several free-text scores at once. Keys are
// question indices.
type BulkManualScoreRequest struct {
	Scores map[int]int `json:"scores" binding:"required,min=1"`
}

// AnswerScriptListItem is the list view of a script.
type AnswerScriptListItem struct {
	ID             uuid.UUID    `json:"id"`
	TemplateID     uuid.UUID    `json:"template_id"`
	TemplateTitle  string       `json:"template_title"`
	RespondentName string       `json:"respondent_name"`
	AutoScore      string       `json:"auto_score"`
	Score          string       `json:"score"`
	GradingState   GradingState `json:"grading_state"`
	IsPreview      bool         `json:"is_preview"`
	SubmittedAt    time.Time    `json:"submitted_at"`
}

// ListItem builds the list view of the script.
func (s *AnswerScript) ListItem() AnswerScriptListItem {
	return AnswerScriptListItem{
		ID:             s.ID,
		TemplateID:     s.TemplateID,
		TemplateTitle:  s.TemplateTitle,
		RespondentName: s.RespondentName,
		AutoScore:      s.AutoScore,
		Score:          s.Summary.Display(),
		GradingState:   s.GradingState(),
		IsPreview:      s.IsPreview,
		SubmittedAt:    s.SubmittedAt,
	}
}

// RespondentResult is what a respondent sees after submitting.
type RespondentResult struct {
	ID             uuid.UUID      `json:"id"`
	TemplateTitle  string         `json:"template_title"`
	RespondentName string         `json:"respondent_name"`
	SubmittedAt    time.Time      `json:"submitted_at"`
	Answers        []ScriptAnswer `json:"answers"`
	Summary        ScoreSummary   `json:"summary"`
	GradingState   GradingState   `json:"grading_state"`
}
