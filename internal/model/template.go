package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TemplateKind enumerates what a template is used for. Only TEST carries a
// time limit.
type TemplateKind string

const (
	TemplateKindQuiz          TemplateKind = "QUIZ"
	TemplateKindTest          TemplateKind = "TEST"
	TemplateKindQuestionnaire TemplateKind = "QUESTIONNAIRE"
)

// QuestionType enumerates how a question is answered and graded.
type QuestionType string

const (
	QuestionTypeSingleChoice QuestionType = "SINGLE_CHOICE"
	QuestionTypeMultiChoice  QuestionType = "MULTI_CHOICE"
	QuestionTypeFreeText     QuestionType = "FREE_TEXT"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeSingleChoice, QuestionTypeMultiChoice, QuestionTypeFreeText:
		return true
	}
	return false
}

// AutoGradable reports whether answers to t are decided by the matching
// engine rather than a human grader.
func (t QuestionType) AutoGradable() bool {
	return t == QuestionTypeSingleChoice || t == QuestionTypeMultiChoice
}

// DefaultQuestionPoints is used when a question arrives without points.
const DefaultQuestionPoints = 1

// Question is embedded in a template; it is addressed by its index.
type Question struct {
	Text           string       `json:"text"`
	ImageRef       string       `json:"image_ref,omitempty"`
	Type           QuestionType `json:"type"`
	Options        []string     `json:"options"`
	CorrectOption  *int         `json:"correct_option,omitempty"`
	CorrectOptions []int        `json:"correct_options,omitempty"`
	Points         int          `json:"points"`
}

// Template is an ordered collection of questions owned by one user.
type Template struct {
	ID              uuid.UUID    `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Kind            TemplateKind `json:"kind"`
	DurationMinutes int          `json:"duration_minutes"`
	Questions       []Question   `json:"questions"`
	OwnerID         uuid.UUID    `json:"owner_id"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// TotalPoints sums the points of every question.
func (t *Template) TotalPoints() int {
	total := 0
	for _, q := range t.Questions {
		total += q.Points
	}
	return total
}

// Validate checks the structural invariants of the template and returns a
// field -> message map, or nil when the template is valid.
func (t *Template) Validate() map[string]string {
	fields := make(map[string]string)

	if strings.TrimSpace(t.Title) == "" {
		fields["title"] = "title is required"
	}

	switch t.Kind {
	case TemplateKindQuiz, TemplateKindQuestionnaire:
		if t.DurationMinutes != 0 {
			fields["duration_minutes"] = "duration_minutes is only allowed for TEST templates"
		}
	case TemplateKindTest:
		if t.DurationMinutes < 1 {
			fields["duration_minutes"] = "duration_minutes must be at least 1 for TEST templates"
		}
	default:
		fields["kind"] = "kind must be one of QUIZ TEST QUESTIONNAIRE"
	}

	if len(t.Questions) == 0 {
		fields["questions"] = "at least one question is required"
	}

	for i, q := range t.Questions {
		validateQuestion(fmt.Sprintf("questions[%d]", i), q, fields)
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func validateQuestion(prefix string, q Question, fields map[string]string) {
	if strings.TrimSpace(q.Text) == "" {
		fields[prefix+".text"] = "text is required"
	}
	if q.Points < 1 {
		fields[prefix+".points"] = "points must be at least 1"
	}

	switch q.Type {
	case QuestionTypeFreeText:
		if len(q.Options) > 0 {
			fields[prefix+".options"] = "free-text questions take no options"
		}
		return
	case QuestionTypeSingleChoice, QuestionTypeMultiChoice:
	default:
		fields[prefix+".type"] = "type must be one of SINGLE_CHOICE MULTI_CHOICE FREE_TEXT"
		return
	}

	if len(q.Options) == 0 {
		fields[prefix+".options"] = "at least one option is required"
		return
	}
	for j, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			fields[fmt.Sprintf("%s.options[%d]", prefix, j)] = "option must not be blank"
		}
	}

	if q.Type == QuestionTypeSingleChoice {
		if q.CorrectOption == nil {
			fields[prefix+".correct_option"] = "correct_option is required"
		} else if *q.CorrectOption < 0 || *q.CorrectOption >= len(q.Options) {
			fields[prefix+".correct_option"] = "correct_option must reference an existing option"
		}
		return
	}

	if len(q.CorrectOptions) == 0 {
		fields[prefix+".correct_options"] = "at least one correct option is required"
		return
	}
	seen := make(map[int]struct{}, len(q.CorrectOptions))
	for _, idx := range q.CorrectOptions {
		if idx < 0 || idx >= len(q.Options) {
			fields[prefix+".correct_options"] = "correct_options must reference existing options"
			return
		}
		if _, dup := seen[idx]; dup {
			fields[prefix+".correct_options"] = "correct_options must not contain duplicates"
			return
		}
		seen[idx] = struct{}{}
	}
}

// TemplateRequest is the payload for creating or replacing a template.
type TemplateRequest struct {
	Title           string            `json:"title" binding:"required,min=1,max=200"`
	Description     string            `json:"description" binding:"max=2000"`
	Kind            TemplateKind      `json:"kind" binding:"omitempty,oneof=QUIZ TEST QUESTIONNAIRE"`
	DurationMinutes int               `json:"duration_minutes" binding:"min=0,max=1440"`
	Questions       []QuestionRequest `json:"questions" binding:"required,min=1,max=500,dive"`
}

// QuestionRequest is one question inside a TemplateRequest.
type QuestionRequest struct {
	Text           string       `json:"text" binding:"required,max=2000"`
	ImageRef       string       `json:"image_ref" binding:"omitempty,url,max=1024"`
	Type           QuestionType `json:"type" binding:"required,oneof=SINGLE_CHOICE MULTI_CHOICE FREE_TEXT"`
	Options        []string     `json:"options" binding:"max=50"`
	CorrectOption  *int         `json:"correct_option"`
	CorrectOptions []int        `json:"correct_options"`
	Points         *int         `json:"points"`
}

// ToTemplate converts the request into an unsaved template, applying the
// wire defaults (kind QUIZ, points 1). Only TEST keeps its duration.
func (r *TemplateRequest) ToTemplate() *Template {
	kind := r.Kind
	if kind == "" {
		kind = TemplateKindQuiz
	}
	duration := r.DurationMinutes
	if kind != TemplateKindTest {
		duration = 0
	}

	questions := make([]Question, len(r.Questions))
	for i, qr := range r.Questions {
		points := DefaultQuestionPoints
		if qr.Points != nil {
			points = *qr.Points
		}
		q := Question{
			Text:     strings.TrimSpace(qr.Text),
			ImageRef: qr.ImageRef,
			Type:     qr.Type,
			Options:  qr.Options,
			Points:   points,
		}
		switch qr.Type {
		case QuestionTypeSingleChoice:
			q.CorrectOption = qr.CorrectOption
		case QuestionTypeMultiChoice:
			q.CorrectOptions = qr.CorrectOptions
		case QuestionTypeFreeText:
			q.Options = nil
		}
		if q.Options == nil && q.Type != QuestionTypeFreeText {
			q.Options = []string{}
		}
		questions[i] = q
	}

	return &Template{
		Title:           strings.TrimSpace(r.Title),
		Description:     r.Description,
		Kind:            kind,
		DurationMinutes: duration,
		Questions:       questions,
	}
}

// TemplateSummary is the list view of a template.
type TemplateSummary struct {
	ID            uuid.UUID    `json:"id"`
	OwnerID       uuid.UUID    `json:"owner_id"`
	Title         string       `json:"title"`
	Kind          TemplateKind `json:"kind"`
	QuestionCount int          `json:"question_count"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// SharedTemplate is the respondent view served by the public share link.
// Correct answers are stripped.
type SharedTemplate struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Kind            TemplateKind     `json:"kind"`
	DurationMinutes int              `json:"duration_minutes"`
	TotalPoints     int              `json:"total_points"`
	Questions       []SharedQuestion `json:"questions"`
}

// SharedQuestion is a question without its answer key.
type SharedQuestion struct {
	Index    int          `json:"index"`
	Text     string       `json:"text"`
	ImageRef string       `json:"image_ref,omitempty"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options"`
	Points   int          `json:"points"`
}

// Shared builds the respondent view of the template.
func (t *Template) Shared() *SharedTemplate {
	questions := make([]SharedQuestion, len(t.Questions))
	for i, q := range t.Questions {
		options := q.Options
		if options == nil {
			options = []string{}
		}
		questions[i] = SharedQuestion{
			Index:    i,
			Text:     q.Text,
			ImageRef: q.ImageRef,
			Type:     q.Type,
			Options:  options,
			Points:   q.Points,
		}
	}
	return &SharedTemplate{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Kind:            t.Kind,
		DurationMinutes: t.DurationMinutes,
		TotalPoints:     t.TotalPoints(),
		Questions:       questions,
	}
}
