package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt records when a respondent started a timed template.
type Attempt struct {
	ID         uuid.UUID `json:"id"`
	TemplateID uuid.UUID `json:"template_id"`
	StartedAt  time.Time `json:"started_at"`
	Deadline   time.Time `json:"deadline"`
}

// Expired reports whether now is past the deadline plus grace.
func (a *Attempt) Expired(now time.Time, grace time.Duration) bool {
	return now.After(a.Deadline.Add(grace))
}
