package model

import (
	"time"

	"github.com/google/uuid"
)

// FeedEventType enumerates the notifications pushed to a template owner.
type FeedEventType string

const (
	FeedEventSubmitted FeedEventType = "submitted"
	FeedEventGraded    FeedEventType = "graded"
	FeedEventDeleted   FeedEventType = "deleted"
)

// FeedEvent is published whenever a script of a template changes.
type FeedEvent struct {
	Type           FeedEventType `json:"type"`
	TemplateID     uuid.UUID     `json:"template_id"`
	AnswerScriptID uuid.UUID     `json:"answer_script_id"`
	RespondentName string        `json:"respondent_name,omitempty"`
	Score          string        `json:"score,omitempty"`
	IsPreview      bool          `json:"is_preview"`
	At             time.Time     `json:"at"`
}
