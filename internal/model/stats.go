package model

import "github.com/google/uuid"

// DashboardStats aggregates counts over everything a user owns.
type DashboardStats struct {
	TemplatesCount      int `json:"templates_count"`
	QuestionsCount      int `json:"questions_count"`
	ResponsesCount      int `json:"responses_count"`
	PendingGradingCount int `json:"pending_grading_count"`
}

// TemplateStats describes the non-preview responses of one template.
type TemplateStats struct {
	TemplateID        uuid.UUID `json:"template_id"`
	ResponsesCount    int       `json:"responses_count"`
	GradedCount       int       `json:"graded_count"`
	PendingCount      int       `json:"pending_count"`
	AveragePercentage *float64  `json:"average_percentage"`
	HighestPercentage *int      `json:"highest_percentage"`
	LowestPercentage  *int      `json:"lowest_percentage"`
}
