package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dhrubajit-says/FormForge/internal/model"
)

// DashboardRepository handles dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetOwnerCounts retrieves the stat cards for one user. Preview scripts are
// not responses.
func (r *DashboardRepository) GetOwnerCounts(ctx context.Context, ownerID uuid.UUID) (model.DashboardStats, error) {
	var s model.DashboardStats
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM templates WHERE owner_id = $1),
			(SELECT COALESCE(SUM(jsonb_array_length(questions)), 0) FROM templates WHERE owner_id = $1),
			(SELECT COUNT(*) FROM answer_scripts WHERE owner_id = $1 AND NOT is_preview),
			(SELECT COUNT(*) FROM answer_scripts
			  WHERE owner_id = $1 AND NOT is_preview AND summary->>'status' = 'PENDING')`,
		ownerID,
	).Scan(&s.TemplatesCount, &s.QuestionsCount, &s.ResponsesCount, &s.PendingGradingCount)
	return s, err
}

// DashboardRecentResponse is a minimal row for the latest submissions.
type DashboardRecentResponse struct {
	ID             uuid.UUID `json:"id"`
	TemplateID     uuid.UUID `json:"template_id"`
	TemplateTitle  string    `json:"template_title"`
	RespondentName string    `json:"respondent_name"`
	Status         string    `json:"status"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// GetRecentResponses returns the latest non-preview submissions for a user.
func (r *DashboardRepository) GetRecentResponses(ctx context.Context, ownerID uuid.UUID, limit int) ([]DashboardRecentResponse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, template_id, template_title, respondent_name, summary->>'status', submitted_at
		 FROM answer_scripts
		 WHERE owner_id = $1 AND NOT is_preview
		 ORDER BY submitted_at DESC
		 LIMIT $2`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recent := []DashboardRecentResponse{}
	for rows.Next() {
		var d DashboardRecentResponse
		if err := rows.Scan(&d.ID, &d.TemplateID, &d.TemplateTitle, &d.RespondentName,
			&d.Status, &d.SubmittedAt); err != nil {
			return nil, err
		}
		recent = append(recent, d)
	}
	return recent, rows.Err()
}
