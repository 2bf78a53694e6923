package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dhrubajit-says/FormForge/internal/model"
)

const answerScriptColumns = `id, template_id, template_title, owner_id, questions,
	respondent_name, respondent_external_id, answers, auto_score, manual_scores,
	summary, is_preview, started_at, submitted_at, graded_at`

// AnswerScriptRepository handles answer script data access.
type AnswerScriptRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerScriptRepository creates a new AnswerScriptRepository.
func NewAnswerScriptRepository(pool *pgxpool.Pool) *AnswerScriptRepository {
	return &AnswerScriptRepository{pool: pool}
}

func scanAnswerScript(row pgx.Row) (*model.AnswerScript, error) {
	s := &model.AnswerScript{}
	var questions, answers, manual, summary []byte
	err := row.Scan(&s.ID, &s.TemplateID, &s.TemplateTitle, &s.OwnerID, &questions,
		&s.RespondentName, &s.RespondentExternalID, &answers, &s.AutoScore, &manual,
		&summary, &s.IsPreview, &s.StartedAt, &s.SubmittedAt, &s.GradedAt)
	if err != nil {
		return nil, err
	}

	docs := []struct {
		raw  []byte
		dst  any
		name string
	}{
		{questions, &s.Questions, "questions"},
		{answers, &s.Answers, "answers"},
		{manual, &s.ManualScores, "manual_scores"},
		{summary, &s.Summary, "summary"},
	}
	for _, d := range docs {
		if err := json.Unmarshal(d.raw, d.dst); err != nil {
			return nil, fmt.Errorf("decode %s of answer script %s: %w", d.name, s.ID, err)
		}
	}
	if s.ManualScores == nil {
		s.ManualScores = model.ManualScores{}
	}
	return s, nil
}

// GetByID retrieves an answer script.
func (r *AnswerScriptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AnswerScript, error) {
	return scanAnswerScript(r.pool.QueryRow(ctx,
		`SELECT `+answerScriptColumns+` FROM answer_scripts WHERE id = $1`, id))
}

// Create inserts a submitted script.
func (r *AnswerScriptRepository) Create(ctx context.Context, s *model.AnswerScript) error {
	questions, err := json.Marshal(s.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	manual, err := json.Marshal(s.ManualScores)
	if err != nil {
		return fmt.Errorf("encode manual scores: %w", err)
	}
	summary, err := json.Marshal(s.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO answer_scripts (template_id, template_title, owner_id, questions,
		        respondent_name, respondent_external_id, answers, auto_score,
		        manual_scores, summary, is_preview, started_at, graded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, submitted_at`,
		s.TemplateID, s.TemplateTitle, s.OwnerID, questions,
		s.RespondentName, s.RespondentExternalID, answers, s.AutoScore,
		manual, summary, s.IsPreview, s.StartedAt, s.GradedAt,
	).Scan(&s.ID, &s.SubmittedAt)
}

// UpdateGrading overwrites the manual scores and the stored summary.
// Concurrent graders race; the last write wins.
func (r *AnswerScriptRepository) UpdateGrading(ctx context.Context, id uuid.UUID, manual model.ManualScores, summary model.ScoreSummary, gradedAt time.Time) error {
	manualRaw, err := json.Marshal(manual)
	if err != nil {
		return fmt.Errorf("encode manual scores: %w", err)
	}
	summaryRaw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE answer_scripts SET manual_scores = $1, summary = $2, graded_at = $3
		 WHERE id = $4`,
		manualRaw, summaryRaw, gradedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an answer script.
func (r *AnswerScriptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM answer_scripts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListByOwnerPaginated returns scripts submitted against a user's templates,
// newest first, with the total count.
func (r *AnswerScriptRepository) ListByOwnerPaginated(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]model.AnswerScript, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM answer_scripts WHERE owner_id = $1`, ownerID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+answerScriptColumns+` FROM answer_scripts
		 WHERE owner_id = $1
		 ORDER BY submitted_at DESC
		 LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	scripts, err := collectAnswerScripts(rows)
	return scripts, total, err
}

// ListByTemplate returns every script of one template, newest first.
func (r *AnswerScriptRepository) ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]model.AnswerScript, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+answerScriptColumns+` FROM answer_scripts
		 WHERE template_id = $1
		 ORDER BY submitted_at DESC`, templateID)
	if err != nil {
		return nil, err
	}
	return collectAnswerScripts(rows)
}

func collectAnswerScripts(rows pgx.Rows) ([]model.AnswerScript, error) {
	defer rows.Close()

	scripts := []model.AnswerScript{}
	for rows.Next() {
		s, err := scanAnswerScript(rows)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, *s)
	}
	return scripts, rows.Err()
}
