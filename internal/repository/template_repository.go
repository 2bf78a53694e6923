package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dhrubajit-says/FormForge/internal/model"
)

const templateColumns = `id, title, description, kind, duration_minutes, questions, owner_id, created_at, updated_at`

const templateSummaryColumns = `id, owner_id, title, kind, jsonb_array_length(questions), created_at, updated_at`

// TemplateRepository handles template data access. Questions are stored as
// a JSONB array on the template row.
type TemplateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

func scanTemplate(row pgx.Row) (*model.Template, error) {
	t := &model.Template{}
	var questions []byte
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Kind, &t.DurationMinutes,
		&questions, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &t.Questions); err != nil {
		return nil, fmt.Errorf("decode questions of template %s: %w", t.ID, err)
	}
	return t, nil
}

func scanTemplateSummaries(rows pgx.Rows) ([]model.TemplateSummary, error) {
	defer rows.Close()

	summaries := []model.TemplateSummary{}
	for rows.Next() {
		var s model.TemplateSummary
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Title, &s.Kind, &s.QuestionCount,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetByID retrieves a template with its questions.
func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	return scanTemplate(r.pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = $1`, id))
}

// ListByOwner returns the summaries of a user's templates, newest first.
func (r *TemplateRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.TemplateSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+templateSummaryColumns+` FROM templates
		 WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	return scanTemplateSummaries(rows)
}

// SearchByOwner matches a user's template titles case-insensitively.
func (r *TemplateRepository) SearchByOwner(ctx context.Context, ownerID uuid.UUID, query string) ([]model.TemplateSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+templateSummaryColumns+` FROM templates
		 WHERE owner_id = $1 AND title ILIKE $2
		 ORDER BY created_at DESC`, ownerID, "%"+escapeLike(query)+"%")
	if err != nil {
		return nil, err
	}
	return scanTemplateSummaries(rows)
}

// ListAll returns the summaries of every template, for the admin user list.
func (r *TemplateRepository) ListAll(ctx context.Context) ([]model.TemplateSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+templateSummaryColumns+` FROM templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return scanTemplateSummaries(rows)
}

// Create inserts a new template.
func (r *TemplateRepository) Create(ctx context.Context, t *model.Template) error {
	questions, err := json.Marshal(t.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO templates (title, description, kind, duration_minutes, questions, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		t.Title, t.Description, t.Kind, t.DurationMinutes, questions, t.OwnerID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update replaces a template's content. Ownership never changes.
func (r *TemplateRepository) Update(ctx context.Context, t *model.Template) error {
	questions, err := json.Marshal(t.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`UPDATE templates
		 SET title = $1, description = $2, kind = $3, duration_minutes = $4,
		     questions = $5, updated_at = NOW()
		 WHERE id = $6
		 RETURNING updated_at`,
		t.Title, t.Description, t.Kind, t.DurationMinutes, questions, t.ID,
	).Scan(&t.UpdatedAt)
}

// Delete removes a template. Its answer scripts are left in place.
func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteByOwner removes every template of a user and returns the deleted IDs.
func (r *TemplateRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`DELETE FROM templates WHERE owner_id = $1 RETURNING id`, ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
