package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Dhrubajit-says/FormForge/internal/model"
	"github.com/Dhrubajit-says/FormForge/internal/repository"
)

// UserRepository is the persistence the user-facing services need.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Create(ctx context.Context, u *model.User) error
	List(ctx context.Context) ([]model.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
	UpdateBlocked(ctx context.Context, id uuid.UUID, blocked bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TemplateRepository is the template persistence.
type TemplateRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Template, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.TemplateSummary, error)
	SearchByOwner(ctx context.Context, ownerID uuid.UUID, query string) ([]model.TemplateSummary, error)
	ListAll(ctx context.Context) ([]model.TemplateSummary, error)
	Create(ctx context.Context, t *model.Template) error
	Update(ctx context.Context, t *model.Template) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
}

// AnswerScriptRepository is the answer script persistence.
type AnswerScriptRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.AnswerScript, error)
	Create(ctx context.Context, s *model.AnswerScript) error
	UpdateGrading(ctx context.Context, id uuid.UUID, manual model.ManualScores, summary model.ScoreSummary, gradedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwnerPaginated(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]model.AnswerScript, int, error)
	ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]model.AnswerScript, error)
}

// DashboardRepository serves the dashboard counts.
type DashboardRepository interface {
	GetOwnerCounts(ctx context.Context, ownerID uuid.UUID) (model.DashboardStats, error)
	GetRecentResponses(ctx context.Context, ownerID uuid.UUID, limit int) ([]repository.DashboardRecentResponse, error)
}

// SharedTemplateCache caches respondent views. Get returns nil on a miss.
type SharedTemplateCache interface {
	Get(ctx context.Context, id uuid.UUID) (*model.SharedTemplate, error)
	Set(ctx context.Context, view *model.SharedTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AttemptStore records timed attempts. Get returns nil when unknown.
type AttemptStore interface {
	Save(ctx context.Context, a *model.Attempt) error
	Get(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
}

// SessionStore tracks live token IDs per user.
type SessionStore interface {
	Add(ctx context.Context, userID uuid.UUID, jti string, ttl time.Duration) error
	Exists(ctx context.Context, userID uuid.UUID, jti string) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, jti string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// EventQueue accepts feed events without blocking.
type EventQueue interface {
	Enqueue(ev model.FeedEvent)
}
