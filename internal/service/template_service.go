package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Dhrubajit-says/FormForge/internal/model"
)

// TemplateService handles template authoring, sharing and timed attempts.
type TemplateService struct {
	templates TemplateRepository
	shared    SharedTemplateCache
	attempts  AttemptStore
	log       zerolog.Logger
	now       func() time.Time
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(templates TemplateRepository, shared SharedTemplateCache, attempts AttemptStore, log zerolog.Logger) *TemplateService {
	return &TemplateService{
		templates: templates,
		shared:    shared,
		attempts:  attempts,
		log:       log.With().Str("component", "template_service").Logger(),
		now:       time.Now,
	}
}

// List returns the caller's templates.
func (s *TemplateService) List(ctx context.Context, actor Actor) ([]model.TemplateSummary, error) {
	return s.ListByOwner(ctx, actor.UserID)
}

// ListByOwner returns one user's templates.
func (s *TemplateService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.TemplateSummary, error) {
	list, err := s.templates.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return list, nil
}

// Search matches the caller's template titles. A blank query matches nothing.
func (s *TemplateService) Search(ctx context.Context, actor Actor, query string) ([]model.TemplateSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.TemplateSummary{}, nil
	}
	list, err := s.templates.SearchByOwner(ctx, actor.UserID, query)
	if err != nil {
		return nil, fmt.Errorf("search templates: %w", err)
	}
	return list, nil
}

// Create validates and stores a new template owned by the caller.
func (s *TemplateService) Create(ctx context.Context, actor Actor, draft *model.Template) (*model.Template, error) {
	if fields := draft.Validate(); fields != nil {
		return nil, newValidationError(nil, fields)
	}

	draft.OwnerID = actor.UserID
	if err := s.templates.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	s.log.Info().
		Str("template_id", draft.ID.String()).
		Str("owner_id", draft.OwnerID.String()).
		Int("questions", len(draft.Questions)).
		Msg("Template created")
	return draft, nil
}

// Get returns a template the caller may manage.
func (s *TemplateService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Template, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !actor.CanManage(t.OwnerID) {
		return nil, ErrNotOwner
	}
	return t, nil
}

// Update replaces the content of a template. Existing answer scripts keep
// their own question snapshot and are unaffected.
func (s *TemplateService) Update(ctx context.Context, actor Actor, id uuid.UUID, draft *model.Template) (*model.Template, error) {
	current, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if fields := draft.Validate(); fields != nil {
		return nil, newValidationError(nil, fields)
	}

	current.Title = draft.Title
	current.Description = draft.Description
	current.Kind = draft.Kind
	current.DurationMinutes = draft.DurationMinutes
	current.Questions = draft.Questions

	if err := s.templates.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("update template: %w", notFound(err))
	}
	s.invalidate(ctx, id)

	s.log.Info().Str("template_id", id.String()).Msg("Template updated")
	return current, nil
}

// Delete removes a template. Its answer scripts survive.
func (s *TemplateService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.invalidate(ctx, id)

	s.log.Info().Str("template_id", id.String()).Msg("Template deleted")
	return nil
}

// GetShared returns the respondent view of a template, cache first.
func (s *TemplateService) GetShared(ctx context.Context, id uuid.UUID) (*model.SharedTemplate, error) {
	view, err := s.shared.Get(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("template_id", id.String()).Msg("Shared template cache read failed")
	}
	if view != nil {
		return view, nil
	}

	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	view = t.Shared()

	if err := s.shared.Set(ctx, view); err != nil {
		s.log.Warn().Err(err).Str("template_id", id.String()).Msg("Shared template cache write failed")
	}
	return view, nil
}

// StartAttempt records the start of a timed attempt and returns its deadline.
func (s *TemplateService) StartAttempt(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if t.Kind != model.TemplateKindTest || t.DurationMinutes <= 0 {
		return nil, ErrTemplateNotTimed
	}

	now := s.now().UTC()
	attempt := &model.Attempt{
		ID:         uuid.New(),
		TemplateID: t.ID,
		StartedAt:  now,
		Deadline:   now.Add(time.Duration(t.DurationMinutes) * time.Minute),
	}
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}
	return attempt, nil
}

// DeleteAllByOwner removes every template of a user. Used by the admin
// account deletion cascade.
func (s *TemplateService) DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	ids, err := s.templates.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete templates of %s: %w", ownerID, err)
	}
	for _, id := range ids {
		s.invalidate(ctx, id)
	}
	return len(ids), nil
}

func (s *TemplateService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.shared.Delete(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("template_id", id.String()).Msg("Shared template cache invalidation failed")
	}
}
