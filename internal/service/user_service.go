package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Dhrubajit-says/FormForge/internal/model"
)

// UserService handles admin account management.
type UserService struct {
	users     UserRepository
	templates TemplateRepository
	sessions  SessionStore
	templater *TemplateService
	log       zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserRepository, templates TemplateRepository, sessions SessionStore, templater *TemplateService, log zerolog.Logger) *UserService {
	return &UserService{
		users:     users,
		templates: templates,
		sessions:  sessions,
		templater: templater,
		log:       log.With().Str("component", "user_service").Logger(),
	}
}

// ListWithTemplates returns every user with the summaries of the templates
// they own.
func (s *UserService) ListWithTemplates(ctx context.Context) ([]model.UserWithTemplates, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	templates, err := s.templates.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	byOwner := make(map[uuid.UUID][]model.TemplateSummary)
	for _, t := range templates {
		byOwner[t.OwnerID] = append(byOwner[t.OwnerID], t)
	}

	out := make([]model.UserWithTemplates, len(users))
	for i, u := range users {
		owned := byOwner[u.ID]
		if owned == nil {
			owned = []model.TemplateSummary{}
		}
		out[i] = model.UserWithTemplates{User: u, Templates: owned}
	}
	return out, nil
}

// ListTemplates returns one user's templates.
func (s *UserService) ListTemplates(ctx context.Context, userID uuid.UUID) ([]model.TemplateSummary, error) {
	if _, err := s.get(ctx, userID); err != nil {
		return nil, err
	}
	return s.templater.ListByOwner(ctx, userID)
}

// Delete removes a user and the templates they own. The two steps are not
// atomic: when the user delete fails, the templates are already gone.
func (s *UserService) Delete(ctx context.Context, actor Actor, userID uuid.UUID) error {
	if actor.UserID == userID {
		return ErrCannotModify
	}
	if _, err := s.get(ctx, userID); err != nil {
		return err
	}

	removed, err := s.templater.DeleteAllByOwner(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		s.log.Error().Err(err).
			Str("user_id", userID.String()).
			Int("templates_removed", removed).
			Msg("User delete failed after templates were removed")
		return fmt.Errorf("delete user: %w", notFound(err))
	}

	s.revoke(ctx, userID)
	s.log.Info().
		Str("user_id", userID.String()).
		Int("templates_removed", removed).
		Msg("User deleted")
	return nil
}

// ToggleBlock flips the blocked flag of a non-admin user. Blocking signs the
// user out everywhere.
func (s *UserService) ToggleBlock(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	u, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsAdmin() {
		return nil, ErrCannotModify
	}

	u.IsBlocked = !u.IsBlocked
	if err := s.users.UpdateBlocked(ctx, u.ID, u.IsBlocked); err != nil {
		return nil, fmt.Errorf("update blocked: %w", notFound(err))
	}
	if u.IsBlocked {
		s.revoke(ctx, u.ID)
	}

	s.log.Info().Str("user_id", u.ID.String()).Bool("blocked", u.IsBlocked).Msg("User block toggled")
	return u, nil
}

// ToggleRole switches a user between USER and ADMIN. Tokens carry the role,
// so existing sessions are revoked.
func (s *UserService) ToggleRole(ctx context.Context, actor Actor, userID uuid.UUID) (*model.User, error) {
	if actor.UserID == userID {
		return nil, ErrCannotModify
	}
	u, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if u.IsAdmin() {
		u.Role = model.RoleUser
	} else {
		u.Role = model.RoleAdmin
	}
	if err := s.users.UpdateRole(ctx, u.ID, u.Role); err != nil {
		return nil, fmt.Errorf("update role: %w", notFound(err))
	}
	s.revoke(ctx, u.ID)

	s.log.Info().Str("user_id", u.ID.String()).Str("role", string(u.Role)).Msg("User role toggled")
	return u, nil
}

// PromoteByEmail grants the admin role to an existing account. Used by the
// set-admin command.
func (s *UserService) PromoteByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, notFound(err)
	}
	if u.IsAdmin() {
		return u, nil
	}
	u.Role = model.RoleAdmin
	if err := s.users.UpdateRole(ctx, u.ID, u.Role); err != nil {
		return nil, fmt.Errorf("update role: %w", notFound(err))
	}
	s.revoke(ctx, u.ID)
	return u, nil
}

func (s *UserService) get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *UserService) revoke(ctx context.Context, userID uuid.UUID) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("Session revocation failed")
	}
}
