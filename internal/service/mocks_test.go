package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Dhrubajit-says/FormForge/internal/model"
	"github.com/Dhrubajit-says/FormForge/internal/repository"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *mockUserRepo) UpdateBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	return m.Called(ctx, id, blocked).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockTemplateRepo struct{ mock.Mock }

func (m *mockTemplateRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*model.Template)
	return t, args.Error(1)
}

func (m *mockTemplateRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.TemplateSummary, error) {
	args := m.Called(ctx, ownerID)
	list, _ := args.Get(0).([]model.TemplateSummary)
	return list, args.Error(1)
}

func (m *mockTemplateRepo) SearchByOwner(ctx context.Context, ownerID uuid.UUID, query string) ([]model.TemplateSummary, error) {
	args := m.Called(ctx, ownerID, query)
	list, _ := args.Get(0).([]model.TemplateSummary)
	return list, args.Error(1)
}

func (m *mockTemplateRepo) ListAll(ctx context.Context) ([]model.TemplateSummary, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.TemplateSummary)
	return list, args.Error(1)
}

func (m *mockTemplateRepo) Create(ctx context.Context, t *model.Template) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTemplateRepo) Update(ctx context.Context, t *model.Template) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTemplateRepo) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, ownerID)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

type mockScriptRepo struct{ mock.Mock }

func (m *mockScriptRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.AnswerScript, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*model.AnswerScript)
	return s, args.Error(1)
}

func (m *mockScriptRepo) Create(ctx context.Context, s *model.AnswerScript) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockScriptRepo) UpdateGrading(ctx context.Context, id uuid.UUID, manual model.ManualScores, summary model.ScoreSummary, gradedAt time.Time) error {
	return m.Called(ctx, id, manual, summary, gradedAt).Error(0)
}

func (m *mockScriptRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockScriptRepo) ListByOwnerPaginated(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]model.AnswerScript, int, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	list, _ := args.Get(0).([]model.AnswerScript)
	return list, args.Int(1), args.Error(2)
}

func (m *mockScriptRepo) ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]model.AnswerScript, error) {
	args := m.Called(ctx, templateID)
	list, _ := args.Get(0).([]model.AnswerScript)
	return list, args.Error(1)
}

type mockDashboardRepo struct{ mock.Mock }

func (m *mockDashboardRepo) GetOwnerCounts(ctx context.Context, ownerID uuid.UUID) (model.DashboardStats, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(model.DashboardStats), args.Error(1)
}

func (m *mockDashboardRepo) GetRecentResponses(ctx context.Context, ownerID uuid.UUID, limit int) ([]repository.DashboardRecentResponse, error) {
	args := m.Called(ctx, ownerID, limit)
	list, _ := args.Get(0).([]repository.DashboardRecentResponse)
	return list, args.Error(1)
}

type mockSharedCache struct{ mock.Mock }

func (m *mockSharedCache) Get(ctx context.Context, id uuid.UUID) (*model.SharedTemplate, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.SharedTemplate)
	return v, args.Error(1)
}

func (m *mockSharedCache) Set(ctx context.Context, view *model.SharedTemplate) error {
	return m.Called(ctx, view).Error(0)
}

func (m *mockSharedCache) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockAttemptStore struct{ mock.Mock }

func (m *mockAttemptStore) Save(ctx context.Context, a *model.Attempt) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAttemptStore) Get(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*model.Attempt)
	return a, args.Error(1)
}

// memorySessions is an in-memory SessionStore.
type memorySessions struct {
	mu   sync.Mutex
	live map[uuid.UUID]map[string]struct{}
}

func newMemorySessions() *memorySessions {
	return &memorySessions{live: make(map[uuid.UUID]map[string]struct{})}
}

func (s *memorySessions) Add(_ context.Context, userID uuid.UUID, jti string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live[userID] == nil {
		s.live[userID] = make(map[string]struct{})
	}
	s.live[userID][jti] = struct{}{}
	return nil
}

func (s *memorySessions) Exists(_ context.Context, userID uuid.UUID, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live[userID][jti]
	return ok, nil
}

func (s *memorySessions) Revoke(_ context.Context, userID uuid.UUID, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live[userID], jti)
	return nil
}

func (s *memorySessions) RevokeAll(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, userID)
	return nil
}

func (s *memorySessions) count(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live[userID])
}

// recordingQueue collects enqueued feed events.
type recordingQueue struct {
	mu     sync.Mutex
	events []model.FeedEvent
}

func (q *recordingQueue) Enqueue(ev model.FeedEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, ev)
}

func (q *recordingQueue) types() []model.FeedEventType {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.FeedEventType, len(q.events))
	for i, ev := range q.events {
		out[i] = ev.Type
	}
	return out
}
