package router

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Dhrubajit-says/FormForge/internal/model"
	"github.com/Dhrubajit-says/FormForge/internal/repository"
)

// store is an in-memory stand-in for Postgres and Redis.
type store struct {
	mu        sync.Mutex
	users     map[uuid.UUID]model.User
	templates map[uuid.UUID]model.Template
	scripts   map[uuid.UUID]model.AnswerScript
	attempts  map[uuid.UUID]model.Attempt
	shared    map[uuid.UUID]model.SharedTemplate
	sessions  map[uuid.UUID]map[string]struct{}
	seq       time.Time
}

func newStore() *store {
	return &store{
		users:     map[uuid.UUID]model.User{},
		templates: map[uuid.UUID]model.Template{},
		scripts:   map[uuid.UUID]model.AnswerScript{},
		attempts:  map[uuid.UUID]model.Attempt{},
		shared:    map[uuid.UUID]model.SharedTemplate{},
		sessions:  map[uuid.UUID]map[string]struct{}{},
		seq:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so ordering is deterministic.
func (s *store) tick() time.Time {
	s.seq = s.seq.Add(time.Second)
	return s.seq
}

// ─── Users ─────────────────────────────────────────────────────────────

type userRepo struct{ *store }

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) || strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r userRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = uuid.New()
	u.CreatedAt = r.tick()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = *u
	return nil
}

func (r userRepo) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r userRepo) update(id uuid.UUID, fn func(u *model.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&u)
	r.users[id] = u
	return nil
}

func (r userRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return r.update(id, func(u *model.User) { u.PasswordHash = hash })
}

func (r userRepo) UpdateRole(_ context.Context, id uuid.UUID, role model.Role) error {
	return r.update(id, func(u *model.User) { u.Role = role })
}

func (r userRepo) UpdateBlocked(_ context.Context, id uuid.UUID, blocked bool) error {
	return r.update(id, func(u *model.User) { u.IsBlocked = blocked })
}

func (r userRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

// ─── Templates ─────────────────────────────────────────────────────────

type templateRepo struct{ *store }

func summarize(t model.Template) model.TemplateSummary {
	return model.TemplateSummary{
		ID:            t.ID,
		OwnerID:       t.OwnerID,
		Title:         t.Title,
		Kind:          t.Kind,
		QuestionCount: len(t.Questions),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (r templateRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	t.Questions = append([]model.Question(nil), t.Questions...)
	return &t, nil
}

func (r templateRepo) list(match func(model.Template) bool) []model.TemplateSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.TemplateSummary{}
	for _, t := range r.templates {
		if match(t) {
			out = append(out, summarize(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r templateRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.TemplateSummary, error) {
	return r.list(func(t model.Template) bool { return t.OwnerID == ownerID }), nil
}

func (r templateRepo) SearchByOwner(_ context.Context, ownerID uuid.UUID, query string) ([]model.TemplateSummary, error) {
	q := strings.ToLower(query)
	return r.list(func(t model.Template) bool {
		return t.OwnerID == ownerID && strings.Contains(strings.ToLower(t.Title), q)
	}), nil
}

func (r templateRepo) ListAll(_ context.Context) ([]model.TemplateSummary, error) {
	return r.list(func(model.Template) bool { return true }), nil
}

func (r templateRepo) Create(_ context.Context, t *model.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = r.tick()
	t.UpdatedAt = t.CreatedAt
	r.templates[t.ID] = *t
	return nil
}

func (r templateRepo) Update(_ context.Context, t *model.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	t.UpdatedAt = r.tick()
	r.templates[t.ID] = *t
	return nil
}

func (r templateRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.templates, id)
	return nil
}

func (r templateRepo) DeleteByOwner(_ context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id, t := range r.templates {
		if t.OwnerID == ownerID {
			ids = append(ids, id)
			delete(r.templates, id)
		}
	}
	return ids, nil
}

// ─── Answer scripts ────────────────────────────────────────────────────

type scriptRepo struct{ *store }

func (r scriptRepo) GetByID(_ context.Context, id uuid.UUID) (*model.AnswerScript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scripts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	s.ManualScores = s.ManualScores.Clone()
	return &s, nil
}

func (r scriptRepo) Create(_ context.Context, s *model.AnswerScript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = uuid.New()
	s.SubmittedAt = r.tick()
	r.scripts[s.ID] = *s
	return nil
}

func (r scriptRepo) UpdateGrading(_ context.Context, id uuid.UUID, manual model.ManualScores, summary model.ScoreSummary, gradedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scripts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.ManualScores = manual.Clone()
	s.Summary = summary
	s.GradedAt = &gradedAt
	r.scripts[id] = s
	return nil
}

func (r scriptRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.scripts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.scripts, id)
	return nil
}

func (r scriptRepo) sorted(match func(model.AnswerScript) bool) []model.AnswerScript {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.AnswerScript{}
	for _, s := range r.scripts {
		if match(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out
}

func (r scriptRepo) ListByOwnerPaginated(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]model.AnswerScript, int, error) {
	all := r.sorted(func(s model.AnswerScript) bool { return s.OwnerID == ownerID })
	if offset >= len(all) {
		return []model.AnswerScript{}, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (r scriptRepo) ListByTemplate(_ context.Context, templateID uuid.UUID) ([]model.AnswerScript, error) {
	return r.sorted(func(s model.AnswerScript) bool { return s.TemplateID == templateID }), nil
}

// ─── Dashboard ─────────────────────────────────────────────────────────

type dashboardRepo struct{ *store }

func (r dashboardRepo) GetOwnerCounts(_ context.Context, ownerID uuid.UUID) (model.DashboardStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var st model.DashboardStats
	for _, t := range r.templates {
		if t.OwnerID == ownerID {
			st.TemplatesCount++
			st.QuestionsCount += len(t.Questions)
		}
	}
	for _, s := range r.scripts {
		if s.OwnerID == ownerID && !s.IsPreview {
			st.ResponsesCount++
			if s.Summary.Status == model.ScoreStatusPending {
				st.PendingGradingCount++
			}
		}
	}
	return st, nil
}

func (r dashboardRepo) GetRecentResponses(_ context.Context, ownerID uuid.UUID, limit int) ([]repository.DashboardRecentResponse, error) {
	return []repository.DashboardRecentResponse{}, nil
}

// ─── Redis-backed stores ───────────────────────────────────────────────

type sharedCache struct{ *store }

func (c sharedCache) Get(_ context.Context, id uuid.UUID) (*model.SharedTemplate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.shared[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (c sharedCache) Set(_ context.Context, v *model.SharedTemplate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shared[v.ID] = *v
	return nil
}

func (c sharedCache) Delete(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.shared, id)
	return nil
}

type attemptStore struct{ *store }

func (a attemptStore) Save(_ context.Context, at *model.Attempt) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attempts[at.ID] = *at
	return nil
}

func (a attemptStore) Get(_ context.Context, id uuid.UUID) (*model.Attempt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	at, ok := a.attempts[id]
	if !ok {
		return nil, nil
	}
	return &at, nil
}

type sessionStore struct{ *store }

func (s sessionStore) Add(_ context.Context, userID uuid.UUID, jti string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[userID] == nil {
		s.sessions[userID] = map[string]struct{}{}
	}
	s.sessions[userID][jti] = struct{}{}
	return nil
}

func (s sessionStore) Exists(_ context.Context, userID uuid.UUID, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID][jti]
	return ok, nil
}

func (s sessionStore) Revoke(_ context.Context, userID uuid.UUID, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions[userID], jti)
	return nil
}

func (s sessionStore) RevokeAll(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

// feedHub delivers enqueued events straight to listeners.
type feedHub struct {
	mu        sync.Mutex
	listeners map[uuid.UUID][]chan model.FeedEvent
}

func newFeedHub() *feedHub {
	return &feedHub{listeners: map[uuid.UUID][]chan model.FeedEvent{}}
}

func (h *feedHub) Enqueue(ev model.FeedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.listeners[ev.TemplateID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *feedHub) Listen(ctx context.Context, templateID uuid.UUID) (<-chan model.FeedEvent, error) {
	ch := make(chan model.FeedEvent, 8)
	h.mu.Lock()
	h.listeners[templateID] = append(h.listeners[templateID], ch)
	h.mu.Unlock()
	return ch, nil
}

func (h *feedHub) listening(templateID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners[templateID]) > 0
}
