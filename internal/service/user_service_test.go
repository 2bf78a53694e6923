package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Dhrubajit-says/FormForge/internal/model"
)

type userFixture struct {
	users     *mockUserRepo
	templates *mockTemplateRepo
	shared    *mockSharedCache
	sessions  *memorySessions
	svc       *UserService
	admin     Actor
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:     new(mockUserRepo),
		templates: new(mockTemplateRepo),
		shared:    new(mockSharedCache),
		sessions:  newMemorySessions(),
		admin:     Actor{UserID: uuid.New(), Role: model.RoleAdmin},
	}
	templater := NewTemplateService(f.templates, f.shared, new(mockAttemptStore), zerolog.Nop())
	f.svc = NewUserService(f.users, f.templates, f.sessions, templater, zerolog.Nop())
	return f
}

func (f *userFixture) addUser(role model.Role) *model.User {
	u := &model.User{ID: uuid.New(), Username: "u-" + uuid.NewString()[:8], Role: role}
	f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	_ = f.sessions.Add(context.Background(), u.ID, uuid.NewString(), time.Hour)
	return u
}

func TestDeleteUserRemovesTemplatesFirst(t *testing.T) {
	f := newUserFixture()
	u := f.addUser(model.RoleUser)
	owned := []uuid.UUID{uuid.New()}

	var order []string
	f.templates.On("DeleteByOwner", mock.Anything, u.ID).
		Run(func(mock.Arguments) { order = append(order, "templates") }).
		Return(owned, nil).Once()
	f.shared.On("Delete", mock.Anything, owned[0]).Return(nil).Once()
	f.users.On("Delete", mock.Anything, u.ID).
		Run(func(mock.Arguments) { order = append(order, "user") }).
		Return(nil).Once()

	require.NoError(t, f.svc.Delete(context.Background(), f.admin, u.ID))
	assert.Equal(t, []string{"templates", "user"}, order)
	assert.Zero(t, f.sessions.count(u.ID))
	f.users.AssertExpectations(t)
}

func TestDeleteUserFailureAfterTemplates(t *testing.T) {
	f := newUserFixture()
	u := f.addUser(model.RoleUser)
	f.templates.On("DeleteByOwner", mock.Anything, u.ID).Return([]uuid.UUID{}, nil).Once()
	f.users.On("Delete", mock.Anything, u.ID).Return(errors.New("connection reset")).Once()

	err := f.svc.Delete(context.Background(), f.admin, u.ID)
	require.Error(t, err)
	assert.Equal(t, 1, f.sessions.count(u.ID))
	f.templates.AssertExpectations(t)
}

func TestDeleteSelfIsRefused(t *testing.T) {
	f := newUserFixture()
	err := f.svc.Delete(context.Background(), f.admin, f.admin.UserID)
	assert.ErrorIs(t, err, ErrCannotModify)
	f.templates.AssertNotCalled(t, "DeleteByOwner", mock.Anything, mock.Anything)
}

func TestToggleBlock(t *testing.T) {
	f := newUserFixture()
	u := f.addUser(model.RoleUser)
	admin := f.addUser(model.RoleAdmin)
	f.users.On("UpdateBlocked", mock.Anything, u.ID, true).Return(nil).Once()
	f.users.On("UpdateBlocked", mock.Anything, u.ID, false).Return(nil).Once()

	_, err := f.svc.ToggleBlock(context.Background(), admin.ID)
	assert.ErrorIs(t, err, ErrCannotModify)

	blocked, err := f.svc.ToggleBlock(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)
	assert.Zero(t, f.sessions.count(u.ID))

	unblocked, err := f.svc.ToggleBlock(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, unblocked.IsBlocked)
	f.users.AssertExpectations(t)
}

func TestToggleRole(t *testing.T) {
	f := newUserFixture()
	u := f.addUser(model.RoleUser)
	f.users.On("UpdateRole", mock.Anything, u.ID, model.RoleAdmin).Return(nil).Once()

	_, err := f.svc.ToggleRole(context.Background(), f.admin, f.admin.UserID)
	assert.ErrorIs(t, err, ErrCannotModify)

	promoted, err := f.svc.ToggleRole(context.Background(), f.admin, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, promoted.Role)
	assert.Zero(t, f.sessions.count(u.ID))
}

func TestListWithTemplatesGroupsByOwner(t *testing.T) {
	f := newUserFixture()
	a := model.User{ID: uuid.New(), Username: "a"}
	b := model.User{ID: uuid.New(), Username: "b"}
	f.users.On("List", mock.Anything).Return([]model.User{a, b}, nil)
	f.templates.On("ListAll", mock.Anything).Return([]model.TemplateSummary{
		{ID: uuid.New(), OwnerID: a.ID, Title: "one"},
		{ID: uuid.New(), OwnerID: a.ID, Title: "two"},
	}, nil)

	list, err := f.svc.ListWithTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Len(t, list[0].Templates, 2)
	assert.NotNil(t, list[1].Templates)
	assert.Empty(t, list[1].Templates)
}

func TestPromoteByEmail(t *testing.T) {
	f := newUserFixture()
	u := &model.User{ID: uuid.New(), Email: "ops@example.com", Role: model.RoleUser}
	f.users.On("GetByEmail", mock.Anything, "ops@example.com").Return(u, nil)
	f.users.On("UpdateRole", mock.Anything, u.ID, model.RoleAdmin).Return(nil).Once()

	got, err := f.svc.PromoteByEmail(context.Background(), " ops@example.com ")
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())

	again, err := f.svc.PromoteByEmail(context.Background(), "ops@example.com")
	require.NoError(t, err)
	assert.True(t, again.IsAdmin())
	f.users.AssertExpectations(t)
}

func TestDashboardData(t *testing.T) {
	repo := new(mockDashboardRepo)
	owner := uuid.New()
	repo.On("GetOwnerCounts", mock.Anything, owner).Return(model.DashboardStats{TemplatesCount: 2, ResponsesCount: 7}, nil)
	repo.On("GetRecentResponses", mock.Anything, owner, recentResponsesLimit).Return(nil, nil)

	data, err := NewDashboardService(repo).GetDashboardData(context.Background(), Actor{UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, 2, data.TemplatesCount)
	assert.Equal(t, 7, data.ResponsesCount)
}
