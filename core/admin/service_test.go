package admin

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathstutor/mathstutor-go/core"
	"github.com/mathstutor/mathstutor-go/core/group"
	"github.com/mathstutor/mathstutor-go/core/lesson"
	"github.com/mathstutor/mathstutor-go/core/user"
)

type fakeBackend struct {
	users   []user.User
	groups  []group.Group
	lessons []lesson.Lesson
	counts  DashboardData

	updateUserErr   error
	promoteErr      error
	deleteUserErr   error
	deleteGroupErr  error
	deleteLessonErr error

	promoteCalls int
}

func (f *fakeBackend) ListUsers(context.Context) ([]user.User, error) { return f.users, nil }

func (f *fakeBackend) RegisterUser(_ context.Context, p user.RegisterParams) (user.User, error) {
	return user.User{ID: 100, Username: p.Username, Email: p.Email}, nil
}

func (f *fakeBackend) UpdateUser(_ context.Context, id int, p user.UpdateParams) (user.User, error) {
	return user.User{ID: id, Username: p.Username, Email: p.Email}, f.updateUserErr
}

func (f *fakeBackend) PromoteToAdmin(context.Context, int, bool) error {
	f.promoteCalls++
	return f.promoteErr
}

func (f *fakeBackend) DeleteUser(context.Context, int) error { return f.deleteUserErr }

func (f *fakeBackend) ListGroups(context.Context) ([]group.Group, error) { return f.groups, nil }

func (f *fakeBackend) CreateGroup(_ context.Context, p group.CreateParams) (group.Group, error) {
	return group.Group{ID: 50, Name: p.Name}, nil
}

func (f *fakeBackend) UpdateGroup(_ context.Context, id int, name string) (group.Group, error) {
	return group.Group{ID: id, Name: name}, nil
}

func (f *fakeBackend) DeleteGroup(context.Context, int) error { return f.deleteGroupErr }

func (f *fakeBackend) ListLessons(context.Context, lesson.ListParams) (lesson.ListResult, error) {
	return lesson.ListResult{Lessons: f.lessons, TotalPages: 1, TotalLessons: len(f.lessons)}, nil
}

func (f *fakeBackend) CreateLesson(_ context.Context, p lesson.CreateParams) (lesson.Lesson, error) {
	return lesson.Lesson{ID: 200, Title: p.Title}, nil
}

func (f *fakeBackend) UpdateLesson(_ context.Context, id int, p lesson.UpdateParams) (lesson.Lesson, error) {
	return lesson.Lesson{ID: id, Title: p.Title}, nil
}

func (f *fakeBackend) DeleteLesson(context.Context, int) error { return f.deleteLessonErr }

func (f *fakeBackend) AdminDashboard(context.Context) (DashboardData, error) { return f.counts, nil }

func newTestService(t *testing.T) (*Service, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{
		users: []user.User{
			{ID: 1, Username: "ada", Email: "ada@example.com"},
			{ID: 2, Username: "ben", Email: "ben@example.com", IsSiteAdmin: true},
		},
		groups:  []group.Group{{ID: 10, Name: "Year 9"}},
		lessons: []lesson.Lesson{{ID: 20, Title: "Algebra"}},
		counts:  DashboardData{TotalUsers: 2, TotalGroups: 1, TotalLessons: 1},
	}
	svc := NewService(backend, core.NopLogger{})
	require.NoError(t, svc.Refresh(context.Background()))
	return svc, backend
}

func TestService_deleteUserRollsBackOnFailure(t *testing.T) {
	svc, backend := newTestService(t)
	backend.deleteUserErr = errors.New("boom")

	err := svc.DeleteUser(context.Background(), 1)
	require.Error(t, err)

	// cached table and counters restored to the pre-delete snapshot
	users := svc.Users()
	require.Len(t, users, 2)
	assert.Equal(t, "ada", users[0].Username)
	assert.Equal(t, 2, svc.Dashboard().TotalUsers)
}

func TestService_deleteUserOptimistic(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.DeleteUser(context.Background(), 1))
	users := svc.Users()
	require.Len(t, users, 1)
	assert.Equal(t, "ben", users[0].Username)
	assert.Equal(t, 1, svc.Dashboard().TotalUsers)
}

func TestService_updateUserRollsBackOnFailure(t *testing.T) {
	svc, backend := newTestService(t)
	backend.updateUserErr = errors.New("boom")

	err := svc.UpdateUser(context.Background(), 1, user.UpdateParams{Username: "ada2"}, false)
	require.Error(t, err)
	assert.Equal(t, "ada", svc.Users()[0].Username)
}

func TestService_updateUserPromotesWhenAdminFlagChanges(t *testing.T) {
	svc, backend := newTestService(t)
	ctx := context.Background()

	// flag unchanged: no promote call
	require.NoError(t, svc.UpdateUser(ctx, 1, user.UpdateParams{Username: "ada2"}, false))
	assert.Zero(t, backend.promoteCalls)
	assert.Equal(t, "ada2", svc.Users()[0].Username)

	// flag flipped: one promote call
	require.NoError(t, svc.UpdateUser(ctx, 1, user.UpdateParams{}, true))
	assert.Equal(t, 1, backend.promoteCalls)
	assert.True(t, svc.Users()[0].IsSiteAdmin)
}

func TestService_updateUserRollsBackOnPromoteFailure(t *testing.T) {
	svc, backend := newTestService(t)
	backend.promoteErr = errors.New("forbidden")

	err := svc.UpdateUser(context.Background(), 1, user.UpdateParams{}, true)
	require.Error(t, err)
	assert.False(t, svc.Users()[0].IsSiteAdmin)
}

func TestService_createUserAppendsAndCounts(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.CreateUser(context.Background(), user.RegisterParams{
		Username: "cara",
		Email:    "cara@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, created.ID)
	assert.Len(t, svc.Users(), 3)
	assert.Equal(t, 3, svc.Dashboard().TotalUsers)
}

func TestService_createUserValidates(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateUser(context.Background(), user.RegisterParams{Username: "cara"})
	var vErr *core.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Len(t, svc.Users(), 2)
}

func TestService_deleteGroupRollsBackOnFailure(t *testing.T) {
	svc, backend := newTestService(t)
	backend.deleteGroupErr = errors.New("boom")

	err := svc.DeleteGroup(context.Background(), 10)
	require.Error(t, err)
	assert.Len(t, svc.Groups(), 1)
	assert.Equal(t, 1, svc.Dashboard().TotalGroups)
}

func TestService_deleteLessonRollsBackOnFailure(t *testing.T) {
	svc, backend := newTestService(t)
	backend.deleteLessonErr = errors.New("boom")

	err := svc.DeleteLesson(context.Background(), 20)
	require.Error(t, err)
	assert.Len(t, svc.Lessons(), 1)
	assert.Equal(t, 1, svc.Dashboard().TotalLessons)
}

func TestConfirmations(t *testing.T) {
	c := ConfirmDeleteUser(user.User{Username: "ada"})
	assert.Equal(t, "delete user", c.Action)
	assert.Equal(t, "ada", c.Subject)

	c = ConfirmDeleteGroup(group.Group{Name: "Year 9"})
	assert.Equal(t, "Year 9", c.Subject)

	c = ConfirmDeleteLesson(lesson.Lesson{Title: "Algebra"})
	assert.Equal(t, "Algebra", c.Subject)
}
