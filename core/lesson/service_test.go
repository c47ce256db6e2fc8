package lesson

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/mathstutor/mathstutor-go/core"
	"github.com/mathstutor/mathstutor-go/core/group"
	"github.com/mathstutor/mathstutor-go/core/user"
	"github.com/mathstutor/mathstutor-go/storage/kv/inmem"
)

type fakeBackend struct {
	lessons    []Lesson
	totalPages int

	listCalls      []ListParams
	getCalls       int
	registerCalls  int
	cancelCalls    int
	registered     bool
	registeredErr  error
	lessonsByID    map[int]Lesson
}

func (f *fakeBackend) ListLessons(_ context.Context, p ListParams) (ListResult, error) {
	f.listCalls = append(f.listCalls, p)
	return ListResult{Lessons: f.lessons, TotalPages: f.totalPages, TotalLessons: len(f.lessons)}, nil
}

func (f *fakeBackend) GetLesson(_ context.Context, id int) (Lesson, error) {
	f.getCalls++
	if l, ok := f.lessonsByID[id]; ok {
		return l, nil
	}
	return Lesson{ID: id}, nil
}

func (f *fakeBackend) RegisterForLesson(_ context.Context, lessonID, userID int) (Registration, error) {
	f.registerCalls++
	return Registration{ID: 1, LessonID: lessonID, UserID: userID, Status: RegistrationActive}, nil
}

func (f *fakeBackend) CancelRegistration(context.Context, int) error {
	f.cancelCalls++
	return nil
}

func (f *fakeBackend) IsUserRegistered(context.Context, int, int) (bool, error) {
	return f.registered, f.registeredErr
}

type fakeUsers struct {
	usr      user.User
	getCalls int
}

func (f *fakeUsers) GetUser(context.Context, int) (user.User, error) {
	f.getCalls++
	return f.usr, nil
}

type fakeGroups struct {
	members   []group.Member
	listCalls int
}

func (f *fakeGroups) MembershipsByUser(context.Context, int) ([]group.Member, error) {
	f.listCalls++
	return f.members, nil
}

type fakeTickets struct {
	paid  bool
	calls int
}

func (f *fakeTickets) HasUserPaidForLesson(context.Context, int, int) (bool, error) {
	f.calls++
	return f.paid, nil
}

type testEnv struct {
	svc     *Service
	backend *fakeBackend
	users   *fakeUsers
	groups  *fakeGroups
	tickets *fakeTickets
	kv      *inmem.Store
}

func newTestService(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		backend: &fakeBackend{totalPages: 1, lessonsByID: map[int]Lesson{}},
		users:   &fakeUsers{},
		groups:  &fakeGroups{},
		tickets: &fakeTickets{},
		kv:      inmem.NewStore(),
	}
	env.svc = NewService(core.NewTestConfig(), env.backend, env.users, env.groups, env.tickets, env.kv, core.NopLogger{})
	return env
}

func lessonsAt(titles ...string) []Lesson {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	out := make([]Lesson, len(titles))
	for i, title := range titles {
		out[i] = Lesson{ID: i + 1, Title: title, StartTime: base.Add(time.Duration(i) * time.Hour)}
	}
	return out
}

func titles(lessons []Lesson) []string {
	out := make([]string, len(lessons))
	for i, l := range lessons {
		out[i] = l.Title
	}
	return out
}

func TestService_listTitleSortIsClientSide(t *testing.T) {
	env := newTestService(t)
	env.backend.lessons = lessonsAt("Zebra maths", "algebra basics", "Calculus")

	res, err := env.svc.List(context.Background(), Filters{SortBy: SortTitle, SortOrder: OrderAsc, Page: 1, Limit: 10})
	require.NoError(t, err)

	// the backend was asked for its default sort, not the unsupported title field
	require.Len(t, env.backend.listCalls, 1)
	assert.Equal(t, SortStartTime, env.backend.listCalls[0].SortBy)

	// locale-aware: case is ignored
	assert.Equal(t, []string{"algebra basics", "Calculus", "Zebra maths"}, titles(res.Lessons))
}

func TestService_sortComparators(t *testing.T) {
	env := newTestService(t)
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	lessons := []Lesson{
		{ID: 1, Title: "b", Location: "York", StartTime: base.Add(2 * time.Hour), Price: null.Float64From(30), MaxAttendees: null.IntFrom(5)},
		{ID: 2, Title: "a", Location: "Bath", StartTime: base, Price: null.Float64From(10), MaxAttendees: null.IntFrom(20)},
		{ID: 3, Title: "c", Location: "Leeds", StartTime: base.Add(time.Hour), Price: null.Float64From(20), MaxAttendees: null.IntFrom(10)},
	}

	tests := []struct {
		name    string
		sortBy  string
		order   string
		wantIDs []int
	}{
		{name: "title asc", sortBy: SortTitle, order: OrderAsc, wantIDs: []int{2, 1, 3}},
		{name: "title desc", sortBy: SortTitle, order: OrderDesc, wantIDs: []int{3, 1, 2}},
		{name: "price asc", sortBy: SortPrice, order: OrderAsc, wantIDs: []int{2, 3, 1}},
		{name: "price desc", sortBy: SortPrice, order: OrderDesc, wantIDs: []int{1, 3, 2}},
		{name: "start time asc", sortBy: SortStartTime, order: OrderAsc, wantIDs: []int{2, 3, 1}},
		{name: "location asc", sortBy: SortLocation, order: OrderAsc, wantIDs: []int{2, 3, 1}},
		{name: "capacity desc", sortBy: SortMaxAttendees, order: OrderDesc, wantIDs: []int{2, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorted := env.svc.sortLessons(lessons, tt.sortBy, tt.order)
			gotIDs := make([]int, len(sorted))
			for i, l := range sorted {
				gotIDs[i] = l.ID
			}
			assert.Equal(t, tt.wantIDs, gotIDs)
		})
	}

	// input order untouched
	assert.Equal(t, []int{1, 2, 3}, []int{lessons[0].ID, lessons[1].ID, lessons[2].ID})
}

func TestService_sortTiesKeepOriginalOrder(t *testing.T) {
	env := newTestService(t)
	price := null.Float64From(25)
	lessons := []Lesson{
		{ID: 1, Title: "first", Price: price},
		{ID: 2, Title: "second", Price: price},
		{ID: 3, Title: "third", Price: price},
	}

	sorted := env.svc.sortLessons(lessons, SortPrice, OrderAsc)
	assert.Equal(t, []string{"first", "second", "third"}, titles(sorted))

	sorted = env.svc.sortLessons(lessons, SortPrice, OrderDesc)
	assert.Equal(t, []string{"first", "second", "third"}, titles(sorted))
}

func TestService_pageClamping(t *testing.T) {
	env := newTestService(t)
	env.backend.totalPages = 3
	ctx := context.Background()

	// first fetch records the page count
	_, err := env.svc.List(ctx, Filters{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, env.svc.TotalPages())

	// out-of-range requests are clamped before hitting the backend, and the
	// result reports the page actually fetched
	res, err := env.svc.List(ctx, Filters{Page: 99, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page)
	res, err = env.svc.List(ctx, Filters{Page: -5, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)

	require.Len(t, env.backend.listCalls, 3)
	assert.Equal(t, 1, env.backend.listCalls[0].Page)
	assert.Equal(t, 3, env.backend.listCalls[1].Page)
	assert.Equal(t, 1, env.backend.listCalls[2].Page)
}

func TestService_registerBlockedWhenAlreadyRegistered(t *testing.T) {
	env := newTestService(t)
	env.backend.registered = true

	_, err := env.svc.Register(context.Background(), 5, 7)
	require.Error(t, err)
	var vErr *core.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Zero(t, env.backend.registerCalls)
}

func TestService_cancelBlockedWhileHoldingPaidTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("cached paid flag", func(t *testing.T) {
		env := newTestService(t)
		require.NoError(t, env.kv.Set(ctx, "ticket_paid_7_5", "true"))

		err := env.svc.CancelRegistration(ctx, 7, 5, 99)
		require.Error(t, err)
		var vErr *core.ValidationError
		assert.ErrorAs(t, err, &vErr)
		assert.Zero(t, env.backend.cancelCalls)
		assert.Zero(t, env.tickets.calls) // cache hit short-circuits the lookup
	})

	t.Run("ticket endpoint confirms payment", func(t *testing.T) {
		env := newTestService(t)
		env.tickets.paid = true

		err := env.svc.CancelRegistration(ctx, 7, 5, 99)
		require.Error(t, err)
		assert.Zero(t, env.backend.cancelCalls)
	})

	t.Run("unpaid cancels normally", func(t *testing.T) {
		env := newTestService(t)

		require.NoError(t, env.svc.CancelRegistration(ctx, 7, 5, 99))
		assert.Equal(t, 1, env.backend.cancelCalls)
	})
}
