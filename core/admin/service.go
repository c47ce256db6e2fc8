// Package admin backs the admin panel: cached user/group/lesson tables with
// optimistic mutations that roll back to the last confirmed snapshot when the
// backend rejects the change.
package admin

import (
	"context"
	"sync"
	"time"

	"github.com/mathstutor/mathstutor-go/core"
	"github.com/mathstutor/mathstutor-go/core/group"
	"github.com/mathstutor/mathstutor-go/core/lesson"
	"github.com/mathstutor/mathstutor-go/core/user"
)

// Backend is the slice of the API the admin panel drives.
type Backend interface {
	ListUsers(ctx context.Context) ([]user.User, error)
	RegisterUser(ctx context.Context, p user.RegisterParams) (user.User, error)
	UpdateUser(ctx context.Context, id int, p user.UpdateParams) (user.User, error)
	PromoteToAdmin(ctx context.Context, id int, isSiteAdmin bool) error
	DeleteUser(ctx context.Context, id int) error

	ListGroups(ctx context.Context) ([]group.Group, error)
	CreateGroup(ctx context.Context, p group.CreateParams) (group.Group, error)
	UpdateGroup(ctx context.Context, id int, name string) (group.Group, error)
	DeleteGroup(ctx context.Context, id int) error

	ListLessons(ctx context.Context, p lesson.ListParams) (lesson.ListResult, error)
	CreateLesson(ctx context.Context, p lesson.CreateParams) (lesson.Lesson, error)
	UpdateLesson(ctx context.Context, id int, p lesson.UpdateParams) (lesson.Lesson, error)
	DeleteLesson(ctx context.Context, id int) error

	AdminDashboard(ctx context.Context) (DashboardData, error)
}

// DashboardData is the consolidated counters block on the admin landing page.
type DashboardData struct {
	TotalUsers    int `json:"total_users"`
	TotalGroups   int `json:"total_groups"`
	TotalLessons  int `json:"total_lessons"`
	TotalTickets  int `json:"total_tickets"`
	ActiveLessons int `json:"active_lessons"`
}

type Service struct {
	backend Backend
	log     core.Logger
	nowFunc func() time.Time // mockable

	mu      sync.Mutex
	users   []user.User
	groups  []group.Group
	lessons []lesson.Lesson
	counts  DashboardData
}

func NewService(backend Backend, log core.Logger) *Service {
	return &Service{backend: backend, log: log, nowFunc: time.Now}
}

// Refresh reloads all cached tables and the dashboard counters.
func (svc *Service) Refresh(ctx context.Context) error {
	users, err := svc.backend.ListUsers(ctx)
	if err != nil {
		return err
	}
	groups, err := svc.backend.ListGroups(ctx)
	if err != nil {
		return err
	}
	res, err := svc.backend.ListLessons(ctx, lesson.ListParams{})
	if err != nil {
		return err
	}
	counts, err := svc.backend.AdminDashboard(ctx)
	if err != nil {
		return err
	}

	svc.mu.Lock()
	svc.users = users
	svc.groups = groups
	svc.lessons = res.Lessons
	svc.counts = counts
	svc.mu.Unlock()
	return nil
}

func (svc *Service) Dashboard() DashboardData {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.counts
}

func (svc *Service) Users() []user.User {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]user.User(nil), svc.users...)
}

func (svc *Service) Groups() []group.Group {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]group.Group(nil), svc.groups...)
}

func (svc *Service) Lessons() []lesson.Lesson {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]lesson.Lesson(nil), svc.lessons...)
}

// --- users

// CreateUser registers a new account through the public signup endpoint (the
// backend has no dedicated admin create) and appends it to the cached table.
func (svc *Service) CreateUser(ctx context.Context, p user.RegisterParams) (user.User, error) {
	if err := p.Validate(); err != nil {
		return user.User{}, err
	}
	created, err := svc.backend.RegisterUser(ctx, p)
	if err != nil {
		return user.User{}, err
	}
	if created.Username == "" {
		created.Username = p.Username
	}
	if created.Email == "" {
		created.Email = p.Email
	}

	svc.mu.Lock()
	svc.users = append(svc.users, created)
	svc.counts.TotalUsers++
	svc.mu.Unlock()
	return created, nil
}

// UpdateUser applies the edit to the cached table first, then issues the
// request; a rejected request restores the snapshot. A changed admin flag is
// sent through the dedicated promote endpoint after the profile update.
func (svc *Service) UpdateUser(ctx context.Context, id int, p user.UpdateParams, isSiteAdmin bool) error {
	if err := p.Validate(); err != nil {
		return err
	}

	svc.mu.Lock()
	snapshot := append([]user.User(nil), svc.users...)
	adminChanged := false
	for i, u := range svc.users {
		if u.ID != id {
			continue
		}
		adminChanged = u.IsSiteAdmin != isSiteAdmin
		u = u.Merge(p)
		u.IsSiteAdmin = isSiteAdmin
		u.UpdatedAt.SetValid(svc.nowFunc())
		svc.users[i] = u
		break
	}
	svc.mu.Unlock()

	if _, err := svc.backend.UpdateUser(ctx, id, p); err != nil {
		svc.restoreUsers(snapshot)
		return err
	}
	if adminChanged {
		if err := svc.backend.PromoteToAdmin(ctx, id, isSiteAdmin); err != nil {
			svc.restoreUsers(snapshot)
			return err
		}
	}
	return nil
}

// DeleteUser removes the row optimistically; destructive, so callers must
// confirm first (Confirmation).
func (svc *Service) DeleteUser(ctx context.Context, id int) error {
	svc.mu.Lock()
	snapshot := append([]user.User(nil), svc.users...)
	prevCount := svc.counts.TotalUsers
	svc.users = removeUser(svc.users, id)
	if svc.counts.TotalUsers > 0 {
		svc.counts.TotalUsers--
	}
	svc.mu.Unlock()

	if err := svc.backend.DeleteUser(ctx, id); err != nil {
		svc.mu.Lock()
		svc.users = snapshot
		svc.counts.TotalUsers = prevCount
		svc.mu.Unlock()
		return err
	}
	return nil
}

func (svc *Service) restoreUsers(snapshot []user.User) {
	svc.mu.Lock()
	svc.users = snapshot
	svc.mu.Unlock()
}

func removeUser(users []user.User, id int) []user.User {
	out := users[:0]
	for _, u := range users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}

// --- groups

func (svc *Service) CreateGroup(ctx context.Context, p group.CreateParams) (group.Group, error) {
	if err := p.Validate(); err != nil {
		return group.Group{}, err
	}
	created, err := svc.backend.CreateGroup(ctx, p)
	if err != nil {
		return group.Group{}, err
	}
	svc.mu.Lock()
	svc.groups = append(svc.groups, created)
	svc.counts.TotalGroups++
	svc.mu.Unlock()
	return created, nil
}

func (svc *Service) UpdateGroup(ctx context.Context, id int, name string) error {
	svc.mu.Lock()
	snapshot := append([]group.Group(nil), svc.groups...)
	for i := range svc.groups {
		if svc.groups[i].ID == id {
			svc.groups[i].Name = name
			svc.groups[i].UpdatedAt.SetValid(svc.nowFunc())
			break
		}
	}
	svc.mu.Unlock()

	if _, err := svc.backend.UpdateGroup(ctx, id, name); err != nil {
		svc.mu.Lock()
		svc.groups = snapshot
		svc.mu.Unlock()
		return err
	}
	return nil
}

func (svc *Service) DeleteGroup(ctx context.Context, id int) error {
	svc.mu.Lock()
	snapshot := append([]group.Group(nil), svc.groups...)
	prevCount := svc.counts.TotalGroups
	out := svc.groups[:0]
	for _, g := range svc.groups {
		if g.ID != id {
			out = append(out, g)
		}
	}
	svc.groups = out
	if svc.counts.TotalGroups > 0 {
		svc.counts.TotalGroups--
	}
	svc.mu.Unlock()

	if err := svc.backend.DeleteGroup(ctx, id); err != nil {
		svc.mu.Lock()
		svc.groups = snapshot
		svc.counts.TotalGroups = prevCount
		svc.mu.Unlock()
		return err
	}
	return nil
}

// --- lessons

func (svc *Service) CreateLesson(ctx context.Context, p lesson.CreateParams) (lesson.Lesson, error) {
	if err := p.Validate(); err != nil {
		return lesson.Lesson{}, err
	}
	created, err := svc.backend.CreateLesson(ctx, p)
	if err != nil {
		return lesson.Lesson{}, err
	}
	svc.mu.Lock()
	svc.lessons = append(svc.lessons, created)
	svc.counts.TotalLessons++
	svc.mu.Unlock()
	return created, nil
}

func (svc *Service) UpdateLesson(ctx context.Context, id int, p lesson.UpdateParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	updated, err := svc.backend.UpdateLesson(ctx, id, p)
	if err != nil {
		return err
	}
	svc.mu.Lock()
	for i := range svc.lessons {
		if svc.lessons[i].ID == id {
			svc.lessons[i] = updated
			break
		}
	}
	svc.mu.Unlock()
	return nil
}

func (svc *Service) DeleteLesson(ctx context.Context, id int) error {
	svc.mu.Lock()
	snapshot := append([]lesson.Lesson(nil), svc.lessons...)
	prevCount := svc.counts.TotalLessons
	out := svc.lessons[:0]
	for _, l := range svc.lessons {
		if l.ID != id {
			out = append(out, l)
		}
	}
	svc.lessons = out
	if svc.counts.TotalLessons > 0 {
		svc.counts.TotalLessons--
	}
	svc.mu.Unlock()

	if err := svc.backend.DeleteLesson(ctx, id); err != nil {
		svc.mu.Lock()
		svc.lessons = snapshot
		svc.counts.TotalLessons = prevCount
		svc.mu.Unlock()
		return err
	}
	return nil
}

// Confirmation describes a destructive operation awaiting explicit
// confirmation; callers render it and only then invoke the delete.
type Confirmation struct {
	Action  string
	Subject string
}

func ConfirmDeleteUser(u user.User) Confirmation {
	return Confirmation{Action: "delete user", Subject: u.Username}
}

func ConfirmDeleteGroup(g group.Group) Confirmation {
	return Confirmation{Action: "delete group", Subject: g.Name}
}

func ConfirmDeleteLesson(l lesson.Lesson) Confirmation {
	return Confirmation{Action: "delete lesson", Subject: l.Title}
}
