// Package dashboard aggregates the data behind the signed-in user's home
// screen: their lessons split by publication status plus the roster of their
// primary class.
package dashboard

import (
	"context"

	"github.com/mathstutor/mathstutor-go/core"
	"github.com/mathstutor/mathstutor-go/core/lesson"
	"github.com/mathstutor/mathstutor-go/core/user"
)

type (
	LessonLister interface {
		ListLessons(ctx context.Context, p lesson.ListParams) (lesson.ListResult, error)
	}

	UserLister interface {
		ListUsers(ctx context.Context) ([]user.User, error)
	}

	Service struct {
		lessons LessonLister
		users   UserLister
		log     core.Logger
	}
)

func NewService(lessons LessonLister, users UserLister, log core.Logger) *Service {
	return &Service{lessons: lessons, users: users, log: log}
}

// Data is one dashboard load.
type Data struct {
	Lessons      []lesson.Lesson // published (anything not draft)
	DraftLessons []lesson.Lesson
	ClassMembers []user.User
	ClassID      int // 0 when the user belongs to no group
}

// Load fetches the dashboard aggregate for usr. Lessons are split on draft
// status; class members are the users sharing usr's first group. A roster
// fetch failure degrades to an empty roster rather than failing the load.
func (svc *Service) Load(ctx context.Context, usr user.User) (Data, error) {
	res, err := svc.lessons.ListLessons(ctx, lesson.ListParams{})
	if err != nil {
		return Data{}, err
	}

	var data Data
	for _, l := range res.Lessons {
		if l.Status == lesson.StatusDraft {
			data.DraftLessons = append(data.DraftLessons, l)
		} else {
			data.Lessons = append(data.Lessons, l)
		}
	}

	if len(usr.Groups) == 0 {
		return data, nil
	}
	data.ClassID = usr.Groups[0].GroupID

	members, err := svc.users.ListUsers(ctx)
	if err != nil {
		svc.log.Error("dashboard: fetching class roster", err)
		return data, nil
	}
	for _, m := range members {
		if inGroup(m, data.ClassID) {
			data.ClassMembers = append(data.ClassMembers, m)
		}
	}
	return data, nil
}

func inGroup(usr user.User, groupID int) bool {
	for _, g := range usr.Groups {
		if g.GroupID == groupID {
			return true
		}
	}
	return false
}
