// Package lesson holds the lesson domain model and the client-side query
// layer: it translates UI-level filter/sort/page selections into backend
// query parameters and compensates locally for query shapes the backend does
// not support natively.
package lesson

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mathstutor/mathstutor-go/core"
	"github.com/mathstutor/mathstutor-go/core/group"
	"github.com/mathstutor/mathstutor-go/core/payment"
	"github.com/mathstutor/mathstutor-go/core/user"
)

var (
	errAlreadyRegistered = errors.New("you are already registered for this lesson")
	errPaidTicketHeld    = errors.New("you hold a paid ticket for this lesson; contact support for a refund before cancelling")
)

type (
	Backend interface {
		ListLessons(ctx context.Context, p ListParams) (ListResult, error)
		GetLesson(ctx context.Context, id int) (Lesson, error)
		RegisterForLesson(ctx context.Context, lessonID, userID int) (Registration, error)
		CancelRegistration(ctx context.Context, registrationID int) error
		IsUserRegistered(ctx context.Context, lessonID, userID int) (bool, error)
	}

	UserDirectory interface {
		GetUser(ctx context.Context, id int) (user.User, error)
	}

	MembershipDirectory interface {
		MembershipsByUser(ctx context.Context, userID int) ([]group.Member, error)
	}

	TicketChecker interface {
		HasUserPaidForLesson(ctx context.Context, userID, lessonID int) (bool, error)
	}

	Service struct {
		backend Backend
		users   UserDirectory
		groups  MembershipDirectory
		tickets TicketChecker
		kv      core.KeyValue
		log     core.Logger

		collator       *collate.Collator
		searchPageSize int
		permTTL        time.Duration
		nowFunc        func() time.Time // mockable

		mu         sync.Mutex
		totalPages int // from the last list response; 0 until first fetch
	}
)

func NewService(
	conf *core.Config,
	backend Backend,
	users UserDirectory,
	groups MembershipDirectory,
	tickets TicketChecker,
	kv core.KeyValue,
	log core.Logger,
) *Service {
	return &Service{
		backend:        backend,
		users:          users,
		groups:         groups,
		tickets:        tickets,
		kv:             kv,
		log:            log,
		collator:       collate.New(language.English, collate.Loose),
		searchPageSize: conf.SearchPageSize,
		permTTL:        conf.PermissionCacheTTL,
		nowFunc:        time.Now,
	}
}

// Filters are the UI-level list selections.
type Filters struct {
	SortBy    string
	SortOrder string
	Subject   string
	Page      int
	Limit     int
}

// List fetches a lesson page. Sort fields outside the backend's allow-list
// (title) are requested in default order and re-sorted client-side. The page
// number is clamped to [1, totalPages] before the request is issued.
func (svc *Service) List(ctx context.Context, f Filters) (ListResult, error) {
	sortBy := f.SortBy
	needsClientSort := sortBy == SortTitle
	if !isServerSortField(sortBy) {
		sortBy = SortStartTime
	}
	order := f.SortOrder
	if order != OrderDesc {
		order = OrderAsc
	}

	page := svc.clampPage(f.Page)
	res, err := svc.backend.ListLessons(ctx, ListParams{
		SortBy:  sortBy,
		Order:   order,
		Limit:   f.Limit,
		Page:    page,
		Subject: f.Subject,
	})
	if err != nil {
		return ListResult{}, err
	}
	res.Page = page

	svc.mu.Lock()
	svc.totalPages = res.TotalPages
	svc.mu.Unlock()

	if needsClientSort {
		res.Lessons = svc.sortLessons(res.Lessons, SortTitle, order)
	}
	return res, nil
}

func (svc *Service) clampPage(page int) int {
	svc.mu.Lock()
	total := svc.totalPages
	svc.mu.Unlock()

	if page < 1 {
		return 1
	}
	if total > 0 && page > total {
		return total
	}
	return page
}

// TotalPages reports the page count from the most recent list response.
func (svc *Service) TotalPages() int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.totalPages == 0 {
		return 1
	}
	return svc.totalPages
}

func (svc *Service) Get(ctx context.Context, id int) (Lesson, error) {
	return svc.backend.GetLesson(ctx, id)
}

// Register enrolls the user unless an active registration already exists.
func (svc *Service) Register(ctx context.Context, lessonID, userID int) (Registration, error) {
	registered, err := svc.backend.IsUserRegistered(ctx, lessonID, userID)
	if err != nil {
		return Registration{}, err
	}
	if registered {
		return Registration{}, core.NewValidationError(errAlreadyRegistered)
	}
	return svc.backend.RegisterForLesson(ctx, lessonID, userID)
}

// CancelRegistration cancels an active registration. Cancelling while
// holding a paid ticket is blocked client-side; no request is issued.
func (svc *Service) CancelRegistration(ctx context.Context, userID, lessonID, registrationID int) error {
	paid := false
	if v, err := svc.kv.Get(ctx, payment.PaidCacheKey(userID, lessonID)); err == nil && v == "true" {
		paid = true
	} else if ok, err := svc.tickets.HasUserPaidForLesson(ctx, userID, lessonID); err == nil && ok {
		paid = true
	}
	if paid {
		return core.NewValidationError(errPaidTicketHeld)
	}
	return svc.backend.CancelRegistration(ctx, registrationID)
}
