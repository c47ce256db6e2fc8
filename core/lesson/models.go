package lesson

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mathstutor/mathstutor-go/core"
)

// Lesson statuses. Draft lessons may be published; published lessons may be
// cancelled or stay published. The backend enforces the transitions.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusCancelled = "cancelled"
)

// Registration statuses
const (
	RegistrationActive    = "registered"
	RegistrationCancelled = "cancelled"
)

type Lesson struct {
	ID             int         `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Location       string      `json:"location"`
	StartTime      time.Time   `json:"start_time"`
	EndTime        time.Time   `json:"end_time"`
	Price          null.Float64 `json:"price,omitempty"`
	MaxAttendees   null.Int    `json:"max_attendees,omitempty"`
	SpotsRemaining null.Int    `json:"spots_remaining,omitempty"`
	Status         string      `json:"status"`
	Subject        string      `json:"subject"`
	TutorUsername  null.String `json:"tutor_username,omitempty"`
	ClassName      null.String `json:"class_name,omitempty"`
	GroupID        null.Int    `json:"group_id,omitempty"`
	IsPublic       bool        `json:"is_public"`
	IsPast         bool        `json:"is_past"`
	ImageURL       null.String `json:"lesson_img_url,omitempty"`
	CreatedBy      int         `json:"created_by"`
	CreatedAt      null.Time   `json:"created_at,omitempty"`
	UpdatedAt      null.Time   `json:"updated_at,omitempty"`
}

func (l Lesson) IsDraft() bool { return l.Status == StatusDraft }

type Registration struct {
	ID               int       `json:"id"`
	LessonID         int       `json:"lesson_id"`
	UserID           int       `json:"user_id"`
	RegistrationTime null.Time `json:"registration_time,omitempty"`
	Status           string    `json:"status"`
	Username         string    `json:"username,omitempty"`
	Email            string    `json:"email,omitempty"`
}

type Subject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Availability struct {
	Available      bool `json:"available"`
	SpotsRemaining int  `json:"spots_remaining"`
}

// ListParams are the query parameters the backend accepts for lesson listing.
type ListParams struct {
	SortBy  string
	Order   string
	Limit   int
	Page    int
	Subject string // empty or "All" means no subject filter
}

type ListResult struct {
	Lessons      []Lesson `json:"lessons"`
	TotalPages   int      `json:"total_pages"`
	TotalLessons int      `json:"total_lessons"`
	Page         int      `json:"page,omitempty"` // effective page actually fetched
}

var errEndBeforeStart = errors.New("end time must be after start time")

type CreateParams struct {
	Title        string       `json:"title" validate:"required"`
	StartTime    time.Time    `json:"start_time" validate:"required"`
	EndTime      time.Time    `json:"end_time" validate:"required"`
	Description  null.String  `json:"description,omitempty"`
	Location     null.String  `json:"location,omitempty"`
	Price        null.Float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	MaxAttendees null.Int     `json:"max_attendees,omitempty" validate:"omitempty,min=1"`
	Subject      null.String  `json:"subject,omitempty"`
	IsPublic     null.Bool    `json:"is_public,omitempty"`
	ImageURL     null.String  `json:"lesson_img_url,omitempty" validate:"omitempty,url"`
}

// Validate runs struct validation plus the end-after-start check; a failing
// form never reaches the network.
func (p CreateParams) Validate() error {
	if err := core.TranslateError(core.Validate.Struct(p)); err != nil {
		return err
	}
	if !p.EndTime.After(p.StartTime) {
		return core.NewValidationError(errEndBeforeStart,
			core.FieldError{Field: "end_time", Error: errEndBeforeStart.Error()})
	}
	return nil
}

type UpdateParams struct {
	Title          string       `json:"title,omitempty"`
	Description    null.String  `json:"description,omitempty"`
	Location       null.String  `json:"location,omitempty"`
	StartTime      null.Time    `json:"start_time,omitempty"`
	EndTime        null.Time    `json:"end_time,omitempty"`
	Price          null.Float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	MaxAttendees   null.Int     `json:"max_attendees,omitempty" validate:"omitempty,min=1"`
	SpotsRemaining null.Int     `json:"spots_remaining,omitempty" validate:"omitempty,min=0"`
	Status         null.String  `json:"status,omitempty" validate:"omitempty,oneof=draft published cancelled"`
	Subject        null.String  `json:"subject,omitempty"`
	IsPublic       null.Bool    `json:"is_public,omitempty"`
	ImageURL       null.String  `json:"lesson_img_url,omitempty" validate:"omitempty,url"`
}

func (p UpdateParams) Validate() error {
	if err := core.TranslateError(core.Validate.Struct(p)); err != nil {
		return err
	}
	if p.StartTime.Valid && p.EndTime.Valid && !p.EndTime.Time.After(p.StartTime.Time) {
		return core.NewValidationError(errEndBeforeStart,
			core.FieldError{Field: "end_time", Error: errEndBeforeStart.Error()})
	}
	return nil
}
