package ticket

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Ticket links a registration to its payment state. One ticket per paid
// registration.
type Ticket struct {
	ID             int       `json:"id"`
	LessonID       int       `json:"lesson_id"`
	UserID         int       `json:"user_id"`
	RegistrationID int       `json:"registration_id"`
	Paid           bool      `json:"paid"`
	Code           string    `json:"ticket_code"`
	IssuedAt       null.Time `json:"issued_at,omitempty"`
	UsedAt         null.Time `json:"used_at,omitempty"`
	Status         string    `json:"status,omitempty"`
	CreatedAt      null.Time `json:"created_at,omitempty"`
	UpdatedAt      null.Time `json:"updated_at,omitempty"`
}

func (t Ticket) Used() bool { return t.UsedAt.Valid && !t.UsedAt.Time.IsZero() }

// VerifiedTicket is the ticket-verification payload joined with lesson and
// holder details.
type VerifiedTicket struct {
	Ticket
	LessonTitle string      `json:"lesson_title"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`
	Location    null.String `json:"location,omitempty"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
}

type CreateParams struct {
	LessonID       int  `json:"lesson_id"`
	UserID         int  `json:"user_id"`
	RegistrationID int  `json:"registration_id"`
	Paid           bool `json:"paid"`
}

type UpdateParams struct {
	Paid   null.Bool   `json:"paid,omitempty"`
	Status null.String `json:"status,omitempty"`
}
