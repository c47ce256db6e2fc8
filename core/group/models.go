package group

import (
	"github.com/volatiletech/null/v8"

	"github.com/mathstutor/mathstutor-go/core"
)

// Membership roles carried by a User<->Group relation.
const (
	MemberRoleStudent = "student"
	MemberRoleTutor   = "tutor"
	MemberRoleAdmin   = "admin"

	// elevated roles granting lesson management within the group
	MemberRoleGroupAdmin    = "group_admin"
	MemberRoleOwner         = "owner"
	MemberRoleOrganizer     = "organizer"
	MemberRoleLessonManager = "lesson_manager"
)

// Group is a class/team managed by admins.
type Group struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Description null.String `json:"description,omitempty"`
	CreatedAt   null.Time   `json:"created_at,omitempty"`
	UpdatedAt   null.Time   `json:"updated_at,omitempty"`
}

// Member is a user's membership in a group, with the role it carries.
type Member struct {
	ID       int         `json:"id"`
	GroupID  int         `json:"group_id"`
	UserID   int         `json:"user_id"`
	FullName null.String `json:"full_name,omitempty"`
	Email    string      `json:"email,omitempty"`
	Role     string      `json:"role"`
	JoinedAt null.Time   `json:"joined_at,omitempty"`
}

// UserGroup is the membership shape embedded in a user record.
type UserGroup struct {
	GroupID          int         `json:"group_id"`
	GroupName        string      `json:"group_name"`
	GroupDescription null.String `json:"group_description,omitempty"`
	Role             string      `json:"role"`
}

type CreateParams struct {
	Name        string      `json:"name" validate:"required"`
	Description null.String `json:"description,omitempty"`
}

func (p CreateParams) Validate() error {
	return core.TranslateError(core.Validate.Struct(p))
}

type AddMemberParams struct {
	GroupID int    `json:"group_id" validate:"required"`
	UserID  int    `json:"user_id" validate:"required"`
	Role    string `json:"role" validate:"required,oneof=student tutor admin"`
}

func (p AddMemberParams) Validate() error {
	return core.TranslateError(core.Validate.Struct(p))
}
