package user

import (
	"github.com/volatiletech/null/v8"

	"github.com/mathstutor/mathstutor-go/core"
	"github.com/mathstutor/mathstutor-go/core/group"
)

// Site-wide roles
const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
	RoleAdmin   = "admin"
)

var AllRoles = []string{RoleStudent, RoleTutor, RoleAdmin}

// User is the backend's user payload. The site-admin flag is authoritative
// only as returned by the backend; it is never computed locally.
type User struct {
	ID              int               `json:"id"`
	Username        string            `json:"username"`
	Email           string            `json:"email"`
	FullName        null.String       `json:"full_name,omitempty"`
	Role            null.String       `json:"role,omitempty"`
	Groups          []group.UserGroup `json:"groups,omitempty"`
	IsSiteAdmin     bool              `json:"is_site_admin,omitempty"`
	ProfileImageURL null.String       `json:"profile_image_url,omitempty"`
	CreatedAt       null.Time         `json:"created_at,omitempty"`
	UpdatedAt       null.Time         `json:"updated_at,omitempty"`
}

func (u User) HasRole(role string) bool { return u.Role.Valid && u.Role.String == role }
func (u User) IsStudent() bool          { return u.HasRole(RoleStudent) }
func (u User) IsTutor() bool            { return u.HasRole(RoleTutor) }
func (u User) HasGroups() bool          { return len(u.Groups) > 0 }

// Merge shallow-merges a partial update into the user; used for optimistic
// profile edits.
func (u User) Merge(p UpdateParams) User {
	if p.Username != "" {
		u.Username = core.CleanString(p.Username)
	}
	if p.Email != "" {
		u.Email = core.CleanString(p.Email, true)
	}
	if p.FullName.Valid {
		u.FullName = p.FullName
	}
	if p.Role.Valid {
		u.Role = p.Role
	}
	if p.ProfileImageURL.Valid {
		u.ProfileImageURL = p.ProfileImageURL
	}
	return u
}

type RegisterParams struct {
	Username string `json:"username" validate:"required,alphanum_"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (p RegisterParams) Validate() error {
	return core.TranslateError(core.Validate.Struct(p))
}

type CreateParams struct {
	Username string      `json:"username" validate:"required,alphanum_"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8"`
	FullName null.String `json:"full_name,omitempty"`
	Role     null.String `json:"role,omitempty" validate:"omitempty,oneof=student tutor admin"`
}

func (p CreateParams) Validate() error {
	return core.TranslateError(core.Validate.Struct(p))
}

type UpdateParams struct {
	Username        string      `json:"username,omitempty" validate:"omitempty,alphanum_"`
	Email           string      `json:"email,omitempty" validate:"omitempty,email"`
	FullName        null.String `json:"full_name,omitempty"`
	Role            null.String `json:"role,omitempty" validate:"omitempty,oneof=student tutor admin"`
	ProfileImageURL null.String `json:"profile_image_url,omitempty"`
}

func (p UpdateParams) Validate() error {
	return core.TranslateError(core.Validate.Struct(p))
}

// PromoteParams flips the site-admin flag; admin only.
type PromoteParams struct {
	IsSiteAdmin bool `json:"is_site_admin"`
}
