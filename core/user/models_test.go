package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/mathstutor/mathstutor-go/core"
)

func TestUserMerge(t *testing.T) {
	usr := User{
		ID:       7,
		Username: "sam",
		Email:    "sam@example.com",
		FullName: null.StringFrom("Sam Smith"),
	}

	merged := usr.Merge(UpdateParams{Username: "  Sammy  ", FullName: null.StringFrom("Sammy Smith")})
	assert.Equal(t, "Sammy", merged.Username)
	assert.Equal(t, "sam@example.com", merged.Email)
	assert.Equal(t, "Sammy Smith", merged.FullName.String)

	// empty fields leave the original untouched
	merged = usr.Merge(UpdateParams{})
	assert.Equal(t, usr, merged)

	// emails are lowercased
	merged = usr.Merge(UpdateParams{Email: "Sam@Example.COM"})
	assert.Equal(t, "sam@example.com", merged.Email)
}

func TestRegisterParamsValidate(t *testing.T) {
	valid := RegisterParams{Username: "sam_1", Email: "sam@example.com", Password: "longenough"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		params RegisterParams
	}{
		{name: "bad username", params: RegisterParams{Username: "sam!", Email: "sam@example.com", Password: "longenough"}},
		{name: "bad email", params: RegisterParams{Username: "sam", Email: "nope", Password: "longenough"}},
		{name: "short password", params: RegisterParams{Username: "sam", Email: "sam@example.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vErr *core.ValidationError
			assert.ErrorAs(t, tt.params.Validate(), &vErr)
		})
	}
}

func TestUserRoleHelpers(t *testing.T) {
	assert.True(t, User{Role: null.StringFrom(RoleStudent)}.IsStudent())
	assert.True(t, User{Role: null.StringFrom(RoleTutor)}.IsTutor())
	assert.False(t, User{}.IsStudent())
	assert.False(t, User{}.HasGroups())
}
