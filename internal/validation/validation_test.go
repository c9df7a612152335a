package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartstudy/internal/apperror"
)

type registerInput struct {
	Username string `json:"username" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,role"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(registerInput{Username: "alice", Email: "a@x.com", Password: "secret1"}))

	err := v.Struct(registerInput{Username: "   ", Email: "nope", Role: "root"})
	require.Error(t, err)

	appErr := apperror.As(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Equal(t, "username cannot be blank", appErr.Fields["username"])
	assert.Equal(t, "email must be a valid email address", appErr.Fields["email"])
	assert.Equal(t, "password is required", appErr.Fields["password"])
	assert.Equal(t, "role must be one of student, admin", appErr.Fields["role"])
	assert.Equal(t,
		"email must be a valid email address; password is required; role must be one of student, admin; username cannot be blank",
		appErr.Message)
}

func TestValidator_Var(t *testing.T) {
	v := New()

	assert.NoError(t, v.Var("email", "reader@example.com", "required,email"))

	err := v.Var("email", "", "required,email")
	appErr := apperror.As(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Equal(t, "email is required", appErr.Message)
	assert.Contains(t, appErr.Fields, "email")
}
