package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_RegisterRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		req       RegisterRequest
		wantField string
	}{
		{name: "valid", req: RegisterRequest{Username: "newstudent", Password: "pw", Role: "STUDENT"}},
		{name: "prefixed role", req: RegisterRequest{Username: "t", Password: "pw", Role: "ROLE_TEACHER"}},
		{name: "blank username", req: RegisterRequest{Username: "   ", Password: "pw", Role: "ADMIN"}, wantField: "username"},
		{name: "unknown role", req: RegisterRequest{Username: "x", Password: "pw", Role: "JANITOR"}, wantField: "role"},
		{name: "missing password", req: RegisterRequest{Username: "x", Role: "ADMIN"}, wantField: "password"},
		{name: "72 byte password", req: RegisterRequest{Username: "x", Password: strings.Repeat("a", 72), Role: "ADMIN"}},
		{name: "multibyte password over 72 bytes", req: RegisterRequest{Username: "x", Password: strings.Repeat("é", 40), Role: "ADMIN"}, wantField: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var ve ValidationErrors
			require.True(t, errors.As(err, &ve))
			require.Len(t, ve, 1)
			assert.Equal(t, tt.wantField, ve[0].Field)
		})
	}
}

func TestValidator_DepartmentRequest(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&DepartmentRequest{Name: "Math"}))

	err := v.Validate(&DepartmentRequest{Name: ""})
	var ve ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"name is required"}, ve.Messages())
	assert.Equal(t, "validation failed: name is required", ve.Error())
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())
	assert.Equal(t, "validation failed: 2 field errors", ValidationErrors{{Field: "a"}, {Field: "b"}}.Error())
}
