package handler

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/internal/domain"
)

func TestRegistrationValidationError(t *testing.T) {
	validate := validator.New()

	tests := []struct {
		name      string
		req       registerRequest
		wantField string
	}{
		{
			name:      "bad email",
			req:       registerRequest{Email: "not-an-email", Password: "x", ConfirmPassword: "x"},
			wantField: "email",
		},
		{
			name:      "missing password",
			req:       registerRequest{Email: "a@b.com", ConfirmPassword: ""},
			wantField: "password",
		},
		{
			name:      "passwords differ",
			req:       registerRequest{Email: "a@b.com", Password: "one", ConfirmPassword: "two"},
			wantField: "confirm_password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.req)
			require.Error(t, err)

			mapped := registrationValidationError(err)
			var vErr *domain.ValidationError
			require.ErrorAs(t, mapped, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestRegistrationValidationError_NonValidatorError(t *testing.T) {
	mapped := registrationValidationError(fmt.Errorf("boom"))

	var vErr *domain.ValidationError
	require.ErrorAs(t, mapped, &vErr)
	assert.Equal(t, "body", vErr.Field)
}
