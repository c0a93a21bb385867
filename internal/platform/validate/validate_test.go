// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aulagate/internal/platform/apperr"
	"github.com/taibuivan/aulagate/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "email", "maestra@escuela.edu", false},
		{"empty_string", "email", "", true},
		{"whitespace_only", "email", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Required("password", "secreto1").
		MinLen("password", "secreto1", 6).
		MaxLen("password", "secreto1", 72).
		Email("email", "director@escuela.edu").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("password", "").       // Fails
		MinLen("password", "a", 6).     // Fails
		Email("email", "not-an-email"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}

/*
TestValidator_Path checks the page path rule used by the navigation endpoints.
*/
func TestValidator_Path(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		isValid bool
	}{
		{"root", "/", true},
		{"nested", "/teacher/courses/42", true},
		{"relative", "teacher", false},
		{"empty", "", false},
		{"query", "/teacher?tab=1", false},
		{"fragment", "/teacher#top", false},
		{"protocol_relative", "//evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Path("to", tt.path)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Role checks that only known roles pass and empty values are skipped.
*/
func TestValidator_Role(t *testing.T) {
	assert.False(t, (&validate.Validator{}).Role("role", "Maestro").HasErrors())
	assert.False(t, (&validate.Validator{}).Role("role", "teacher").HasErrors())
	assert.False(t, (&validate.Validator{}).Role("role", "").HasErrors())
	assert.True(t, (&validate.Validator{}).Role("role", "Janitor").HasErrors())
}

/*
TestValidator_Lengths checks that lengths are counted in characters, not bytes.
*/
func TestValidator_Lengths(t *testing.T) {
	assert.False(t, (&validate.Validator{}).MinLen("new_password", "contraseña", 10).HasErrors())
	assert.True(t, (&validate.Validator{}).MinLen("new_password", "clave12", 8).HasErrors())
	assert.False(t, (&validate.Validator{}).MaxLen("email", "niño@escuela.edu", 16).HasErrors())
	assert.True(t, (&validate.Validator{}).MaxLen("email", "niño@escuela.edu", 15).HasErrors())
}

/*
TestValidator_Custom checks that a custom rule adds its message only when it fails.
*/
func TestValidator_Custom(t *testing.T) {
	assert.NoError(t, (&validate.Validator{}).Custom("confirm_password", false, "Passwords do not match").Err())

	ae := apperr.As((&validate.Validator{}).Custom("confirm_password", true, "Passwords do not match").Err())
	require.NotNil(t, ae)
	assert.Equal(t, []apperr.FieldError{{Field: "confirm_password", Message: "Passwords do not match"}}, ae.Details)
}
