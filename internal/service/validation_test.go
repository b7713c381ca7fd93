package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		password string
		username string
		want     []string
	}{
		{"gas-leak-42", "alice", nil},
		{"short1", "alice", []string{msgPasswordShort}},
		{"1234567", "alice", []string{msgPasswordShort, msgPasswordNumeric}},
		{"AliceAlice", "alicealice", []string{msgPasswordSimilar}},
		{strings.Repeat("ü", 40), "alice", []string{msgPasswordLong}},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			errs := FieldErrors{}
			checkPassword("password2", tt.password, tt.username, errs)
			assert.Equal(t, tt.want, errs["password2"])
		})
	}
}

func TestValidatorReportsFormNames(t *testing.T) {
	errs := FieldErrors{}
	NewValidator().Struct(RegistrationInput{Username: "bad name!", Email: "x"}, errs)

	assert.Equal(t, []string{msgInvalidUsername}, errs["username"])
	assert.Equal(t, []string{msgInvalidEmail}, errs["email"])
	assert.Equal(t, []string{msgRequired}, errs["name"])
	assert.Equal(t, []string{msgRequired}, errs["password1"])
	assert.NotContains(t, errs, "phone_number")
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "Alice@example.com", normalizeEmail("  Alice@EXAMPLE.com "))
	assert.Equal(t, "no-at-sign", normalizeEmail("no-at-sign"))
}

func TestFieldErrorsErr(t *testing.T) {
	assert.NoError(t, FieldErrors{}.Err())
	errs := FieldErrors{}
	errs.Add("details", msgBlank)
	assert.Error(t, errs.Err())
}
