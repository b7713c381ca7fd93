package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/gas-utility-service/pkg/util/errorutil"
)

const (
	minPasswordLength = 8
	// bcrypt only accepts up to 72 bytes of input.
	maxPasswordBytes  = 72

	msgRequired         = "This field is required."
	msgBlank            = "This field may not be blank."
	msgInvalidEmail     = "Enter a valid email address."
	msgInvalidUsername  = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	msgPasswordMismatch = "The two password fields didn't match."
	msgPasswordShort    = "This password is too short. It must contain at least 8 characters."
	msgPasswordNumeric  = "This password is entirely numeric."
	msgPasswordLong     = "This password is too long. It must contain at most 72 bytes."
	msgPasswordSimilar  = "The password is too similar to the username."
	msgUsernameTaken    = "A user with that username already exists."
	msgEmailTaken       = "User with this Email already exists."
)

var usernamePattern = regexp.MustCompile(`^[\pL\pN.@+_-]+$`)

// FieldErrors accumulates per-field validation messages.
type FieldErrors map[string][]string

// Add records a message for the field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Err returns a field validation error, or nil when nothing was recorded.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewFieldValidationError(f)
}

// Validator wraps go-playground/validator with the account form rules.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a validator that reports fields by their `form` tag.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct validates tagged fields and appends messages to errs.
func (v *Validator) Struct(input any, errs FieldErrors) {
	err := v.validate.Struct(input)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("non_field_errors", err.Error())
		return
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), messageFor(fe))
	}
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(field string, value any, tag string, errs FieldErrors) {
	err := v.validate.Var(value, tag)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			errs.Add(field, messageFor(fe))
		}
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return msgInvalidEmail
	case "username":
		return msgInvalidUsername
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}

// checkPassword applies the password strength rules and reports under field.
func checkPassword(field, password, username string, errs FieldErrors) {
	if utf8.RuneCountInString(password) < minPasswordLength {
		errs.Add(field, msgPasswordShort)
	}
	checkPasswordLength(field, password, errs)
	if isAllDigits(password) {
		errs.Add(field, msgPasswordNumeric)
	}
	if username != "" && strings.EqualFold(password, username) {
		errs.Add(field, msgPasswordSimilar)
	}
}

// checkPasswordLength rejects input bcrypt cannot hash.
func checkPasswordLength(field, password string, errs FieldErrors) {
	if len(password) > maxPasswordBytes {
		errs.Add(field, msgPasswordLong)
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// normalizeEmail lower-cases the domain part of an address.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
