package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

var studentNoPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{3,19}$`)

// New creates a new validator instance
func New() *Validator {
	v := validator.New()

	// Register custom tag name function to use JSON tags
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validators
	v.RegisterValidation("role", validateRole)
	v.RegisterValidation("appstatus", validateAppStatus)
	v.RegisterValidation("worktype", validateWorkType)
	v.RegisterValidation("dateformat", validateDateFormat)
	v.RegisterValidation("studentno", validateStudentNo)
	v.RegisterValidation("password", validatePassword)

	return &Validator{validate: v}
}

// Validate validates a struct and returns validation errors
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Convert validation errors to our custom format
	var validationErrs ValidationErrors
	for _, fe := range fieldErrs {
		value := fmt.Sprintf("%v", fe.Value())
		if fe.Tag() == "password" {
			value = ""
		}
		validationErrs = append(validationErrs, ValidationError{
			Field:   fe.Field(),
			Message: msgForTag(fe),
			Tag:     fe.Tag(),
			Value:   value,
		})
	}

	return validationErrs
}

// msgForTag returns a human-readable error message for a validation tag
func msgForTag(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid ID", field)
	case "role":
		return fmt.Sprintf("%s must be either 'student' or 'admin'", field)
	case "appstatus":
		return fmt.Sprintf("%s must be one of: under_review, accepted, rejected", field)
	case "worktype":
		return fmt.Sprintf("%s must be one of: onsite, remote, hybrid", field)
	case "dateformat":
		return fmt.Sprintf("%s must be a valid date in YYYY-MM-DD format", field)
	case "studentno":
		return fmt.Sprintf("%s must be 4-20 letters, digits or dashes", field)
	case "password":
		return fmt.Sprintf("%s must be at least 8 characters and contain a letter and a digit", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// Custom validators

func validateRole(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	return role == "student" || role == "admin"
}

// validateAppStatus accepts the statuses an admin may set on review
func validateAppStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "under_review", "accepted", "rejected":
		return true
	}
	return false
}

func validateWorkType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "onsite", "remote", "hybrid":
		return true
	}
	return false
}

// validateDateFormat validates YYYY-MM-DD format and that the day exists
func validateDateFormat(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func validateStudentNo(fl validator.FieldLevel) bool {
	return studentNoPattern.MatchString(fl.Field().String())
}

// PasswordStrong reports whether a password meets the account password policy.
func PasswordStrong(password string) bool {
	if len(password) < 8 || len(password) > 72 {
		return false
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

func validatePassword(fl validator.FieldLevel) bool {
	return PasswordStrong(fl.Field().String())
}
