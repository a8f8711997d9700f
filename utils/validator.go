package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

type ValidationService struct {
	validator *validator.Validate
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func NewValidationService() *ValidationService {
	v := validator.New()

	// Report JSON field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	// Register custom validators
	v.RegisterValidation("phone", validatePhone)
	v.RegisterValidation("email_address", validateEmailAddress)
	v.RegisterValidation("urgency_level", oneOfValidator(urgencyLevels))
	v.RegisterValidation("animal_type", oneOfValidator(animalTypes))
	v.RegisterValidation("situation_type", oneOfValidator(situationTypes))

	return &ValidationService{
		validator: v,
	}
}

// Kept local so utils does not import models for plain string sets
var (
	urgencyLevels  = []string{"low", "normal", "high", "emergency"}
	animalTypes    = []string{"dog", "cat", "bird", "horse", "livestock", "wildlife", "other"}
	situationTypes = []string{"abuse", "neglect", "injury", "abandonment", "hoarding", "fighting", "other"}
)

func (vs *ValidationService) ValidateStruct(s interface{}) []ValidationError {
	var validationErrors []ValidationError

	err := vs.validator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []ValidationError{{Message: err.Error()}}
	}

	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fmt.Sprintf("%v", fe.Value()),
			Message: vs.getErrorMessage(fe),
		})
	}

	return validationErrors
}

func (vs *ValidationService) getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", humanize(fe.Field()))
	case "email", "email_address":
		return "Invalid email address"
	case "phone":
		return "Invalid phone number"
	case "url":
		return fmt.Sprintf("%s must be a valid URL", humanize(fe.Field()))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", humanize(fe.Field()), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", humanize(fe.Field()), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", humanize(fe.Field()), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", humanize(fe.Field()), fe.Param())
	case "urgency_level":
		return "Invalid urgency level"
	case "animal_type":
		return "Invalid animal type"
	case "situation_type":
		return "Invalid situation type"
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color", humanize(fe.Field()))
	default:
		return fmt.Sprintf("%s is invalid", humanize(fe.Field()))
	}
}

// humanize turns "contact_email" into "Contact email"
func humanize(field string) string {
	field = strings.ReplaceAll(field, "_", " ")
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

// Custom validation functions
func validatePhone(fl validator.FieldLevel) bool {
	return ValidatePhone(fl.Field().String())
}

func validateEmailAddress(fl validator.FieldLevel) bool {
	return ValidateEmail(fl.Field().String())
}

func oneOfValidator(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, valid := range values {
			if value == valid {
				return true
			}
		}
		return false
	}
}

// ValidateEmail reports whether email has a local part, an "@" and a dotted domain
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePhone accepts up to 16 digits with an optional leading "+", ignoring spaces
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(strings.ReplaceAll(phone, " ", ""))
}

// ValidationFailedError carries field errors out of service-level validation
type ValidationFailedError struct {
	Errors []ValidationError
}

func (e *ValidationFailedError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return e.Errors[0].Message
}

// GetValidationErrors extracts field errors from an error chain
func GetValidationErrors(err error) ([]ValidationError, bool) {
	var vErr *ValidationFailedError
	if errors.As(err, &vErr) {
		return vErr.Errors, true
	}
	return nil, false
}
