package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps the struct validator with the service's custom tags
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new validator instance
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates s and converts failures into ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}
	if errs := ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("event_type", validateEventType)
	validate.RegisterValidation("notification_status", validateNotificationStatus)
	validate.RegisterValidation("user_role", validateUserRole)

	// Report fields by their json name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateEventType(fl validator.FieldLevel) bool {
	return models.EventType(fieldString(fl)).IsValid()
}

func validateNotificationStatus(fl validator.FieldLevel) bool {
	return models.NotificationStatus(fieldString(fl)).IsValid()
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.UserRole(fieldString(fl)).IsValid()
}

// fieldString reads string and *string fields alike
func fieldString(fl validator.FieldLevel) string {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return ""
		}
		field = field.Elem()
	}
	return field.String()
}
