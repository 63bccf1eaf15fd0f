package validator

import (
	"errors"
	"fmt"
	"strings"

	"actibook/pkg/logger"
	"actibook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// CatalogValidator performs structural validation of grades and
// activities arriving through the admin surface.
type CatalogValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCatalogValidator(log *logger.Logger) *CatalogValidator {
	v := validator.New()

	if err := v.RegisterValidation("weekday", validateWeekday); err != nil {
		log.Fatal("Failed to register 'weekday' validator", "error", err)
	}

	return &CatalogValidator{
		validate: v,
		logger:   log,
	}
}

func validateWeekday(fl validator.FieldLevel) bool {
	return model.IsWeekday(fl.Field().String())
}

func (v *CatalogValidator) ValidateGrade(grade *model.Grade) error {
	return v.translate(v.validate.Struct(grade))
}

func (v *CatalogValidator) ValidateActivity(activity *model.Activity) error {
	return v.translate(v.validate.Struct(activity))
}

func (v *CatalogValidator) ValidateActivityUpdate(update *model.ActivityUpdate) error {
	return v.translate(v.validate.Struct(update))
}

func (v *CatalogValidator) translate(err error) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return translateValidationErrors(validationErrs)
	}
	return err
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "weekday":
			message = fmt.Sprintf("%s must be one of the seven weekday labels", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
