package validator

import (
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/SAP-F-2025/quiz-import-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// MaxSubjectLength bounds the subject label stored with every question.
const MaxSubjectLength = 100

// Validator wraps the struct validator with the custom rules of this service
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// ValidateStruct validates struct tags and converts failures to ValidationErrors
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.structValidator.Struct(s)
	if err == nil {
		return nil
	}
	if errs := ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

// ValidateAnswerIndex checks a curated correct-answer index
func (v *Validator) ValidateAnswerIndex(index int) error {
	if err := v.structValidator.Var(index, "answer_index"); err != nil {
		return ValidationErrors{{
			Field:   "correct_answer_index",
			Message: "must be -1 (unknown) or an option index from 0 to 3",
			Value:   index,
			Rule:    "answer_index",
		}}
	}
	return nil
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("subject", validateSubject)
	validate.RegisterValidation("nonblank", validateNonBlank)
	validate.RegisterValidation("answer_index", validateAnswerIndex)
	validate.RegisterValidation("export_format", validateExportFormat)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
}

// Blank and whitespace-only subjects are allowed; the caller substitutes the default.
func validateSubject(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) <= MaxSubjectLength
}

func validateNonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateAnswerIndex(fl validator.FieldLevel) bool {
	value := fl.Field().Int()
	return value >= int64(models.UnknownAnswer) && value < int64(models.OptionCount)
}

func validateExportFormat(fl validator.FieldLevel) bool {
	switch models.ExportFormat(fl.Field().String()) {
	case models.ExportCSV, models.ExportXLSX:
		return true
	}
	return false
}
