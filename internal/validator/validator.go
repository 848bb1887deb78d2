package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/ieltsprep/exam-service/internal/errors"
	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/registry"
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// Validator combines struct-tag validation with question content
// validation.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

func New(reg *registry.Registry) *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(reg),
	}
}

// Validate checks struct tags and reports failures as ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// Question returns the question content validator.
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("modality", validateModality)
	validate.RegisterValidation("scoring_strategy", validateScoringStrategy)

	// Report json field names in error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.MultipleChoice,
		models.Completion,
		models.Matching,
		models.MatchingHeadings,
		models.TrueFalseNotGiven,
		models.ShortAnswer,
		models.Labeling,
		models.PickFromList,
		models.WritingTask1,
		models.WritingTask2,
		models.WordForm,
		models.SentenceTranslation,
	}

	value := fl.Field().String()
	for _, t := range validTypes {
		if string(t) == value {
			return true
		}
	}
	return false
}

func validateModality(fl validator.FieldLevel) bool {
	switch models.Modality(fl.Field().String()) {
	case models.ModalityListening, models.ModalityReading, models.ModalityWriting, models.ModalitySpeaking:
		return true
	}
	return false
}

func validateScoringStrategy(fl validator.FieldLevel) bool {
	switch models.ScoringStrategy(fl.Field().String()) {
	case models.StrategyPartial, models.StrategyAllOrNothing:
		return true
	}
	return false
}
