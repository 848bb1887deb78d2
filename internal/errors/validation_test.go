package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("title", "is required", "")

	if err.Field != "title" {
		t.Errorf("Expected field to be 'title', got '%s'", err.Field)
	}

	if err.Message != "is required" {
		t.Errorf("Expected message to be 'is required', got '%s'", err.Message)
	}

	expected := "validation error on field 'title': is required"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("title", "is required", nil))
	expected := "validation failed: title is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("duration", "must be greater than 0", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestToValidationErrors(t *testing.T) {
	type payload struct {
		Title    string `validate:"required"`
		Duration int    `validate:"gt=0"`
		Modality string `validate:"oneof=listening reading writing speaking"`
	}

	v := validator.New()
	err := v.Struct(payload{Modality: "singing"})
	if err == nil {
		t.Fatal("Expected struct validation to fail")
	}

	errs := ToValidationErrors(err)
	if len(errs) != 3 {
		t.Fatalf("Expected 3 field errors, got %d", len(errs))
	}

	byField := make(map[string]ValidationError, len(errs))
	for _, e := range errs {
		byField[e.Field] = e
	}

	if byField["Title"].Message != "is required" {
		t.Errorf("Expected required message for Title, got '%s'", byField["Title"].Message)
	}
	if byField["Title"].Rule != "required" {
		t.Errorf("Expected rule 'required' for Title, got '%s'", byField["Title"].Rule)
	}
	if byField["Duration"].Message != "must be greater than 0" {
		t.Errorf("Expected gt message for Duration, got '%s'", byField["Duration"].Message)
	}
	if byField["Modality"].Message != "must be one of: listening reading writing speaking" {
		t.Errorf("Unexpected oneof message for Modality: '%s'", byField["Modality"].Message)
	}
}

func TestToValidationErrors_NonValidatorError(t *testing.T) {
	errs := ToValidationErrors(NewValidationError("x", "y", nil))
	if len(errs) != 0 {
		t.Errorf("Expected no errors for a non-validator error, got %d", len(errs))
	}
}
