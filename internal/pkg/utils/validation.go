package utils

import (
	"intake-service/internal/pkg/constvars"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("visit_type", validateVisitType)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

func validateVisitType(fl validator.FieldLevel) bool {
	visitType := fl.Field().String()
	return visitType == constvars.VisitTypeFirstVisit || visitType == constvars.VisitTypeRepeatVisit
}
