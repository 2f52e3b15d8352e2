package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	domainIssue "civicfix/internal/domain/issue"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	err := validate.RegisterValidation("issue_category", validateIssueCategory)
	if err != nil {
		return
	}
	err = validate.RegisterValidation("issue_status", validateIssueStatus)
	if err != nil {
		return
	}
	err = validate.RegisterValidation("phone", validatePhone)
	if err != nil {
		return
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// issue_category covers the closed 8-value enumeration; oneof cannot express
// values containing spaces, hence the custom validator.
func validateIssueCategory(fl validator.FieldLevel) bool {
	return domainIssue.Category(fl.Field().String()).Valid()
}

func validateIssueStatus(fl validator.FieldLevel) bool {
	return domainIssue.Status(fl.Field().String()).Valid()
}

func validatePhone(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	re := regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	return re.MatchString(phone)
}

func IsValidEmail(email string) bool {
	email = strings.TrimSpace(strings.ToLower(email))
	re := regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	return re.MatchString(email)
}
