package utils

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	registerOnce sync.Once

	postcodePattern  = regexp.MustCompile(`^[0-9]{4}$`)
	clockTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)
)

func init() {
	validate = validator.New()
}

// ValidateStruct validates a struct using validation tags
func ValidateStruct(s interface{}) error {
	registerOnce.Do(RegisterCustomValidations)
	return validate.Struct(s)
}

// IsValidPostcode accepts an empty value or a four digit Australian postcode
func IsValidPostcode(postcode string) bool {
	return postcode == "" || postcodePattern.MatchString(postcode)
}

// IsValidClockTime accepts HH:MM or HH:MM:SS
func IsValidClockTime(value string) bool {
	return clockTimePattern.MatchString(value)
}

// RegisterCustomValidations registers custom validation functions
func RegisterCustomValidations() {
	validate.RegisterValidation("postcode", func(fl validator.FieldLevel) bool {
		return IsValidPostcode(fl.Field().String())
	})

	validate.RegisterValidation("clocktime", func(fl validator.FieldLevel) bool {
		return IsValidClockTime(fl.Field().String())
	})

	// data types a product variable can take in the quoting UI
	validate.RegisterValidation("datatype", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "select", "number", "text", "boolean":
			return true
		}
		return false
	})
}
