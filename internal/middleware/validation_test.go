package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Request shape mirroring the write endpoints' payloads
type categoryForm struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Price float64 `json:"price" validate:"required,gte=0,lte=100000"`
}

// Feature: wholesale-catalog, Property: required fields are enforced
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includeEmail bool, includePrice bool) bool {
			reqMap := make(map[string]interface{})

			if includeName {
				reqMap["name"] = "Power Tools"
			}
			if includeEmail {
				reqMap["email"] = "sales@example.com"
			}
			if includePrice {
				reqMap["price"] = 49.90
			}

			allFieldsPresent := includeName && includeEmail && includePrice

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/categories", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var form categoryForm
			err := DecodeAndValidate(req, &form)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test that validation errors are properly formatted
func TestProperty_ValidationErrorsAreFormatted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation errors include field information", prop.ForAll(
		func() bool {
			reqMap := map[string]interface{}{
				"name":  "Power Tools",
				"email": "not-an-email",
				"price": 49.90,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/categories", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var form categoryForm
			err := DecodeAndValidate(req, &form)
			if err == nil {
				return false
			}

			validationErrors := FormatValidationErrors(err)
			if len(validationErrors) == 0 {
				return false
			}
			for _, ve := range validationErrors {
				if ve.Field == "" || ve.Message == "" {
					return false
				}
			}

			return true
		},
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test that valid requests pass validation
func TestProperty_ValidRequestsPassValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid requests pass validation", prop.ForAll(
		func(seed int) bool {
			names := []string{"Power Tools", "Garden", "Electronics", "Packaging"}
			prices := []float64{1, 9.99, 250, 99999.99}

			if seed < 0 {
				seed = -seed
			}

			reqMap := map[string]interface{}{
				"name":  names[seed%len(names)],
				"email": "sales@example.com",
				"price": prices[seed%len(prices)],
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/categories", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var form categoryForm
			return DecodeAndValidate(req, &form) == nil
		},
		gen.Int(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test numeric range validation
func TestProperty_PriceRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("price outside valid range is rejected", prop.ForAll(
		func(price int) bool {
			reqMap := map[string]interface{}{
				"name":  "Power Tools",
				"email": "sales@example.com",
				"price": price,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/categories", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var form categoryForm
			err := DecodeAndValidate(req, &form)

			// required,gte=0 means a zero price is also rejected
			if price > 0 && price <= 100000 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-1000, 200000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
