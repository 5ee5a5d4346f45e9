package dto

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const schemaCheckout = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["products"],
  "properties": {
    "products": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["price", "quantity"],
        "properties": {
          "price": { "type": "number", "minimum": 0 },
          "quantity": { "type": "integer", "minimum": 1 },
          "name": { "type": "string" },
          "category": { "type": "string" },
          "giftCard": { "type": ["object", "null"] }
        }
      }
    },
    "email": { "type": "string" },
    "depositMode": { "type": "boolean" },
    "giftCard": { "type": ["object", "null"] }
  }
}`

const schemaConfirmPayment = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["client_reference_id"],
  "properties": {
    "client_reference_id": { "type": "string", "minLength": 1 }
  }
}`

var (
	checkoutSchema       = mustSchema("checkout", schemaCheckout)
	confirmPaymentSchema = mustSchema("confirm-payment", schemaConfirmPayment)
)

func mustSchema(name, src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("dto: %s schema: %v", name, err))
	}
	return s
}

// ValidationError is returned for request bodies that fail their schema.
type ValidationError struct {
	Message string
	Causes  []string
}

func (e *ValidationError) Error() string {
	if len(e.Causes) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Causes, "; ")
}

func ValidateCheckout(body []byte) error {
	return validate(checkoutSchema, body, "invalid or empty products array")
}

func ValidateConfirmPayment(body []byte) error {
	return validate(confirmPaymentSchema, body, "client_reference_id is required")
}

func validate(schema *gojsonschema.Schema, body []byte, message string) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		// unparsable JSON lands here
		return &ValidationError{Message: "malformed request body", Causes: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	causes := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		causes = append(causes, e.String())
	}
	return &ValidationError{Message: message, Causes: causes}
}
