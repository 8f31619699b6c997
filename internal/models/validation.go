package models

import "strings"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed or out-of-range input. Fields is empty
// for whole-request failures such as an empty item list.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return e.Message + ": " + strings.Join(msgs, "; ")
}

// Validator accumulates field errors in the order checks are made.
type Validator struct {
	fields []FieldError
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.fields = append(v.fields, FieldError{Field: field, Message: message})
	}
}

func (v *Validator) Required(value, field, message string) {
	v.Check(strings.TrimSpace(value) != "", field, message)
}

func (v *Validator) Valid() bool { return len(v.fields) == 0 }

// Err returns nil when no checks failed.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return &ValidationError{Message: "Validation errors", Fields: v.fields}
}

// ValidateShippingAddress requires all seven fields.
func ValidateShippingAddress(v *Validator, a Address) {
	v.Required(a.Name, "shippingAddress.name", "Shipping name is required")
	v.Required(a.Street, "shippingAddress.street", "Shipping street is required")
	v.Required(a.City, "shippingAddress.city", "Shipping city is required")
	v.Required(a.State, "shippingAddress.state", "Shipping state is required")
	v.Required(a.ZipCode, "shippingAddress.zipCode", "Shipping zip code is required")
	v.Required(a.Country, "shippingAddress.country", "Shipping country is required")
	v.Required(a.Phone, "shippingAddress.phone", "Shipping phone is required")
}
