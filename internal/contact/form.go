// Package contact owns the portfolio contact form: field state, validation and
// the submission lifecycle against an outbound mail transport.
package contact

import (
	"errors"
	"regexp"
)

// Field identifies one input of the contact form.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// Fields lists the form inputs in render order.
var Fields = []Field{FieldName, FieldEmail, FieldMessage}

// ErrUnknownField is returned when a field identifier is not one of Fields.
var ErrUnknownField = errors.New("unknown contact field")

// Form is the state backing the contact form.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Set assigns value to the named field.
func (f *Form) Set(field Field, value string) error {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldMessage:
		f.Message = value
	default:
		return ErrUnknownField
	}
	return nil
}

// Get returns the value of the named field.
func (f Form) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldMessage:
		return f.Message
	}
	return ""
}

// IsZero reports whether every field is empty.
func (f Form) IsZero() bool {
	return f == Form{}
}

// Errors maps invalid fields to a human readable message. Valid fields have no key.
type Errors map[Field]string

// Validation messages.
const (
	MsgNameRequired    = "Name is required"
	MsgEmailRequired   = "Email is required"
	MsgEmailInvalid    = "Email is invalid"
	MsgMessageRequired = "Message is required"
)

// emailShape is a loose check: something, an @, something, a dot, something.
var emailShape = regexp.MustCompile(`\S+@\S+\.\S+`)

// Validate checks every field of f and returns the problems found. The result
// is empty, never nil, when f is valid.
func Validate(f Form) Errors {
	errs := Errors{}
	if f.Name == "" {
		errs[FieldName] = MsgNameRequired
	}
	if f.Email == "" {
		errs[FieldEmail] = MsgEmailRequired
	} else if !emailShape.MatchString(f.Email) {
		errs[FieldEmail] = MsgEmailInvalid
	}
	if f.Message == "" {
		errs[FieldMessage] = MsgMessageRequired
	}
	return errs
}
