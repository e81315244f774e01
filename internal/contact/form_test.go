package contact

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		form Form
		want Errors
	}{
		{
			name: "missing name",
			form: Form{Email: "a@b.com", Message: "hi"},
			want: Errors{FieldName: "Name is required"},
		},
		{
			name: "malformed email",
			form: Form{Name: "Sam", Email: "not-an-email", Message: "hi"},
			want: Errors{FieldEmail: "Email is invalid"},
		},
		{
			name: "email without dot suffix",
			form: Form{Name: "Sam", Email: "sam@example", Message: "hi"},
			want: Errors{FieldEmail: "Email is invalid"},
		},
		{
			name: "everything empty",
			form: Form{},
			want: Errors{
				FieldName:    "Name is required",
				FieldEmail:   "Email is required",
				FieldMessage: "Message is required",
			},
		},
		{
			name: "empty message and bad email",
			form: Form{Name: "Sam", Email: "sam at example.com"},
			want: Errors{
				FieldEmail:   "Email is invalid",
				FieldMessage: "Message is required",
			},
		},
		{
			name: "valid",
			form: Form{Name: "Sam", Email: "sam@example.com", Message: "hello there"},
			want: Errors{},
		},
		{
			name: "whitespace name is not empty",
			form: Form{Name: " ", Email: "x@y.io", Message: "m"},
			want: Errors{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.form)
			if got == nil {
				t.Fatal("Validate returned nil map")
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateReportsExactlyEmptyFields(t *testing.T) {
	values := []string{"", "x"}
	for _, name := range values {
		for _, email := range []string{"", "a@b.co"} {
			for _, message := range values {
				form := Form{Name: name, Email: email, Message: message}
				errs := Validate(form)
				for _, field := range Fields {
					_, flagged := errs[field]
					empty := form.Get(field) == ""
					if flagged != empty {
						t.Fatalf("form %+v: field %s flagged = %v, empty = %v", form, field, flagged, empty)
					}
				}
			}
		}
	}
}

func TestFormSet(t *testing.T) {
	var f Form
	for _, field := range Fields {
		if err := f.Set(field, string(field)+"-value"); err != nil {
			t.Fatalf("set %s: %v", field, err)
		}
	}
	want := Form{Name: "name-value", Email: "email-value", Message: "message-value"}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
	if err := f.Set("phone", "555"); err != ErrUnknownField {
		t.Fatalf("set unknown field err = %v, want %v", err, ErrUnknownField)
	}
}
