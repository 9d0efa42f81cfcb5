package crud

import (
	"errors"
	"strings"

	"gymfront/internal/adapters/backend"
	"gymfront/internal/application/validation"
)

// FormState is the local state of a create or edit form.
type FormState struct {
	Values      map[string]string
	FieldErrors validation.FieldErrors
	TopError    string
	Submitting  bool
}

// NewFormState starts a form from values, which may be nil.
func NewFormState(values map[string]string) *FormState {
	if values == nil {
		values = map[string]string{}
	}
	return &FormState{Values: values, FieldErrors: validation.FieldErrors{}}
}

// Valid reports whether the form carries no error of any kind.
func (f *FormState) Valid() bool {
	return len(f.FieldErrors) == 0 && f.TopError == ""
}

// Errors returns the messages for one field.
func (f *FormState) Errors(field string) []string {
	return f.FieldErrors[field]
}

// AddErrors merges local validation messages into the form. Messages not keyed
// to a field join TopError.
func (f *FormState) AddErrors(fe validation.FieldErrors) {
	for key, msgs := range fe {
		if key == "" {
			f.addBanner(msgs...)
			continue
		}
		f.FieldErrors.Merge(validation.FieldErrors{key: msgs})
	}
}

func (f *FormState) addBanner(msgs ...string) {
	for _, m := range msgs {
		if m == "" || strings.Contains(f.TopError, m) {
			continue
		}
		if f.TopError == "" {
			f.TopError = m
		} else {
			f.TopError += " " + m
		}
	}
}

// ApplyServerError maps a failed submission onto the form.
// POST: TopError always carries the server message. Messages for names in known
// also attach to those fields; any other messages join TopError.
func (f *FormState) ApplyServerError(err error, known []string) {
	f.Submitting = false
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		f.TopError = backend.MsgGeneric
		return
	}
	if apiErr.Kind != backend.KindValidation || len(apiErr.Fields) == 0 {
		f.TopError = apiErr.Message
		return
	}

	isKnown := make(map[string]bool, len(known))
	for _, k := range known {
		isKnown[k] = true
	}
	f.addBanner(apiErr.Message)
	for _, key := range apiErr.Keys {
		msgs := apiErr.Fields[key]
		if isKnown[key] {
			f.FieldErrors.Merge(validation.FieldErrors{key: msgs})
			continue
		}
		f.addBanner(msgs...)
	}
	if f.TopError == "" {
		f.TopError = MsgRejected
	}
}

// MsgRejected is the banner when the backend named only fields and gave no message.
const MsgRejected = "Revisa los campos marcados."

// Message returns the user-facing text for any error.
func Message(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return backend.MsgGeneric
}
