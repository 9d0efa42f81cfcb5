package crud

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"gymfront/internal/application/validation"
)

// Kind selects how a field is rendered and parsed.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindNumber   Kind = "number"
	KindInteger  Kind = "integer"
	KindDate     Kind = "date"
	KindTime     Kind = "time"
	KindEmail    Kind = "email"
	KindPassword Kind = "password"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
)

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// Field describes one form input. Name is the JSON field of the payload.
type Field struct {
	Name       string
	Label      string
	Kind       Kind
	Required   bool
	CreateOnly bool // required when creating, left out of an edit when blank
	ReadOnly   bool
	Hidden     bool
	Numeric    bool // select values are integer ids
	Options    []Option
	Help       string
}

// InputType is the HTML input type attribute for the field.
func (f Field) InputType() string {
	if f.Hidden {
		return "hidden"
	}
	switch f.Kind {
	case KindNumber, KindInteger:
		return "number"
	case KindDate, KindTime, KindEmail, KindPassword, KindCheckbox:
		return string(f.Kind)
	}
	return "text"
}

// Step is the HTML step attribute for numeric inputs.
func (f Field) Step() string {
	if f.Kind == KindNumber {
		return "0.01"
	}
	return "1"
}

// Schema is the ordered field list of a resource form.
type Schema struct {
	Fields []Field
}

// Names returns the field names in display order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Field looks a field up by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// WithOptions returns a copy of s whose field name offers opts.
func (s Schema) WithOptions(name string, opts []Option) Schema {
	fields := make([]Field, len(s.Fields))
	copy(fields, s.Fields)
	for i := range fields {
		if fields[i].Name == name {
			fields[i].Options = opts
		}
	}
	return Schema{Fields: fields}
}

// Decode builds a create payload from form values into dst. ReadOnly fields are never read.
// PRE: dst is a pointer to a struct whose JSON names match the schema
// POST: Returns nil when dst is complete and valid; otherwise field-keyed messages
func (s Schema) Decode(form url.Values, dst any) validation.FieldErrors {
	return s.decode(form, dst, true)
}

// DecodeEdit is Decode for an update: CreateOnly fields may be left blank.
func (s Schema) DecodeEdit(form url.Values, dst any) validation.FieldErrors {
	return s.decode(form, dst, false)
}

func (s Schema) decode(form url.Values, dst any, creating bool) validation.FieldErrors {
	errs := validation.FieldErrors{}
	payload := make(map[string]any, len(s.Fields))

	for _, f := range s.Fields {
		raw := form.Get(f.Name)
		if f.Kind != KindPassword {
			raw = strings.TrimSpace(raw)
		}
		if f.ReadOnly {
			continue
		}
		if f.Kind == KindCheckbox {
			payload[f.Name] = raw != "" && raw != "false"
			continue
		}
		if raw == "" {
			if f.Required || (f.CreateOnly && creating) {
				errs.Add(f.Name, validation.MsgRequired)
			}
			continue
		}
		switch {
		case f.Kind == KindNumber:
			n, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				errs.Add(f.Name, validation.MsgNumber)
				continue
			}
			payload[f.Name] = n
		case f.Kind == KindInteger, f.Kind == KindSelect && f.Numeric:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				errs.Add(f.Name, validation.MsgInteger)
				continue
			}
			payload[f.Name] = n
		default:
			payload[f.Name] = raw
		}
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		errs.Add("", err.Error())
		return errs
	}
	if err := json.Unmarshal(buf, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			errs.Add(typeErr.Field, validation.MsgNumber)
		} else {
			errs.Add("", err.Error())
		}
		return errs
	}

	errs.Merge(s.checkEdit(validation.Check(dst), form, creating))
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// checkEdit drops validator complaints about CreateOnly fields left blank on an edit.
func (s Schema) checkEdit(fe validation.FieldErrors, form url.Values, creating bool) validation.FieldErrors {
	if creating || fe == nil {
		return fe
	}
	for _, f := range s.Fields {
		if f.CreateOnly && form.Get(f.Name) == "" {
			delete(fe, f.Name)
		}
	}
	return fe
}

// Values returns the submitted values for redisplay. Passwords are never echoed.
func (s Schema) Values(form url.Values) map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		if f.Kind == KindPassword {
			continue
		}
		out[f.Name] = strings.TrimSpace(form.Get(f.Name))
	}
	return out
}

// Encode produces edit-form values from a fetched entity.
// POST: Dates are YYYY-MM-DD, times HH:MM, booleans "on" or empty; passwords are blank
func (s Schema) Encode(entity any) (map[string]string, error) {
	buf, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	dec := json.NewDecoder(strings.NewReader(string(buf)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}

	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		if f.Kind == KindPassword {
			out[f.Name] = ""
			continue
		}
		out[f.Name] = formValue(f, m[f.Name])
	}
	return out, nil
}

func formValue(f Field, v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "on"
		}
		return ""
	case json.Number:
		return x.String()
	case string:
		switch f.Kind {
		case KindDate:
			if len(x) > 10 {
				return x[:10]
			}
		case KindTime:
			if len(x) > 5 {
				return x[:5]
			}
		}
		return x
	}
	return fmt.Sprint(v)
}
