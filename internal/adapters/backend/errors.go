package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failed backend call.
type Kind int

const (
	// KindTransport is a network failure, timeout or an open breaker.
	KindTransport Kind = iota
	// KindValidation is a 400 carrying field-keyed messages.
	KindValidation
	// KindGeneric is any other error payload (detail, non_field_errors, plain text).
	KindGeneric
	KindUnauthorized
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	}
	return "generic"
}

// Default messages shown when the backend gives nothing usable.
const (
	MsgUnavailable  = "No se pudo conectar con el servidor. Intenta más tarde."
	MsgUnauthorized = "Tu sesión expiró. Inicia sesión nuevamente."
	MsgForbidden    = "No tienes permiso para realizar esta acción."
	MsgNotFound     = "El recurso solicitado no existe."
	MsgGeneric      = "Ocurrió un error inesperado. Intenta de nuevo."
)

// APIError is the normalized shape of every failed backend call.
// INVARIANT: Message is never empty
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	// Fields holds field-keyed messages, keyed by the backend field name.
	Fields map[string][]string
	// Keys is the order in which keys appeared in the payload.
	Keys []string
	Err  error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Field returns the messages for one field.
func (e *APIError) Field(name string) []string {
	return e.Fields[name]
}

// Primary picks the single most relevant message, checking the given keys first,
// then detail, then non_field_errors, then the first key of the payload.
func (e *APIError) Primary(keys ...string) string {
	for _, k := range keys {
		if msgs := e.Fields[k]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return e.Message
}

func kindFor(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	}
	return KindGeneric
}

func defaultMessage(k Kind) string {
	switch k {
	case KindTransport:
		return MsgUnavailable
	case KindUnauthorized:
		return MsgUnauthorized
	case KindForbidden:
		return MsgForbidden
	case KindNotFound:
		return MsgNotFound
	}
	return MsgGeneric
}

// normalize turns a heterogeneous error body into an APIError.
// POST: Message is non-empty; Fields excludes detail and non_field_errors
func normalize(status int, body []byte) *APIError {
	e := &APIError{Kind: kindFor(status), Status: status, Fields: map[string][]string{}}
	body = bytes.TrimSpace(body)

	var payload any
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		switch p := payload.(type) {
		case map[string]any:
			keys := objectKeys(body)
			var nonField []string
			for _, k := range keys {
				msgs := flatten(p[k])
				switch k {
				case "detail", "message", "error":
					if e.Message == "" && len(msgs) > 0 {
						e.Message = msgs[0]
					}
				case "non_field_errors":
					nonField = append(nonField, msgs...)
				default:
					e.Fields[k] = msgs
					e.Keys = append(e.Keys, k)
				}
			}
			if e.Message == "" && len(nonField) > 0 {
				e.Message = strings.Join(nonField, " ")
			}
			if e.Message == "" && len(e.Keys) > 0 {
				if first := e.Fields[e.Keys[0]]; len(first) > 0 {
					e.Message = first[0]
				}
			}
			if e.Kind == KindGeneric && status == http.StatusBadRequest && len(e.Keys) > 0 {
				e.Kind = KindValidation
			}
		case []any:
			e.Message = strings.Join(flatten(p), " ")
		case string:
			e.Message = p
		}
	} else if len(body) > 0 && len(body) < 300 && !bytes.HasPrefix(body, []byte("<")) {
		e.Message = string(body)
	}

	if e.Message == "" {
		e.Message = defaultMessage(e.Kind)
	}
	return e
}

// objectKeys returns the top-level keys of a JSON object in payload order.
func objectKeys(body []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		key, ok := tok.(string)
		if !ok {
			break
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			break
		}
	}
	return keys
}

// flatten reduces a field value (string, list, nested object) to plain messages.
func flatten(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return []string{x}
	case []any:
		var out []string
		for _, item := range x {
			out = append(out, flatten(item)...)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			for _, m := range flatten(x[k]) {
				out = append(out, k+": "+m)
			}
		}
		return out
	}
	return []string{fmt.Sprint(v)}
}

// transportError wraps a failure that never produced an HTTP response.
func transportError(err error) *APIError {
	return &APIError{Kind: KindTransport, Message: MsgUnavailable, Fields: map[string][]string{}, Err: err}
}
