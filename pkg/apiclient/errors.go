package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-faster/errors"
)

const ServerUnavailableMessage = "server unavailable"

type Kind int

const (
	// KindTransport means no response was received.
	KindTransport Kind = iota + 1
	KindCanceled
	// KindValidation is a 4xx response carrying field errors.
	KindValidation
	KindClient
	KindServer
	// KindDecode means a 2xx response body could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindCanceled:
		return "canceled"
	case KindValidation:
		return "validation"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

var statusMessages = map[int]string{
	http.StatusOK:                    "saved successfully",
	http.StatusCreated:               "created successfully",
	http.StatusNoContent:             "deleted successfully",
	http.StatusBadRequest:            "malformed request body",
	http.StatusUnauthorized:          "not authorized",
	http.StatusForbidden:             "no access",
	http.StatusNotFound:              "data not found",
	http.StatusMethodNotAllowed:      "method not allowed",
	http.StatusRequestEntityTooLarge: "file must not exceed 16 MB",
	http.StatusInternalServerError:   "internal server error",
	http.StatusBadGateway:            "server timed out",
}

// StatusMessage returns the user-facing message for an HTTP status code.
func StatusMessage(status int) (string, bool) {
	msg, ok := statusMessages[status]
	return msg, ok
}

// Error describes a failed API call.
type Error struct {
	Kind    Kind
	Method  string
	URL     string
	Status  int
	Code    string
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", e.Method, e.URL, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " status=%d", e.Status)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " code=%s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " fields=%s", strings.Join(sortedFieldNames(e.Fields), ","))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage converts any error returned by the client into the text shown
// to the user: the server supplied message, else the status message, else
// the generic "server unavailable".
func UserMessage(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.Canceled) {
			return "request canceled"
		}
		return ServerUnavailableMessage
	}
	if apiErr.Kind == KindCanceled {
		return "request canceled"
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	if msg, ok := StatusMessage(apiErr.Status); ok && apiErr.Status != 0 {
		return msg
	}
	return ServerUnavailableMessage
}

// FieldErrors returns the first message per field of a validation error.
func FieldErrors(err error) map[string]string {
	var apiErr *Error
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(apiErr.Fields))
	for field, msgs := range apiErr.Fields {
		if len(msgs) > 0 {
			out[field] = msgs[0]
		} else {
			out[field] = ""
		}
	}
	return out
}

func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// errorBody accepts both {message, code, fields} envelopes and flat
// {"field": ["msg"]} bodies.
func parseErrorBody(body []byte) (code, message string, fields map[string][]string) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", "", nil
	}
	fields = map[string][]string{}
	for key, value := range raw {
		switch key {
		case "message", "detail":
			var s string
			if json.Unmarshal(value, &s) == nil && message == "" {
				message = s
			}
		case "code":
			_ = json.Unmarshal(value, &code)
		case "meta":
		case "fields":
			var nested map[string][]string
			if json.Unmarshal(value, &nested) == nil {
				for f, msgs := range nested {
					fields[f] = append(fields[f], msgs...)
				}
			}
		default:
			var list []string
			if json.Unmarshal(value, &list) == nil {
				fields[key] = append(fields[key], list...)
				continue
			}
			var s string
			if json.Unmarshal(value, &s) == nil {
				fields[key] = append(fields[key], s)
			}
		}
	}
	if len(fields) == 0 {
		fields = nil
	}
	return code, message, fields
}

func newStatusError(method, u string, status int, body []byte) *Error {
	code, message, fields := parseErrorBody(body)
	e := &Error{
		Method:  method,
		URL:     u,
		Status:  status,
		Code:    code,
		Message: message,
		Fields:  fields,
	}
	switch {
	case status >= 500:
		e.Kind = KindServer
	case status >= 400 && len(fields) > 0:
		e.Kind = KindValidation
	default:
		e.Kind = KindClient
	}
	return e
}

func sortedFieldNames(fields map[string][]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
