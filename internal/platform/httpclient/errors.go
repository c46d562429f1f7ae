package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	MsgNetwork = "Could not reach the server. Check your connection and try again."
	MsgGeneric = "The request could not be completed. Please try again."
)

// HTTPError representa una respuesta no-2xx (el server rechazó el request).
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http error: %s %s status=%d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Detail devuelve el primer mensaje legible del body de error, o "".
func (e *HTTPError) Detail() string {
	return detailFromBody(e.Body)
}

// NetworkError: no hubo respuesta (DNS, conexión, timeout).
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError es un error local, detectado antes de enviar nada.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindRejected
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRejected:
		return "rejected"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return KindRejected
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return KindNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	return KindUnknown
}

// UserMessage arma el mensaje que se le muestra al usuario para err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch Classify(err) {
	case KindNetwork:
		return MsgNetwork
	case KindValidation:
		var ve *ValidationError
		errors.As(err, &ve)
		return ve.Error()
	case KindRejected:
		var he *HTTPError
		errors.As(err, &he)
		if d := he.Detail(); d != "" {
			return d
		}
	}
	return MsgGeneric
}

// StatusCode devuelve el status de un *HTTPError en la cadena, o 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	s := StatusCode(err)
	return s == http.StatusNotFound || s == http.StatusMethodNotAllowed
}

func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// detailFromBody sigue el formato de errores de la API: {"detail": ...},
// {"message": ...}, {"non_field_errors": [...]}, o {"campo": ["msg"]}.
func detailFromBody(body string) string {
	body = strings.TrimSpace(body)
	if body == "" || !gjson.Valid(body) {
		return ""
	}
	doc := gjson.Parse(body)

	switch {
	case doc.Type == gjson.String:
		return strings.TrimSpace(doc.String())
	case doc.IsArray():
		return firstString(doc)
	case !doc.IsObject():
		return ""
	}

	for _, key := range []string{"detail", "message", "error", "non_field_errors"} {
		if v := firstString(doc.Get(key)); v != "" {
			return v
		}
	}

	// errores por campo: orden estable por nombre de campo
	byField := map[string]gjson.Result{}
	fields := make([]string, 0)
	doc.ForEach(func(k, v gjson.Result) bool {
		fields = append(fields, k.String())
		byField[k.String()] = v
		return true
	})
	sort.Strings(fields)
	for _, f := range fields {
		if v := firstString(byField[f]); v != "" {
			return f + ": " + v
		}
	}
	return ""
}

func firstString(r gjson.Result) string {
	switch {
	case !r.Exists():
		return ""
	case r.Type == gjson.String:
		return strings.TrimSpace(r.String())
	case r.IsArray():
		for _, it := range r.Array() {
			if v := firstString(it); v != "" {
				return v
			}
		}
	}
	return ""
}
