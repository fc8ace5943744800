// Package apperr defines the coded error taxonomy shared by imi components
// and maps error codes to HTTP status codes.
package apperr

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeArtifactMissing     Code = "embedding.artifact.missing"
	CodeArtifactInvalid     Code = "embedding.artifact.invalid"
	CodeTokenizationFailure Code = "embedding.tokenize.failure"
	CodeInferenceFailure    Code = "embedding.inference.failure"

	CodeConfigReadFailure  Code = "config.load.read.failure"
	CodeConfigParseInvalid Code = "config.parse.invalid_format"

	CodeFetchFailure Code = "artifacts.fetch.failure"

	CodeRequestInvalid  Code = "server.request.invalid"
	CodeEntityNotFound  Code = "server.entity.not_found"
	CodeInternalFailure Code = "server.internal.failure"
	CodeWatchDisabled   Code = "server.watch.disabled"
	CodeRequestCanceled Code = "server.request.canceled"
)

// New returns a coded error with msg and optional key/value context.
func New(code Code, msg string, kv ...any) error {
	return oops.Code(code).With(kv...).New(msg)
}

// Errorf returns a coded error with a formatted message.
func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

// Wrap attaches code and msg to err. It returns nil when err is nil.
func Wrap(err error, code Code, msg string, kv ...any) error {
	if err == nil {
		return nil
	}
	return oops.Code(code).With(kv...).Wrapf(err, "%s", msg)
}

// Wrapf attaches code and a formatted message to err. It returns nil when err is nil.
func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return oops.Code(code).Wrapf(err, format, args...)
}

// CodeOf returns the innermost code in err's chain, or "" when err carries none.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	switch c := oopsErr.Code().(type) {
	case Code:
		return c
	case string:
		return Code(c)
	case nil:
		return ""
	default:
		return Code(fmt.Sprintf("%v", c))
	}
}

// HasCode reports whether err carries code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// ContextOf returns the key/value context attached to err.
func ContextOf(err error) map[string]any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	return oopsErr.Context()
}

// HTTPStatus maps err to the status code the transport should answer with.
func HTTPStatus(err error) int {
	code := CodeOf(err)
	switch {
	case code == CodeTokenizationFailure:
		return http.StatusUnprocessableEntity
	case reason(code) == "not_found":
		return http.StatusNotFound
	case code == CodeWatchDisabled:
		return http.StatusNotImplemented
	case code == CodeRequestCanceled:
		return http.StatusServiceUnavailable
	case reason(code) == "invalid" || reason(code) == "invalid_format":
		if strings.HasPrefix(string(code), "server.") {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func reason(code Code) string {
	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
