package riposte

import (
	"encoding/json"
	"fmt"
)

// UsageError reports misuse of the builder or client API: mutating a locked
// tree, registering an unrecognized HTTP method, resolving a name that does
// not exist, or invoking a group as if it were an endpoint.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

func usageErrorf(format string, args ...interface{}) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// ParamValidationError is the UsageError raised when an endpoint invocation
// is missing a required or path parameter. Param names the first missing
// parameter in declaration order.
type ParamValidationError struct {
	UsageError
	Param string
}

// Unwrap exposes the embedded UsageError so errors.As matches both types.
func (e *ParamValidationError) Unwrap() error { return &e.UsageError }

func newParamValidationError(param string) *ParamValidationError {
	return &ParamValidationError{
		UsageError: UsageError{Message: fmt.Sprintf("missing required parameter %q", param)},
		Param:      param,
	}
}

// NotImplementedError is the UsageError reserved for behaviors a policy
// chain names but does not define, such as a configured handler type that is
// recognized but not provided by this library.
type NotImplementedError struct {
	UsageError
}

// Unwrap exposes the embedded UsageError so errors.As matches both types.
func (e *NotImplementedError) Unwrap() error { return &e.UsageError }

// NewNotImplementedError builds a NotImplementedError with the given message.
func NewNotImplementedError(message string) *NotImplementedError {
	return &NotImplementedError{UsageError: UsageError{Message: message}}
}

// RequestError is returned by the checking response handlers when the server
// reports a non-success status. It carries the status code and the raw
// response content.
type RequestError struct {
	Message string
	Code    int
	Content []byte
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Code)
}

// JSON returns the response content decoded as JSON, or the raw content as a
// string when it is not valid JSON.
func (e *RequestError) JSON() interface{} {
	var v interface{}
	if err := json.Unmarshal(e.Content, &v); err != nil {
		return string(e.Content)
	}
	return v
}

func newRequestError(url string, code int, content []byte) *RequestError {
	return &RequestError{
		Message: fmt.Sprintf("request to %s failed", url),
		Code:    code,
		Content: content,
	}
}

// RequestAuthError is the RequestError specialization raised when the status
// code indicates an authentication or authorization failure (401/403).
type RequestAuthError struct {
	RequestError
}

// Unwrap exposes the embedded RequestError so errors.As matches both types.
func (e *RequestAuthError) Unwrap() error { return &e.RequestError }

func newRequestAuthError(code int, content []byte) *RequestAuthError {
	return &RequestAuthError{
		RequestError: RequestError{
			Message: "authentication failed",
			Code:    code,
			Content: content,
		},
	}
}
