package riposte

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/wesleyorama2/riposte/http"
	"github.com/wesleyorama2/riposte/pkg/jsonschema"
)

// AuthHandler decorates an outbound request with credentials. It receives
// the request and returns it, possibly mutated. Handlers cascade: the
// nearest one set on the endpoint or its ancestors applies.
type AuthHandler func(*http.Request) *http.Request

// ResponseHandler transforms the transport response into the value an
// invocation returns to the caller. Handlers cascade like auth handlers.
type ResponseHandler func(*http.Response) (interface{}, error)

// NoAuth is the pass-through auth handler, the default when none is set
// anywhere in the chain.
func NoAuth(req *http.Request) *http.Request { return req }

// BasicAuth returns an auth handler that sets HTTP basic credentials.
func BasicAuth(username, password string) AuthHandler {
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return func(req *http.Request) *http.Request {
		return req.WithHeader("Authorization", "Basic "+token)
	}
}

// BearerAuth returns an auth handler that sets a bearer token.
func BearerAuth(token string) AuthHandler {
	return func(req *http.Request) *http.Request {
		return req.WithHeader("Authorization", "Bearer "+token)
	}
}

// APIKeyAuth returns an auth handler that sets key in the given header.
func APIKeyAuth(header, key string) AuthHandler {
	return func(req *http.Request) *http.Request {
		return req.WithHeader(header, key)
	}
}

// NoopHandler returns the raw *http.Response unchanged. It is the default
// when no response handler is set anywhere in the chain.
func NoopHandler(resp *http.Response) (interface{}, error) { return resp, nil }

// CheckOK fails with *RequestError (*RequestAuthError for 401/403) on any
// status of 400 or above, and passes the response through unchanged
// otherwise.
func CheckOK(resp *http.Response) (interface{}, error) {
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return newRequestAuthError(resp.StatusCode, resp.Body())
	}
	return newRequestError(resp.URL, resp.StatusCode, resp.Body())
}

// Decoded is the result produced by the JSON handlers: the decoded body (or
// the raw text when the body is not valid JSON) plus the status code.
type Decoded struct {
	Body interface{}
	Code int
}

// JSONDecode checks the status like CheckOK, then decodes the JSON body into
// a *Decoded. A body that is not valid JSON is returned as its raw text
// rather than failing.
func JSONDecode(resp *http.Response) (interface{}, error) {
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return &Decoded{Body: decodeBody(resp.Body()), Code: resp.StatusCode}, nil
}

func decodeBody(content []byte) interface{} {
	var v interface{}
	if err := json.Unmarshal(content, &v); err != nil {
		return string(content)
	}
	return v
}

// JSONSchema returns a handler that checks the status, validates the body
// against schema (a JSON Schema document), and returns the decoded body like
// JSONDecode. The schema is compiled once, when the handler is created.
func JSONSchema(schema string) (ResponseHandler, error) {
	validator, err := jsonschema.NewValidator(schema)
	if err != nil {
		return nil, err
	}
	return func(resp *http.Response) (interface{}, error) {
		if err := checkStatus(resp); err != nil {
			return nil, err
		}
		if err := validator.Validate(resp.BodyString()); err != nil {
			return nil, fmt.Errorf("response from %s failed schema validation: %w", resp.URL, err)
		}
		return &Decoded{Body: decodeBody(resp.Body()), Code: resp.StatusCode}, nil
	}, nil
}
