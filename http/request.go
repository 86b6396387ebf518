package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request represents an outbound HTTP request with a fluent builder pattern.
// Use NewRequest to create a Request and chain method calls to configure it.
type Request struct {
	Method      string
	Path        string
	QueryParams url.Values
	Headers     map[string]string
	Body        interface{}
}

// NewRequest creates a request with the specified method and path. The path
// may be relative (resolved against the client's base URL) or a full URL.
//
// Example:
//
//	req := http.NewRequest("GET", "/todos").
//	    WithQueryParam("limit", "10").
//	    WithHeader("Accept", "application/json")
func NewRequest(method, path string) *Request {
	return &Request{
		Method:      method,
		Path:        path,
		QueryParams: make(url.Values),
		Headers:     make(map[string]string),
	}
}

// WithHeader sets a header on the request.
// Returns the Request to allow method chaining.
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithHeaders sets multiple headers on the request.
// Returns the Request to allow method chaining.
func (r *Request) WithHeaders(headers map[string]string) *Request {
	for key, value := range headers {
		r.Headers[key] = value
	}
	return r
}

// WithQueryParam adds a query parameter to the request. Multiple values for
// the same key accumulate.
// Returns the Request to allow method chaining.
func (r *Request) WithQueryParam(key, value string) *Request {
	r.QueryParams.Add(key, value)
	return r
}

// WithQueryParams adds multiple query parameters to the request.
// Returns the Request to allow method chaining.
func (r *Request) WithQueryParams(params map[string]string) *Request {
	for key, value := range params {
		r.QueryParams.Add(key, value)
	}
	return r
}

// WithBody sets the body of the request. The body can be:
//   - string: sent as-is
//   - []byte: sent as-is
//   - io.Reader: read and sent
//   - any other type: marshaled as JSON (Content-Type is set to
//     application/json if not already set)
//
// Returns the Request to allow method chaining.
func (r *Request) WithBody(body interface{}) *Request {
	r.Body = body
	return r
}

// WithJSON sets the body of the request and forces the Content-Type header
// to application/json.
// Returns the Request to allow method chaining.
func (r *Request) WithJSON(v interface{}) *Request {
	r.Body = v
	r.Headers["Content-Type"] = "application/json"
	return r
}

// Build constructs an *http.Request from the Request configuration.
// When baseURL is empty the request path must be a full URL. The join happens
// at the string level and the result is parsed once, so percent-escapes in
// the path survive intact.
//
// Build is called internally by Client.Do but is exposed for advanced use.
func (r *Request) Build(baseURL string) (*http.Request, error) {
	raw := r.Path
	if baseURL != "" {
		raw = strings.TrimRight(baseURL, "/")
		if p := strings.TrimLeft(r.Path, "/"); p != "" {
			raw += "/" + p
		}
	}

	reqURL, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL %q: %w", raw, err)
	}

	if len(r.QueryParams) > 0 {
		query := reqURL.Query()
		for key, values := range r.QueryParams {
			for _, value := range values {
				query.Add(key, value)
			}
		}
		reqURL.RawQuery = query.Encode()
	}

	var bodyReader io.Reader
	if r.Body != nil {
		switch body := r.Body.(type) {
		case string:
			bodyReader = strings.NewReader(body)
		case []byte:
			bodyReader = bytes.NewReader(body)
		case io.Reader:
			bodyReader = body
		default:
			jsonBody, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("marshaling request body: %w", err)
			}
			bodyReader = bytes.NewReader(jsonBody)
			if _, ok := r.Headers["Content-Type"]; !ok {
				r.Headers["Content-Type"] = "application/json"
			}
		}
	}

	req, err := http.NewRequest(r.Method, reqURL.String(), bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}
