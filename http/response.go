package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response represents an HTTP response. The body is read in full by
// Client.Do, so the accessors below never touch the network and can be
// called any number of times.
type Response struct {
	// StatusCode is the HTTP status code (e.g., 200, 404, 500)
	StatusCode int

	// Status is the HTTP status string (e.g., "200 OK")
	Status string

	// Headers contains the response headers
	Headers http.Header

	// URL is the final URL the request was sent to
	URL string

	// Duration is the total time from sending the request to the body
	// being fully read
	Duration time.Duration

	body []byte
}

// Body returns the raw response body.
func (r *Response) Body() []byte {
	return r.body
}

// BodyString returns the response body as a string.
func (r *Response) BodyString() string {
	return string(r.body)
}

// JSON unmarshals the response body into the provided value.
//
// Example:
//
//	var todos []Todo
//	if err := resp.JSON(&todos); err != nil {
//	    log.Fatal(err)
//	}
func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.body, v)
}

// Header returns the value of the specified header, or an empty string if
// the header is not present.
func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

// IsSuccess returns true if the response status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect returns true if the response status code is in the 3xx range.
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsClientError returns true if the response status code is in the 4xx range.
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError returns true if the response status code is in the 5xx range.
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}

// IsError returns true if the response status code indicates an error
// (4xx or 5xx).
func (r *Response) IsError() bool {
	return r.IsClientError() || r.IsServerError()
}
