package riposte

import "strings"

// Method is an HTTP verb from the closed set riposte understands. The set is
// fixed; registering an endpoint with anything else is a usage error.
type Method string

const (
	GET     Method = "GET"
	POST    Method = "POST"
	PUT     Method = "PUT"
	PATCH   Method = "PATCH"
	DELETE  Method = "DELETE"
	OPTIONS Method = "OPTIONS"
	HEAD    Method = "HEAD"
	CONNECT Method = "CONNECT"
	TRACE   Method = "TRACE"
)

var methodSet = map[Method]struct{}{
	GET: {}, POST: {}, PUT: {}, PATCH: {}, DELETE: {},
	OPTIONS: {}, HEAD: {}, CONNECT: {}, TRACE: {},
}

// Methods returns the closed set of supported HTTP methods.
func Methods() []Method {
	return []Method{GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD, CONNECT, TRACE}
}

// ParseMethod converts a verb name to a Method, case-insensitively.
// Unknown verbs fail with a UsageError.
func ParseMethod(name string) (Method, error) {
	m := Method(strings.ToUpper(name))
	if !m.valid() {
		return "", usageErrorf("unknown HTTP method %q", name)
	}
	return m, nil
}

func (m Method) valid() bool {
	_, ok := methodSet[m]
	return ok
}

// hasBody reports whether leftover parameters travel in the request body for
// this method; otherwise they go to the query string.
func (m Method) hasBody() bool {
	switch m {
	case POST, PUT, PATCH:
		return true
	}
	return false
}
