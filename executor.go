package riposte

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/wesleyorama2/riposte/http"
)

var pathParamPattern = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// invoke runs one endpoint invocation end to end: method selection, required
// parameter validation, URL construction, policy resolution, auth, the
// transport call, and response handling. Validation failures happen before
// any network activity.
func invoke(ctx context.Context, ep *endpoint, method Method, params Params) (interface{}, error) {
	if method == "" {
		method = ep.methods[0]
	} else if !ep.allows(method) {
		return nil, usageErrorf("method %s is not allowed on endpoint %s (allowed: %s)",
			method, dottedName(ep), joinMethods(ep.methods))
	}

	for _, want := range ep.required {
		if _, ok := params[want]; !ok {
			return nil, newParamValidationError(want)
		}
	}

	// Work on a copy so the caller's map survives placeholder consumption.
	remaining := make(Params, len(params))
	for k, v := range params {
		remaining[k] = v
	}

	target, err := expandPath(fullPathOf(ep), remaining)
	if err != nil {
		return nil, err
	}

	req := http.NewRequest(string(method), target).WithHeaders(effectiveHeaders(ep))
	if method.hasBody() {
		if len(remaining) > 0 {
			req.WithJSON(map[string]interface{}(remaining))
		}
	} else {
		for k, v := range remaining {
			req.WithQueryParam(k, fmt.Sprint(v))
		}
	}

	req = effectiveAuth(ep)(req)
	if req == nil {
		return nil, usageErrorf("auth handler for %s returned a nil request", dottedName(ep))
	}

	resp, err := rootOf(ep).transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return effectiveHandler(ep)(resp)
}

// fullPathOf joins the path segments from the tree root (the base URL) down
// to n, one "/" per seam, placeholders left intact.
func fullPathOf(n node) string {
	chain := ancestors(n)
	var out string
	for i := len(chain) - 1; i >= 0; i-- {
		seg := segmentOf(chain[i])
		if out == "" {
			if seg != "" {
				out = strings.TrimRight(seg, "/")
			}
			continue
		}
		if trimmed := strings.Trim(seg, "/"); trimmed != "" {
			out += "/" + trimmed
		}
	}
	return out
}

func segmentOf(n node) string {
	switch t := n.(type) {
	case *group:
		return t.prefix
	case *endpoint:
		return t.path
	}
	return ""
}

// expandPath substitutes :name placeholders from params, consuming each
// entry it uses so it is not forwarded again as query or body data. Values
// are path-escaped. A placeholder with no matching param fails with
// ParamValidationError naming it.
func expandPath(path string, params Params) (string, error) {
	var missing string
	expanded := pathParamPattern.ReplaceAllStringFunc(path, func(match string) string {
		name := match[1:]
		value, ok := params[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return match
		}
		delete(params, name)
		return url.PathEscape(fmt.Sprint(value))
	})
	if missing != "" {
		return "", newParamValidationError(missing)
	}
	return expanded, nil
}
