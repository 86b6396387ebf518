package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wesleyorama2/riposte"
)

// ValidationError describes one invalid field in a definition.
type ValidationError struct {
	// Path locates the invalid field, e.g. "routes.todos.routes.one.path"
	Path string

	// Message describes the validation error
	Message string
}

// Error returns the error message.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Handler and auth types the builder can construct. A recognized name that
// is not implemented is reported distinctly from an unknown one.
var (
	implementedHandlers = map[string]bool{"none": true, "check": true, "json": true}
	recognizedHandlers  = map[string]bool{"xml": true}

	implementedAuthTypes = map[string]bool{"none": true, "basic": true, "bearer": true, "header": true}
	recognizedAuthTypes  = map[string]bool{"oauth2": true, "digest": true}
)

// Validate checks a definition and returns every problem found, in a stable
// order. An empty slice means the definition can be built.
//
// Example:
//
//	errs := config.Validate(def)
//	for _, err := range errs {
//	    log.Printf("invalid config: %s", err)
//	}
func Validate(def *Definition) []ValidationError {
	var errs []ValidationError

	if def.BaseURL == "" {
		errs = append(errs, ValidationError{
			Path:    "baseUrl",
			Message: "baseUrl is required",
		})
	}
	if def.Timeout < 0 {
		errs = append(errs, ValidationError{
			Path:    "timeout",
			Message: "timeout must not be negative",
		})
	}

	errs = append(errs, validateHandlerName("handler", def.Handler)...)
	errs = append(errs, validateAuth("auth", def.Auth)...)

	for _, name := range sortedKeys(def.Routes) {
		errs = append(errs, validateRoute("routes."+name, name, def.Routes[name], def.Schemas)...)
	}

	return errs
}

func validateRoute(path, name string, rc *RouteConfig, schemas map[string]interface{}) []ValidationError {
	var errs []ValidationError

	if name == "" {
		errs = append(errs, ValidationError{Path: path, Message: "route name must not be empty"})
	}
	if strings.Contains(name, ".") {
		errs = append(errs, ValidationError{
			Path:    path,
			Message: fmt.Sprintf("route name %q must not contain dots", name),
		})
	}

	isGroup := rc.IsGroup()
	if rc.Path != "" && isGroup {
		errs = append(errs, ValidationError{
			Path:    path,
			Message: "a route declares either path (endpoint) or prefix/routes/standard (group), not both",
		})
	}
	if rc.Path == "" && !isGroup {
		errs = append(errs, ValidationError{
			Path:    path,
			Message: "a route needs a path (endpoint) or a prefix, nested routes, or a standard macro (group)",
		})
	}

	errs = append(errs, validateHandlerName(path+".handler", rc.Handler)...)
	errs = append(errs, validateAuth(path+".auth", rc.Auth)...)

	if isGroup {
		if len(rc.Methods) > 0 {
			errs = append(errs, ValidationError{Path: path + ".methods", Message: "methods apply to endpoints, not groups"})
		}
		if len(rc.Required) > 0 {
			errs = append(errs, ValidationError{Path: path + ".required", Message: "required applies to endpoints, not groups"})
		}
		if rc.Validate != "" {
			errs = append(errs, ValidationError{Path: path + ".validate", Message: "validate applies to endpoints, not groups"})
		}
		for _, child := range sortedKeys(rc.Routes) {
			errs = append(errs, validateRoute(path+".routes."+child, child, rc.Routes[child], schemas)...)
		}
		return errs
	}

	for i, m := range rc.Methods {
		if _, err := riposte.ParseMethod(m); err != nil {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("%s.methods[%d]", path, i),
				Message: fmt.Sprintf("invalid method: %s", m),
			})
		}
	}

	if rc.Validate != "" {
		if rc.Handler != "" {
			errs = append(errs, ValidationError{
				Path:    path + ".validate",
				Message: "validate and handler are mutually exclusive; the schema implies the json handler",
			})
		}
		if _, ok := schemas[rc.Validate]; !ok {
			errs = append(errs, ValidationError{
				Path:    path + ".validate",
				Message: fmt.Sprintf("schema not found: %s", rc.Validate),
			})
		}
	}

	return errs
}

func validateHandlerName(path, name string) []ValidationError {
	switch {
	case name == "" || implementedHandlers[name]:
		return nil
	case recognizedHandlers[name]:
		return []ValidationError{{Path: path, Message: fmt.Sprintf("handler type %q is not implemented", name)}}
	default:
		return []ValidationError{{Path: path, Message: fmt.Sprintf("unknown handler type %q", name)}}
	}
}

func validateAuth(path string, a *AuthConfig) []ValidationError {
	if a == nil {
		return nil
	}

	var errs []ValidationError
	switch {
	case a.Type == "":
		errs = append(errs, ValidationError{Path: path + ".type", Message: "type is required"})
	case implementedAuthTypes[a.Type]:
		switch a.Type {
		case "basic":
			if a.Username == "" || a.Password == "" {
				errs = append(errs, ValidationError{Path: path, Message: "basic auth requires username and password"})
			}
		case "bearer":
			if a.Token == "" {
				errs = append(errs, ValidationError{Path: path, Message: "bearer auth requires a token"})
			}
		case "header":
			if a.Header == "" || a.Key == "" {
				errs = append(errs, ValidationError{Path: path, Message: "header auth requires header and key"})
			}
		}
	case recognizedAuthTypes[a.Type]:
		errs = append(errs, ValidationError{Path: path + ".type", Message: fmt.Sprintf("auth type %q is not implemented", a.Type)})
	default:
		errs = append(errs, ValidationError{Path: path + ".type", Message: fmt.Sprintf("unknown auth type %q", a.Type)})
	}

	return errs
}

func sortedKeys(m map[string]*RouteConfig) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
