package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Definition is the top-level structure of a declarative client file. It
// mirrors a builder declaration: the base URL and root policies, then a tree
// of routes.
type Definition struct {
	// BaseURL is the root of every route path. Required.
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	// Timeout is the HTTP timeout for the built client. Zero keeps the
	// transport default.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Headers are header overrides set on the root.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Auth is the root auth handler configuration.
	Auth *AuthConfig `json:"auth,omitempty" yaml:"auth,omitempty"`

	// Handler names the root response handler: none, check, or json.
	Handler string `json:"handler,omitempty" yaml:"handler,omitempty"`

	// Variables feed {{name}} substitution across the definition.
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`

	// Routes is the route tree: groups and endpoints by name.
	Routes map[string]*RouteConfig `json:"routes" yaml:"routes"`

	// Schemas holds named JSON Schema documents referenced by validate.
	Schemas map[string]interface{} `json:"schemas,omitempty" yaml:"schemas,omitempty"`
}

// RouteConfig declares one node of the route tree. A node with path is an
// endpoint; a node with prefix (and optionally nested routes or a standard
// macro) is a group. The two shapes are mutually exclusive.
type RouteConfig struct {
	// Path is the endpoint's path template, with :param placeholders.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Methods are the allowed verbs; the first is the default. Defaults
	// to GET.
	Methods []string `json:"methods,omitempty" yaml:"methods,omitempty"`

	// Required lists parameters every invocation must supply.
	Required []string `json:"required,omitempty" yaml:"required,omitempty"`

	// Validate names a schema from the top-level schemas map; responses
	// are validated against it.
	Validate string `json:"validate,omitempty" yaml:"validate,omitempty"`

	// Prefix is the group's path prefix.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Standard expands the CRUD macro on the group, with the given path
	// parameter name.
	Standard string `json:"standard,omitempty" yaml:"standard,omitempty"`

	// Routes are the group's children.
	Routes map[string]*RouteConfig `json:"routes,omitempty" yaml:"routes,omitempty"`

	// Headers, Auth, and Handler override the inherited policies on this
	// node, exactly like the builder options.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Auth    *AuthConfig       `json:"auth,omitempty" yaml:"auth,omitempty"`
	Handler string            `json:"handler,omitempty" yaml:"handler,omitempty"`
}

// IsGroup reports whether the node declares a group rather than an endpoint.
func (rc *RouteConfig) IsGroup() bool {
	return rc.Prefix != "" || rc.Standard != "" || len(rc.Routes) > 0
}

// AuthConfig selects an auth handler. Type is one of none, basic, bearer, or
// header; the remaining fields feed the chosen type.
type AuthConfig struct {
	Type     string `json:"type" yaml:"type"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`
	Header   string `json:"header,omitempty" yaml:"header,omitempty"`
	Key      string `json:"key,omitempty" yaml:"key,omitempty"`
}

// Load reads a client definition from path. The format follows the file
// extension: .json is decoded as JSON, .yaml and .yml as YAML. Placeholders
// are left intact; Expand substitutes them.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var def Definition
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .json, .yaml, or .yml)", ext)
	}

	return &def, nil
}

// Expand substitutes {{name}} placeholders throughout the definition, using
// the definition's variables merged with overrides (overrides win). Names
// with no value are left intact. Base URL, paths, prefixes, header values,
// and auth credentials are substituted; route names, methods, and handler
// names are not.
func (d *Definition) Expand(overrides map[string]string) {
	vars := mergeVars(d.Variables, overrides)
	if len(vars) == 0 {
		return
	}

	d.BaseURL = expand(d.BaseURL, vars)
	d.Headers = expandMap(d.Headers, vars)
	d.Auth.expand(vars)
	for _, rc := range d.Routes {
		rc.expandTree(vars)
	}
}

func (rc *RouteConfig) expandTree(vars map[string]string) {
	rc.Path = expand(rc.Path, vars)
	rc.Prefix = expand(rc.Prefix, vars)
	rc.Headers = expandMap(rc.Headers, vars)
	rc.Auth.expand(vars)
	for _, child := range rc.Routes {
		child.expandTree(vars)
	}
}

func (a *AuthConfig) expand(vars map[string]string) {
	if a == nil {
		return
	}
	a.Username = expand(a.Username, vars)
	a.Password = expand(a.Password, vars)
	a.Token = expand(a.Token, vars)
	a.Header = expand(a.Header, vars)
	a.Key = expand(a.Key, vars)
}

// expand replaces {{name}} placeholders in input with their values.
func expand(input string, vars map[string]string) string {
	result := input
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

func expandMap(input map[string]string, vars map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	result := make(map[string]string, len(input))
	for key, value := range input {
		result[key] = expand(value, vars)
	}
	return result
}

// mergeVars merges two variable maps, with the override taking precedence.
func mergeVars(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}

// Duration is a time.Duration that unmarshals from JSON and YAML strings
// like "30s" or "1h30m".
type Duration time.Duration

// GetDuration returns the duration or a default if unset.
func (d Duration) GetDuration(defaultValue time.Duration) time.Duration {
	if d == 0 {
		return defaultValue
	}
	return time.Duration(d)
}

// String returns the duration as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	if s == "" || s == "null" {
		*d = 0
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	if s == "" {
		*d = 0
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}
