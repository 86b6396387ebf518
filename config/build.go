package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/wesleyorama2/riposte"
	"github.com/wesleyorama2/riposte/http"
)

// Build expands, assembles, and starts a client from the definition: groups,
// endpoints, standard macros, header overrides, auth handlers, response
// handlers, and per-route response schemas. The returned client is locked and
// ready to call.
func Build(def *Definition) (*riposte.Client, error) {
	def.Expand(nil)

	opts, err := policyOptions(def.Headers, def.Auth, def.Handler, "", nil)
	if err != nil {
		return nil, err
	}
	if def.Timeout > 0 {
		opts = append(opts, riposte.WithTransport(
			http.NewClient(http.WithTimeout(time.Duration(def.Timeout))),
		))
	}

	b := riposte.New(def.BaseURL, opts...)
	for _, name := range sortedKeys(def.Routes) {
		if err := buildRoute(b, name, def.Routes[name], def.Schemas); err != nil {
			return nil, err
		}
	}
	return b.Start()
}

func buildRoute(b *riposte.Builder, dotted string, rc *RouteConfig, schemas map[string]interface{}) error {
	opts, err := policyOptions(rc.Headers, rc.Auth, rc.Handler, rc.Validate, schemas)
	if err != nil {
		return fmt.Errorf("route %s: %w", dotted, err)
	}

	name := dotted
	if i := strings.LastIndex(dotted, "."); i >= 0 {
		name = dotted[i+1:]
	}

	if rc.IsGroup() {
		gb := b.Group(name, rc.Prefix, opts...)
		if rc.Standard != "" {
			gb.Standard(rc.Standard)
		}
		for _, child := range sortedKeys(rc.Routes) {
			if err := buildRoute(gb, dotted+"."+child, rc.Routes[child], schemas); err != nil {
				return err
			}
		}
		return nil
	}

	if len(rc.Methods) > 0 {
		methods := make([]riposte.Method, 0, len(rc.Methods))
		for _, m := range rc.Methods {
			parsed, err := riposte.ParseMethod(m)
			if err != nil {
				return fmt.Errorf("route %s: %w", dotted, err)
			}
			methods = append(methods, parsed)
		}
		opts = append(opts, riposte.WithMethods(methods...))
	}
	if len(rc.Required) > 0 {
		opts = append(opts, riposte.WithRequired(rc.Required...))
	}

	b.Register(name, rc.Path, opts...)
	return nil
}

// policyOptions converts the declarative policy fields into builder options.
// A validate reference implies the schema-checking handler and excludes a
// plain handler name.
func policyOptions(headers map[string]string, auth *AuthConfig, handler, validate string, schemas map[string]interface{}) ([]riposte.Option, error) {
	var opts []riposte.Option

	if len(headers) > 0 {
		opts = append(opts, riposte.WithHeaders(headers))
	}

	if auth != nil {
		h, err := authHandlerFor(auth)
		if err != nil {
			return nil, err
		}
		opts = append(opts, riposte.WithAuthHandler(h))
	}

	if validate != "" {
		doc, ok := schemas[validate]
		if !ok {
			return nil, fmt.Errorf("schema not found: %s", validate)
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding schema %s: %w", validate, err)
		}
		h, err := riposte.JSONSchema(string(raw))
		if err != nil {
			return nil, fmt.Errorf("compiling schema %s: %w", validate, err)
		}
		opts = append(opts, riposte.WithHandler(h))
	} else if handler != "" {
		h, err := handlerFor(handler)
		if err != nil {
			return nil, err
		}
		opts = append(opts, riposte.WithHandler(h))
	}

	return opts, nil
}

func handlerFor(name string) (riposte.ResponseHandler, error) {
	switch name {
	case "none":
		return riposte.NoopHandler, nil
	case "check":
		return riposte.CheckOK, nil
	case "json":
		return riposte.JSONDecode, nil
	}
	if recognizedHandlers[name] {
		return nil, riposte.NewNotImplementedError(fmt.Sprintf("handler type %q is not implemented", name))
	}
	return nil, fmt.Errorf("unknown handler type %q", name)
}

func authHandlerFor(a *AuthConfig) (riposte.AuthHandler, error) {
	switch a.Type {
	case "", "none":
		return riposte.NoAuth, nil
	case "basic":
		if a.Username == "" || a.Password == "" {
			return nil, fmt.Errorf("basic auth requires username and password")
		}
		return riposte.BasicAuth(a.Username, a.Password), nil
	case "bearer":
		if a.Token == "" {
			return nil, fmt.Errorf("bearer auth requires a token")
		}
		return riposte.BearerAuth(a.Token), nil
	case "header":
		if a.Header == "" || a.Key == "" {
			return nil, fmt.Errorf("header auth requires header and key")
		}
		return riposte.APIKeyAuth(a.Header, a.Key), nil
	}
	if recognizedAuthTypes[a.Type] {
		return nil, riposte.NewNotImplementedError(fmt.Sprintf("auth type %q is not implemented", a.Type))
	}
	return nil, fmt.Errorf("unknown auth type %q", a.Type)
}
