package config

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wesleyorama2/riposte"
)

func TestBuild_EndToEnd(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/todos/7":
			w.Write([]byte(`{"id":7,"title":"ship it"}`))
		case "/healthz":
			w.Write([]byte(`{"status":"ok"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"no such route"}`))
		}
	}))
	defer server.Close()

	def := &Definition{
		BaseURL: server.URL,
		Handler: "json",
		Auth:    &AuthConfig{Type: "bearer", Token: "{{token}}"},
		Variables: map[string]string{
			"token": "t-42",
		},
		Routes: map[string]*RouteConfig{
			"todos": {
				Prefix:   "/api/v1/todos",
				Standard: "id",
			},
			"health": {Path: "/healthz"},
		},
	}

	client, err := Build(def)
	if err != nil {
		t.Fatalf("Error building client: %v", err)
	}

	result, err := client.Call(context.Background(), "todos.one", riposte.Params{"id": 7})
	if err != nil {
		t.Fatalf("Error calling todos.one: %v", err)
	}
	decoded, ok := result.(*riposte.Decoded)
	if !ok {
		t.Fatalf("Expected *riposte.Decoded, got %T", result)
	}
	body := decoded.Body.(map[string]interface{})
	if body["title"] != "ship it" {
		t.Errorf("Unexpected body: %v", body)
	}

	// The file variable fed the bearer token.
	if gotAuth != "Bearer t-42" {
		t.Errorf("Expected Bearer t-42, got %q", gotAuth)
	}

	if _, err := client.Call(context.Background(), "health", nil); err != nil {
		t.Fatalf("Error calling health: %v", err)
	}

	// The standard macro registered the CRUD set.
	names := make([]string, 0)
	for _, info := range client.Routes() {
		names = append(names, info.Name)
	}
	want := []string{"health", "todos.all", "todos.create", "todos.delete", "todos.one", "todos.update"}
	if len(names) != len(want) {
		t.Fatalf("Expected routes %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected route %s at %d, got %s", want[i], i, names[i])
		}
	}
}

func TestBuild_VariableOverrides(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	def := &Definition{
		BaseURL:   server.URL,
		Auth:      &AuthConfig{Type: "bearer", Token: "{{token}}"},
		Variables: map[string]string{"token": "from-file"},
		Routes:    map[string]*RouteConfig{"ping": {Path: "/ping"}},
	}
	def.Expand(map[string]string{"token": "from-flag"})

	client, err := Build(def)
	if err != nil {
		t.Fatalf("Error building client: %v", err)
	}
	if _, err := client.Call(context.Background(), "ping", nil); err != nil {
		t.Fatalf("Error calling ping: %v", err)
	}
	if gotAuth != "Bearer from-flag" {
		t.Errorf("Expected the override to win, got %q", gotAuth)
	}
}

func TestBuild_SchemaValidation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/good" {
			w.Write([]byte(`{"id":1}`))
			return
		}
		w.Write([]byte(`{"name":"missing the id"}`))
	}))
	defer server.Close()

	def := &Definition{
		BaseURL: server.URL,
		Schemas: map[string]interface{}{
			"todo": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"id"},
			},
		},
		Routes: map[string]*RouteConfig{
			"good": {Path: "/good", Validate: "todo"},
			"bad":  {Path: "/bad", Validate: "todo"},
		},
	}

	client, err := Build(def)
	if err != nil {
		t.Fatalf("Error building client: %v", err)
	}

	if _, err := client.Call(context.Background(), "good", nil); err != nil {
		t.Errorf("Expected a conforming response to pass, got %v", err)
	}

	_, err = client.Call(context.Background(), "bad", nil)
	if err == nil {
		t.Fatal("Expected a schema violation")
	}
	if !strings.Contains(err.Error(), "schema validation") {
		t.Errorf("Expected a schema validation error, got %v", err)
	}
}

func TestBuild_Failures(t *testing.T) {
	t.Run("missing base URL", func(t *testing.T) {
		def := &Definition{Routes: map[string]*RouteConfig{"x": {Path: "/x"}}}
		if _, err := Build(def); err == nil {
			t.Error("Expected a missing base URL to fail")
		}
	})

	t.Run("unimplemented handler", func(t *testing.T) {
		def := &Definition{
			BaseURL: "https://api.example.com",
			Routes:  map[string]*RouteConfig{"x": {Path: "/x", Handler: "xml"}},
		}
		_, err := Build(def)

		var notImpl *riposte.NotImplementedError
		if !errors.As(err, &notImpl) {
			t.Errorf("Expected NotImplementedError, got %v", err)
		}
	})

	t.Run("unimplemented auth", func(t *testing.T) {
		def := &Definition{
			BaseURL: "https://api.example.com",
			Auth:    &AuthConfig{Type: "oauth2"},
			Routes:  map[string]*RouteConfig{"x": {Path: "/x"}},
		}
		_, err := Build(def)

		var notImpl *riposte.NotImplementedError
		if !errors.As(err, &notImpl) {
			t.Errorf("Expected NotImplementedError, got %v", err)
		}
	})

	t.Run("bad method", func(t *testing.T) {
		def := &Definition{
			BaseURL: "https://api.example.com",
			Routes:  map[string]*RouteConfig{"x": {Path: "/x", Methods: []string{"FETCH"}}},
		}
		if _, err := Build(def); err == nil {
			t.Error("Expected an invalid method to fail")
		}
	})

	t.Run("missing schema", func(t *testing.T) {
		def := &Definition{
			BaseURL: "https://api.example.com",
			Routes:  map[string]*RouteConfig{"x": {Path: "/x", Validate: "absent"}},
		}
		_, err := Build(def)
		if err == nil || !strings.Contains(err.Error(), "schema not found") {
			t.Errorf("Expected a missing schema error, got %v", err)
		}
	})
}
