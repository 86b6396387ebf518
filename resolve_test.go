package riposte

import (
	"errors"
	"testing"

	"github.com/wesleyorama2/riposte/http"
)

func TestEffectiveHeaders_DescendantPrecedence(t *testing.T) {
	b := New("https://api.example.com", WithHeaders(map[string]string{"A": "1"}))
	g := b.Group("g", "/g", WithHeaders(map[string]string{"A": "2", "B": "3"}))
	g.Get("leaf", "/leaf")

	ep := g.g.children["leaf"].(*endpoint)
	got := effectiveHeaders(ep)

	want := map[string]string{"A": "2", "B": "3"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d effective headers, got %d: %v", len(want), len(got), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Expected header %s=%s, got %s", k, v, got[k])
		}
	}
}

func TestEffectiveHeaders_LateAncestorHeaderApplies(t *testing.T) {
	b := New("https://api.example.com")
	g := b.Group("g", "/g")
	g.Get("leaf", "/leaf")

	// The header lands on the root after the endpoint already exists.
	if err := b.AddHeader("X-Late", "yes"); err != nil {
		t.Fatalf("AddHeader: %v", err)
	}

	ep := g.g.children["leaf"].(*endpoint)
	if effectiveHeaders(ep)["X-Late"] != "yes" {
		t.Error("Expected a late root header to cascade to the endpoint")
	}
}

func TestEffectiveAuth_NearestOverrideWins(t *testing.T) {
	rootAuth := func(req *http.Request) *http.Request { return req.WithHeader("X-Auth", "root") }
	groupAuth := func(req *http.Request) *http.Request { return req.WithHeader("X-Auth", "group") }

	b := New("https://api.example.com", WithAuthHandler(rootAuth))
	g := b.Group("g", "/g", WithAuthHandler(groupAuth))
	g.Get("leaf", "/leaf")

	ep := g.g.children["leaf"].(*endpoint)
	req := effectiveAuth(ep)(http.NewRequest("GET", "/"))
	if req.Headers["X-Auth"] != "group" {
		t.Errorf("Expected the nearest auth override to win, got %q", req.Headers["X-Auth"])
	}
}

func TestEffectiveAuth_DefaultsToPassThrough(t *testing.T) {
	b := New("https://api.example.com")
	b.Get("leaf", "/leaf")

	ep := b.g.children["leaf"].(*endpoint)
	req := http.NewRequest("GET", "/")
	if effectiveAuth(ep)(req) != req {
		t.Error("Expected the default auth handler to pass the request through")
	}
	if len(req.Headers) != 0 {
		t.Errorf("Expected no headers added by default auth, got %v", req.Headers)
	}
}

func TestEffectiveHandler_NearestOverrideWins(t *testing.T) {
	rootHandler := func(resp *http.Response) (interface{}, error) { return "root", nil }
	epHandler := func(resp *http.Response) (interface{}, error) { return "endpoint", nil }

	b := New("https://api.example.com", WithHandler(rootHandler))
	b.Get("plain", "/plain")
	b.Get("custom", "/custom", WithHandler(epHandler))

	plain := b.g.children["plain"].(*endpoint)
	custom := b.g.children["custom"].(*endpoint)

	if got, _ := effectiveHandler(plain)(nil); got != "root" {
		t.Errorf("Expected the root handler for plain, got %v", got)
	}
	if got, _ := effectiveHandler(custom)(nil); got != "endpoint" {
		t.Errorf("Expected the endpoint's own handler for custom, got %v", got)
	}
}

func TestEffectiveHandler_DefaultsToPassThrough(t *testing.T) {
	b := New("https://api.example.com")
	b.Get("leaf", "/leaf")

	ep := b.g.children["leaf"].(*endpoint)
	resp := &http.Response{StatusCode: 200}
	got, err := effectiveHandler(ep)(resp)
	if err != nil {
		t.Fatalf("Default handler: %v", err)
	}
	if got != resp {
		t.Error("Expected the default handler to return the response unchanged")
	}
}

func TestResolve_GroupChildLookup(t *testing.T) {
	b := New("https://api.example.com")
	g := b.Group("todos", "/todos")
	g.Get("all", "/")

	res, err := resolve(b.g, "todos")
	if err != nil {
		t.Fatalf("resolve(todos): %v", err)
	}
	if res.child == nil {
		t.Fatal("Expected a child resolution")
	}

	if _, err := resolve(b.g, "missing"); err == nil {
		t.Error("Expected an error for an unregistered name")
	}

	// Child names are case-sensitive.
	if _, err := resolve(b.g, "Todos"); err == nil {
		t.Error("Expected case-sensitive lookup to reject Todos")
	}
}

func TestResolve_EndpointVerbs(t *testing.T) {
	b := New("https://api.example.com")
	b.Register("update", "/update", WithMethods(PUT, PATCH))
	ep := b.g.children["update"].(*endpoint)

	// Verb names resolve case-insensitively to a method override.
	res, err := resolve(ep, "patch")
	if err != nil {
		t.Fatalf("resolve(patch): %v", err)
	}
	if res.ep != ep || res.method != PATCH {
		t.Errorf("Expected a PATCH override on the endpoint, got method %s", res.method)
	}

	var usageErr *UsageError
	if _, err := resolve(ep, "delete"); !errors.As(err, &usageErr) {
		t.Errorf("Expected UsageError for a verb outside the endpoint's methods, got %v", err)
	}
	if _, err := resolve(ep, "bogus"); !errors.As(err, &usageErr) {
		t.Errorf("Expected UsageError for a non-verb name on an endpoint, got %v", err)
	}
}

func TestDottedName(t *testing.T) {
	b := New("https://api.example.com")
	g := b.Group("api", "/api")
	sub := g.Group("todos", "/todos")
	sub.Get("one", "/:id")

	if got := dottedName(b.g); got != "(root)" {
		t.Errorf("Expected (root), got %s", got)
	}
	if got := dottedName(sub.g); got != "api.todos" {
		t.Errorf("Expected api.todos, got %s", got)
	}
	ep := sub.g.children["one"].(*endpoint)
	if got := dottedName(ep); got != "api.todos.one" {
		t.Errorf("Expected api.todos.one, got %s", got)
	}
}
