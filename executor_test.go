package riposte

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	rhttp "github.com/wesleyorama2/riposte/http"
)

// failingDoer fails the test if any request reaches the transport.
type failingDoer struct {
	t *testing.T
}

func (d failingDoer) Do(ctx context.Context, req *rhttp.Request) (*rhttp.Response, error) {
	d.t.Error("Expected no network call")
	return nil, errors.New("transport invoked")
}

func TestInvoke_RoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("Expected method GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/todos/1" {
			t.Errorf("Expected path /api/v1/todos/1, got %s", r.URL.Path)
		}
		// The id parameter was consumed by the path; nothing may remain.
		if r.URL.RawQuery != "" {
			t.Errorf("Expected no query parameters, got %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	b := New(server.URL)
	b.Get("one", "/api/v1/todos/:id", WithRequired("id"))
	client, err := b.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	result, err := client.Call(context.Background(), "one", Params{"id": 1})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}

	// No handler anywhere in the chain: the raw response comes back.
	resp, ok := result.(*rhttp.Response)
	if !ok {
		t.Fatalf("Expected *http.Response by default, got %T", result)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if resp.BodyString() != `{"id":1}` {
		t.Errorf("Unexpected body: %s", resp.BodyString())
	}
}

func TestInvoke_QueryChannelForGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != "done" {
			t.Errorf("Expected query status=done, got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("Expected query limit=10, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if len(body) != 0 {
			t.Errorf("Expected empty body for GET, got %s", body)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	b := New(server.URL)
	b.Get("all", "/todos")
	client, _ := b.Start()

	if _, err := client.Call(context.Background(), "all", Params{"status": "done", "limit": 10}); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestInvoke_JSONBodyForPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected method POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %s", ct)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Decoding body: %v", err)
		}
		if body["title"] != "buy milk" {
			t.Errorf("Expected title in body, got %v", body)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("Expected no query parameters for POST, got %s", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":7}`))
	}))
	defer server.Close()

	b := New(server.URL)
	b.Post("create", "/todos")
	client, _ := b.Start()

	if _, err := client.Call(context.Background(), "create", Params{"title": "buy milk"}); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestInvoke_RequiredParamMissing_NoNetworkCall(t *testing.T) {
	b := New("https://api.example.com", WithTransport(failingDoer{t}))
	b.Get("one", "/todos/:id", WithRequired("id"))
	client, _ := b.Start()

	_, err := client.Call(context.Background(), "one", Params{"q": "x"})
	if err == nil {
		t.Fatal("Expected a validation error")
	}

	var paramErr *ParamValidationError
	if !errors.As(err, &paramErr) {
		t.Fatalf("Expected ParamValidationError, got %T: %v", err, err)
	}
	if paramErr.Param != "id" {
		t.Errorf("Expected the error to name id, got %q", paramErr.Param)
	}

	var usageErr *UsageError
	if !errors.As(err, &usageErr) {
		t.Error("Expected ParamValidationError to match UsageError")
	}
}

func TestInvoke_MissingPathParam_NoNetworkCall(t *testing.T) {
	// The placeholder is not declared required; substitution still demands it.
	b := New("https://api.example.com", WithTransport(failingDoer{t}))
	b.Get("one", "/todos/:id")
	client, _ := b.Start()

	_, err := client.Call(context.Background(), "one", nil)
	var paramErr *ParamValidationError
	if !errors.As(err, &paramErr) {
		t.Fatalf("Expected ParamValidationError, got %v", err)
	}
	if paramErr.Param != "id" {
		t.Errorf("Expected the error to name id, got %q", paramErr.Param)
	}
}

func TestInvoke_UnlistedMethod_NoNetworkCall(t *testing.T) {
	b := New("https://api.example.com", WithTransport(failingDoer{t}))
	b.Register("update", "/todos/:id", WithMethods(PUT, PATCH))
	client, _ := b.Start()

	route, err := client.Lookup("update")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	var usageErr *UsageError
	if _, err := route.Do(context.Background(), DELETE, Params{"id": 1}); !errors.As(err, &usageErr) {
		t.Errorf("Expected UsageError for an unlisted method, got %v", err)
	}
}

func TestInvoke_DefaultAndOverrideMethods(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method)
		mu.Unlock()
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	b := New(server.URL)
	b.Register("update", "/todos/:id", WithMethods(PUT, PATCH))
	client, _ := b.Start()

	// Default invocation uses the first registered method.
	if _, err := client.Call(context.Background(), "update", Params{"id": 1}); err != nil {
		t.Fatalf("Default call: %v", err)
	}
	// A verb segment overrides the default.
	if _, err := client.Call(context.Background(), "update.patch", Params{"id": 1}); err != nil {
		t.Fatalf("Override call: %v", err)
	}

	if len(seen) != 2 || seen[0] != "PUT" || seen[1] != "PATCH" {
		t.Errorf("Expected [PUT PATCH], got %v", seen)
	}
}

func TestInvoke_EffectiveHeadersSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Root"); got != "1" {
			t.Errorf("Expected root header to cascade, got %q", got)
		}
		if got := r.Header.Get("X-Shared"); got != "endpoint" {
			t.Errorf("Expected the endpoint header to win, got %q", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	b := New(server.URL, WithHeader("X-Root", "1"))
	g := b.Group("todos", "/todos", WithHeader("X-Shared", "group"))
	g.Get("all", "/", WithHeader("X-Shared", "endpoint"))
	client, _ := b.Start()

	if _, err := client.Call(context.Background(), "todos.all", nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestInvoke_AuthHandlerApplied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer s3cr3t" {
			t.Errorf("Expected bearer credentials, got %q", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	b := New(server.URL)
	g := b.Group("todos", "/todos", WithAuthHandler(BearerAuth("s3cr3t")))
	g.Get("all", "/")
	client, _ := b.Start()

	if _, err := client.Call(context.Background(), "todos.all", nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestInvoke_HandlerTransformsResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"title":"write tests"}`))
	}))
	defer server.Close()

	b := New(server.URL, WithHandler(JSONDecode))
	b.Get("one", "/todos/:id")
	client, _ := b.Start()

	result, err := client.Call(context.Background(), "one", Params{"id": 1})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}

	decoded, ok := result.(*Decoded)
	if !ok {
		t.Fatalf("Expected *Decoded, got %T", result)
	}
	if decoded.Code != 200 {
		t.Errorf("Expected code 200, got %d", decoded.Code)
	}
	body, ok := decoded.Body.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected a decoded object, got %T", decoded.Body)
	}
	if body["title"] != "write tests" {
		t.Errorf("Unexpected decoded body: %v", body)
	}
}

func TestInvoke_TransportErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	b := New(url)
	b.Get("all", "/todos")
	client, _ := b.Start()

	_, err := client.Call(context.Background(), "all", nil)
	if err == nil {
		t.Fatal("Expected a transport error")
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		t.Errorf("Expected the raw transport error, got UsageError: %v", err)
	}
}

func TestInvoke_PathValuesEscaped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.EscapedPath(); got != "/todos/a%20b" {
			t.Errorf("Expected escaped path /todos/a%%20b, got %s", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	b := New(server.URL)
	b.Get("one", "/todos/:id")
	client, _ := b.Start()

	if _, err := client.Call(context.Background(), "one", Params{"id": "a b"}); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestInvoke_ParamsMapNotMutated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	b := New(server.URL)
	b.Get("one", "/todos/:id")
	client, _ := b.Start()

	params := Params{"id": 1, "verbose": true}
	if _, err := client.Call(context.Background(), "one", params); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(params) != 2 {
		t.Errorf("Expected the caller's params to survive, got %v", params)
	}
}

func TestInvoke_ConcurrentCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	b := New(server.URL, WithHandler(JSONDecode))
	b.Get("one", "/todos/:id", WithRequired("id"))
	client, _ := b.Start()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := client.Call(context.Background(), "one", Params{"id": id}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent call failed: %v", err)
	}
}

func TestSubtreeClient_ResolvesThroughAncestors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/todos" {
			t.Errorf("Expected the full ancestor path, got %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Root"); got != "1" {
			t.Errorf("Expected the root header above the subtree, got %q", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	b := New(server.URL, WithHeader("X-Root", "1"))
	api := b.Group("api", "/api/v1")
	todos := api.Group("todos", "/todos")
	todos.Get("all", "/")

	// Lock and use only the todos subtree.
	client, err := todos.Start()
	if err != nil {
		t.Fatalf("Start on subtree: %v", err)
	}
	if _, err := client.Call(context.Background(), "all", nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		params      Params
		want        string
		wantMissing string
		wantLeft    int
	}{
		{"single", "/todos/:id", Params{"id": 1}, "/todos/1", "", 0},
		{"multiple", "/a/:x/b/:y", Params{"x": "1", "y": "2"}, "/a/1/b/2", "", 0},
		{"consumes only placeholders", "/todos/:id", Params{"id": 5, "q": "x"}, "/todos/5", "", 1},
		{"no placeholders", "/todos", Params{"q": "x"}, "/todos", "", 1},
		{"missing first", "/a/:x/b/:y", Params{"y": "2"}, "", "x", 0},
		{"escapes values", "/f/:name", Params{"name": "a/b"}, "/f/a%2Fb", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandPath(tt.path, tt.params)
			if tt.wantMissing != "" {
				var paramErr *ParamValidationError
				if !errors.As(err, &paramErr) {
					t.Fatalf("Expected ParamValidationError, got %v", err)
				}
				if paramErr.Param != tt.wantMissing {
					t.Errorf("Expected missing param %q, got %q", tt.wantMissing, paramErr.Param)
				}
				return
			}
			if err != nil {
				t.Fatalf("expandPath: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
			if len(tt.params) != tt.wantLeft {
				t.Errorf("Expected %d params left, got %v", tt.wantLeft, tt.params)
			}
		})
	}
}

func TestFullPathOf_JoinsSegments(t *testing.T) {
	b := New("https://api.example.com/")
	api := b.Group("api", "/api/v1/")
	todos := api.Group("todos", "todos")
	todos.Get("one", "/:id")

	ep := todos.g.children["one"].(*endpoint)
	want := "https://api.example.com/api/v1/todos/:id"
	if got := fullPathOf(ep); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestFullPathOf_EmptySegmentsSkipped(t *testing.T) {
	b := New("https://api.example.com")
	g := b.Group("grouped", "")
	g.Get("all", "/")

	ep := g.g.children["all"].(*endpoint)
	if got := fullPathOf(ep); got != "https://api.example.com" {
		t.Errorf("Expected bare base URL, got %s", got)
	}
}
