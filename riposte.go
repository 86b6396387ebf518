package riposte

import (
	"context"
	"strings"

	"github.com/wesleyorama2/riposte/http"
)

// Params carries the call-time arguments of an endpoint invocation. Entries
// matching :name path placeholders are consumed by substitution; the rest
// travel as query parameters or JSON body fields depending on the method.
type Params map[string]interface{}

// Doer issues the requests a client builds. The default is a *http.Client
// from this module's http package; anything matching the signature can be
// swapped in with WithTransport.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Option configures a node at construction time. Options are shared between
// New, Register, and Group; options that make no sense for the target node
// (WithMethods on a group, WithTransport anywhere but New) are recorded as
// builder errors.
type Option func(*nodeConfig)

type nodeConfig struct {
	headers   map[string]string
	auth      AuthHandler
	handler   ResponseHandler
	methods   []Method
	required  []string
	transport Doer
}

// WithHeaders sets the node's own header overrides.
func WithHeaders(headers map[string]string) Option {
	return func(c *nodeConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithHeader sets a single header override on the node.
func WithHeader(key, value string) Option {
	return func(c *nodeConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string, 1)
		}
		c.headers[key] = value
	}
}

// WithAuthHandler sets the node's own auth-handler override.
func WithAuthHandler(h AuthHandler) Option {
	return func(c *nodeConfig) { c.auth = h }
}

// WithHandler sets the node's own response-handler override.
func WithHandler(h ResponseHandler) Option {
	return func(c *nodeConfig) { c.handler = h }
}

// WithMethods sets the allowed methods of an endpoint. The first method
// listed is the default verb. Endpoints registered without this option
// allow GET only.
func WithMethods(methods ...Method) Option {
	return func(c *nodeConfig) { c.methods = methods }
}

// WithRequired declares parameters that must be present on every invocation
// of the endpoint, validated before any network call.
func WithRequired(params ...string) Option {
	return func(c *nodeConfig) { c.required = params }
}

// WithTransport replaces the default HTTP transport. Valid only on New.
func WithTransport(t Doer) Option {
	return func(c *nodeConfig) { c.transport = t }
}

func applyOptions(opts []Option) nodeConfig {
	var cfg nodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Builder declares a route tree: groups, endpoints, and the policies that
// cascade down to them. Start locks the tree and returns the callable
// Client. Builders are not safe for concurrent use; build the tree from one
// goroutine, then share the Client freely.
//
// Registration methods return the Builder so declarations chain:
//
//	b := riposte.New("https://todos.example.com",
//	    riposte.WithHandler(riposte.JSONDecode),
//	)
//	b.Group("todos", "/api/v1/todos").Standard("id")
//	client, err := b.Start()
//
// Misuse during registration (unknown method, locked tree, bad name) is
// recorded on the builder and surfaced by Err and Start rather than breaking
// the chain.
type Builder struct {
	g *group
}

// New creates the root of a route tree. baseURL is required; it prefixes
// every route path. Headers, auth handler, and response handler given here
// are inherited by every node that does not override them.
func New(baseURL string, opts ...Option) *Builder {
	cfg := applyOptions(opts)
	root := &group{
		prefix:   baseURL,
		children: make(map[string]node),
		pol:      policy{headers: cfg.headers, auth: cfg.auth, handler: cfg.handler},
	}
	if cfg.transport != nil {
		root.transport = cfg.transport
	} else {
		root.transport = http.NewClient()
	}
	b := &Builder{g: root}
	if baseURL == "" {
		root.recordErr(usageErrorf("base URL is required"))
	}
	if cfg.methods != nil || cfg.required != nil {
		root.recordErr(usageErrorf("WithMethods and WithRequired apply to endpoints, not the root"))
	}
	return b
}

// Register creates an endpoint named name under this group. path is the
// endpoint's path template and may contain :param placeholders; it is
// normalized to start with "/". Methods default to GET. Registering a name
// that already exists replaces the previous node silently (last write wins).
// Returns the receiver so further registrations chain on the same group.
func (b *Builder) Register(name, path string, opts ...Option) *Builder {
	return b.register(name, path, nil, opts)
}

// Get registers an endpoint allowing only GET.
func (b *Builder) Get(name, path string, opts ...Option) *Builder {
	return b.register(name, path, []Method{GET}, opts)
}

// Post registers an endpoint allowing only POST.
func (b *Builder) Post(name, path string, opts ...Option) *Builder {
	return b.register(name, path, []Method{POST}, opts)
}

// Put registers an endpoint allowing only PUT.
func (b *Builder) Put(name, path string, opts ...Option) *Builder {
	return b.register(name, path, []Method{PUT}, opts)
}

// Patch registers an endpoint allowing only PATCH.
func (b *Builder) Patch(name, path string, opts ...Option) *Builder {
	return b.register(name, path, []Method{PATCH}, opts)
}

// Delete registers an endpoint allowing only DELETE.
func (b *Builder) Delete(name, path string, opts ...Option) *Builder {
	return b.register(name, path, []Method{DELETE}, opts)
}

// Options registers an endpoint allowing only OPTIONS.
func (b *Builder) Options(name, path string, opts ...Option) *Builder {
	return b.register(name, path, []Method{OPTIONS}, opts)
}

// Head registers an endpoint allowing only HEAD.
func (b *Builder) Head(name, path string, opts ...Option) *Builder {
	return b.register(name, path, []Method{HEAD}, opts)
}

// Connect registers an endpoint allowing only CONNECT.
func (b *Builder) Connect(name, path string, opts ...Option) *Builder {
	return b.register(name, path, []Method{CONNECT}, opts)
}

// Trace registers an endpoint allowing only TRACE.
func (b *Builder) Trace(name, path string, opts ...Option) *Builder {
	return b.register(name, path, []Method{TRACE}, opts)
}

// register is the shared registration path. forced, when non-nil, pins the
// method list regardless of a WithMethods option (the per-verb shortcuts).
func (b *Builder) register(name, path string, forced []Method, opts []Option) *Builder {
	g := b.g
	if g.locked {
		g.recordErr(usageErrorf("cannot register %q: %s is locked", name, dottedName(g)))
		return b
	}
	if err := validateName(name); err != nil {
		g.recordErr(err)
		return b
	}
	cfg := applyOptions(opts)
	if cfg.transport != nil {
		g.recordErr(usageErrorf("WithTransport applies to New, not Register"))
		return b
	}
	methods := cfg.methods
	if forced != nil {
		methods = forced
	}
	if len(methods) == 0 {
		methods = []Method{GET}
	}
	for _, m := range methods {
		if !m.valid() {
			g.recordErr(usageErrorf("cannot register %q: unknown HTTP method %q", name, string(m)))
			return b
		}
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	g.children[name] = &endpoint{
		name:     name,
		parent:   g,
		path:     path,
		methods:  methods,
		required: cfg.required,
		pol:      policy{headers: cfg.headers, auth: cfg.auth, handler: cfg.handler},
	}
	return b
}

// Group creates a child group named name with the given path prefix and
// returns the child's builder so endpoints can be registered on it directly.
// Creating a name that already exists replaces the previous node silently.
func (b *Builder) Group(name, prefix string, opts ...Option) *Builder {
	g := b.g
	if g.locked {
		g.recordErr(usageErrorf("cannot create group %q: %s is locked", name, dottedName(g)))
		return b
	}
	if err := validateName(name); err != nil {
		g.recordErr(err)
		return b
	}
	cfg := applyOptions(opts)
	if cfg.methods != nil || cfg.required != nil || cfg.transport != nil {
		g.recordErr(usageErrorf("WithMethods, WithRequired, and WithTransport do not apply to groups"))
		return b
	}
	child := &group{
		name:     name,
		parent:   g,
		prefix:   prefix,
		children: make(map[string]node),
		pol:      policy{headers: cfg.headers, auth: cfg.auth, handler: cfg.handler},
	}
	g.children[name] = child
	return &Builder{g: child}
}

// Standard registers the conventional CRUD route set against the group's own
// prefix: all (GET /), one (GET /:param), create (POST /), update
// (PUT /:param), delete (DELETE /:param). Item-scoped routes require param.
// It is purely a macro over Register.
func (b *Builder) Standard(param string) *Builder {
	if param == "" {
		b.g.recordErr(usageErrorf("Standard requires a path parameter name"))
		return b
	}
	item := "/:" + param
	return b.
		Get("all", "/").
		Get("one", item, WithRequired(param)).
		Post("create", "/").
		Put("update", item, WithRequired(param)).
		Delete("delete", item, WithRequired(param))
}

// AddHeader sets one header override on this node. Fails with UsageError
// after the tree is locked.
func (b *Builder) AddHeader(name, value string) error {
	if b.g.locked {
		return usageErrorf("cannot add header: %s is locked", dottedName(b.g))
	}
	if b.g.pol.headers == nil {
		b.g.pol.headers = make(map[string]string, 1)
	}
	b.g.pol.headers[name] = value
	return nil
}

// SetHandler replaces this node's response-handler override. Fails with
// UsageError after the tree is locked.
func (b *Builder) SetHandler(h ResponseHandler) error {
	if b.g.locked {
		return usageErrorf("cannot set handler: %s is locked", dottedName(b.g))
	}
	b.g.pol.handler = h
	return nil
}

// SetAuthHandler replaces this node's auth-handler override. Fails with
// UsageError after the tree is locked.
func (b *Builder) SetAuthHandler(h AuthHandler) error {
	if b.g.locked {
		return usageErrorf("cannot set auth handler: %s is locked", dottedName(b.g))
	}
	b.g.pol.auth = h
	return nil
}

// Err returns the first builder misuse recorded in this subtree, or nil.
func (b *Builder) Err() error {
	return b.g.firstErr()
}

// Start locks this node and every descendant, permanently, and returns the
// callable Client rooted here. Calling Start again returns the same Client.
// If any registration in the subtree was invalid, Start returns that error
// instead of a client.
//
// Starting a non-root group locks only that subtree; policies and the URL
// prefix still resolve through the ancestors above it.
func (b *Builder) Start() (*Client, error) {
	g := b.g
	if g.client != nil {
		return g.client, nil
	}
	if err := g.firstErr(); err != nil {
		return nil, err
	}
	g.lock()
	g.client = &Client{root: g}
	return g.client, nil
}

// validateName rejects names the lookup syntax cannot address.
func validateName(name string) error {
	if name == "" {
		return usageErrorf("route name must not be empty")
	}
	if strings.Contains(name, ".") {
		return usageErrorf("route name %q must not contain dots", name)
	}
	return nil
}
