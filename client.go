package riposte

import (
	"context"
	"sort"
	"strings"
)

// Client is the locked, callable form of a built route tree. It has no
// mutating methods; the tree is immutable after Start, so a Client is safe
// for concurrent use by multiple goroutines.
type Client struct {
	root *group
}

// Lookup resolves a dot-separated route path from the client's root, e.g.
// "todos.one". A trailing verb segment selects an explicit method on the
// endpoint, so "todos.update.patch" invokes the update endpoint with PATCH
// instead of its default verb.
func (c *Client) Lookup(path string) (*Route, error) {
	if path == "" {
		return nil, usageErrorf("route path must not be empty")
	}
	route := &Route{n: c.root}
	for _, name := range strings.Split(path, ".") {
		next, err := route.Route(name)
		if err != nil {
			return nil, err
		}
		route = next
	}
	return route, nil
}

// Call resolves path and invokes it with its default method in one step.
func (c *Client) Call(ctx context.Context, path string, params Params) (interface{}, error) {
	route, err := c.Lookup(path)
	if err != nil {
		return nil, err
	}
	return route.Call(ctx, params)
}

// RouteInfo describes one endpoint for listings and tooling.
type RouteInfo struct {
	// Name is the dotted route name relative to the client's root.
	Name string `json:"name"`
	// Path is the full URL template, placeholders unsubstituted.
	Path string `json:"path"`
	// Methods are the allowed verbs; the first is the default.
	Methods []Method `json:"methods"`
	// Required lists the parameters every invocation must supply.
	Required []string `json:"required,omitempty"`
}

// Routes lists every endpoint reachable from the client's root, sorted by
// dotted name.
func (c *Client) Routes() []RouteInfo {
	var infos []RouteInfo
	collectRoutes(c.root, "", &infos)
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func collectRoutes(g *group, namePrefix string, out *[]RouteInfo) {
	for _, name := range sortedChildNames(g) {
		dotted := name
		if namePrefix != "" {
			dotted = namePrefix + "." + name
		}
		switch child := g.children[name].(type) {
		case *group:
			collectRoutes(child, dotted, out)
		case *endpoint:
			*out = append(*out, infoFor(child, dotted))
		}
	}
}

func infoFor(ep *endpoint, dotted string) RouteInfo {
	methods := make([]Method, len(ep.methods))
	copy(methods, ep.methods)
	required := make([]string, len(ep.required))
	copy(required, ep.required)
	return RouteInfo{
		Name:     dotted,
		Path:     fullPathOf(ep),
		Methods:  methods,
		Required: required,
	}
}

// Route is a resolved position in a locked tree: a group, an endpoint, or an
// endpoint bound to one explicit method. Routes are immutable and safe for
// concurrent use.
type Route struct {
	n      node
	method Method // non-empty when a verb segment bound the method
}

// Route resolves one more name from this position: a child on groups, or a
// verb on endpoints (binding that method for Call).
func (r *Route) Route(name string) (*Route, error) {
	if r.method != "" {
		return nil, usageErrorf("%s is already bound to %s and cannot be extended with %q",
			dottedName(r.n), r.method, name)
	}
	res, err := resolve(r.n, name)
	if err != nil {
		return nil, err
	}
	if res.child != nil {
		return &Route{n: res.child}, nil
	}
	return &Route{n: res.ep, method: res.method}, nil
}

// Call invokes the endpoint with its default method, or with the bound
// method when the route was resolved through a verb segment. Calling a group
// fails with UsageError.
func (r *Route) Call(ctx context.Context, params Params) (interface{}, error) {
	return r.invoke(ctx, r.method, params)
}

// Do invokes the endpoint with an explicit method. The method must be among
// the endpoint's allowed methods.
func (r *Route) Do(ctx context.Context, method Method, params Params) (interface{}, error) {
	if method == "" {
		method = r.method
	}
	return r.invoke(ctx, method, params)
}

// Get invokes the endpoint with GET.
func (r *Route) Get(ctx context.Context, params Params) (interface{}, error) {
	return r.invoke(ctx, GET, params)
}

// Post invokes the endpoint with POST.
func (r *Route) Post(ctx context.Context, params Params) (interface{}, error) {
	return r.invoke(ctx, POST, params)
}

// Put invokes the endpoint with PUT.
func (r *Route) Put(ctx context.Context, params Params) (interface{}, error) {
	return r.invoke(ctx, PUT, params)
}

// Patch invokes the endpoint with PATCH.
func (r *Route) Patch(ctx context.Context, params Params) (interface{}, error) {
	return r.invoke(ctx, PATCH, params)
}

// Delete invokes the endpoint with DELETE.
func (r *Route) Delete(ctx context.Context, params Params) (interface{}, error) {
	return r.invoke(ctx, DELETE, params)
}

// Head invokes the endpoint with HEAD.
func (r *Route) Head(ctx context.Context, params Params) (interface{}, error) {
	return r.invoke(ctx, HEAD, params)
}

func (r *Route) invoke(ctx context.Context, method Method, params Params) (interface{}, error) {
	ep, ok := r.n.(*endpoint)
	if !ok {
		return nil, usageErrorf("%s is a group, not an endpoint", dottedName(r.n))
	}
	return invoke(ctx, ep, method, params)
}

// Name returns the route's dotted name relative to the whole tree.
func (r *Route) Name() string {
	return dottedName(r.n)
}

// IsEndpoint reports whether the route is an endpoint (groups resolve names
// but cannot be invoked).
func (r *Route) IsEndpoint() bool {
	_, ok := r.n.(*endpoint)
	return ok
}

// Info describes the route. Calling Info on a group returns the group's name
// and path template with no methods.
func (r *Route) Info() RouteInfo {
	if ep, ok := r.n.(*endpoint); ok {
		info := infoFor(ep, dottedName(ep))
		if r.method != "" {
			info.Methods = []Method{r.method}
		}
		return info
	}
	return RouteInfo{Name: dottedName(r.n), Path: fullPathOf(r.n)}
}
