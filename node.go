package riposte

import "sort"

// node is a point in the route tree, either a *group or an *endpoint. Policy
// fields hold a node's own overrides only; the effective values are resolved
// by walking ancestors at call time (see resolve.go).
type node interface {
	nodeName() string
	parentGroup() *group
	ownPolicy() *policy
	lock()
}

// policy holds one node's own overrides. A nil handler means "inherit".
type policy struct {
	headers map[string]string
	auth    AuthHandler
	handler ResponseHandler
}

// group is an internal node: a named prefix owning child nodes. The tree
// root is a group whose prefix is the base URL and which carries the
// transport.
type group struct {
	name     string
	parent   *group
	prefix   string
	children map[string]node
	pol      policy
	locked   bool

	// Root-only fields. transport issues the requests; client caches the
	// result of Start so repeated calls stay idempotent; buildErr records
	// the first builder misuse in this group.
	transport Doer
	client    *Client
	buildErr  error
}

func (g *group) nodeName() string    { return g.name }
func (g *group) parentGroup() *group { return g.parent }
func (g *group) ownPolicy() *policy  { return &g.pol }

func (g *group) lock() {
	g.locked = true
	for _, child := range g.children {
		child.lock()
	}
}

func (g *group) recordErr(err error) {
	if g.buildErr == nil {
		g.buildErr = err
	}
}

// firstErr returns the first builder misuse recorded in this subtree,
// scanning children in name order for determinism.
func (g *group) firstErr() error {
	if g.buildErr != nil {
		return g.buildErr
	}
	for _, name := range sortedChildNames(g) {
		if child, ok := g.children[name].(*group); ok {
			if err := child.firstErr(); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedChildNames(g *group) []string {
	names := make([]string, 0, len(g.children))
	for name := range g.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// endpoint is a leaf node: one named route with its path template, allowed
// methods (first one is the default verb), and required parameter names.
type endpoint struct {
	name     string
	parent   *group
	path     string
	methods  []Method
	required []string
	pol      policy
	locked   bool
}

func (e *endpoint) nodeName() string    { return e.name }
func (e *endpoint) parentGroup() *group { return e.parent }
func (e *endpoint) ownPolicy() *policy  { return &e.pol }
func (e *endpoint) lock()               { e.locked = true }

func (e *endpoint) allows(m Method) bool {
	for _, allowed := range e.methods {
		if allowed == m {
			return true
		}
	}
	return false
}
