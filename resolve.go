package riposte

import "strings"

// ancestors returns the chain from n up to the tree root, n first.
func ancestors(n node) []node {
	chain := []node{n}
	for g := n.parentGroup(); g != nil; g = g.parent {
		chain = append(chain, g)
	}
	return chain
}

func rootOf(n node) *group {
	chain := ancestors(n)
	return chain[len(chain)-1].(*group)
}

// effectiveHeaders merges header overrides from the root down to n.
// Descendant entries win on key collision. The merge is computed fresh on
// every call so ancestor headers attached after a node was registered are
// still honored.
func effectiveHeaders(n node) map[string]string {
	chain := ancestors(n)
	merged := make(map[string]string)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].ownPolicy().headers {
			merged[k] = v
		}
	}
	return merged
}

// effectiveAuth returns the nearest auth override walking from n to the
// root, defaulting to the NoAuth pass-through.
func effectiveAuth(n node) AuthHandler {
	for _, a := range ancestors(n) {
		if h := a.ownPolicy().auth; h != nil {
			return h
		}
	}
	return NoAuth
}

// effectiveHandler returns the nearest response-handler override walking
// from n to the root, defaulting to the NoopHandler pass-through.
func effectiveHandler(n node) ResponseHandler {
	for _, a := range ancestors(n) {
		if h := a.ownPolicy().handler; h != nil {
			return h
		}
	}
	return NoopHandler
}

// resolution is the outcome of dispatching one name against a node: either a
// child node (groups) or an explicit method override (endpoints).
type resolution struct {
	child  node
	ep     *endpoint
	method Method
}

// resolve dispatches a single name against a locked node. On a group the
// name must be a registered child (case-sensitive). On an endpoint the name
// must be one of the endpoint's allowed verbs (case-insensitive), selecting
// that method instead of the default. Anything else is a UsageError; there
// is no fallback.
func resolve(n node, name string) (resolution, error) {
	switch t := n.(type) {
	case *group:
		if child, ok := t.children[name]; ok {
			return resolution{child: child}, nil
		}
		return resolution{}, usageErrorf("no route named %q under %s", name, dottedName(t))
	case *endpoint:
		m, err := ParseMethod(name)
		if err != nil {
			return resolution{}, usageErrorf("no route or method named %q on endpoint %s", name, dottedName(t))
		}
		if !t.allows(m) {
			return resolution{}, usageErrorf("method %s is not allowed on endpoint %s (allowed: %s)",
				m, dottedName(t), joinMethods(t.methods))
		}
		return resolution{ep: t, method: m}, nil
	}
	return resolution{}, usageErrorf("cannot resolve %q", name)
}

// dottedName renders a node's position as the dot-separated route name used
// by Lookup. The root renders as "(root)".
func dottedName(n node) string {
	chain := ancestors(n)
	parts := make([]string, 0, len(chain))
	for i := len(chain) - 2; i >= 0; i-- {
		parts = append(parts, chain[i].nodeName())
	}
	if len(parts) == 0 {
		return "(root)"
	}
	return strings.Join(parts, ".")
}

func joinMethods(methods []Method) string {
	parts := make([]string, len(methods))
	for i, m := range methods {
		parts[i] = string(m)
	}
	return strings.Join(parts, ", ")
}
