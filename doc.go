// Package riposte builds HTTP REST API clients declaratively: describe a
// tree of named endpoints with paths, methods, required parameters, and
// cross-cutting policies (headers, authentication, response handling), then
// lock the tree into an immutable, callable client.
//
// A client goes through two phases. The Builder phase assembles the route
// tree:
//
//	b := riposte.New("https://todos.example.com",
//	    riposte.WithHeader("Accept", "application/json"),
//	    riposte.WithHandler(riposte.JSONDecode),
//	)
//	b.Group("todos", "/api/v1/todos").
//	    Get("all", "/").
//	    Get("one", "/:id", riposte.WithRequired("id")).
//	    Post("create", "/").
//	    Register("update", "/:id", riposte.WithMethods(riposte.PUT, riposte.PATCH))
//
// Start locks the tree, permanently, and returns the Client:
//
//	client, err := b.Start()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := client.Call(ctx, "todos.one", riposte.Params{"id": 1})
//
// Policies cascade. Headers merge from the root down with the closest node
// winning on collisions; auth and response handlers use the nearest override
// walking from the endpoint toward the root. Resolution happens at call
// time, so a header added to the root after an endpoint was registered still
// applies to that endpoint's calls.
//
// Lookup resolves dot-separated names, and a trailing verb segment selects
// an explicit method on multi-method endpoints:
//
//	update, err := client.Lookup("todos.update.patch")
//	...
//	result, err := update.Call(ctx, riposte.Params{"id": 1, "done": true})
//
// Parameters that match :name placeholders in the route's path are consumed
// by substitution; whatever remains is sent as query parameters for
// GET-style methods or as a JSON body for POST, PUT, and PATCH.
//
// After Start the tree is immutable and the Client is safe for concurrent
// use by multiple goroutines.
package riposte
