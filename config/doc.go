// Package config loads declarative client definitions from YAML or JSON
// files and builds riposte clients from them.
//
// A definition mirrors a builder declaration: the base URL and root policies,
// then a tree of groups and endpoints:
//
//	baseUrl: https://todos.example.com
//	timeout: 10s
//	handler: json
//	auth: {type: bearer, token: "{{token}}"}
//	variables:
//	  token: secret
//	routes:
//	  todos:
//	    prefix: /api/v1/todos
//	    standard: id
//	    routes:
//	      search: {path: /search, required: [q]}
//	  health:
//	    path: /healthz
//
// Basic usage:
//
//	def, err := config.Load("client.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := config.Build(def)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := client.Call(ctx, "todos.one", riposte.Params{"id": 1})
//
// Variable Substitution:
//
// Strings anywhere in the definition may reference {{name}} placeholders,
// resolved from the variables map. Overrides (for example from command-line
// flags) are applied with Expand before building:
//
//	def.Expand(map[string]string{"token": os.Getenv("API_TOKEN")})
//
// Validation:
//
// Validate reports every shape problem in a definition without building it:
//
//	for _, err := range config.Validate(def) {
//	    log.Printf("invalid config: %s", err)
//	}
package config
