// Package http provides the HTTP transport used by riposte clients: a
// configurable client with functional options, a fluent request builder, and
// a response wrapper whose body is read once and cached.
//
// The package is useful on its own for one-off requests, and it is the
// default transport behind every riposte endpoint invocation.
//
// Basic Usage:
//
//	client := http.NewClient(
//	    http.WithBaseURL("https://api.example.com"),
//	    http.WithTimeout(30*time.Second),
//	    http.WithHeader("Authorization", "Bearer token"),
//	)
//
//	req := http.NewRequest("GET", "/todos").
//	    WithQueryParam("limit", "10")
//
//	resp, err := client.Do(context.Background(), req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Status: %d\n", resp.StatusCode)
//	fmt.Printf("Took: %v\n", resp.Duration)
//
//	var todos []Todo
//	if err := resp.JSON(&todos); err != nil {
//	    log.Fatal(err)
//	}
//
// Thread Safety:
//
// Client is safe for concurrent use. Multiple goroutines may invoke methods
// on a Client simultaneously.
package http
