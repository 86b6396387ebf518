// Demo todos API for trying the riposte CLI locally. Reads are open; writes
// require the bearer token printed at startup.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type store struct {
	mu     sync.Mutex
	todos  map[int]map[string]interface{}
	nextID int
}

var token string

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.StringVar(&token, "token", "demo-token", "bearer token required for writes")
	flag.Parse()

	s := &store{todos: make(map[int]map[string]interface{}), nextID: 1}
	s.add("write the report")
	s.add("review the roadmap")

	http.HandleFunc("/api/status", handleStatus)
	http.HandleFunc("/api/todos", s.handleCollection)
	http.HandleFunc("/api/todos/", s.handleItem)

	server := &http.Server{
		Addr:              *addr,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	log.Printf("Demo todos API listening on %s", *addr)
	log.Printf("Writes require: Authorization: Bearer %s", token)

	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

func (s *store) add(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.todos[id] = map[string]interface{}{"id": id, "title": title, "done": false}
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": "1.0.0",
		"time":    time.Now().Format(time.RFC3339),
	})
}

func (s *store) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		items := make([]map[string]interface{}, 0, len(s.todos))
		for _, todo := range s.todos {
			items = append(items, todo)
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
	case http.MethodPost:
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "missing or invalid token"})
			return
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid body"})
			return
		}
		title, _ := body["title"].(string)
		if title == "" {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "title is required"})
			return
		}
		s.mu.Lock()
		id := s.nextID
		s.nextID++
		todo := map[string]interface{}{"id": id, "title": title, "done": false}
		s.todos[id] = todo
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, todo)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *store) handleItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/todos/"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "bad id"})
		return
	}
	if r.Method != http.MethodGet && !authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "missing or invalid token"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	todo, ok := s.todos[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "todo not found"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, todo)
	case http.MethodPut:
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid body"})
			return
		}
		if title, exists := body["title"]; exists {
			todo["title"] = title
		}
		if done, exists := body["done"]; exists {
			todo["done"] = done
		}
		writeJSON(w, http.StatusOK, todo)
	case http.MethodDelete:
		delete(s.todos, id)
		writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "id": id})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+token
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
