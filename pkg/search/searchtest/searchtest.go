// Package searchtest runs a minimal in-memory Elasticsearch stand-in for
// tests: index existence, create, document index/delete and a _search that
// answers with every stored document.
package searchtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/fekuna/omnipos-menu-service/pkg/search"
	"github.com/stretchr/testify/require"
)

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	indices    map[string]bool
	docs       map[string]map[string]json.RawMessage
	failSearch bool
	queries    []map[string]interface{}
}

// New starts the server and returns a client connected to it.
func New(t testing.TB) (*Server, *search.Client) {
	t.Helper()
	s := &Server{
		indices: map[string]bool{},
		docs:    map[string]map[string]json.RawMessage{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	client, err := search.NewClient(&search.Config{Addresses: []string{s.URL}})
	require.NoError(t, err)
	return s, client
}

// Doc returns the stored source of id in index.
func (s *Server) Doc(index, id string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[index][id]
	return doc, ok
}

// FailSearch makes every _search answer with a 500.
func (s *Server) FailSearch(fail bool) {
	s.mu.Lock()
	s.failSearch = fail
	s.mu.Unlock()
}

// Queries returns the bodies of the _search requests seen so far.
func (s *Server) Queries() []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]interface{}(nil), s.queries...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	s.mu.Lock()
	defer s.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/":
		io.WriteString(w, `{"name":"test","cluster_name":"test","version":{"number":"8.15.0","build_flavor":"default"},"tagline":"You Know, for Search"}`)

	case len(parts) == 1 && r.Method == http.MethodHead:
		if !s.indices[parts[0]] {
			w.WriteHeader(http.StatusNotFound)
		}

	case len(parts) == 1 && r.Method == http.MethodPut:
		s.indices[parts[0]] = true
		io.WriteString(w, `{"acknowledged":true}`)

	case len(parts) == 2 && parts[1] == "_search":
		var q map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&q)
		s.queries = append(s.queries, q)
		if s.failSearch {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":"boom"}`)
			return
		}
		s.writeHits(w, parts[0])

	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodDelete:
		if _, ok := s.docs[parts[0]][parts[2]]; !ok {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"result":"not_found"}`)
			return
		}
		delete(s.docs[parts[0]], parts[2])
		io.WriteString(w, `{"result":"deleted"}`)

	case len(parts) == 3 && parts[1] == "_doc":
		body, _ := io.ReadAll(r.Body)
		if s.docs[parts[0]] == nil {
			s.docs[parts[0]] = map[string]json.RawMessage{}
		}
		s.docs[parts[0]][parts[2]] = body
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"result":"created"}`)

	default:
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"unsupported request"}`)
	}
}

func (s *Server) writeHits(w http.ResponseWriter, index string) {
	ids := make([]string, 0, len(s.docs[index]))
	for id := range s.docs[index] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	type hit struct {
		ID     string          `json:"_id"`
		Source json.RawMessage `json:"_source"`
	}
	hits := make([]hit, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, hit{ID: id, Source: s.docs[index][id]})
	}

	resp := map[string]interface{}{
		"hits": map[string]interface{}{
			"total": map[string]interface{}{"value": len(hits), "relation": "eq"},
			"hits":  hits,
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}
