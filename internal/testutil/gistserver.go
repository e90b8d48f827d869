// Package testutil provides testing utilities.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Request is one request received by a GistServer.
type Request struct {
	Method     string
	DocumentID string
	Token      string
	Body       []byte
}

// GistServer is an httptest server speaking the gist API subset the
// backup client uses: GET and PATCH on /{id}?access_token=.
type GistServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	files    map[string]string // filename -> content
	status   int
	message  string
	hold     chan struct{}
	arrived  chan Request
}

// NewGistServer starts a server and closes it when the test ends.
func NewGistServer(t *testing.T) *GistServer {
	t.Helper()
	g := &GistServer{
		files:   make(map[string]string),
		arrived: make(chan Request, 64),
	}
	g.Server = httptest.NewServer(http.HandlerFunc(g.handle))
	t.Cleanup(func() {
		g.Release()
		g.Server.Close()
	})
	return g
}

// SetFile sets the content of a file in the document.
func (g *GistServer) SetFile(name, content string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.files[name] = content
}

// File returns the current content of a file.
func (g *GistServer) File(name string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.files[name]
	return c, ok
}

// Fail makes every following request answer with status and a JSON
// message. A zero status restores normal behavior.
func (g *GistServer) Fail(status int, message string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = status
	g.message = message
}

// Hold makes requests block after they are recorded until Release.
func (g *GistServer) Hold() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.hold == nil {
		g.hold = make(chan struct{})
	}
}

// Release unblocks held requests.
func (g *GistServer) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.hold != nil {
		close(g.hold)
		g.hold = nil
	}
}

// Arrived delivers each request as it is received.
func (g *GistServer) Arrived() <-chan Request {
	return g.arrived
}

// Requests returns all requests received so far.
func (g *GistServer) Requests() []Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Request(nil), g.requests...)
}

// Count returns the number of requests with the given method.
func (g *GistServer) Count(method string) int {
	n := 0
	for _, r := range g.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

type file struct {
	Content string `json:"content"`
}

type document struct {
	Files map[string]*file `json:"files"`
}

func (g *GistServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	req := Request{
		Method:     r.Method,
		DocumentID: strings.TrimPrefix(r.URL.Path, "/"),
		Token:      r.URL.Query().Get("access_token"),
		Body:       body,
	}

	g.mu.Lock()
	g.requests = append(g.requests, req)
	hold := g.hold
	g.mu.Unlock()

	select {
	case g.arrived <- req:
	default:
	}
	if hold != nil {
		<-hold
	}

	g.mu.Lock()
	status, message := g.status, g.message
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"message": message})
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var doc document
		if err := json.Unmarshal(body, &doc); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid body"})
			return
		}
		g.mu.Lock()
		for name, f := range doc.Files {
			if f != nil {
				g.files[name] = f.Content
			}
		}
		g.mu.Unlock()
		g.writeDocument(w)
	case http.MethodGet:
		g.writeDocument(w)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(map[string]string{"message": "method not allowed"})
	}
}

func (g *GistServer) writeDocument(w http.ResponseWriter) {
	g.mu.Lock()
	doc := document{Files: make(map[string]*file, len(g.files))}
	for name, c := range g.files {
		doc.Files[name] = &file{Content: c}
	}
	g.mu.Unlock()
	json.NewEncoder(w).Encode(doc)
}
