// Package dcstest runs an in-process stand-in for the codesearch service.
package dcstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gopak/dcs-cli/internal/dcs"
)

// Server answers /instantws with the configured frames and /results/ with the
// configured pages. Pages without a body or a status answer 404.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	frames   [][]byte
	pages    map[int][]byte
	statuses map[int]int
	queries  []string
	hits     []Hit
}

// Hit records one page request.
type Hit struct {
	QueryID string
	Page    int
	At      time.Time
}

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

func NewServer() *Server {
	s := &Server{pages: map[int][]byte{}, statuses: map[int]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/instantws", s.serveStream)
	mux.HandleFunc("/results/", s.servePage)
	s.Server = httptest.NewServer(mux)
	return s
}

func (s *Server) StreamURL() string { return "ws" + strings.TrimPrefix(s.URL, "http") + "/instantws" }

func (s *Server) ResultsURL() string { return s.URL + "/results" }

// Client returns a dcs.Client pointed at this server.
func (s *Server) Client(opts ...dcs.Option) *dcs.Client {
	base := []dcs.Option{dcs.WithStreamURL(s.StreamURL()), dcs.WithResultsURL(s.ResultsURL())}
	return dcs.NewClient(append(base, opts...)...)
}

// SendRaw queues a raw frame for the stream.
func (s *Server) SendRaw(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
}

// SendChunks queues one frame per chunk.
func (s *Server) SendChunks(chunks ...dcs.Chunk) {
	for _, c := range chunks {
		s.SendRaw(mustJSON(c))
	}
}

// SendProgress queues a progress frame.
func (s *Server) SendProgress(p dcs.Progress) {
	p.Type = "progress"
	s.SendRaw(mustJSON(p))
}

// SetPage serves chunks as page n.
func (s *Server) SetPage(n int, chunks ...dcs.Chunk) {
	if chunks == nil {
		chunks = []dcs.Chunk{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[n] = mustJSON(chunks)
}

// SetPageStatus makes page n answer with status.
func (s *Server) SetPageStatus(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[n] = status
}

func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func (s *Server) Hits() []Hit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Hit(nil), s.hits...)
}

func (s *Server) serveStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var req dcs.QueryRequest
	if err := conn.ReadJSON(&req); err != nil {
		return
	}
	s.mu.Lock()
	s.queries = append(s.queries, req.Query)
	frames := append([][]byte(nil), s.frames...)
	s.mu.Unlock()

	for _, f := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, f); err != nil {
			return
		}
	}
	// hold the connection until the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/results/")
	i := strings.LastIndex(rest, "/")
	if i < 0 {
		http.NotFound(w, r)
		return
	}
	var n int
	if _, err := fmt.Sscanf(rest[i+1:], "page_%d.json", &n); err != nil {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.hits = append(s.hits, Hit{QueryID: rest[:i], Page: n, At: time.Now()})
	status, hasStatus := s.statuses[n]
	body, hasBody := s.pages[n]
	s.mu.Unlock()

	switch {
	case hasStatus:
		w.WriteHeader(status)
	case hasBody:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	default:
		http.NotFound(w, r)
	}
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
