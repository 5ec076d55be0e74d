package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/corey/adsaver/internal/adapters/socket"
	"github.com/corey/adsaver/internal/ports"
	"go.uber.org/zap"
)

// maxBody caps request bodies. Three pasted columns rarely exceed a few MB.
const maxBody = 16 << 20

// Server serves the keyword tool UI and its JSON API over HTTP.
type Server struct {
	svc      socket.Service
	log      *zap.Logger
	listener net.Listener
	httpSrv  *http.Server
	port     int
	stopOnce sync.Once

	portFilePath string // .adsaver/run/http.port
}

// NewServer creates an HTTP server backed by the same service the socket
// daemon exposes. The portFilePath is where the bound port is written for
// discovery; empty disables it.
func NewServer(svc socket.Service, portFilePath string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		svc:          svc,
		log:          log.Named("web"),
		portFilePath: portFilePath,
	}
}

// DefaultPort computes a project-specific port: 19000 + (hash(abs_path) % 1000).
func DefaultPort(projectRoot string) int {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 19000 + int(n%1000)
}

// Handler returns the routed mux. Start serves it; tests use it directly.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", http.RedirectHandler("/static/", http.StatusFound))
	mux.Handle("GET /", http.FileServerFS(staticFS))
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/sort", s.handleSort)
	mux.HandleFunc("GET /api/lists", s.handleLists)
	mux.HandleFunc("POST /api/lists", s.handleSaveList)
	mux.HandleFunc("GET /api/lists/{campaign}/{ad_group}/{id}", s.handleGetList)
	mux.HandleFunc("DELETE /api/lists/{campaign}/{ad_group}/{id}", s.handleDeleteList)
	return mux
}

// Start begins listening on host:preferredPort. Port 0 picks a free port.
// Writes the bound port to the port file.
func (s *Server) Start(host string, preferredPort int) error {
	if host == "" {
		host = "127.0.0.1"
	}
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", preferredPort))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port

	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.portFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(s.portFilePath), 0755); err == nil {
			if err := os.WriteFile(s.portFilePath, []byte(fmt.Sprintf("%d", s.port)), 0644); err != nil {
				s.log.Warn("write port file", zap.Error(err))
			}
		}
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("serve", zap.Error(err))
		}
	}()
	s.log.Info("listening", zap.String("url", s.URL()))
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.portFilePath != "" {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the UI address.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Health())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var p socket.GenerateParams
	if !s.decode(w, r, &p) {
		return
	}
	res, err := s.svc.Generate(p)
	s.reply(w, res, err)
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var p socket.SortParams
	if !s.decode(w, r, &p) {
		return
	}
	res, err := s.svc.Sort(p)
	s.reply(w, res, err)
}

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.svc.Lists(socket.ListsParams{
		Campaign: q.Get("campaign"),
		AdGroup:  q.Get("ad_group"),
	})
	s.reply(w, res, err)
}

func (s *Server) handleSaveList(w http.ResponseWriter, r *http.Request) {
	var p socket.SaveListParams
	if !s.decode(w, r, &p) {
		return
	}
	res, err := s.svc.SaveList(p)
	if err != nil {
		s.reply(w, nil, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.GetList(listRef(r))
	s.reply(w, res, err)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteList(listRef(r)); err != nil {
		s.reply(w, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func listRef(r *http.Request) socket.ListRef {
	return socket.ListRef{
		Campaign: r.PathValue("campaign"),
		AdGroup:  r.PathValue("ad_group"),
		ID:       r.PathValue("id"),
	}
}

// decode reads a JSON body into v, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (s *Server) reply(w http.ResponseWriter, v interface{}, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, v)
		return
	}
	switch {
	case errors.Is(err, ports.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
