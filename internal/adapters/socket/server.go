package socket

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/corey/adsaver/internal/ports"
	"go.uber.org/zap"
)

// Service is what the daemon exposes to clients. Thread safety is the
// implementor's responsibility; handlers call it from many goroutines.
type Service interface {
	Generate(p GenerateParams) (*GenerateResult, error)
	Sort(p SortParams) (*SortResult, error)
	Health() *HealthResult
	SaveList(p SaveListParams) (*ports.ListSummary, error)
	GetList(ref ListRef) (*ports.KeywordList, error)
	Lists(p ListsParams) (*ListsResult, error)
	DeleteList(ref ListRef) error
}

// Server is the daemon that listens on a Unix socket and serves requests.
type Server struct {
	svc      Service
	log      *zap.Logger
	listener net.Listener
	sockPath string

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a daemon server backed by svc. A nil logger disables logging.
func NewServer(svc Service, sockPath string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		svc:        svc,
		log:        log.Named("socket"),
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first; if the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	// Handle stale socket
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		s.log.Info("removing stale socket", zap.String("path", s.sockPath))
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()

	s.log.Info("listening", zap.String("path", s.sockPath))
	return nil
}

// Stop gracefully shuts down the server, closing the listener and removing the socket file.
// Idempotent; safe to call multiple times (e.g., after remote shutdown + signal).
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock the scanner when the server stops.
	connDone := make(chan struct{})
	defer close(connDone)
	go func() {
		select {
		case <-s.done:
			conn.SetReadDeadline(time.Now())
		case <-connDone:
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 16*1024*1024), 16*1024*1024) // 16MB max message

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON", Code: CodeInvalid})
			continue
		}

		start := time.Now()
		resp := s.handleRequest(req)
		s.log.Debug("request",
			zap.String("method", req.Method),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error", resp.Error))
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodGenerate:
		var p GenerateParams
		if err := decodeParams(req, &p); err != nil {
			return errorResponse(req.ID, err)
		}
		res, err := s.svc.Generate(p)
		return respond(req.ID, res, err)
	case MethodSort:
		var p SortParams
		if err := decodeParams(req, &p); err != nil {
			return errorResponse(req.ID, err)
		}
		res, err := s.svc.Sort(p)
		return respond(req.ID, res, err)
	case MethodHealth:
		return Response{ID: req.ID, Result: s.svc.Health()}
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	case MethodListSave:
		var p SaveListParams
		if err := decodeParams(req, &p); err != nil {
			return errorResponse(req.ID, err)
		}
		res, err := s.svc.SaveList(p)
		return respond(req.ID, res, err)
	case MethodListGet:
		var ref ListRef
		if err := decodeParams(req, &ref); err != nil {
			return errorResponse(req.ID, err)
		}
		res, err := s.svc.GetList(ref)
		return respond(req.ID, res, err)
	case MethodListList:
		var p ListsParams
		if err := decodeParams(req, &p); err != nil {
			return errorResponse(req.ID, err)
		}
		res, err := s.svc.Lists(p)
		return respond(req.ID, res, err)
	case MethodListDelete:
		var ref ListRef
		if err := decodeParams(req, &ref); err != nil {
			return errorResponse(req.ID, err)
		}
		if err := s.svc.DeleteList(ref); err != nil {
			return errorResponse(req.ID, err)
		}
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method), Code: CodeInvalid}
	}
}

// respond turns a service call's (value, error) into a Response.
func respond(id string, v interface{}, err error) Response {
	if err != nil {
		return errorResponse(id, err)
	}
	return Response{ID: id, Result: v}
}

func errorResponse(id string, err error) Response {
	resp := Response{ID: id, Error: err.Error()}
	switch {
	case errors.Is(err, ports.ErrNotFound):
		resp.Code = CodeNotFound
	case errors.Is(err, ports.ErrInvalid):
		resp.Code = CodeInvalid
	}
	return resp
}

// decodeParams re-marshals the generic params into the method's params type.
func decodeParams(req Request, target interface{}) error {
	if req.Params == nil {
		return nil
	}
	paramsJSON, err := json.Marshal(req.Params)
	if err != nil {
		return fmt.Errorf("%w: params: %v", ports.ErrInvalid, err)
	}
	if err := json.Unmarshal(paramsJSON, target); err != nil {
		return fmt.Errorf("%w: params: %v", ports.ErrInvalid, err)
	}
	return nil
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal response", zap.Error(err))
		data, _ = json.Marshal(Response{ID: resp.ID, Error: "internal error"})
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.log.Debug("write response", zap.Error(err))
	}
}
