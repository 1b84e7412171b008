// Package net hosts boards for remote input clients over websockets.
package net

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Freehand/internal/board"
	"Freehand/internal/config"
	"Freehand/internal/export"
)

const (
	writeWait   = 5 * time.Second
	maxMessage  = 1 << 16
	queueLength = 64
)

// Server gives every websocket connection its own board. Nothing is shared
// between sessions.
type Server struct {
	log      *slog.Logger
	metrics  *Metrics
	registry *prometheus.Registry
	upgrader websocket.Upgrader
	router   *mux.Router

	mu       sync.Mutex
	engine   config.Engine
	sessions map[*session]struct{}
}

func NewServer(cfg config.Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		log:      log.With("component", "server"),
		metrics:  NewMetrics(reg),
		registry: reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// input clients are local tools, not browsers on other origins
			CheckOrigin: func(*http.Request) bool { return true },
		},
		engine:   cfg.Engine,
		sessions: make(map[*session]struct{}),
	}

	r := mux.NewRouter()
	r.HandleFunc("/ws", s.serveWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)
	if cfg.Server.Metrics {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Metrics() *Metrics { return s.metrics }

// Serve accepts connections on ln until ctx is done, then closes every
// session and waits for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(ln) }()
	s.log.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.closeSessions()
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdown); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("stopped")
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Reconfigure applies new engine settings to future sessions and, through
// their queues, to every open board.
func (s *Server) Reconfigure(cfg config.Engine) {
	s.mu.Lock()
	s.engine = cfg
	open := make([]*session, 0, len(s.sessions))
	for ss := range s.sessions {
		open = append(open, ss)
	}
	s.mu.Unlock()

	for _, ss := range open {
		ss.do(func() { ss.board.Reconfigure(cfg) })
	}
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for ss := range s.sessions {
		_ = ss.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = ss.conn.Close()
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	conn.SetReadLimit(maxMessage)

	s.mu.Lock()
	cfg := s.engine
	s.mu.Unlock()

	ss := newSession(conn, cfg, s.log, s.metrics)
	s.mu.Lock()
	s.sessions[ss] = struct{}{}
	s.mu.Unlock()
	s.metrics.Sessions.Inc()
	ss.log.Info("session opened", "remote", r.RemoteAddr)

	go ss.run()
	ss.readLoop()

	s.mu.Lock()
	delete(s.sessions, ss)
	s.mu.Unlock()
	s.metrics.Sessions.Dec()
	ss.log.Info("session closed")
}

// session is one input client and its board. Every board call happens on
// the run goroutine, in the order messages arrived.
type session struct {
	id       string
	log      *slog.Logger
	metrics  *Metrics
	conn     *websocket.Conn
	board    *board.Board
	controls *board.Controls

	queue chan func()
	done  chan struct{}
	once  sync.Once
}

func newSession(conn *websocket.Conn, cfg config.Engine, log *slog.Logger, m *Metrics) *session {
	id := uuid.NewString()
	log = log.With("session", id)
	controls := board.NewControls(cfg)
	return &session{
		id:       id,
		log:      log,
		metrics:  m,
		conn:     conn,
		controls: controls,
		board: board.New(cfg,
			board.WithLogger(log),
			board.WithInputs(controls),
			board.WithObserver(observer{m: m}),
		),
		queue: make(chan func(), queueLength),
		done:  make(chan struct{}),
	}
}

func (ss *session) close() {
	ss.once.Do(func() {
		close(ss.done)
		_ = ss.conn.Close()
	})
}

// do queues fn for the run goroutine. It reports false once the session has
// ended.
func (ss *session) do(fn func()) bool {
	select {
	case ss.queue <- fn:
		return true
	case <-ss.done:
		return false
	}
}

func (ss *session) run() {
	for {
		select {
		case fn := <-ss.queue:
			fn()
		case <-ss.done:
			return
		}
	}
}

func (ss *session) readLoop() {
	defer ss.close()
	for {
		typ, data, err := ss.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ss.log.Debug("read", "err", err)
			}
			return
		}
		if typ != websocket.TextMessage {
			ss.do(func() { ss.reject(errors.New("expected a JSON text message")) })
			continue
		}
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			ss.do(func() { ss.reject(fmt.Errorf("decode: %w", err)) })
			continue
		}
		if !ss.do(func() { ss.handle(m) }) {
			return
		}
	}
}

func (ss *session) handle(m Message) {
	if err := ss.apply(m); err != nil {
		ss.reject(fmt.Errorf("%s: %w", m.Type, err))
		return
	}
	ss.metrics.Events.WithLabelValues(m.Type).Inc()
}

func (ss *session) apply(m Message) error {
	b := ss.board
	switch m.Type {
	case TypeResize:
		if m.Metrics == nil {
			return errors.New("missing metrics")
		}
		return b.Resize(*m.Metrics)
	case TypePointer:
		ev, err := m.pointer()
		if err != nil {
			return err
		}
		b.Pointer(ev)
	case TypeTouch:
		ev, err := m.touch()
		if err != nil {
			return err
		}
		b.Touch(ev)
	case TypeUndo:
		b.Undo()
	case TypeRedo:
		b.Redo()
	case TypeClear:
		b.Clear()
	case TypeSettings:
		st, err := m.settings()
		if err != nil {
			return err
		}
		if st.color != nil {
			ss.controls.SetColor(st.color.NRGBA())
		}
		if st.width > 0 {
			ss.controls.SetLineWidth(st.width)
		}
		if st.tool != nil {
			ss.controls.SetTool(*st.tool)
		}
	case TypeFrame:
		return ss.sendFrame()
	case TypeState:
		return ss.write(ss.stateReply())
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

func (ss *session) stateReply() StateReply {
	b := ss.board
	cam := b.Camera()
	return StateReply{
		Type:    TypeState,
		State:   b.State().String(),
		Scale:   cam.Scale,
		Offset:  cam.Offset,
		Done:    len(b.Done()),
		Undone:  len(b.Undone()),
		Metrics: b.Metrics(),
		Color:   configColor(ss.controls),
		Width:   ss.controls.LineWidth(),
		Tool:    ss.controls.Tool(),
	}
}

func (ss *session) sendFrame() error {
	if err := ss.board.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.PNG(&buf, ss.board.Raster()); err != nil {
		return err
	}
	_ = ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return ss.conn.WriteMessage(websocket.BinaryMessage, buf.Bytes())
}

func (ss *session) write(v any) error {
	_ = ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return ss.conn.WriteJSON(v)
}

func (ss *session) reject(err error) {
	ss.metrics.Malformed.Inc()
	ss.log.Debug("rejected message", "err", err)
	if werr := ss.write(ErrorReply{Type: TypeError, Error: err.Error()}); werr != nil {
		ss.log.Debug("write", "err", werr)
		ss.close()
	}
}

func configColor(c *board.Controls) string { return config.Color(c.Color()).String() }
