// Package bridge links the dashboard to a running browser through the
// companion extension's WebSocket connection. It covers the collaborator
// operations the core cannot do itself: enumerating the currently open
// tabs, closing saved tabs, opening URLs, focusing the dashboard page, and
// the batched bookmark-status lookup.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lotas/tabclue/internal/applog"
	"nhooyr.io/websocket"
)

// IncomingMsg is a message from the extension.
type IncomingMsg struct {
	Type string          `json:"type"`
	Tabs json.RawMessage `json:"tabs,omitempty"`
	// Command response fields
	ID        string          `json:"id,omitempty"`
	OK        *bool           `json:"ok,omitempty"`
	Error     string          `json:"error,omitempty"`
	Bookmarks map[string]bool `json:"bookmarks,omitempty"`
}

// TabToOpen specifies a tab to create in the browser.
type TabToOpen struct {
	URL string `json:"url"`
}

// OutgoingMsg is a command to the extension.
type OutgoingMsg struct {
	ID     string      `json:"id"`
	Action string      `json:"action"`
	TabIDs []int       `json:"tabIds,omitempty"`
	Tabs   []TabToOpen `json:"tabs,omitempty"`
	URLs   []string    `json:"urls,omitempty"`
	Path   string      `json:"path,omitempty"`
}

// Server manages the WebSocket connection to the extension.
type Server struct {
	port int
	msgs chan IncomingMsg

	mu      sync.Mutex
	conn    *websocket.Conn
	connCtx context.Context
	pending map[string]chan IncomingMsg
}

// New creates a new Server listening on port once ListenAndServe runs.
func New(port int) *Server {
	return &Server{
		port:    port,
		msgs:    make(chan IncomingMsg, 64),
		pending: make(map[string]chan IncomingMsg),
	}
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Messages returns the channel of unsolicited messages from the extension
// (snapshots, tab events). Command responses are routed to their waiters
// and never appear here.
func (s *Server) Messages() <-chan IncomingMsg {
	return s.msgs
}

// Connected reports whether an extension is connected.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

var cmdCounter atomic.Int64

func nextCmdID() string {
	return fmt.Sprintf("cmd-%d", cmdCounter.Add(1))
}

// Send sends a command to the connected extension. A missing connection is
// not an error; the command is simply dropped (the caller sees it through
// Connected or a response timeout).
func (s *Server) Send(msg OutgoingMsg) error {
	s.mu.Lock()
	conn := s.conn
	ctx := s.connCtx
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	applog.Info("bridge.send", "action", msg.Action, "id", msg.ID)
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// call sends a command and waits for the extension's response with the
// same correlation ID.
func (s *Server) call(ctx context.Context, msg OutgoingMsg) (IncomingMsg, error) {
	if !s.Connected() {
		return IncomingMsg{}, fmt.Errorf("bridge: no extension connected")
	}

	msg.ID = nextCmdID()
	ch := make(chan IncomingMsg, 1)
	s.mu.Lock()
	s.pending[msg.ID] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, msg.ID)
		s.mu.Unlock()
	}()

	if err := s.Send(msg); err != nil {
		return IncomingMsg{}, fmt.Errorf("bridge send %s: %w", msg.Action, err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return resp, fmt.Errorf("bridge %s: %s", msg.Action, resp.Error)
		}
		return resp, nil
	case <-ctx.Done():
		return IncomingMsg{}, fmt.Errorf("bridge %s: %w", msg.Action, ctx.Err())
	}
}

// dispatch routes one incoming message: command responses go to their
// waiting caller, everything else to the Messages channel. The channel
// drops on overflow so a stalled consumer cannot wedge the read loop.
func (s *Server) dispatch(msg IncomingMsg) {
	if msg.ID != "" {
		s.mu.Lock()
		ch, ok := s.pending[msg.ID]
		s.mu.Unlock()
		if ok {
			ch <- msg
			return
		}
	}
	select {
	case s.msgs <- msg:
	default:
	}
}

// Handler returns an http.Handler that accepts WebSocket upgrades.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			applog.Error("bridge.accept", err)
			return
		}

		conn.SetReadLimit(16 << 20) // 16 MB — snapshots with many tabs can be large

		ctx := r.Context()
		s.mu.Lock()
		if s.conn != nil {
			applog.Info("bridge.replaced")
			s.conn.CloseNow()
		}
		s.conn = conn
		s.connCtx = ctx
		s.mu.Unlock()

		applog.Info("bridge.connected", "remote", r.RemoteAddr)

		defer func() {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
				s.connCtx = nil
			}
			s.mu.Unlock()
			conn.CloseNow()
			applog.Info("bridge.disconnected")
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg IncomingMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				applog.Error("bridge.parse", err)
				continue
			}
			s.dispatch(msg)
		}
	})
}

// ListenAndServe starts the WebSocket server on the configured port.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", s.Handler())

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	applog.Info("bridge.start", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	return srv.ListenAndServe()
}

// CloseTabs asks the browser to close the given tab handles.
func (s *Server) CloseTabs(ctx context.Context, handles []int) error {
	if len(handles) == 0 {
		return nil
	}
	_, err := s.call(ctx, OutgoingMsg{Action: "close-tabs", TabIDs: handles})
	return err
}

// OpenTabs asks the browser to open the given URLs in new tabs.
func (s *Server) OpenTabs(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	tabs := make([]TabToOpen, len(urls))
	for i, u := range urls {
		tabs[i] = TabToOpen{URL: u}
	}
	_, err := s.call(ctx, OutgoingMsg{Action: "open-tabs", Tabs: tabs})
	return err
}

// OpenDashboard asks the browser to show the dashboard page at the
// optional sub-path, focusing an existing dashboard tab instead of opening
// a duplicate.
func (s *Server) OpenDashboard(ctx context.Context, path string) error {
	_, err := s.call(ctx, OutgoingMsg{Action: "open-dashboard", Path: path})
	return err
}

// BookmarkChecker performs the batched bookmark-status lookup through the
// bridge. It satisfies the bookmarks.Checker contract.
type BookmarkChecker struct {
	Server  *Server
	Timeout time.Duration
}

// Lookup asks the extension which of the given URLs are bookmarked.
func (c BookmarkChecker) Lookup(ctx context.Context, urls []string) (map[string]bool, error) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.Server.call(ctx, OutgoingMsg{Action: "check-bookmarks", URLs: urls})
	if err != nil {
		return nil, err
	}
	return resp.Bookmarks, nil
}
