package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ripple/internal/models"
	"ripple/internal/observability"
)

// State is the connection lifecycle state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// TokenSource supplies the bearer token for the websocket handshake.
type TokenSource interface {
	Token() (string, error)
}

// Handler receives the payload of a delivered event. Handlers run on the
// read-pump goroutine in delivery order; a slow handler delays everything
// behind it.
type Handler func(payload json.RawMessage)

// Config controls connection behavior. Attempts and Delay form the bounded
// reconnection budget; once exhausted the manager stays Disconnected until
// the next explicit Connect.
type Config struct {
	URL              string
	Attempts         int
	Delay            time.Duration
	HandshakeTimeout time.Duration
}

// Manager owns the single live websocket connection for the process.
// Connect is single-flight: concurrent callers share one in-flight attempt
// and all observe the same outcome.
type Manager struct {
	cfg    Config
	tokens TokenSource
	logger *observability.ConnLogger

	mu      sync.Mutex
	state   State
	conn    *websocket.Conn
	attempt *connectAttempt

	writeMu sync.Mutex

	handlerMu sync.RWMutex
	handlers  map[string]map[uint64]Handler
	nextSub   uint64
}

// connectAttempt is the awaitable completion signal for one connection
// attempt, resolved exactly once.
type connectAttempt struct {
	done chan struct{}
	err  error
}

// NewManager creates a Manager. Zero Attempts defaults to 3, zero Delay to
// one second.
func NewManager(cfg Config, tokens TokenSource) *Manager {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	return &Manager{
		cfg:      cfg,
		tokens:   tokens,
		logger:   observability.NewConnLogger("connection"),
		handlers: make(map[string]map[uint64]Handler),
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connected reports whether a live connection exists.
func (m *Manager) Connected() bool {
	return m.State() == Connected
}

// Connect establishes the websocket connection. A connected manager
// returns immediately; a caller arriving during an in-flight attempt
// awaits that attempt instead of starting a second one. Fails with
// AuthRequired when no session token exists.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state == Connected && m.conn != nil {
		m.mu.Unlock()
		return nil
	}
	if m.attempt != nil {
		att := m.attempt
		m.mu.Unlock()
		select {
		case <-att.done:
			return att.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	token, err := m.tokens.Token()
	if err != nil {
		m.mu.Unlock()
		return err
	}

	att := &connectAttempt{done: make(chan struct{})}
	m.attempt = att
	m.state = Connecting
	m.mu.Unlock()

	go m.dial(att, token)

	select {
	case <-att.done:
		return att.err
	case <-ctx.Done():
		// The attempt keeps running; a later caller still observes its outcome.
		return ctx.Err()
	}
}

// dial runs the bounded attempt loop and resolves att exactly once.
func (m *Manager) dial(att *connectAttempt, token string) {
	dialer := websocket.Dialer{HandshakeTimeout: m.cfg.HandshakeTimeout}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	var lastErr error
	for i := 1; i <= m.cfg.Attempts; i++ {
		if i > 1 {
			observability.ReconnectsTotal.Inc()
			time.Sleep(m.cfg.Delay)
		}

		conn, resp, err := dialer.Dial(m.cfg.URL, header)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			lastErr = err
			observability.ConnectAttemptsTotal.WithLabelValues("failure").Inc()
			m.logger.LogError(context.Background(), err, "dial")
			continue
		}

		observability.ConnectAttemptsTotal.WithLabelValues("success").Inc()
		observability.ConnectionState.Set(1)
		m.logger.LogConnect(context.Background(), m.cfg.URL, i)

		m.mu.Lock()
		m.conn = conn
		m.state = Connected
		m.attempt = nil
		m.mu.Unlock()

		go m.readPump(conn)

		close(att.done)
		return
	}

	m.mu.Lock()
	m.state = Disconnected
	m.conn = nil
	m.attempt = nil
	m.mu.Unlock()

	att.err = models.NewNetworkError(lastErr)
	close(att.done)
}

// readPump delivers incoming events to registered handlers until the
// connection drops. On drop the manager transitions to Disconnected and
// waits for the next explicit Connect; past callers are not notified.
func (m *Manager) readPump(conn *websocket.Conn) {
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			m.dropped(conn, err)
			return
		}
		observability.EventsTotal.WithLabelValues("in", env.Type).Inc()
		m.dispatch(env)
	}
}

func (m *Manager) dispatch(env Envelope) {
	m.handlerMu.RLock()
	subs := make([]Handler, 0, len(m.handlers[env.Type]))
	for _, h := range m.handlers[env.Type] {
		subs = append(subs, h)
	}
	m.handlerMu.RUnlock()

	for _, h := range subs {
		h(env.Payload)
	}
}

// dropped clears the handle after an unexpected read failure. A connection
// replaced by a newer one is ignored.
func (m *Manager) dropped(conn *websocket.Conn, err error) {
	m.mu.Lock()
	if m.conn != conn {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.state = Disconnected
	m.mu.Unlock()

	_ = conn.Close()
	observability.ConnectionState.Set(0)
	m.logger.LogDisconnect(context.Background(), err.Error())
}

// Disconnect closes the connection explicitly. Idempotent.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.state = Disconnected
	m.mu.Unlock()

	if conn == nil {
		return
	}

	m.writeMu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	m.writeMu.Unlock()
	_ = conn.Close()

	observability.ConnectionState.Set(0)
	m.logger.LogDisconnect(context.Background(), "explicit disconnect")
}

// Emit sends one event over the live connection. When disconnected it
// logs a warning, counts the drop, and reports NotConnected; callers that
// need delivery treat this as a user-visible failure.
func (m *Manager) Emit(event string, payload interface{}) error {
	m.mu.Lock()
	conn := m.conn
	connected := m.state == Connected
	m.mu.Unlock()

	if !connected || conn == nil {
		observability.DroppedEmitsTotal.WithLabelValues(event).Inc()
		m.logger.LogWarn(context.Background(), "emit while disconnected",
			map[string]interface{}{"event_type": event})
		return models.NewNotConnectedError("realtime connection is not established")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return models.NewValidationError("event payload is not serializable")
	}

	m.writeMu.Lock()
	err = conn.WriteJSON(Envelope{Type: event, Payload: data})
	m.writeMu.Unlock()
	if err != nil {
		m.dropped(conn, err)
		return models.NewNetworkError(err)
	}

	observability.EventsTotal.WithLabelValues("out", event).Inc()
	return nil
}

// On registers a handler for the event type and returns its unsubscribe
// function. Handlers live in the manager, not the socket, so registrations
// survive reconnects.
func (m *Manager) On(event string, h Handler) func() {
	m.handlerMu.Lock()
	if m.handlers[event] == nil {
		m.handlers[event] = make(map[uint64]Handler)
	}
	m.nextSub++
	id := m.nextSub
	m.handlers[event][id] = h
	m.handlerMu.Unlock()

	return func() {
		m.handlerMu.Lock()
		delete(m.handlers[event], id)
		m.handlerMu.Unlock()
	}
}
