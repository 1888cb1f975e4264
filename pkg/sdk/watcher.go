package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shelfstream-dev/shelfstream/pkg/schema"
)

// ConnState is the watcher's connection lifecycle:
// connecting → connected → disconnected → connecting (on retry).
type ConnState int

const (
	StateConnecting ConnState = iota
	StateConnected
	StateDisconnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// WatcherSettings tunes the reconnection policy and exposes optional
// callbacks. Callbacks run on the watcher goroutine, so they must not block.
type WatcherSettings struct {
	HandshakeTimeout  time.Duration
	ReconnectDelay    time.Duration
	ReconnectAttempts int

	// OnEvent fires after each event has been folded into the mirror.
	OnEvent func(ev schema.Event)
	// OnStateChange fires on every connection state transition. err is
	// non-nil when the transition was caused by a failure.
	OnStateChange func(state ConnState, err error)
}

func DefaultWatcherSettings() *WatcherSettings {
	return &WatcherSettings{
		HandshakeTimeout:  10 * time.Second,
		ReconnectDelay:    1 * time.Second,
		ReconnectAttempts: 5,
	}
}

// Watcher maintains a live Mirror of a remote catalog. It reconnects with a
// linear backoff up to ReconnectAttempts consecutive failures; after that it
// surfaces a persistent error state but keeps the last known data.
type Watcher struct {
	ctx    context.Context
	cancel context.CancelFunc

	url      string
	settings *WatcherSettings
	mirror   *Mirror

	mu      sync.Mutex
	state   ConnState
	lastErr error
}

// NewWatcher connects to a push endpoint (ws://host:port/ws) and starts
// mirroring. A nil settings uses the defaults.
func NewWatcher(ctx context.Context, pushURL string, settings *WatcherSettings) *Watcher {
	if settings == nil {
		settings = DefaultWatcherSettings()
	}
	cancelCtx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		ctx:      cancelCtx,
		cancel:   cancel,
		url:      pushURL,
		settings: settings,
		mirror:   NewMirror(),
		state:    StateConnecting,
	}
	go w.run()
	return w
}

// Books returns the last known catalog. It stays valid while disconnected.
func (w *Watcher) Books() []schema.Book {
	return w.mirror.Books()
}

// Mirror exposes the underlying mirror.
func (w *Watcher) Mirror() *Mirror {
	return w.mirror
}

// State reports the connection state and, when disconnected for good, the
// error that exhausted the retry budget.
func (w *Watcher) State() (ConnState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state, w.lastErr
}

// Close stops the watcher. The mirror keeps its last contents.
func (w *Watcher) Close() {
	w.cancel()
}

// Done is closed when the watcher has stopped, either because Close was
// called or because the retry budget ran out.
func (w *Watcher) Done() <-chan struct{} {
	return w.ctx.Done()
}

func (w *Watcher) run() {
	defer w.cancel()

	attempts := 0
	for {
		w.setState(StateConnecting, nil)

		dialer := &websocket.Dialer{HandshakeTimeout: w.settings.HandshakeTimeout}
		conn, resp, err := dialer.DialContext(w.ctx, w.url, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			attempts++
			if attempts >= w.settings.ReconnectAttempts {
				w.setState(StateDisconnected, fmt.Errorf("failed to reconnect after %d attempts: %w", attempts, err))
				return
			}
			w.setState(StateDisconnected, err)
			if !w.sleep(time.Duration(attempts) * w.settings.ReconnectDelay) {
				return
			}
			continue
		}

		attempts = 0
		w.setState(StateConnected, nil)
		w.readLoop(conn)
		conn.Close()

		select {
		case <-w.ctx.Done():
			w.setState(StateDisconnected, nil)
			return
		default:
		}

		w.setState(StateDisconnected, nil)
		if !w.sleep(w.settings.ReconnectDelay) {
			return
		}
	}
}

// readLoop applies incoming events until the connection breaks. The server
// pings periodically; gorilla answers those automatically from ReadMessage.
func (w *Watcher) readLoop(conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-w.ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var ev schema.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			log.Printf("Warning: could not decode push event: %v", err)
			continue
		}
		if err := w.mirror.Apply(ev); err != nil {
			log.Printf("Warning: could not apply %s event: %v", ev.Type, err)
			continue
		}
		if w.settings.OnEvent != nil {
			w.settings.OnEvent(ev)
		}
	}
}

// sleep waits for the backoff delay; reports false if the watcher was closed.
func (w *Watcher) sleep(d time.Duration) bool {
	select {
	case <-w.ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (w *Watcher) setState(state ConnState, err error) {
	w.mu.Lock()
	changed := w.state != state || err != nil
	w.state = state
	w.lastErr = err
	w.mu.Unlock()

	if changed && w.settings.OnStateChange != nil {
		w.settings.OnStateChange(state, err)
	}
}
