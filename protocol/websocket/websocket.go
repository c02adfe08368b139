/*
The Websocket package is the protocol adapter the rosbridge client sends its frames
through. It owns a single gorilla websocket connection and ferries opaque bytes
across it, one binary frame per Send. In terms of the overall client architecture
this is the lowest layer: everything above it only sees Connect, Send, Close and
IsAlive, plus the connected/receive/closed notifications.

Runtime failures never leave this package. A failed handshake leaves the adapter
unconnected, a failed write drops the frame and a failed read ends the connection.
Send never drops a frame on a healthy connection: frames wait in an unbounded queue
until the writer goroutine puts them on the wire, and Close flushes that queue
before the closure frame goes out.
Callers learn about any of these only through IsAlive and OnClosed; the optional
diagnostic hook is told the details.
*/

package websocket

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	gorilla "github.com/gorilla/websocket"
	"gopkg.in/tomb.v2"

	"rosbridge.dev/v1/protolib/diagnostic"
	"rosbridge.dev/v1/protolib/logger"
	"rosbridge.dev/v1/protolib/protocol"
	"rosbridge.dev/v1/protolib/telemetry/throughputstats"
)

const (
	normalClosureReason = "Normal Closure"

	// how long Close waits for the close frame to go out
	closeWriteWait = time.Second
)

var _ protocol.Protocol = (*Websocket)(nil)

type Websocket struct {
	logger  *logger.Logger
	target  *url.URL
	headers http.Header
	dialer  *gorilla.Dialer

	state atomic.Int32
	alive atomic.Bool

	// everything below is replaced on each connection attempt
	mu         sync.Mutex
	tmb        *tomb.Tomb
	client     *gorilla.Conn
	outbound   *frameQueue
	writerDone chan struct{}
	stats      *throughputstats.ThroughputStats

	subscriberMu sync.RWMutex
	listener     protocol.Listener
	hook         diagnostic.Hook

	// OnClosed waits for an OnReceive that is already running
	dispatchMu    sync.Mutex
	dispatching   bool
	closedPending bool
}

// New validates the target address and returns an adapter that has not connected yet
func New(logger *logger.Logger, address string, opts ...Option) (*Websocket, error) {
	target, err := parseAddress(address)
	if err != nil {
		return nil, err
	}

	w := &Websocket{
		logger:  logger,
		target:  target,
		headers: http.Header{},
		dialer:  newDefaultDialer(),
		tmb:     &tomb.Tomb{},
	}

	for _, opt := range opts {
		opt(w)
	}

	w.state.Store(int32(protocol.Unconnected))
	return w, nil
}

func (w *Websocket) Target() string {
	return w.target.String()
}

func (w *Websocket) State() protocol.State {
	return protocol.State(w.state.Load())
}

func (w *Websocket) IsAlive() bool {
	return w.alive.Load()
}

// Done is closed once the goroutines of the latest connection attempt have exited
func (w *Websocket) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.tmb.Dead()
}

// Stats reports the bytes moved by the latest connection
func (w *Websocket) Stats() throughputstats.Digest {
	w.mu.Lock()
	stats := w.stats
	w.mu.Unlock()

	if stats == nil {
		return throughputstats.Digest{}
	}
	return stats.Digest()
}

func (w *Websocket) SetListener(listener protocol.Listener) {
	w.subscriberMu.Lock()
	defer w.subscriberMu.Unlock()

	w.listener = listener
}

func (w *Websocket) SetDiagnosticHook(hook diagnostic.Hook) {
	w.subscriberMu.Lock()
	defer w.subscriberMu.Unlock()

	w.hook = hook
}

// Connect starts the handshake in the background and returns right away
func (w *Websocket) Connect() {
	if !w.state.CompareAndSwap(int32(protocol.Unconnected), int32(protocol.Connecting)) {
		w.logger.Infof("Connect was called while %s, ignoring", w.State())
		return
	}

	tmb := &tomb.Tomb{}

	w.mu.Lock()
	w.tmb = tmb
	w.mu.Unlock()

	w.logger.Infof("Making websocket connection to %s", w.target)
	tmb.Go(func() error {
		return w.run(tmb)
	})
}

// Send queues one binary frame. It never blocks and never reports failure.
func (w *Websocket) Send(message []byte) {
	if !w.alive.Load() {
		return
	}

	w.mu.Lock()
	outbound := w.outbound
	w.mu.Unlock()

	if outbound == nil {
		return
	}

	// the caller is free to reuse its slice once we return
	frame := make([]byte, len(message))
	copy(frame, message)

	// only refused when a Close is racing this Send
	outbound.push(frame)
}

// Close flushes queued frames, sends a normal closure to the peer and tears the
// connection down. It does nothing unless the adapter is alive.
func (w *Websocket) Close() {
	w.shutdown(true, nil)
}

func (w *Websocket) run(tmb *tomb.Tomb) error {
	client, _, err := w.dialer.Dial(w.target.String(), w.headers)
	if err != nil {
		w.state.Store(int32(protocol.Unconnected))
		w.report(diagnostic.HandshakeFailure, err)
		return fmt.Errorf("error dialing websocket: %w", err)
	}

	stats := throughputstats.New("bytes", tmb.Dead())
	outbound := newFrameQueue()
	writerDone := make(chan struct{})

	w.mu.Lock()
	w.client = client
	w.outbound = outbound
	w.writerDone = writerDone
	w.stats = stats
	w.mu.Unlock()

	tmb.Go(func() error {
		defer close(writerDone)
		return w.write(client, outbound, stats)
	})

	w.alive.Store(true)
	w.state.Store(int32(protocol.Connected))

	w.logger.Infof("Websocket connection established with %s", w.target)
	w.subscriber().OnConnected()

	return w.receive(client, stats)
}

func (w *Websocket) write(client *gorilla.Conn, outbound *frameQueue, stats *throughputstats.ThroughputStats) error {
	deadlineSet := false

	for {
		message, draining, ok := outbound.pop()
		if !ok {
			return nil
		}

		// whatever is left when Close is called gets closeWriteWait to go out
		if draining && !deadlineSet {
			client.SetWriteDeadline(time.Now().Add(closeWriteWait))
			deadlineSet = true
		}

		if err := client.WriteMessage(gorilla.BinaryMessage, message); err != nil {
			w.report(diagnostic.SendFailure, err)
		} else {
			stats.CountOutbound(len(message))
			w.logger.Tracef("Sent %d byte frame", len(message))
		}
	}
}

func (w *Websocket) receive(client *gorilla.Conn, stats *throughputstats.ThroughputStats) error {
	defer w.logger.Infof("Websocket connection closed")
	w.logger.Debugf("Websocket receive loop started")

	for {
		// Read incoming message
		if _, rawMessage, err := client.ReadMessage(); !w.alive.Load() {
			return nil
		} else if err != nil {
			// Check if it's a clean exit
			if gorilla.IsCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway) {
				w.logger.Info("Websocket connection closed by peer")
			} else {
				w.report(diagnostic.ReceiveFailure, err)
			}

			w.shutdown(false, err)
			return nil
		} else {
			stats.CountInbound(len(rawMessage))
			w.logger.Tracef("Received %d byte frame", len(rawMessage))
			w.deliver(rawMessage)
		}
	}
}

// shutdown runs at most once per connection, whichever side closes first
func (w *Websocket) shutdown(sendCloseFrame bool, reason error) {
	if !w.alive.CompareAndSwap(true, false) {
		return
	}
	w.state.Store(int32(protocol.Closed))

	w.mu.Lock()
	client, tmb, outbound, writerDone := w.client, w.tmb, w.outbound, w.writerDone
	w.client = nil
	w.outbound = nil
	w.mu.Unlock()

	if sendCloseFrame {
		w.logger.Infof("Websocket connection closing with %d frames still queued", outbound.len())

		outbound.close(true)

		// the writer puts a deadline on the remaining frames, the timer is for a write already in progress
		flushTimer := time.NewTimer(closeWriteWait)
		select {
		case <-writerDone:
		case <-flushTimer.C:
		}
		flushTimer.Stop()

		message := gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, normalClosureReason)
		if err := client.WriteControl(gorilla.CloseMessage, message, time.Now().Add(closeWriteWait)); err != nil {
			w.report(diagnostic.CloseFailure, err)
		}
	} else {
		outbound.close(false)
	}

	tmb.Kill(reason)
	client.Close()

	w.notifyClosed()
}

// deliver hands a frame to the listener unless the connection closed first
func (w *Websocket) deliver(message []byte) {
	w.dispatchMu.Lock()
	if !w.alive.Load() {
		w.dispatchMu.Unlock()
		return
	}
	w.dispatching = true
	w.dispatchMu.Unlock()

	w.subscriber().OnReceive(message)

	w.dispatchMu.Lock()
	w.dispatching = false
	pending := w.closedPending
	w.closedPending = false
	w.dispatchMu.Unlock()

	if pending {
		w.subscriber().OnClosed()
	}
}

// notifyClosed fires OnClosed now, or right after the OnReceive in progress returns.
// The second case covers Close being called from inside OnReceive.
func (w *Websocket) notifyClosed() {
	w.dispatchMu.Lock()
	if w.dispatching {
		w.closedPending = true
		w.dispatchMu.Unlock()
		return
	}
	w.dispatchMu.Unlock()

	w.subscriber().OnClosed()
}

func (w *Websocket) subscriber() protocol.Listener {
	w.subscriberMu.RLock()
	defer w.subscriberMu.RUnlock()

	if w.listener == nil {
		return protocol.ListenerFuncs{}
	}
	return w.listener
}

func (w *Websocket) report(kind diagnostic.Kind, err error) {
	w.subscriberMu.RLock()
	hook := w.hook
	w.subscriberMu.RUnlock()

	if hook != nil {
		hook(diagnostic.New(kind, w.target.String(), err))
	}
}
