package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"rosbridge.dev/v1/protolib/logger"
)

// WebsocketServer echoes every frame back to whoever sent it and remembers the
// latest connection so tests can close it from the server side. It also keeps
// track of what the client put on the wire: frame types, frame count and the
// closure the client sent, if any.
type WebsocketServer struct {
	logger *logger.Logger

	mu           sync.Mutex
	conn         *websocket.Conn
	messageTypes []int
	closeErr     *websocket.CloseError

	echo     atomic.Bool
	received atomic.Int64

	Connected     chan struct{}
	ReceivedBytes chan []byte
}

func NewWebsocketServer(logger *logger.Logger) *WebsocketServer {
	server := &WebsocketServer{
		logger:        logger,
		Connected:     make(chan struct{}, 10),
		ReceivedBytes: make(chan []byte, 100),
	}
	server.echo.Store(true)

	return server
}

// SetEcho turns echoing on or off; frames are still counted either way
func (w *WebsocketServer) SetEcho(echo bool) {
	w.echo.Store(echo)
}

// ReceivedCount is the number of data frames read so far, across connections
func (w *WebsocketServer) ReceivedCount() int {
	return int(w.received.Load())
}

func (w *WebsocketServer) MessageTypes() []int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]int{}, w.messageTypes...)
}

// CloseError is the closure the client sent, nil until one arrives
func (w *WebsocketServer) CloseError() *websocket.CloseError {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.closeErr
}

func (w *WebsocketServer) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	upgrader := websocket.Upgrader{}

	conn, err := upgrader.Upgrade(writer, request, nil)
	if err != nil {
		w.logger.Errorf("failed to upgrade websocket: %s", err)
		return
	}
	defer conn.Close()

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	w.Connected <- struct{}{}

	for {
		if messageType, message, err := conn.ReadMessage(); err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				w.mu.Lock()
				w.closeErr = closeErr
				w.mu.Unlock()
			}

			w.logger.Infof("stopped reading from websocket connection: %s", err)
			return
		} else {
			w.mu.Lock()
			w.messageTypes = append(w.messageTypes, messageType)
			w.mu.Unlock()
			w.received.Add(1)

			select {
			case w.ReceivedBytes <- message:
			default:
			}

			if !w.echo.Load() {
				continue
			}

			if err := conn.WriteMessage(messageType, message); err != nil {
				w.logger.Errorf("failed to write to websocket connection: %s", err)
				return
			}
		}
	}
}

// ForceClose drops the connection without a close handshake
func (w *WebsocketServer) ForceClose() error {
	conn, err := w.current()
	if err != nil {
		return err
	}
	return conn.Close()
}

// Close sends a normal closure frame, as a well-behaved broker would
func (w *WebsocketServer) Close() error {
	conn, err := w.current()
	if err != nil {
		return err
	}

	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	return conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
}

func (w *WebsocketServer) current() (*websocket.Conn, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return nil, fmt.Errorf("no websocket connection has been made yet")
	}
	return w.conn, nil
}
