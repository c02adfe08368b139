package websocket

import (
	"net/http"

	gorilla "github.com/gorilla/websocket"
)

type Option func(*Websocket)

// WithHeaders adds headers to the handshake request
func WithHeaders(headers http.Header) Option {
	return func(w *Websocket) {
		w.headers = headers.Clone()
	}
}

// WithDialer replaces the default dialer. TLS settings for wss:// targets belong here.
func WithDialer(dialer *gorilla.Dialer) Option {
	return func(w *Websocket) {
		if dialer != nil {
			w.dialer = dialer
		}
	}
}

// no HandshakeTimeout: a hung handshake leaves the adapter connecting
func newDefaultDialer() *gorilla.Dialer {
	return &gorilla.Dialer{
		Proxy: http.ProxyFromEnvironment,
	}
}
