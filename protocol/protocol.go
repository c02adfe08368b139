/*
Package protocol defines the transport contract the rosbridge client talks to. A
Protocol moves opaque byte frames to and from a remote broker and reports three
lifecycle events to a single registered Listener. Nothing above this layer sees
transport errors; the only failure a caller can act on is a bad address at
construction time.
*/
package protocol

import "rosbridge.dev/v1/protolib/diagnostic"

type Protocol interface {
	Connect()
	Close()
	IsAlive() bool
	Send(message []byte)

	// SetListener registers the observer for lifecycle and message events,
	// replacing any previous one. A nil listener unsubscribes.
	SetListener(listener Listener)

	// SetDiagnosticHook receives the failures the protocol swallows. Nil disables it.
	SetDiagnosticHook(hook diagnostic.Hook)
}

type Listener interface {
	OnConnected()
	OnReceive(message []byte)
	OnClosed()
}

// ListenerFuncs lets callers register plain functions. Nil fields are ignored.
type ListenerFuncs struct {
	Connected func()
	Receive   func(message []byte)
	Closed    func()
}

func (l ListenerFuncs) OnConnected() {
	if l.Connected != nil {
		l.Connected()
	}
}

func (l ListenerFuncs) OnReceive(message []byte) {
	if l.Receive != nil {
		l.Receive(message)
	}
}

func (l ListenerFuncs) OnClosed() {
	if l.Closed != nil {
		l.Closed()
	}
}
