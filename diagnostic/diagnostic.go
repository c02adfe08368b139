/*
Package diagnostic describes the transport failures the protocol adapter absorbs.
The adapter never returns these to its callers; instead it hands a Report to an
optional hook so whoever embeds the adapter can log or count them.
*/
package diagnostic

import (
	"time"
)

const CurrentVersion = "202610"

type Kind string

const (
	// the websocket handshake did not complete; the adapter stays unconnected
	HandshakeFailure Kind = "HandshakeFailure"

	// a queued frame could not be written to the connection
	SendFailure Kind = "SendFailure"

	// reading an inbound frame failed; no notification was raised for it
	ReceiveFailure Kind = "ReceiveFailure"

	// the normal closure frame could not be delivered to the peer
	CloseFailure Kind = "CloseFailure"
)

type Report struct {
	SchemaVersion string `json:"schemaVersion"`
	Timestamp     int64  `json:"timestamp"`
	Kind          Kind   `json:"kind"`
	Message       string `json:"message"`
	Target        string `json:"target"`
}

type Hook func(Report)

func New(kind Kind, target string, err error) Report {
	message := ""
	if err != nil {
		message = err.Error()
	}

	return Report{
		SchemaVersion: CurrentVersion,
		Timestamp:     time.Now().UTC().UnixMilli(),
		Kind:          kind,
		Message:       message,
		Target:        target,
	}
}
