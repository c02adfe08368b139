package websocket

import (
	"fmt"
	"net"
	"net/http"

	"rosbridge.dev/v1/protolib/logger"
	"rosbridge.dev/v1/protolib/tests/server"
)

// MockWebsocketServer is a local echo broker listening on a random port
type MockWebsocketServer struct {
	*server.WebsocketServer

	listener net.Listener

	Addr string
}

func NewMockWebsocketServer(logger *logger.Logger) *MockWebsocketServer {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		logger.Errorf("failed to setup listener: %s", err)
		return nil
	}

	mockServer := &MockWebsocketServer{
		WebsocketServer: server.NewWebsocketServer(logger),
		listener:        listener,
		Addr:            fmt.Sprintf("ws://127.0.0.1:%d", listener.Addr().(*net.TCPAddr).Port),
	}

	go func() {
		http.Serve(mockServer.listener, mockServer.WebsocketServer)
	}()

	return mockServer
}

func (m *MockWebsocketServer) Shutdown() {
	m.listener.Close()
	m.ForceClose()
}
