package protocol

import (
	"rosbridge.dev/v1/protolib/diagnostic"

	"github.com/stretchr/testify/mock"
)

type MockProtocol struct {
	mock.Mock
}

func (m *MockProtocol) Connect() {
	m.Called()
}

func (m *MockProtocol) Close() {
	m.Called()
}

func (m *MockProtocol) IsAlive() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockProtocol) Send(message []byte) {
	m.Called(message)
}

func (m *MockProtocol) SetListener(listener Listener) {
	m.Called(listener)
}

func (m *MockProtocol) SetDiagnosticHook(hook diagnostic.Hook) {
	m.Called(hook)
}

type MockListener struct {
	mock.Mock
}

func (m *MockListener) OnConnected() {
	m.Called()
}

func (m *MockListener) OnReceive(message []byte) {
	m.Called(message)
}

func (m *MockListener) OnClosed() {
	m.Called()
}
