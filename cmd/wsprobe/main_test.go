package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"rosbridge.dev/v1/protolib/config"
	"rosbridge.dev/v1/protolib/logger"
	"rosbridge.dev/v1/protolib/protocol/websocket"
)

func TestWsprobe(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Wsprobe Suite")
}

var _ = Describe("Wsprobe", func() {
	logger := logger.MockLogger(GinkgoWriter)
	ctx := context.Background()

	BeforeEach(func() {
		configPath, targetUrl, logLevel = "", "", "disabled"
		hexOutput, writeInit = false, false
		linger = 200 * time.Millisecond
	})

	When("Talking to an echo server", func() {
		var server *websocket.MockWebsocketServer

		BeforeEach(func() {
			server = websocket.NewMockWebsocketServer(logger)
			targetUrl = server.Addr
		})

		AfterEach(func() {
			server.Shutdown()
		})

		It("prints every echoed line", func() {
			out := &bytes.Buffer{}
			Expect(run(ctx, strings.NewReader("{\"op\":\"publish\"}\n"), out)).To(Succeed())
			Expect(out.String()).To(Equal("{\"op\":\"publish\"}\n"))
		})
	})

	When("The url is invalid", func() {
		It("fails before connecting", func() {
			targetUrl = "http://not-a-websocket"

			err := run(ctx, strings.NewReader(""), &bytes.Buffer{})
			Expect(err).To(MatchError(websocket.ErrInvalidAddress))
		})
	})

	When("Writing the config", func() {
		It("stores the resolved values", func() {
			configPath = filepath.Join(GinkgoT().TempDir(), "wsprobe.yml")
			targetUrl = "ws://localhost:9090"
			writeInit = true

			Expect(run(ctx, strings.NewReader(""), &bytes.Buffer{})).To(Succeed())

			cfg, err := config.Load(ctx, configPath)
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Url).To(Equal("ws://localhost:9090"))
			Expect(cfg.LogLevel).To(Equal("disabled"))
		})
	})
})
