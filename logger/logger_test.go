package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	Context("Creation", func() {
		When("No writers and no file are given", func() {
			It("fails", func() {
				_, err := New(&Config{})
				Expect(err).To(HaveOccurred())
			})
		})

		When("A nil config is given", func() {
			It("fails", func() {
				_, err := New(nil)
				Expect(err).To(HaveOccurred())
			})
		})

		When("A file path is given", func() {
			var path string

			BeforeEach(func() {
				path = filepath.Join(GinkgoT().TempDir(), "logs", "protolib.log")
				log, err := New(&Config{FilePath: path})
				Expect(err).ToNot(HaveOccurred())

				log.Info("hello file")
			})

			It("writes to the file", func() {
				contents, err := os.ReadFile(path)
				Expect(err).ToNot(HaveOccurred())
				Expect(string(contents)).To(ContainSubstring("hello file"))
			})
		})
	})

	Context("Levels", func() {
		var buf *bytes.Buffer
		var log *Logger

		BeforeEach(func() {
			buf = &bytes.Buffer{}
			var err error
			log, err = New(&Config{
				ConsoleWriters: []io.Writer{buf},
				LogLevel:       ErrorLevel,
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("drops messages below the configured level", func() {
			log.Infof("not %s", "shown")
			Expect(buf.String()).To(BeEmpty())
		})

		It("keeps messages at the configured level", func() {
			log.Errorf("shown %d", 1)
			Expect(buf.String()).To(ContainSubstring("shown 1"))
		})

		It("keeps trace messages in the mock logger", func() {
			trace := &bytes.Buffer{}
			MockLogger(trace).Tracef("Sent %d byte frame", 5)
			Expect(trace.String()).To(ContainSubstring("Sent 5 byte frame"))
		})

		It("tags component loggers", func() {
			log.GetComponentLogger("Websocket").Errorf("boom")
			Expect(buf.String()).To(ContainSubstring("Websocket"))
		})
	})

	Context("Parsing levels", func() {
		It("understands known names regardless of case", func() {
			Expect(ToLogLevel("INFO")).To(Equal(InfoLevel))
			Expect(ToLogLevel(" error ")).To(Equal(ErrorLevel))
			Expect(ToLogLevel("disabled")).To(Equal(DisabledLevel))
			Expect(ToLogLevel("trace")).To(Equal(TraceLevel))
		})

		It("falls back to debug", func() {
			Expect(ToLogLevel("chatty")).To(Equal(DebugLevel))
		})
	})
})
