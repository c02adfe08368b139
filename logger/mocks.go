package logger

import (
	"io"
)

// MockLogger logs everything, down to trace, to the given writer. Handy with GinkgoWriter.
func MockLogger(writer io.Writer) *Logger {
	config := &Config{
		ConsoleWriters: []io.Writer{writer},
		LogLevel:       TraceLevel,
	}

	if logger, err := New(config); err == nil {
		return logger
	}
	return nil
}
