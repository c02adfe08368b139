/*
Package probe drives a protocol adapter from a stream of lines: every line becomes
one frame and every received frame is printed. It is what the wsprobe command runs,
kept separate so it can be exercised against a mock protocol.
*/
package probe

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"rosbridge.dev/v1/protolib/diagnostic"
	"rosbridge.dev/v1/protolib/logger"
	"rosbridge.dev/v1/protolib/protocol"
)

const (
	initialPollInterval = 10 * time.Millisecond
	maxPollInterval     = 500 * time.Millisecond
)

type Options struct {
	// how long to wait for IsAlive after calling Connect, zero waits until ctx is done
	ConnectWait time.Duration

	// how long to keep listening for replies once the input is exhausted
	Linger time.Duration

	// print received frames as hex instead of raw bytes
	Hex bool
}

type Probe struct {
	logger  *logger.Logger
	proto   protocol.Protocol
	options Options

	outMu sync.Mutex
	out   io.Writer

	closeOnce sync.Once
	closed    chan struct{}
}

func New(logger *logger.Logger, proto protocol.Protocol, out io.Writer, options Options) *Probe {
	return &Probe{
		logger:  logger,
		proto:   proto,
		options: options,
		out:     out,
		closed:  make(chan struct{}),
	}
}

func (p *Probe) Run(ctx context.Context, in io.Reader) error {
	p.proto.SetListener(protocol.ListenerFuncs{
		Connected: func() { p.logger.Info("Connected") },
		Receive:   p.print,
		Closed:    p.markClosed,
	})
	p.proto.SetDiagnosticHook(p.logReport)

	p.proto.Connect()
	if err := p.waitForConnection(ctx); err != nil {
		return err
	}
	defer p.proto.Close()

	lines := make(chan []byte)
	go p.scan(ctx, in, lines)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.closed:
			return ErrConnectionClosed
		case line, ok := <-lines:
			if !ok {
				p.linger(ctx)
				return nil
			}
			p.proto.Send(line)
		}
	}
}

func (p *Probe) waitForConnection(ctx context.Context) error {
	params := backoff.NewExponentialBackOff()
	params.InitialInterval = initialPollInterval
	params.MaxInterval = maxPollInterval
	params.MaxElapsedTime = p.options.ConnectWait

	return backoff.Retry(func() error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return backoff.Permanent(ctxErr)
		} else if !p.proto.IsAlive() {
			return ErrNotConnected
		}
		return nil
	}, backoff.WithContext(params, ctx))
}

func (p *Probe) scan(ctx context.Context, in io.Reader, lines chan<- []byte) {
	defer close(lines)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil {
		p.logger.Errorf("stopped reading input: %s", err)
	}
}

func (p *Probe) linger(ctx context.Context) {
	if p.options.Linger <= 0 {
		return
	}

	select {
	case <-ctx.Done():
	case <-p.closed:
	case <-time.After(p.options.Linger):
	}
}

func (p *Probe) print(message []byte) {
	p.outMu.Lock()
	defer p.outMu.Unlock()

	if p.options.Hex {
		fmt.Fprintln(p.out, hex.EncodeToString(message))
	} else {
		fmt.Fprintln(p.out, string(message))
	}
}

func (p *Probe) markClosed() {
	p.closeOnce.Do(func() {
		p.logger.Info("Connection closed")
		close(p.closed)
	})
}

func (p *Probe) logReport(report diagnostic.Report) {
	p.logger.Debugf("%s talking to %s: %s", report.Kind, report.Target, report.Message)
}
