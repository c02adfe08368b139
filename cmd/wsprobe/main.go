package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rosbridge.dev/v1/protolib/config"
	"rosbridge.dev/v1/protolib/logger"
	"rosbridge.dev/v1/protolib/probe"
	"rosbridge.dev/v1/protolib/protocol/websocket"
)

var (
	configPath string
	targetUrl  string
	logLevel   string
	hexOutput  bool
	linger     time.Duration
	writeInit  bool
)

func main() {
	flag.StringVar(&configPath, "config", "", "Path to a yaml config file")
	flag.StringVar(&targetUrl, "url", "", "ws:// or wss:// address of the rosbridge server, overrides the config")
	flag.StringVar(&logLevel, "logLevel", "", "The log level to use -- must be one of 'trace', 'debug', 'info', 'error', 'disabled'")
	flag.BoolVar(&hexOutput, "hex", false, "Print received frames as hex")
	flag.DurationVar(&linger, "linger", time.Second, "How long to wait for replies after the last input line")
	flag.BoolVar(&writeInit, "init", false, "Write the resolved config to -config and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "wsprobe: %s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(ctx, configPath, func(c *config.Config) {
		if targetUrl != "" {
			c.Url = targetUrl
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}
	})
	if err != nil {
		return err
	}

	if writeInit {
		if configPath == "" {
			return errors.New("-init needs -config")
		}
		return config.Write(ctx, configPath, cfg)
	}

	log, err := logger.New(&logger.Config{
		ConsoleWriters: []io.Writer{os.Stderr},
		FilePath:       cfg.LogFilePath,
		LogLevel:       logger.ToLogLevel(cfg.LogLevel),
	})
	if err != nil {
		return err
	}

	ws, err := websocket.New(log.GetComponentLogger("Websocket"), cfg.Url)
	if err != nil {
		return err
	}

	connectWait, _ := cfg.ConnectWaitDuration()

	p := probe.New(log.GetComponentLogger("Probe"), ws, out, probe.Options{
		ConnectWait: connectWait,
		Linger:      linger,
		Hex:         hexOutput,
	})

	if err := p.Run(ctx, in); err != nil {
		return err
	}

	stats := ws.Stats()
	log.Infof("Throughput with %s, inbound: %s, outbound: %s", ws.Target(), stats.Inbound, stats.Outbound)
	return nil
}
