/*
Package config loads the settings the probe needs to reach a rosbridge broker. Values
come from a yaml file and from environment variables, and the environment variable
always wins, so a running process and the file it was started from never disagree
about which one applies. The file is read under a shared lock and written under an
exclusive one so several processes can share it.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

const (
	UrlEnvVar         = "PROTOLIB_URL"
	LogLevelEnvVar    = "PROTOLIB_LOG_LEVEL"
	LogFileEnvVar     = "PROTOLIB_LOG_FILE"
	ConnectWaitEnvVar = "PROTOLIB_CONNECT_WAIT"

	DefaultLogLevel    = "info"
	DefaultConnectWait = 10 * time.Second

	lockRetryDelay = 50 * time.Millisecond
)

type Config struct {
	Url         string `yaml:"url"`
	LogLevel    string `yaml:"logLevel,omitempty"`
	LogFilePath string `yaml:"logFilePath,omitempty"`
	ConnectWait string `yaml:"connectWait,omitempty"`
}

func Default() *Config {
	return &Config{
		LogLevel:    DefaultLogLevel,
		ConnectWait: DefaultConnectWait.String(),
	}
}

// Override is applied after the file and the environment, e.g. for command line flags
type Override func(*Config)

// Load reads path, if given, then applies environment overrides and validates the result
func Load(ctx context.Context, path string, overrides ...Override) (*Config, error) {
	config := Default()

	if path != "" {
		if err := config.readFile(ctx, path); err != nil {
			return nil, err
		}
	}

	config.applyEnv()

	for _, override := range overrides {
		override(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Write stores the config at path, creating parent directories as needed
func Write(ctx context.Context, path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return &FileError{Path: path, InnerErr: err}
	}

	lock := flock.New(lockPath(path))
	if _, err := lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return &FileError{Path: path, InnerErr: fmt.Errorf("failed to acquire lock: %w", err)}
	}
	defer lock.Unlock()

	bytes, err := yaml.Marshal(config)
	if err != nil {
		return &ValidationError{InnerErr: err}
	}

	if err := os.WriteFile(path, bytes, 0644); err != nil {
		return &FileError{Path: path, InnerErr: err}
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Url == "" {
		return &KeyError{Key: "url"}
	}

	if _, err := c.ConnectWaitDuration(); err != nil {
		return &ValidationError{InnerErr: fmt.Errorf("connectWait: %w", err)}
	}

	return nil
}

func (c *Config) ConnectWaitDuration() (time.Duration, error) {
	if c.ConnectWait == "" {
		return DefaultConnectWait, nil
	}
	return time.ParseDuration(c.ConnectWait)
}

func (c *Config) readFile(ctx context.Context, path string) error {
	// a missing file just means everything comes from defaults and the environment
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return &FileError{Path: path, InnerErr: err}
	}

	lock := flock.New(lockPath(path))
	if _, err := lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return &FileError{Path: path, InnerErr: fmt.Errorf("failed to acquire lock: %w", err)}
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return &FileError{Path: path, InnerErr: err}
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return &ValidationError{InnerErr: err}
	}

	return nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(UrlEnvVar); ok {
		c.Url = v
	}
	if v, ok := os.LookupEnv(LogLevelEnvVar); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(LogFileEnvVar); ok {
		c.LogFilePath = v
	}
	if v, ok := os.LookupEnv(ConnectWaitEnvVar); ok {
		c.ConnectWait = v
	}
}

func lockPath(path string) string {
	return path + ".lock"
}
