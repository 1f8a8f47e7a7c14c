package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Role tells one executable whether it is the interactive launcher or the
// detached worker it spawned.
type Role string

const (
	RoleLauncher Role = "launcher"
	RoleWorker   Role = "worker"
)

// RoleEnv carries the role across the spawn boundary.
const RoleEnv = "KEEP_AWAKE_ROLE"

const (
	DefaultRequestTimeout = 5 * time.Second
	DefaultReplyTimeout   = 5 * time.Second
)

type Config struct {
	RuntimeDir     string        `yaml:"runtime_dir"`
	LogLevel       string        `yaml:"log_level"`
	LogFile        string        `yaml:"log_file"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ReplyTimeout   time.Duration `yaml:"reply_timeout"`
	BusyTimeout    time.Duration `yaml:"busy_timeout"`

	Role Role `yaml:"-"`
}

// Flags are the command line overrides.
type Flags struct {
	RuntimeDir string
	LogLevel   string
	LogFile    string
}

// Load resolves configuration from flags > env > config file.
func Load(flags Flags) (*Config, error) {
	cfg := &Config{}

	// 1. Config file as base
	if cfgPath := configFilePath(); cfgPath != "" {
		data, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// 2. Environment variables override config file
	if v := os.Getenv("KEEP_AWAKE_RUNTIME_DIR"); v != "" {
		cfg.RuntimeDir = v
	}
	if v := os.Getenv("KEEP_AWAKE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("KEEP_AWAKE_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	for env, dst := range map[string]*time.Duration{
		"KEEP_AWAKE_REQUEST_TIMEOUT": &cfg.RequestTimeout,
		"KEEP_AWAKE_REPLY_TIMEOUT":   &cfg.ReplyTimeout,
		"KEEP_AWAKE_BUSY_TIMEOUT":    &cfg.BusyTimeout,
	} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", env, err)
		}
		*dst = d
	}

	// 3. CLI flags override everything
	if flags.RuntimeDir != "" {
		cfg.RuntimeDir = flags.RuntimeDir
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	if flags.LogFile != "" {
		cfg.LogFile = flags.LogFile
	}

	cfg.Role = RoleLauncher
	if Role(os.Getenv(RoleEnv)) == RoleWorker {
		cfg.Role = RoleWorker
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = DefaultReplyTimeout
	}
	if cfg.BusyTimeout < 0 {
		return nil, fmt.Errorf("busy_timeout must not be negative")
	}

	if cfg.RuntimeDir != "" {
		abs, err := filepath.Abs(cfg.RuntimeDir)
		if err != nil {
			return nil, fmt.Errorf("invalid runtime directory: %w", err)
		}
		cfg.RuntimeDir = abs
	}
	if cfg.LogFile != "" {
		abs, err := filepath.Abs(cfg.LogFile)
		if err != nil {
			return nil, fmt.Errorf("invalid log file: %w", err)
		}
		cfg.LogFile = abs
	}

	return cfg, nil
}

// ParseLevel maps a level name such as "debug" or "WARN" to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// WorkerEnv returns env extended with the marker that makes a spawned copy
// of this executable run as the worker.
func WorkerEnv(env []string) []string {
	out := make([]string, 0, len(env)+1)
	prefix := RoleEnv + "="
	for _, kv := range env {
		if !strings.HasPrefix(kv, prefix) {
			out = append(out, kv)
		}
	}
	return append(out, prefix+string(RoleWorker))
}

func configFilePath() string {
	if p := os.Getenv("KEEP_AWAKE_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".keep-awake", "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}
