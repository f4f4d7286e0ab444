// Package pconfig holds the tuning knobs of the player coordinator: values
// that shape ambient behavior (polling cadence, debug surface) but never
// playback semantics. It is loaded from YAML with environment overrides,
// validated fail-fast at construction, the same posture the teacher's
// config.Loader takes toward its own file.
package pconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DebugServerOptions configures the optional observability HTTP surface.
type DebugServerOptions struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Options are the tuning knobs for a Player instance.
type Options struct {
	// MessagePollInterval bounds how often the internal dispatcher checks
	// in-flight PlayerMessages for position-crossing. Too small wastes CPU,
	// too large delays delivery.
	MessagePollInterval time.Duration `yaml:"messagePollInterval"`

	// CommandQueueDepth is the buffer size of the app->internal command
	// channel wrapped by coordbus.
	CommandQueueDepth int `yaml:"commandQueueDepth"`

	// UpdateQueueDepth is the buffer size of the internal->app update
	// channel wrapped by coordbus.
	UpdateQueueDepth int `yaml:"updateQueueDepth"`

	DebugServer DebugServerOptions `yaml:"debugServer"`
}

// Default returns the out-of-the-box tuning, matching what player.New uses
// when no Options are supplied.
func Default() Options {
	return Options{
		MessagePollInterval: 50 * time.Millisecond,
		CommandQueueDepth:   32,
		UpdateQueueDepth:    32,
		DebugServer: DebugServerOptions{
			Enabled: false,
			Addr:    "127.0.0.1:9097",
		},
	}
}

// Validate fails fast on configuration that would make the coordinator
// misbehave rather than silently clamping it.
func (o Options) Validate() error {
	if o.MessagePollInterval <= 0 {
		return fmt.Errorf("pconfig: MessagePollInterval must be > 0, got %v", o.MessagePollInterval)
	}
	if o.CommandQueueDepth <= 0 {
		return fmt.Errorf("pconfig: CommandQueueDepth must be > 0, got %d", o.CommandQueueDepth)
	}
	if o.UpdateQueueDepth <= 0 {
		return fmt.Errorf("pconfig: UpdateQueueDepth must be > 0, got %d", o.UpdateQueueDepth)
	}
	if o.DebugServer.Enabled && o.DebugServer.Addr == "" {
		return fmt.Errorf("pconfig: DebugServer.Addr must be set when DebugServer.Enabled")
	}
	return nil
}

// Load reads Options from a YAML file, applying defaults for any zero
// fields and then environment overrides, mirroring the teacher's
// file-then-env precedence.
func Load(path string) (Options, error) {
	opts := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Options{}, fmt.Errorf("pconfig: read %s: %w", path, err)
		}
		var fileOpts Options
		if err := yaml.Unmarshal(data, &fileOpts); err != nil {
			return Options{}, fmt.Errorf("pconfig: parse %s: %w", path, err)
		}
		applyNonZero(&opts, fileOpts)
	}
	applyEnv(&opts)
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func applyNonZero(dst *Options, src Options) {
	if src.MessagePollInterval != 0 {
		dst.MessagePollInterval = src.MessagePollInterval
	}
	if src.CommandQueueDepth != 0 {
		dst.CommandQueueDepth = src.CommandQueueDepth
	}
	if src.UpdateQueueDepth != 0 {
		dst.UpdateQueueDepth = src.UpdateQueueDepth
	}
	if src.DebugServer.Addr != "" {
		dst.DebugServer.Addr = src.DebugServer.Addr
	}
	dst.DebugServer.Enabled = dst.DebugServer.Enabled || src.DebugServer.Enabled
}

func applyEnv(o *Options) {
	if v, ok := os.LookupEnv("PLAYERCORE_COMMAND_QUEUE_DEPTH"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			o.CommandQueueDepth = n
		}
	}
	if v, ok := os.LookupEnv("PLAYERCORE_UPDATE_QUEUE_DEPTH"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			o.UpdateQueueDepth = n
		}
	}
	if v, ok := os.LookupEnv("PLAYERCORE_DEBUG_ADDR"); ok && v != "" {
		o.DebugServer.Addr = v
		o.DebugServer.Enabled = true
	}
}
