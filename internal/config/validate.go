package config

import (
	"fmt"
	"strings"

	logx "pollrt/pkg/logx"
)

var knownLevels = map[string]bool{"": true, "trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}

// Validate checks the structural rules that do not depend on other
// packages. Job step syntax is checked by the job builder.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalid)
	}
	if _, err := cfg.Executor.Capacity(); err != nil {
		return err
	}
	if _, err := cfg.Executor.History(); err != nil {
		return err
	}
	if !knownLevels[strings.ToLower(strings.TrimSpace(cfg.Logging.Level))] {
		return fieldError("logging.level", fmt.Sprintf("unknown level %q", cfg.Logging.Level))
	}
	if s := cfg.Storage; s != nil {
		switch strings.ToLower(strings.TrimSpace(s.Driver)) {
		case "", "none", "off", "disabled", "file", "sqlite":
		default:
			return fieldError("storage.driver", fmt.Sprintf("unknown driver %q", s.Driver))
		}
		if _, err := ParseDurationField("storage.busy_timeout", s.BusyTimeout); err != nil {
			return err
		}
	}
	if cfg.Rate.PerSec < 0 {
		return fieldError("rate.per_sec", "must be >= 0")
	}
	if cfg.Rate.PerSec > 0 && cfg.Rate.Burst < 1 {
		return fieldError("rate.burst", "must be >= 1 when rate.per_sec is set")
	}

	seen := make(map[string]bool, len(cfg.Jobs))
	for i, j := range cfg.Jobs {
		name := strings.TrimSpace(j.Name)
		path := fmt.Sprintf("jobs[%d]", i)
		if name == "" {
			return fieldError(path+".name", "required")
		}
		if seen[name] {
			return fieldError(path+".name", fmt.Sprintf("duplicate job %q", name))
		}
		seen[name] = true
		if len(j.Steps) == 0 {
			return fieldError(path+".steps", "at least one step required")
		}
		if j.Repeat < -1 {
			return fieldError(path+".repeat", "must be >= -1")
		}
	}
	return nil
}

// Logx converts the logging section for logx.New / Service.Apply.
func (l LoggingConfig) Logx() logx.Config {
	return logx.Config{
		Level:   l.Level,
		Console: l.Console,
		File:    logx.FileConfig{Enabled: l.File.Enabled, Path: l.File.Path},
	}
}
