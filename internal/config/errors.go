package config

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrTrailingData      = errors.New("invalid config: trailing data")
	ErrInvalid           = errors.New("invalid config")
	ErrWatchStopped      = errors.New("config watcher stopped")
)

func fieldError(path, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, path, msg)
}
