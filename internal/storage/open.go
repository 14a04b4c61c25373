package storage

import (
	"fmt"
	"strings"

	logx "pollrt/pkg/logx"
)

// Open initializes the configured store. It returns (nil, nil) when storage
// is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "none", "off", "disabled":
		return nil, nil
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("%s: %w", driver, ErrPathRequired)
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.With(logx.String("storage", driver))

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
