package config

import (
	"reflect"
	"strings"

	logx "pollrt/pkg/logx"
)

// SummarizeChange lists the sections that differ between two configs and
// returns log fields describing the new values. Only the logging section can
// be applied live; restart reports whether any other section changed.
func SummarizeChange(oldCfg, newCfg *Config) (changed []string, fields []logx.Field, restart bool) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		fields = append(fields,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if oldCfg.Executor != newCfg.Executor {
		changed = append(changed, "executor")
		restart = true
		fields = append(fields,
			logx.Int64("executor.queue_size", newCfg.Executor.QueueSize),
			logx.Int64("executor.history_size", newCfg.Executor.HistorySize),
		)
	}

	if !storageEqual(oldCfg.Storage, newCfg.Storage) {
		changed = append(changed, "storage")
		restart = true
		if newCfg.Storage != nil {
			fields = append(fields, logx.String("storage.driver", strings.TrimSpace(newCfg.Storage.Driver)))
		}
	}

	if oldCfg.Rate != newCfg.Rate {
		changed = append(changed, "rate")
		restart = true
	}

	if !reflect.DeepEqual(oldCfg.Jobs, newCfg.Jobs) {
		changed = append(changed, "jobs")
		restart = true
		fields = append(fields, logx.Int("jobs.count", len(newCfg.Jobs)))
	}
	return changed, fields, restart
}

func storageEqual(a, b *StorageConfig) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
