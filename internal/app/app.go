// Package app hosts an executor: it loads the config, spawns the configured
// jobs, runs the loop under a supervisor and journals completed tasks.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"pollrt/internal/config"
	"pollrt/internal/eventbus"
	"pollrt/internal/executor"
	"pollrt/internal/jobs"
	"pollrt/internal/runtime/supervisor"
	"pollrt/internal/storage"
	logx "pollrt/pkg/logx"
)

const (
	journalBuffer  = 1024
	journalTimeout = 2 * time.Second
)

type App struct {
	cfgm *config.Manager
	cfg  *config.Config

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	exec    *executor.Executor
	root    *executor.Spawner
	builder jobs.Builder

	sup *supervisor.Supervisor

	done        chan struct{} // closed when the executor loop returned
	journalDone chan struct{}
	runErr      error

	stopOnce sync.Once
	stopErr  error
}

// New loads cfgPath and builds every component without starting anything.
// Job definitions are compiled here so a bad step fails before start-up.
func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logs, log := logx.New(cfg.Logging.Logx())
	log = log.With(logx.String("comp", "app"))

	capacity, err := cfg.Executor.Capacity()
	if err != nil {
		return nil, err
	}
	history, err := cfg.Executor.History()
	if err != nil {
		return nil, err
	}

	builder := jobs.Builder{
		Log:     log.With(logx.String("comp", "jobs")),
		Limiter: jobs.NewLimiter(cfg.Rate),
	}
	if err := builder.Check(cfg.Jobs); err != nil {
		_ = logs.Close()
		return nil, err
	}

	var store storage.Store
	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		_ = logs.Close()
		return nil, err
	} else if enabled {
		if store, err = storage.Open(sc, log.With(logx.String("comp", "storage"))); err != nil {
			_ = logs.Close()
			return nil, err
		}
		log.Info("run journal enabled", logx.String("driver", sc.Driver), logx.String("path", sc.Path))
	}

	bus := eventbus.New()
	exec, root := executor.New(capacity,
		executor.WithLogger(log.With(logx.String("comp", "executor"))),
		executor.WithBus(bus),
		executor.WithHistorySize(history),
	)

	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	return &App{
		cfgm:        cfgm,
		cfg:         cfg,
		log:         log,
		logs:        logs,
		bus:         bus,
		store:       store,
		exec:        exec,
		root:        root,
		builder:     builder,
		done:        make(chan struct{}),
		journalDone: make(chan struct{}),
	}, nil
}

func (a *App) Config() *config.Config { return a.cfg }

func (a *App) Store() storage.Store { return a.store }

func (a *App) Snapshot() executor.Snapshot { return a.exec.Snapshot() }

// Done is closed when the executor loop has returned.
func (a *App) Done() <-chan struct{} { return a.done }

// Start runs the executor, spawns every job from its own goroutine with its
// own Spawner clone and then releases the root spawner, so the loop drains
// once the last job completes.
func (a *App) Start(ctx context.Context) error {
	if a.sup != nil {
		return errors.New("app already started")
	}
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return jobs.Builder{Limiter: jobs.NewLimiter(cfg.Rate)}.Check(cfg.Jobs)
	})

	a.startJournal()

	a.sup.Go("executor", func(c context.Context) error {
		defer close(a.done)
		err := a.exec.RunContext(c)
		a.runErr = err
		return err
	})

	if err := a.spawnJobs(); err != nil {
		return err
	}

	a.sup.GoRestart("config.watch", supervisor.RestartPolicy{MaxBackoff: 5 * time.Second}, a.cfgm.Watch)
	a.sup.Go("config.reload", a.reloadLoop)
	a.sup.Go("systemd.watchdog", a.watchdog)

	a.sdNotify(daemon.SdNotifyReady)
	a.log.Info("app started", logx.Int("jobs", len(a.cfg.Jobs)))
	return nil
}

func (a *App) spawnJobs() error {
	defer a.root.Close()

	var g errgroup.Group
	for _, j := range a.cfg.Jobs {
		sp := a.root.Clone()
		g.Go(func() error {
			defer sp.Close()
			c, err := a.builder.Build(j)
			if err != nil {
				return err
			}
			if _, err := sp.TrySpawn(j.Name, c); err != nil {
				return fmt.Errorf("spawn %q: %w", j.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// startJournal writes one run record per completed task. It ends after the
// executor's stop event, which the loop publishes after every completion.
func (a *App) startJournal() {
	if a.store == nil {
		close(a.journalDone)
		return
	}
	events, unsub := a.bus.SubscribeTypes(journalBuffer, executor.EventTaskCompleted, executor.EventExecutorStopped)
	a.sup.Go("journal", func(c context.Context) error {
		defer close(a.journalDone)
		defer unsub()
		for {
			select {
			case <-c.Done():
				return nil
			case ev, ok := <-events:
				if !ok || ev.Type == executor.EventExecutorStopped {
					return nil
				}
				te, ok := ev.Data.(executor.TaskEvent)
				if !ok {
					continue
				}
				rec := storage.RunRecord{
					TaskID:     uint64(te.ID),
					Name:       te.Name,
					Spawned:    te.Spawned,
					Finished:   ev.Time,
					Polls:      te.Polls,
					DurationMS: te.Duration.Milliseconds(),
				}
				if err := a.store.AppendRun(c, rec); err != nil {
					return fmt.Errorf("journal append: %w", err)
				}
			}
		}
	})
}

// reloadLoop applies logging changes live. Other sections only take effect
// on restart.
func (a *App) reloadLoop(c context.Context) error {
	sub := a.cfgm.Subscribe(4)
	defer a.cfgm.Unsubscribe(sub)

	last := a.cfgm.Get()
	for {
		select {
		case <-c.Done():
			return nil
		case next, ok := <-sub:
			if !ok {
				return nil
			}
			changed, fields, restart := config.SummarizeChange(last, next)
			last = next
			if len(changed) == 0 {
				a.log.Debug("config reload received; no effective changes")
				continue
			}
			a.logs.Apply(next.Logging.Logx())
			fields = append([]logx.Field{logx.String("changed", strings.Join(changed, ","))}, fields...)
			a.log.Info("config change applied", fields...)
			if restart {
				a.log.Warn("executor, storage, rate or jobs changed; restart required for them to take effect")
			}
		}
	}
}

// Wait blocks until the executor drained and the journal caught up, or ctx
// is done. It returns the first fatal error, if any.
func (a *App) Wait(ctx context.Context) error {
	select {
	case <-a.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	jctx, cancel := context.WithTimeout(ctx, journalTimeout)
	defer cancel()
	select {
	case <-a.journalDone:
	case <-jctx.Done():
		a.log.Warn("journal did not catch up before timeout")
	}

	if a.sup != nil {
		if err := a.sup.Err(); err != nil {
			return err
		}
	}
	return a.runErr
}

// Stop cancels every goroutine, waits for them and closes storage and
// logging. It is safe to call more than once.
func (a *App) Stop(ctx context.Context, reason StopReason) error {
	a.stopOnce.Do(func() {
		a.log.Info("stopping", logx.String("reason", string(reason)))
		a.sdNotify(daemon.SdNotifyStopping)

		a.root.Close()
		if a.sup != nil {
			if err := a.sup.Stop(ctx); err != nil {
				a.stopErr = err
				a.log.Warn("goroutines did not stop in time", logx.Err(err))
			}
		}
		if a.store != nil {
			if err := a.store.Close(); err != nil && a.stopErr == nil {
				a.stopErr = err
			}
		}
		snap := a.exec.Snapshot()
		a.log.Info("stopped",
			logx.Uint64("spawned", snap.Spawned),
			logx.Uint64("completed", snap.Completed),
			logx.Int("live", snap.Live),
		)
		_ = a.logs.Close()
	})
	return a.stopErr
}
