package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"

	"gleaner/internal/api"
	"gleaner/internal/catalog"
	"gleaner/internal/config"
	"gleaner/internal/discovery"
	"gleaner/internal/discovery/sources"
	"gleaner/internal/ledger"
	"gleaner/internal/logging"
	"gleaner/internal/notifications"
	"gleaner/internal/review"
	"gleaner/internal/services"
)

const lockFileName = "gleanerd.lock"

// Daemon owns the long-running services: the HTTP API, the cron scheduler for
// automatic discovery runs, and the shared database handle. Exactly one
// instance runs per data directory.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *ledger.Store
	catalog   catalog.Service
	discovery *discovery.Service
	review    *review.Service
	notifier  notifications.Service
	grants    *api.GrantService
	runs      *api.RunService

	lockPath  string
	lock      *flock.Flock
	scheduler *cron.Cron
	api       *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status reports daemon runtime information.
type Status struct {
	Running          bool
	DatabasePath     string
	LockFilePath     string
	APIBind          string
	ScheduleEnabled  bool
	ScheduleCron     string
	RegisteredSource []string
}

// New wires the daemon from an open ledger store. The registry is built from
// configuration; pass extra adapters through registry when testing.
func New(cfg *config.Config, store *ledger.Store, registry *sources.Registry, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}
	if registry == nil {
		var err error
		registry, err = discovery.DefaultRegistry(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("build source registry: %w", err)
		}
	}

	cat := catalog.NewSQLiteStore(store.DB())
	notifier := notifications.NewService(cfg)

	d := &Daemon{
		cfg:       cfg,
		logger:    logging.WithComponent(logger, "daemon"),
		store:     store,
		catalog:   cat,
		discovery: discovery.NewService(cfg, store, cat, registry, notifier, logger),
		review:    review.NewService(store, cat, logger),
		notifier:  notifier,
		grants:    api.NewGrantService(store, cfg),
		runs:      api.NewRunService(store),
		lockPath:  filepath.Join(cfg.Paths.DataDir, lockFileName),
	}
	d.lock = flock.New(d.lockPath)

	server, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = server
	return d, nil
}

// Start acquires the daemon lock, starts the API server, and begins the cron
// schedule when enabled.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another gleaner daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}

	if err := d.startSchedule(); err != nil {
		d.api.stop()
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("gleaner daemon started",
		logging.String("lock", d.lockPath),
		logging.Bool("schedule", d.cfg.Schedule.Enabled))
	return nil
}

func (d *Daemon) startSchedule() error {
	if !d.cfg.Schedule.Enabled {
		return nil
	}
	spec := d.cfg.Schedule.Cron
	scheduler := cron.New()
	_, err := scheduler.AddFunc(spec, d.runScheduled)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "daemon", "schedule",
			fmt.Sprintf("invalid cron expression %q", spec), err)
	}
	scheduler.Start()
	d.scheduler = scheduler
	d.logger.Info("discovery schedule active", logging.String("cron", spec))
	return nil
}

// runScheduled is the cron entry point. A run already in progress surfaces as
// a conflict and is skipped quietly; real failures trigger a notification.
func (d *Daemon) runScheduled() {
	ctx := d.ctx
	if ctx == nil {
		return
	}
	d.logger.Info("scheduled discovery run starting")
	run, err := d.discovery.Run(ctx, discovery.RunOptions{
		Sources: d.cfg.Schedule.Sources,
		Notify:  d.cfg.Schedule.Notify,
	})
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			d.logger.Warn("scheduled run skipped, another run in progress")
			return
		}
		d.logger.Error("scheduled discovery run failed", logging.Error(err))
		if run != nil {
			if notifyErr := d.notifier.NotifyRunFailed(ctx, run); notifyErr != nil {
				d.logger.Warn("send failure notification", logging.Error(notifyErr))
			}
		}
	}
}

// Stop halts the scheduler and API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.scheduler != nil {
		stopCtx := d.scheduler.Stop()
		<-stopCtx.Done()
		d.scheduler = nil
	}
	d.api.stop()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("gleaner daemon stopped")
}

// Close stops the daemon and closes the database.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// TriggerRun starts a discovery run on behalf of an API or CLI caller.
func (d *Daemon) TriggerRun(ctx context.Context, opts discovery.RunOptions) (*ledger.Run, error) {
	return d.discovery.Run(ctx, opts)
}

// TestNotification sends a test push through the configured channel.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg.Notifications.NtfyTopic == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:          d.running.Load(),
		DatabasePath:     d.store.Path(),
		LockFilePath:     d.lockPath,
		APIBind:          d.cfg.Paths.APIBind,
		ScheduleEnabled:  d.cfg.Schedule.Enabled,
		ScheduleCron:     d.cfg.Schedule.Cron,
		RegisteredSource: d.discoverySourceTypes(),
	}
}

func (d *Daemon) discoverySourceTypes() []string {
	if d.discovery == nil {
		return nil
	}
	return d.discovery.SourceTypes()
}

// APIAddr reports the bound API address, empty until Start succeeds.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}
