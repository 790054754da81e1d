package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/gofrs/flock"

	"writegeist/internal/api"
	"writegeist/internal/config"
	"writegeist/internal/ingest"
	"writegeist/internal/logging"
	"writegeist/internal/notifications"
	"writegeist/internal/project"
)

// Daemon enforces single-instance execution and owns the HTTP API server.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	svc      *project.Service
	pipeline *ingest.Pipeline
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock

	apiSrv  *apiServer
	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, svc *project.Service, pipeline *ingest.Pipeline, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || svc == nil || pipeline == nil {
		return nil, errors.New("daemon requires config, project service, and ingest pipeline")
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "writegeistd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		svc:      svc,
		pipeline: pipeline,
		notifier: notifier,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another writegeist daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	srv, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}
	if err := srv.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}
	d.apiSrv = srv

	d.running.Store(true)
	d.logger.Info("writegeist daemon started",
		logging.String("lock", d.lockPath),
		logging.String("bind", d.cfg.Paths.APIBind))
	return nil
}

// Stop shuts down the API server and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.apiSrv != nil {
		d.apiSrv.stop()
		d.apiSrv = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("writegeist daemon stopped")
}

// Addr returns the API server's listen address, empty until started.
func (d *Daemon) Addr() string {
	if d.apiSrv == nil {
		return ""
	}
	return d.apiSrv.addr()
}

// Status reports the daemon's runtime state.
func (d *Daemon) Status() api.DaemonStatus {
	return api.DaemonStatus{
		Running:         d.running.Load(),
		PID:             os.Getpid(),
		DatabasePath:    d.svc.DatabasePath(),
		LockFilePath:    d.lockPath,
		LastUpdated:     strconv.FormatInt(d.svc.LastUpdated(), 10),
		IngestAvailable: d.pipeline.Available(),
		Model:           d.cfg.LLM.Model,
	}
}
