package scheduler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/weighbridge/internal/config"
	"github.com/mamadbah2/weighbridge/internal/domain/models"
	"github.com/mamadbah2/weighbridge/internal/service/reporting"
)

// RecordSource provides the snapshot to back up.
type RecordSource interface {
	Records() []models.Record
}

// Scheduler writes periodic xlsx backups of the record table.
type Scheduler struct {
	cron     *cron.Cron
	source   RecordSource
	reporter *reporting.Service
	cfg      config.BackupConfig
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance in the configured timezone.
func NewScheduler(cfg config.BackupConfig, loc *time.Location, source RecordSource, reporter *reporting.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		source:   source,
		reporter: reporter,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the backup job and starts the cron loop. It is a no-op
// when no schedule is configured.
func (s *Scheduler) Start() error {
	if s.cfg.CronSchedule == "" {
		s.logger.Info("backup schedule not configured, scheduler idle")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runBackup); err != nil {
		return fmt.Errorf("schedule backup %q: %w", s.cfg.CronSchedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule), zap.String("dir", s.cfg.Dir))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running backup to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runBackup() {
	path, err := s.Backup()
	if err != nil {
		s.logger.Error("backup failed", zap.Error(err))
		return
	}
	s.logger.Info("backup written", zap.String("path", path))
}

// Backup writes one snapshot immediately and returns its path.
func (s *Scheduler) Backup() (path string, err error) {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	path = filepath.Join(s.cfg.Dir, s.reporter.Filename("xlsx"))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err := s.reporter.WriteXLSX(f, s.source.Records()); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}
