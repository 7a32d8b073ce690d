package backup

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/handybase/handy/pkg/cron"
	"github.com/handybase/handy/pkg/logger"
)

// Config controls how the dump is produced.
type Config struct {
	DatabaseURL string `env:"PG_CONN_URL,required"`
	PGDumpPath  string `env:"BACKUP_PG_DUMP_PATH" envDefault:"pg_dump"`
	TempDir     string `env:"BACKUP_TEMP_DIR"`
}

// Service produces one compressed dump per Run and delivers it through its
// transport.
type Service struct {
	cfg       Config
	transport Transport
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service's logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewService creates a backup service.
func NewService(cfg Config, transport Transport, opts ...ServiceOption) (*Service, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}
	s := &Service{
		cfg:       cfg,
		transport: transport,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run dumps the database to a gzipped temp file, delivers it and removes the
// temp file whatever the outcome.
func (s *Service) Run(ctx context.Context) error {
	name := fmt.Sprintf("backup_%s.sql.gz", time.Now().Format("2006_01_02_150405"))

	path, err := s.dump(ctx, name)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		return errors.Join(ErrTransportFailed, err)
	}
	defer f.Close()

	if err := s.transport.Store(ctx, name, f); err != nil {
		return errors.Join(ErrTransportFailed, err)
	}

	s.logger.Info("database backup delivered", slog.String("name", name))
	return nil
}

// dump runs pg_dump and gzips its output into a temp file, returning the
// file's path.
func (s *Service) dump(ctx context.Context, name string) (string, error) {
	dir := s.cfg.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", errors.Join(ErrDumpFailed, err)
	}

	gz := gzip.NewWriter(out)

	var stderr strings.Builder
	cmd := exec.CommandContext(ctx, s.cfg.PGDumpPath, "--no-owner", "--dbname", s.cfg.DatabaseURL)
	cmd.Stdout = gz
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if err := gz.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if err := out.Close(); err != nil && runErr == nil {
		runErr = err
	}

	if runErr != nil {
		os.Remove(path)
		s.logger.Error("pg_dump failed",
			slog.String("stderr", stderr.String()),
			logger.Error(runErr))
		return "", errors.Join(ErrDumpFailed, runErr)
	}
	return path, nil
}

// CronTask wraps the service in a schedulable task.
func (s *Service) CronTask(freq time.Duration) cron.Task {
	return cron.Task{
		Name: "backupDatabase",
		Freq: freq,
		Run:  s.Run,
	}
}
