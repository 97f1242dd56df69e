// Package daemon runs the local execution loop: it watches an inbox
// directory for execution payloads dropped by the triage or approval
// stage and runs each one through the remediation pipeline. It is the
// local stand-in for the platform's async function transport and keeps
// the same at-least-once contract.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentinelops/macieguard/internal/model"
)

// Runner executes one payload end to end.
type Runner interface {
	Execute(ctx context.Context, p *model.ExecutionPayload) error
}

// Config holds daemon configuration.
type Config struct {
	Inbox        string
	Poll         bool
	PollInterval time.Duration
	Runner       Runner
	Logger       zerolog.Logger
}

// Daemon watches the inbox and executes payloads.
type Daemon struct {
	cfg Config
}

// New creates a daemon with validated configuration.
func New(cfg Config) (*Daemon, error) {
	if cfg.Inbox == "" {
		return nil, fmt.Errorf("inbox directory is required")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = pollDefault
	}
	return &Daemon{cfg: cfg}, nil
}

// Run starts the daemon. Blocks until ctx is cancelled. On startup any
// payloads already sitting in the inbox are processed first.
func (d *Daemon) Run(ctx context.Context) error {
	if err := os.MkdirAll(d.cfg.Inbox, 0750); err != nil {
		return fmt.Errorf("ensure inbox: %w", err)
	}

	handler := func(path string) { d.process(ctx, path) }

	if err := ScanExisting(d.cfg.Inbox, handler); err != nil {
		return fmt.Errorf("scan existing: %w", err)
	}

	if d.cfg.Poll {
		return NewPollWatcher(d.cfg.Inbox, handler, d.cfg.PollInterval).Run(ctx)
	}
	return NewInboxWatcher(d.cfg.Inbox, handler).Run(ctx)
}

// process handles one payload file. Unreadable files are set aside
// with a .rejected suffix so a bad file cannot wedge the inbox; a
// payload that executed, successfully or not, is removed because its
// outcome has already been reported and nothing retries here.
func (d *Daemon) process(ctx context.Context, path string) {
	log := d.cfg.Logger.With().Str("file", filepath.Base(path)).Logger()

	// Reject symlinks before reading so an inbox entry cannot point the
	// daemon at an arbitrary file on disk.
	fi, err := os.Lstat(path)
	if err != nil {
		log.Error().Err(err).Msg("stat payload file")
		return
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		log.Warn().Msg("rejected symlinked payload")
		d.reject(path, log)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Msg("read payload file")
		return
	}

	var p model.ExecutionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Msg("unparseable payload")
		d.reject(path, log)
		return
	}
	if err := p.Validate(); err != nil {
		log.Warn().Err(err).Msg("invalid payload")
		d.reject(path, log)
		return
	}

	if err := d.cfg.Runner.Execute(ctx, &p); err != nil {
		log.Error().
			Err(err).
			Str("invocation_id", p.InvocationID).
			Str("finding_id", p.Finding.ID).
			Msg("execution failed")
	}

	if err := os.Remove(path); err != nil {
		log.Error().Err(err).Msg("remove processed payload")
	}
}

// reject sets a bad file aside for inspection.
func (d *Daemon) reject(path string, log zerolog.Logger) {
	if err := os.Rename(path, path+".rejected"); err != nil {
		log.Error().Err(err).Msg("set aside rejected payload")
	}
}
