package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"

	"deptrim/internal/analysis"
	"deptrim/internal/config"
	"deptrim/internal/errors"
	"deptrim/internal/manifest"
	"deptrim/internal/paths"
	"deptrim/internal/slogutil"
)

// session is everything a command needs after flags are resolved.
type session struct {
	root     string
	cfg      *config.Config
	logger   *slog.Logger
	manifest *manifest.Manifest
	keep     *manifest.KeepList

	closeLog func()
}

func (s *session) Close() {
	if s.closeLog != nil {
		s.closeLog()
	}
}

// newSession resolves the project root, configuration, logger, manifest and
// keep list. Precedence for settings: flag > DEPTRIM_* env > config.json > default.
func newSession(stderr io.Writer) (*session, error) {
	if noColorFlag {
		color.NoColor = true
	}

	root, err := resolveRoot()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "cannot load configuration", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "invalid configuration", err)
	}

	s := &session{root: root, cfg: cfg}
	s.logger, s.closeLog, err = newLogger(stderr, cfg)
	if err != nil {
		return nil, err
	}

	manifestPath, err := paths.Resolve(root, cfg.Manifest.Path)
	if err != nil {
		s.Close()
		return nil, errors.New(errors.ConfigInvalid, "manifest.path must stay inside the project root", err).WithPath(cfg.Manifest.Path)
	}
	s.manifest, err = manifest.Load(manifestPath)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.keep, err = manifest.LoadKeepList(root, cfg.Manifest.KeepFile)
	if err != nil {
		s.Close()
		return nil, errors.New(errors.ConfigInvalid, "invalid keep list", err).WithPath(cfg.Manifest.KeepFile)
	}

	return s, nil
}

// analyze runs the classification over the session's project.
func (s *session) analyze(ctx context.Context) (*analysis.Report, error) {
	return analysis.NewAnalyzer(s.cfg, s.logger).Run(ctx, s.root, s.manifest.Declared())
}

// resolveRoot returns the absolute project root.
func resolveRoot() (string, error) {
	dir := dirFlag
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.New(errors.IOError, "cannot determine working directory", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.New(errors.IOError, "cannot resolve project root", err).WithPath(dir)
	}
	return abs, nil
}

// applyFlags overrides configuration with explicitly set flags.
func applyFlags(cfg *config.Config) {
	if noPrefixMatchFlag {
		cfg.Usage.PrefixMatch = false
	}
	if workersFlag > 0 {
		cfg.Scan.Workers = workersFlag
	}
	if packageManagerFlag != "" {
		cfg.Manifest.PackageManager = packageManagerFlag
	}
}

// newLogger builds the logger for a run: stderr, plus a debug-level file
// log when --log-file is set. -v and -q win over the configured level.
func newLogger(stderr io.Writer, cfg *config.Config) (*slog.Logger, func(), error) {
	level, _ := slogutil.ParseLevel(cfg.Logging.Level)
	if verboseFlag > 0 || quietFlag {
		level = slogutil.LevelFromVerbosity(verboseFlag, quietFlag)
	}

	handler := slogutil.NewHandler(stderr, slogutil.ParseFormat(cfg.Logging.Format), level)
	if logFileFlag == "" {
		return slog.New(handler), func() {}, nil
	}

	fileHandler, f, err := slogutil.OpenLogFile(logFileFlag, slog.LevelDebug)
	if err != nil {
		return nil, nil, errors.New(errors.IOError, "cannot open log file", err).WithPath(logFileFlag)
	}
	return slog.New(slogutil.Tee(handler, fileHandler)), func() { _ = f.Close() }, nil
}

// newContext returns a context canceled on interrupt.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// write prints output followed by a newline.
func write(w io.Writer, output string) {
	fmt.Fprintln(w, output)
}
