package manifest

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"deptrim/internal/errors"
)

// Remover uninstalls dependencies and prunes them from the manifest.
type Remover struct {
	pm     PackageManager
	logger *slog.Logger
}

// NewRemover creates a remover backed by pm.
func NewRemover(pm PackageManager, logger *slog.Logger) *Remover {
	return &Remover{pm: pm, logger: logger}
}

// Remove uninstalls names, then drops any that are still listed in the
// manifest at path. The manifest is only edited after the package manager
// succeeded; on failure it is left as it was and a RemovalError returned.
// Names the manifest does not declare are ignored.
func (r *Remover) Remove(ctx context.Context, path string, names []string) ([]string, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}

	var targets []string
	for _, name := range names {
		if m.Has(name) && !slices.Contains(targets, name) {
			targets = append(targets, name)
		}
	}
	if len(targets) == 0 {
		r.logger.Info("Nothing to remove")
		return nil, nil
	}

	dir := filepath.Dir(path)
	r.logger.Info("Uninstalling dependencies", "manager", r.pm.Name(), "packages", targets)
	if err := r.pm.Uninstall(ctx, dir, targets); err != nil {
		r.logger.Error("Uninstall failed; manifest left untouched", "error", err)
		return nil, errors.New(errors.RemovalError, r.pm.Name()+" could not remove "+strings.Join(targets, ", "), err).WithPath(path)
	}

	// Package managers normally rewrite the manifest themselves; reload and
	// prune whatever they left behind.
	after, err := Load(path)
	if err != nil {
		return nil, err
	}
	var leftover []string
	for _, name := range targets {
		if after.Has(name) {
			leftover = append(leftover, name)
		}
	}
	if len(leftover) > 0 {
		r.logger.Debug("Pruning manifest entries", "packages", leftover)
		if err := after.Save(leftover); err != nil {
			return nil, err
		}
	}

	return targets, nil
}
