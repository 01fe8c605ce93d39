package manifest

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=package_manager.go -destination=mocks/package_manager.gen.go -package=mocks

// PackageManager uninstalls packages from a project.
type PackageManager interface {
	// Name is the executable, e.g. "npm"
	Name() string
	// Uninstall removes names from the project in dir
	Uninstall(ctx context.Context, dir string, names []string) error
}

// uninstallArgs are the subcommands that remove packages, per manager.
var uninstallArgs = map[string][]string{
	"npm":  {"uninstall"},
	"yarn": {"remove"},
	"pnpm": {"remove"},
}

// Command runs a package manager executable.
type Command struct {
	name string
	args []string
}

// NewCommand returns the runner for npm, yarn or pnpm.
func NewCommand(name string) (*Command, error) {
	args, ok := uninstallArgs[name]
	if !ok {
		return nil, fmt.Errorf("unsupported package manager %q (want npm, yarn or pnpm)", name)
	}
	return &Command{name: name, args: args}, nil
}

// Name returns the executable name.
func (c *Command) Name() string {
	return c.name
}

// CommandLine returns the command that Uninstall runs, for display.
func (c *Command) CommandLine(names []string) string {
	return strings.Join(c.argv(names), " ")
}

func (c *Command) argv(names []string) []string {
	argv := append([]string{c.name}, c.args...)
	return append(argv, names...)
}

// Uninstall runs the uninstall subcommand in dir. The combined output is
// attached to the error when the command fails.
func (c *Command) Uninstall(ctx context.Context, dir string, names []string) error {
	if len(names) == 0 {
		return nil
	}

	if _, err := exec.LookPath(c.name); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", c.name, err)
	}

	argv := c.argv(names)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("%s exited with code %d: %s", c.CommandLine(names), exitErr.ExitCode(), strings.TrimSpace(string(output)))
		}
		return fmt.Errorf("%s failed: %w", c.CommandLine(names), err)
	}
	return nil
}
