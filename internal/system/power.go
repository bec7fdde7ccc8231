// Package system holds the host power collaborators.
package system

import (
	"context"
	"fmt"
	"os/exec"

	"weather_station/internal/logger"
)

// Power reboots or halts the host.
type Power interface {
	Reboot(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// runner executes an OS command; swapped in tests.
type runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", name, err, out)
	}
	return nil
}

// ExecPower runs reboot / shutdown -h now. In dry-run mode it only logs.
type ExecPower struct {
	dryRun bool
	log    *logger.Logger
	run    runner
}

var _ Power = (*ExecPower)(nil)

func NewExecPower(dryRun bool, log *logger.Logger) *ExecPower {
	return &ExecPower{dryRun: dryRun, log: log, run: execRunner}
}

func (p *ExecPower) Reboot(ctx context.Context) error {
	return p.do(ctx, "reboot")
}

func (p *ExecPower) Shutdown(ctx context.Context) error {
	return p.do(ctx, "shutdown", "-h", "now")
}

func (p *ExecPower) do(ctx context.Context, name string, args ...string) error {
	if p.dryRun {
		p.log.Infow("power_dry_run", "cmd", name, "args", args)
		return nil
	}
	p.log.Infow("power_exec", "cmd", name, "args", args)
	return p.run(ctx, name, args...)
}
