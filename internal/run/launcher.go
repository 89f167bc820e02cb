package run

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/console"
	"github.com/conn-castle/yaam/internal/messages"
)

var execCommand = exec.Command

// Host describes how the host application is started.
type Host struct {
	Executable string
	Args       []string
	Dir        string
}

// Launcher starts the host application and the executable addons that run beside it.
type Launcher interface {
	Launch(ctx context.Context, host Host, addons []addon.Resolved) error
}

// ExecLauncher starts processes without waiting for them.
type ExecLauncher struct {
	Log *console.Logger
}

// Launch starts the host, then every enabled exe addon that points to a file. A failing addon is
// logged and skipped. The host error, if any, is returned after the addons were tried.
func (l ExecLauncher) Launch(ctx context.Context, host Host, addons []addon.Resolved) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var hostErr error
	if host.Executable == "" {
		l.Log.Infof(messages.RunNoExecutable)
	} else {
		l.Log.Infof(messages.RunLaunchingFmt, host.Executable)
		if err := start(host.Executable, host.Args, host.Dir); err != nil {
			hostErr = fmt.Errorf(messages.RunLaunchHostFmt, host.Executable, err)
		}
	}
	for _, r := range Executables(addons) {
		l.Log.Infof(messages.RunLaunchAddonFmt, r.Key())
		if err := start(r.Placement.Path, r.Placement.Args, r.Placement.Workspace()); err != nil {
			l.Log.Warnf(messages.RunLaunchAddonFailedFmt, r.Key(), r.Placement.Path, err)
		}
	}
	return hostErr
}

// Executables returns the enabled exe addons that point to a file.
func Executables(list []addon.Resolved) []addon.Resolved {
	var out []addon.Resolved
	for _, r := range list {
		if r.Enabled() && r.Placement.Variant == addon.VariantExe && !r.Placement.Headless() {
			out = append(out, r)
		}
	}
	return out
}

func start(path string, args []string, dir string) error {
	cmd := execCommand(path, args...)
	cmd.Dir = dir
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
