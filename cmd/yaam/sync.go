package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/yaam/internal/install"
	"github.com/conn-castle/yaam/internal/lock"
	"github.com/conn-castle/yaam/internal/manage"
	"github.com/conn-castle/yaam/internal/messages"
	"github.com/conn-castle/yaam/internal/remote"
	"github.com/conn-castle/yaam/internal/run"
	"github.com/conn-castle/yaam/internal/terminal"
	"github.com/conn-castle/yaam/internal/update"
)

// ErrSyncCompletedWithFailures is returned when the run finished but some addons failed to update.
var ErrSyncCompletedWithFailures = errors.New(messages.SyncCompletedWithFailures)

var (
	newGateway    = func(opts remote.Options) remote.Gateway { return remote.NewClient(opts) }
	newLauncher   = func(a *app) run.Launcher { return run.ExecLauncher{Log: a.log} }
	isInteractive = terminal.IsInteractive
)

type syncFlags struct {
	updateOnly bool
	runOnly    bool
	force      bool
	noPreload  bool
}

func newSyncCmd(g *globalFlags) *cobra.Command {
	sf := &syncFlags{}
	cmd := &cobra.Command{
		Use:   messages.SyncUse,
		Short: messages.SyncShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, g, sf)
		},
	}
	sf.bind(cmd)
	return cmd
}

// bind registers the sync flags on cmd. The root command binds them too, since it runs a sync.
func (sf *syncFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&sf.updateOnly, "update-only", "u", false, messages.SyncFlagUpdateOnly)
	cmd.Flags().BoolVarP(&sf.runOnly, "run-only", "r", false, messages.SyncFlagRunOnly)
	cmd.Flags().BoolVarP(&sf.force, "force", "f", false, messages.SyncFlagForce)
	cmd.Flags().BoolVar(&sf.noPreload, "no-preload", false, messages.SyncFlagNoPreload)
}

func runSync(cmd *cobra.Command, g *globalFlags, sf *syncFlags) error {
	if sf.updateOnly && sf.runOnly {
		return errors.New(messages.SyncFlagsConflict)
	}
	a, err := g.load(cmd)
	if err != nil {
		return err
	}
	runOnly := sf.runOnly
	if a.cfg.NoNetwork && !runOnly {
		a.log.Infof(messages.SyncNoNetworkEnv)
		runOnly = true
	}
	opts := run.Options{
		UpdateOnly:  sf.updateOnly,
		RunOnly:     runOnly,
		Force:       sf.force,
		Preload:     a.cfg.Preload() && !sf.noPreload,
		Concurrency: a.cfg.Update.Concurrency,
		Host: run.Host{
			Executable: a.cfg.ExecutablePath(),
			Args:       a.cfg.Host.Args,
			Dir:        a.cfg.Host.InstallDir,
		},
	}
	if isInteractive() {
		opts.Chooser = chooseAsset
	}

	orchestrator := update.New(update.Deps{
		Store:   a.store,
		Gateway: newGateway(a.cfg.RemoteOptions(fmt.Sprintf(messages.UserAgentFmt, Version))),
		Installer: install.New(install.Options{
			Runner: install.ExecRunner{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()},
			Logger: a.log,
		}),
		Logger: a.log,
	})
	pipeline := run.New(run.Deps{
		Migrator:   a.store,
		Reconciler: manage.New(a.store, a.log),
		Updater:    orchestrator,
		Launcher:   newLauncher(a),
		StateDir:   a.cfg.StateDir(),
		Logger:     a.log,
	})

	var rep run.Report
	err = lock.With(a.cfg.LockPath(), func() error {
		var runErr error
		rep, runErr = pipeline.Run(cmd.Context(), a.input, opts)
		return runErr
	})
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range rep.Updates {
		if r.Outcome.IsFailure() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: "+messages.SyncCompletedWithFailuresFmt, ErrSyncCompletedWithFailures, failed)
	}
	return nil
}
