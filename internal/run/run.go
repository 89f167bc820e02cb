// Package run orders one yaam invocation: synthesis, renames, enable/disable, updates, the
// last-run snapshot and the host launch.
package run

import (
	"context"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/console"
	"github.com/conn-castle/yaam/internal/messages"
	"github.com/conn-castle/yaam/internal/synth"
	"github.com/conn-castle/yaam/internal/update"
)

// Migrator moves metadata left behind by older releases.
type Migrator interface {
	MigrateLegacy(list []addon.Resolved) int
}

// Reconciler renames and toggles addon files on disk.
type Reconciler interface {
	ResolveRenames(list []addon.Resolved) int
	Disable(current []addon.Resolved, previous []addon.Resolved) int
	Restore(current []addon.Resolved) int
}

// Updater downloads and installs addon content.
type Updater interface {
	Preload(ctx context.Context, list []addon.Resolved, opts update.Options) *update.PreloadCache
	UpdateAll(ctx context.Context, list []addon.Resolved, cache *update.PreloadCache, opts update.Options) []update.Result
}

// Options are the run-mode switches.
type Options struct {
	// UpdateOnly skips the launch.
	UpdateOnly bool
	// RunOnly skips every network update.
	RunOnly bool
	Force   bool
	Preload bool
	// Concurrency bounds parallel preload fetches.
	Concurrency int
	Chooser     update.AssetChooser
	Host        Host
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Migrator   Migrator
	Reconciler Reconciler
	Updater    Updater
	Launcher   Launcher
	StateDir   string
	Logger     *console.Logger
}

// Pipeline runs the steps of one invocation in order.
type Pipeline struct {
	deps Deps
}

// Report summarizes what a run did.
type Report struct {
	Previous addon.Snapshot
	Current  addon.Snapshot
	Renamed  int
	Disabled int
	Restored int
	Updates  []update.Result
	Launched bool
}

// New returns a Pipeline.
func New(d Deps) *Pipeline {
	return &Pipeline{deps: d}
}

// Resolve synthesizes the resolved list and loads the last-run snapshot, without touching any
// addon file.
func (p *Pipeline) Resolve(in synth.Input) (previous addon.Snapshot, current addon.Snapshot) {
	log := p.deps.Logger
	previous, err := LoadSnapshot(p.deps.StateDir)
	if err != nil {
		log.Warnf(messages.RunSnapshotLoadWarnFmt, err)
	}
	current = addon.Snapshot{Variant: in.Selected, Addons: synth.Synthesize(in, log)}
	return previous, current
}

// Run executes the pipeline. Per-addon failures are reported in the Report and never abort the
// run. The only returned error is a failure to launch the host.
func (p *Pipeline) Run(ctx context.Context, in synth.Input, opts Options) (Report, error) {
	log := p.deps.Logger
	previous, current := p.Resolve(in)
	rep := Report{Previous: previous, Current: current}
	log.Debugf(messages.RunResolvedFmt, len(current.Addons), current.Variant)

	// Everything below reads current as a frozen snapshot.
	list := addon.CloneAll(current.Addons)
	if p.deps.Migrator != nil {
		p.deps.Migrator.MigrateLegacy(list)
	}
	rep.Renamed = p.deps.Reconciler.ResolveRenames(list)
	if rep.Renamed > 0 {
		log.Infof(messages.RunRenamedFmt, rep.Renamed)
	}
	rep.Disabled = p.deps.Reconciler.Disable(list, previous.Addons)
	rep.Restored = p.deps.Reconciler.Restore(list)
	if rep.Disabled > 0 || rep.Restored > 0 {
		log.Infof(messages.RunToggledFmt, rep.Disabled, rep.Restored)
	}

	if opts.RunOnly {
		log.Infof(messages.RunSkipUpdatesFmt)
	} else {
		uopts := update.Options{Force: opts.Force, Concurrency: opts.Concurrency, Chooser: opts.Chooser}
		var cache *update.PreloadCache
		if opts.Preload {
			cache = p.deps.Updater.Preload(ctx, list, uopts)
			log.Debugf(messages.RunPreloadedFmt, cache.Len())
		}
		rep.Updates = p.deps.Updater.UpdateAll(ctx, list, cache, uopts)
		logSummary(log, rep.Updates)
	}

	if err := SaveSnapshot(p.deps.StateDir, current); err != nil {
		log.Warnf(messages.RunSnapshotSaveWarnFmt, err)
	}

	if opts.UpdateOnly {
		log.Infof(messages.RunSkipLaunch)
		return rep, nil
	}
	if err := p.deps.Launcher.Launch(ctx, opts.Host, list); err != nil {
		return rep, err
	}
	rep.Launched = true
	return rep, nil
}

func logSummary(log *console.Logger, results []update.Result) {
	var created, updated, upToDate, failed int
	for _, r := range results {
		switch {
		case r.Outcome == update.Created:
			created++
		case r.Outcome == update.Updated:
			updated++
		case r.Outcome == update.UpToDate:
			upToDate++
		case r.Outcome.IsFailure():
			failed++
		}
	}
	log.Infof(messages.RunSummaryFmt, created, updated, upToDate, failed)
}
