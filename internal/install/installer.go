// Package install writes downloaded addon payloads into their workspace: raw files, archives
// (zip, tar.gz) and vendor installers.
package install

import (
	"context"
	"fmt"
	"sort"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/console"
	"github.com/conn-castle/yaam/internal/messages"
)

const defaultMaxExtractBytes = int64(2 * 1024 * 1024 * 1024) // 2 GiB

// Target describes where a payload goes.
type Target struct {
	Addon addon.Resolved
	// Rules maps a payload entry name to the physical filename it must be written as.
	Rules map[string]string
}

// Result reports what an install did.
type Result struct {
	// Naming maps each payload entry that was renamed or pinned to its physical filename.
	Naming  map[string]string
	Written []string
}

// Installer writes a payload for a target.
type Installer interface {
	Install(ctx context.Context, target Target, payload Payload) (Result, error)
}

type strategy interface {
	install(ctx context.Context, target Target, payload Payload) (Result, error)
}

// Options configure a Dispatcher.
type Options struct {
	System          System
	Runner          Runner
	Logger          *console.Logger
	MaxExtractBytes int64
}

// Dispatcher routes payloads to the strategy matching their kind.
type Dispatcher struct {
	strategies map[Kind]strategy
}

// New returns a Dispatcher with defaults applied to unset options.
func New(opts Options) *Dispatcher {
	if opts.System == nil {
		opts.System = RealSystem{}
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.MaxExtractBytes <= 0 {
		opts.MaxExtractBytes = defaultMaxExtractBytes
	}
	ex := extractor{sys: opts.System, maxBytes: opts.MaxExtractBytes}
	return &Dispatcher{strategies: map[Kind]strategy{
		KindDatastream: datastream{sys: opts.System},
		KindArchive:    archive{sys: opts.System, ex: ex, log: opts.Logger},
		KindInstaller:  setup{sys: opts.System, ex: ex, runner: opts.Runner, log: opts.Logger},
	}}
}

// Install implements Installer.
func (d *Dispatcher) Install(ctx context.Context, target Target, payload Payload) (Result, error) {
	s, ok := d.strategies[payload.Kind]
	if !ok {
		return Result{}, fmt.Errorf(messages.InstallUnknownPayloadKindFmt, payload.Kind)
	}
	return s.install(ctx, target, payload)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
