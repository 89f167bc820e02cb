package update

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/messages"
	"github.com/conn-castle/yaam/internal/remote"
)

const defaultConcurrency = 4

type fetched struct {
	marker    remote.Marker
	markerErr error
	resp      *remote.Response
	err       error
}

// PreloadCache holds markers and bodies fetched ahead of the sequential update pass.
// A nil cache is valid and empty.
type PreloadCache struct {
	mu      sync.Mutex
	entries map[addon.Key]*fetched
}

func newPreloadCache() *PreloadCache {
	return &PreloadCache{entries: make(map[addon.Key]*fetched)}
}

func (c *PreloadCache) get(k addon.Key) *fetched {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[k]
}

func (c *PreloadCache) put(k addon.Key, f *fetched) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = f
}

// Len returns the number of preloaded addons.
func (c *PreloadCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *PreloadCache) has(k addon.Key) bool {
	return c.get(k) != nil
}

// Preload concurrently fetches markers, and bodies where the marker says they are needed, for every
// addon UpdateAll would download. Errors are kept per addon and surface during UpdateAll.
func (o *Orchestrator) Preload(ctx context.Context, list []addon.Resolved, opts Options) *PreloadCache {
	cache := newPreloadCache()
	var candidates []addon.Resolved
	for _, r := range list {
		if !r.Enabled() || !remote.ValidURL(strings.TrimSpace(r.Base.URI)) {
			continue
		}
		if targetExists(r) && !r.Placement.Updateable {
			continue
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return cache
	}
	o.log.Debugf(messages.UpdatePreloadingFmt, len(candidates))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, r := range candidates {
		g.Go(func() error {
			uri := strings.TrimSpace(r.Base.URI)
			entry := &fetched{}
			entry.marker, entry.markerErr = o.gateway.Head(gctx, uri)
			md := o.loadMetadata(r)
			remoteMarker := addon.Metadata{ETag: entry.marker.ETag, LastModified: entry.marker.LastModified}
			if opts.Force || !targetExists(r) || entry.markerErr != nil || !md.SameMarker(remoteMarker) {
				entry.resp, entry.err = o.fetch(gctx, uri)
			}
			cache.put(r.Key(), entry)
			return nil
		})
	}
	_ = g.Wait()
	return cache
}
