package update

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/console"
	"github.com/conn-castle/yaam/internal/hashing"
	"github.com/conn-castle/yaam/internal/install"
	"github.com/conn-castle/yaam/internal/messages"
	"github.com/conn-castle/yaam/internal/remote"
)

var osStat = os.Stat

// MetadataStore loads and saves per-addon metadata.
type MetadataStore interface {
	Load(r addon.Resolved) (addon.Metadata, error)
	Save(r addon.Resolved, md addon.Metadata) error
}

// AssetChooser picks one asset when a release offers several.
type AssetChooser func(ctx context.Context, r addon.Resolved, candidates []remote.Asset) (remote.Asset, error)

// Options tune one update pass.
type Options struct {
	// Force ignores matching staleness markers; content signatures still decide.
	Force bool
	// Concurrency bounds parallel preload fetches.
	Concurrency int
	// Chooser resolves releases with several assets. Nil reports them as AmbiguousAsset.
	Chooser AssetChooser
}

// Result is the per-addon outcome of an update pass.
type Result struct {
	Key        addon.Key
	Outcome    Outcome
	Err        error
	Candidates []remote.Asset
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Store     MetadataStore
	Gateway   remote.Gateway
	Installer install.Installer
	Hasher    hashing.Hasher
	Logger    *console.Logger
}

// Orchestrator runs the per-addon update decision and install flow.
type Orchestrator struct {
	store     MetadataStore
	gateway   remote.Gateway
	installer install.Installer
	checker   SignatureChecker
	log       *console.Logger
}

// New returns an Orchestrator.
func New(d Deps) *Orchestrator {
	if d.Hasher == nil {
		d.Hasher = hashing.SHA256{}
	}
	return &Orchestrator{
		store:     d.Store,
		gateway:   d.Gateway,
		installer: d.Installer,
		checker:   SignatureChecker{Hasher: d.Hasher},
		log:       d.Logger,
	}
}

// UpdateAll processes addons in order. A failure on one addon never stops the others.
func (o *Orchestrator) UpdateAll(ctx context.Context, list []addon.Resolved, cache *PreloadCache, opts Options) []Result {
	results := make([]Result, 0, len(list))
	for _, r := range list {
		res := o.Update(ctx, r, cache, opts)
		o.report(r, res)
		results = append(results, res)
	}
	return results
}

// Update processes a single addon.
func (o *Orchestrator) Update(ctx context.Context, r addon.Resolved, cache *PreloadCache, opts Options) Result {
	res := Result{Key: r.Key()}
	if !r.Enabled() {
		res.Outcome = Disabled
		return res
	}
	uri := strings.TrimSpace(r.Base.URI)
	if !remote.ValidURL(uri) {
		res.Outcome = InvalidURL
		return res
	}
	exists := targetExists(r)
	if exists && !r.Placement.Updateable {
		res.Outcome = NoUpdate
		return res
	}

	md := o.loadMetadata(r)
	entry := cache.get(r.Key())
	marker := o.marker(ctx, r, entry)
	if !opts.Force && exists && md.SameMarker(marker) {
		res.Outcome = UpToDate
		return res
	}

	resp, err := o.download(ctx, r, entry, opts.Chooser)
	if err != nil {
		var ambiguous *remote.AmbiguousAssetError
		if errors.As(err, &ambiguous) {
			res.Outcome = AmbiguousAsset
			res.Candidates = ambiguous.Candidates
		} else {
			res.Outcome = DownloadFailed
		}
		res.Err = err
		return res
	}

	decision, sum := o.checker.Check(resp.Body, md, exists)
	next := md.Clone()
	next.SetMarker(marker)
	next.HashSignature = sum

	if decision == UpToDate {
		res.Outcome = UpToDate
		res.Err = o.save(r, next)
		return res
	}

	payload := install.Sniff(resp.Body, resp.Filename(), r.Base.IsInstaller)
	target := install.Target{Addon: r, Rules: mergeRules(md.Naming(r.Placement.Variant), r.Naming)}
	out, err := o.installer.Install(ctx, target, payload)
	if err != nil {
		var invalid *install.InvalidArchiveError
		if errors.As(err, &invalid) {
			res.Outcome = InvalidArchive
		} else {
			res.Outcome = decision.Failed()
		}
		res.Err = err
		return res
	}
	if len(out.Naming) > 0 {
		next.SetNaming(r.Placement.Variant, out.Naming)
	}
	res.Outcome = decision.Complete()
	res.Err = o.save(r, next)
	return res
}

func (o *Orchestrator) loadMetadata(r addon.Resolved) addon.Metadata {
	md, err := o.store.Load(r)
	if err != nil {
		o.log.Warnf(messages.UpdateMetadataLoadFailedFmt, r.Name(), err)
		return addon.Metadata{Addon: r.Name()}
	}
	return md
}

func (o *Orchestrator) save(r addon.Resolved, md addon.Metadata) error {
	if err := o.store.Save(r, md); err != nil {
		o.log.Errorf(messages.UpdateSaveMetadataFailedFmt, r.Name(), err)
		return err
	}
	return nil
}

// marker returns the remote staleness marker as metadata. Failures yield an unknown marker.
func (o *Orchestrator) marker(ctx context.Context, r addon.Resolved, entry *fetched) addon.Metadata {
	var (
		m   remote.Marker
		err error
	)
	if entry != nil {
		m, err = entry.marker, entry.markerErr
	} else {
		m, err = o.gateway.Head(ctx, strings.TrimSpace(r.Base.URI))
	}
	if err != nil {
		o.log.Debugf(messages.UpdateMarkerFailedFmt, r.Name(), err)
		return addon.Metadata{}
	}
	return addon.Metadata{ETag: m.ETag, LastModified: m.LastModified}
}

// download returns the preloaded body when there is one, fetching otherwise. A release with several
// assets is resolved through chooser when one is configured.
func (o *Orchestrator) download(ctx context.Context, r addon.Resolved, entry *fetched, chooser AssetChooser) (*remote.Response, error) {
	var err error
	if entry != nil {
		if entry.resp != nil {
			return entry.resp, nil
		}
		err = entry.err
	}
	if err == nil {
		resp, fetchErr := o.fetch(ctx, strings.TrimSpace(r.Base.URI))
		if fetchErr == nil {
			return resp, nil
		}
		err = fetchErr
	}
	var ambiguous *remote.AmbiguousAssetError
	if errors.As(err, &ambiguous) && chooser != nil {
		asset, chooseErr := chooser(ctx, r, ambiguous.Candidates)
		if chooseErr != nil {
			return nil, err
		}
		return o.gateway.Get(ctx, asset.URL)
	}
	return nil, err
}

func (o *Orchestrator) fetch(ctx context.Context, uri string) (*remote.Response, error) {
	assets, err := o.gateway.ResolveAssets(ctx, uri)
	if err != nil {
		return nil, err
	}
	asset, err := remote.SelectAsset(uri, assets)
	if err != nil {
		return nil, err
	}
	return o.gateway.Get(ctx, asset.URL)
}

func (o *Orchestrator) report(r addon.Resolved, res Result) {
	name := r.Key().String()
	switch res.Outcome {
	case Created, Updated:
		o.log.Infof(messages.UpdateOutcomeFmt, name, res.Outcome)
	case UpToDate:
		o.log.Debugf(messages.UpdateUpToDateFmt, name)
	case Disabled:
		o.log.Debugf(messages.UpdateSkipDisabledFmt, name)
	case NoUpdate:
		o.log.Debugf(messages.UpdateNoUpdateFmt, name)
	case InvalidURL:
		o.log.Warnf(messages.UpdateInvalidURLFmt, name, r.Base.URI)
	case AmbiguousAsset:
		names := make([]string, 0, len(res.Candidates))
		for _, c := range res.Candidates {
			names = append(names, c.Name)
		}
		o.log.Errorf(messages.UpdateAmbiguousAssetFmt, name, len(res.Candidates), strings.Join(names, ", "))
	case DownloadFailed:
		if remote.IsRateLimitError(res.Err) {
			o.log.Errorf(messages.UpdateRateLimitedFmt, name, res.Err)
			return
		}
		o.log.Errorf(messages.UpdateDownloadFailedFmt, name, res.Err)
	case InvalidArchive:
		o.log.Errorf(messages.UpdateInvalidArchiveFmt, name, res.Err)
	case FailedCreate, FailedUpdate:
		o.log.Errorf(messages.UpdateInstallFailedFmt, name, res.Err)
	}
}

// targetExists reports whether the placement's file or workspace is present.
func targetExists(r addon.Resolved) bool {
	_, err := osStat(r.Placement.Path)
	return err == nil
}

// mergeRules overlays declared naming rules on the ones recorded by previous runs.
func mergeRules(stored map[string]string, declared map[string]string) map[string]string {
	out := make(map[string]string, len(stored)+len(declared))
	for k, v := range stored {
		out[k] = v
	}
	for k, v := range declared {
		out[k] = v
	}
	return out
}
