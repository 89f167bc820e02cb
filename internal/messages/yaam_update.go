package messages

// Update engine messages.
const (
	UpdateSkipDisabledFmt       = "%s: disabled, skipping"
	UpdateInvalidURLFmt         = "%s: invalid url %q"
	UpdateNoUpdateFmt           = "%s: updates turned off"
	UpdateUpToDateFmt           = "%s: up to date"
	UpdateMarkerFailedFmt       = "%s: could not read remote marker: %v"
	UpdateDownloadFailedFmt     = "%s: download failed: %v"
	UpdateRateLimitedFmt        = "%s: %v; try again later or set a GitHub token"
	UpdateAmbiguousAssetFmt     = "%s: release offers %d assets (%s); run interactively to choose one"
	UpdateInvalidArchiveFmt     = "%s: %v"
	UpdateInstallFailedFmt      = "%s: install failed: %v"
	UpdateSaveMetadataFailedFmt = "%s: could not save metadata: %v"
	UpdateMetadataLoadFailedFmt = "%s: %v; treating as never installed"
	UpdateOutcomeFmt            = "%s: %s"
	UpdatePreloadingFmt         = "Preloading %d addon(s)"
	UpdateChooseAssetTitleFmt   = "Choose a release asset for %s"
)
