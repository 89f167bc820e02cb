package messages

// Run pipeline messages.
const (
	RunSnapshotReadFmt      = "read last run %s: %w"
	RunSnapshotDecodeFmt    = "decode last run %s: %w"
	RunSnapshotEncodeFmt    = "encode last run: %w"
	RunSnapshotLoadWarnFmt  = "%v; comparing against an empty last run"
	RunSnapshotSaveWarnFmt  = "could not save last run: %v"
	RunResolvedFmt          = "Resolved %d addon(s) for %s"
	RunRenamedFmt           = "Renamed %d file(s) after upstream naming changes"
	RunToggledFmt           = "Disabled %d, restored %d file(s)"
	RunPreloadedFmt         = "Preloaded %d addon(s)"
	RunSkipUpdatesFmt       = "Skipping updates (run only)"
	RunSummaryFmt           = "Updates: %d created, %d updated, %d up to date, %d failed"
	RunSkipLaunch           = "Update only; not launching"
	RunLaunchingFmt         = "Launching %s"
	RunLaunchHostFmt        = "launch %s: %w"
	RunLaunchAddonFailedFmt = "%s: could not launch %s: %v"
	RunLaunchAddonFmt       = "Launching addon %s"
	RunNoExecutable         = "No host executable configured; not launching"
	RunPlanPreviousLabel    = "last run"
	RunPlanCurrentLabel     = "next run"
	RunPlanNoChanges        = "No changes since the last run."
	RunStatusEmpty          = "No addons declared."
)
