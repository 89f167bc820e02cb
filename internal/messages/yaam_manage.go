package messages

// Addon file management messages.
const (
	ManageRenamedFmt          = "%s: renamed %s to %s"
	ManageRenameFailedFmt     = "%s: could not rename %s to %s: %v"
	ManageDisabledFmt         = "%s: disabled %s"
	ManageRestoredFmt         = "%s: restored %s"
	ManageRestoreOccupiedFmt  = "%s: %s is occupied by another file; leaving %s in place"
	ManageStaleDisabledFmt    = "%s: removed stale %s"
	ManageRemoveFailedFmt     = "%s: could not remove %s: %v"
	ManageMetadataFailedFmt   = "%s: %v"
	ManageReadInfoFailedFmt   = "%s: could not read file info of %s: %v"
	ManageShaderNotMatchedFmt = "%s: %s does not belong to this shader; leaving it active"

	PEInfoParseFmt   = "not a PE image: %w"
	PEInfoVersionFmt = "invalid version resource: %w"
)
