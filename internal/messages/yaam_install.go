package messages

// Installer messages.
const (
	InstallInvalidArchiveFmt      = "invalid archive: %s"
	InstallInvalidArchiveCauseFmt = "invalid archive: %s: %v"
	InstallArchiveEmpty           = "archive contains no files"
	InstallArchiveUnsafePathFmt   = "unsafe entry path %q"
	InstallArchiveTooLargeFmt     = "extracted content exceeds %d bytes"
	InstallArchiveOpen            = "cannot open archive"
	InstallArchiveRead            = "cannot read archive entry"
	InstallPartialWriteFmt        = "partial write to %s: %v"
	InstallCreateWorkspaceFmt     = "failed to create workspace %s: %w"
	InstallCreateStagingFmt       = "failed to create staging directory in %s: %w"
	InstallExtractFmt             = "failed to extract %s: %w"
	InstallRenameEntryFmt         = "failed to rename %s to %s: %w"
	InstallListDirFmt             = "failed to list %s: %w"
	InstallUnknownPayloadKindFmt  = "unsupported payload kind %d"
	InstallInstallerNotFoundFmt   = "no installer found in %s"
	InstallInstallerRunFmt        = "installer %s failed: %w"
	InstallRunningInstallerFmt    = "Running installer %s"
	InstallRemoveStagingFmt       = "could not remove %s: %v"
)
