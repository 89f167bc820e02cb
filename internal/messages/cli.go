package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse = "yaam"
	// RootShort is the short description for the root command.
	RootShort       = "Yet another addon manager: reconcile, update and launch addons"
	RootLong        = "yaam reconciles the declared addons of a host application against the install directory,\nupdates them from their sources and launches the host. Running yaam without a command is yaam sync."
	RootVersionFlag = "Print version and exit"
	RootFlagConfig  = "Path to yaam.toml (default $XDG_CONFIG_HOME/yaam/yaam.toml)"
	RootFlagVerbose = "Print debug output"
	RootFlagQuiet   = "Only print warnings and errors"
	RootFlagVariant = "Override the selected variant (d3d9, d3d11, d3d12, vulkan, ...)"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"
	VersionUse       = "version"
	VersionShort     = "Print the yaam version"
	UserAgentFmt     = "yaam/%s"

	// SyncUse is the sync command name.
	SyncUse                      = "sync"
	SyncShort                    = "Reconcile addons, update them and launch the host"
	SyncFlagUpdateOnly           = "Update addons without launching the host"
	SyncFlagRunOnly              = "Launch without checking for updates"
	SyncFlagForce                = "Ignore remote staleness markers; content signatures still decide"
	SyncFlagNoPreload            = "Do not fetch updates concurrently before applying them"
	SyncFlagsConflict            = "--update-only and --run-only cannot be combined"
	SyncCompletedWithFailures    = "sync completed with failures"
	SyncCompletedWithFailuresFmt = "%d addon(s) failed to update"
	SyncNoNetworkEnv             = "YAAM_NO_NETWORK is set; skipping updates"

	// PlanUse is the plan command name.
	PlanUse   = "plan"
	PlanShort = "Show how the resolved addons differ from the last run"

	// StatusUse is the status command name.
	StatusUse   = "status"
	StatusShort = "List the resolved addons for the selected variant"
)
