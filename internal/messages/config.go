package messages

// Config messages for yaam.toml and the declaration files in the data directory.
const (
	// ConfigMissingFileFmt formats missing config file errors.
	ConfigMissingFileFmt          = "missing config file %s: %w"
	ConfigInvalidConfigFmt        = "invalid config %s: %w"
	ConfigUnrecognizedKeysFmt     = "config %s contains unrecognized keys: %w"
	ConfigInvalidEnvFmt           = "invalid environment overrides: %w"
	ConfigInvalidDurationFmt      = "invalid duration %q: %w"
	ConfigInstallDirRequiredFmt   = "%s: host.install_dir is required"
	ConfigInstallDirMissingFmt    = "host install directory %s: %w"
	ConfigInstallDirNotDirFmt     = "host install directory %s is not a directory"
	ConfigInvalidVariantFmt       = "%s: unknown variant %q; skipping its entries"
	ConfigNegativeFmt             = "%s: %s must not be negative"
	ConfigExpandPathFmt           = "expand path %q: %w"
	ConfigDefaultDirFmt           = "resolve default directory: %w"
	ConfigValidationGuidance      = "Fix the config file and run again."
	ConfigDeclarationReadFmt      = "read %s: %w"
	ConfigDeclarationDecodeFmt    = "decode %s: %w"
	ConfigDeclarationNoNameFmt    = "%s: addon #%d has no name; skipping it"
	ConfigDeclarationVariantFmt   = "%s: unknown variant %q; skipping its entries"
	ConfigDeclarationMissingFmt   = "%s not found; treating as empty"
	ConfigDeclarationDupFmt       = "%s: addon %q declared more than once; keeping the last"
	ConfigPlacementNoNameFmt      = "%s: binding #%d under %s has no name; skipping it"
	ConfigPlacementSkippedFmt     = "%s: skipping %s: %v"
	ConfigPlacementDefaultPathFmt = "%s: no path declared, using %s"
)
