package messages

// Hashing, file-system and metadata store messages.
const (
	HashingReadFmt = "read content for hashing: %w"

	FsutilCreateDirFmt  = "failed to create directory %s: %w"
	FsutilCreateTempFmt = "failed to create temp file for %s: %w"
	FsutilWriteTempFmt  = "failed to write temp file for %s: %w"
	FsutilChmodFmt      = "failed to set permissions for %s: %w"
	FsutilRenameFmt     = "failed to move %s into place: %w"

	MetadataReadFmt          = "failed to read metadata %s: %w"
	MetadataDecodeFmt        = "invalid metadata %s: %w"
	MetadataEncodeFmt        = "failed to encode metadata for %s: %w"
	MetadataWriteFmt         = "failed to write metadata %s: %w"
	MetadataHashFmt          = "failed to hash %s for %s: %w"
	MetadataMigratedFmt      = "Migrated %d metadata file(s) into %s"
	MetadataMigrateFailedFmt = "could not migrate metadata %s: %v"
	MetadataLegacyRemoveFmt  = "could not remove legacy metadata %s: %v"
	MetadataOverwriteFmt     = "replacing unreadable metadata %s: %v"
)
