package messages

// Run lock messages.
const (
	LockOpenFmt    = "open lock %s: %w"
	LockAcquireFmt = "lock %s: %w"
	LockTimeoutFmt = "another yaam run holds the lock; gave up after %s"
)
