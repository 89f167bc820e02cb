package messages

// Remote gateway messages.
const (
	RemoteCreateRequestFmt    = "create request for %s: %w"
	RemoteRequestFailedFmt    = "request %s failed: %v"
	RemoteRequestTimeoutFmt   = "request %s timed out"
	RemoteUnexpectedStatusFmt = "request %s: unexpected status %s"
	RemoteRateLimitFmt        = "github api rate limit exceeded (%s, remaining=%s)"
	RemoteTooLargeFmt         = "download %s exceeds %d bytes"
	RemoteRetryExhausted      = "retry budget exhausted"
	RemoteDecodeReleaseFmt    = "decode release %s: %w"
	RemoteInvalidReleaseJSON  = "response is not valid JSON"
	RemoteNoReleaseAssetsFmt  = "release %s has no downloadable assets"
	RemoteAmbiguousAssetsFmt  = "release %s has %d assets; choose one"
)
