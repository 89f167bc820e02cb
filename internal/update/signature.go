package update

import (
	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/hashing"
)

// SignatureChecker compares fetched bytes with the signature recorded for the addon.
type SignatureChecker struct {
	Hasher hashing.Hasher
}

// Check returns ToCreate when the target is absent, UpToDate when the stored signature equals the
// signature of content, and ToUpdate otherwise. The content signature is returned for persistence.
func (c SignatureChecker) Check(content []byte, md addon.Metadata, targetExists bool) (Outcome, string) {
	hasher := c.Hasher
	if hasher == nil {
		hasher = hashing.SHA256{}
	}
	sum := hasher.Bytes(content)
	switch {
	case !targetExists:
		return ToCreate, sum
	case md.HashSignature == "":
		return ToUpdate, sum
	case md.HashSignature == sum:
		return UpToDate, sum
	default:
		return ToUpdate, sum
	}
}
