// Package update decides, per addon, whether remote content must be fetched and installed,
// and drives the fetch, signature check, install and metadata bookkeeping.
package update

// Outcome is the result of processing one addon.
type Outcome int

// Outcomes. ToCreate and ToUpdate are transient decisions that complete into Created and Updated.
const (
	Disabled Outcome = iota
	NoUpdate
	InvalidURL
	UpToDate
	ToCreate
	ToUpdate
	Created
	Updated
	FailedCreate
	FailedUpdate
	DownloadFailed
	InvalidArchive
	AmbiguousAsset
)

var outcomeNames = map[Outcome]string{
	Disabled:       "disabled",
	NoUpdate:       "no update",
	InvalidURL:     "invalid url",
	UpToDate:       "up to date",
	ToCreate:       "to create",
	ToUpdate:       "to update",
	Created:        "created",
	Updated:        "updated",
	FailedCreate:   "failed to create",
	FailedUpdate:   "failed to update",
	DownloadFailed: "download failed",
	InvalidArchive: "invalid archive",
	AmbiguousAsset: "ambiguous asset",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Complete maps a pending decision to its success outcome.
func (o Outcome) Complete() Outcome {
	switch o {
	case ToCreate:
		return Created
	case ToUpdate:
		return Updated
	default:
		return o
	}
}

// Failed maps a pending decision to its failure outcome.
func (o Outcome) Failed() Outcome {
	switch o {
	case ToCreate:
		return FailedCreate
	case ToUpdate:
		return FailedUpdate
	default:
		return o
	}
}

// Persists reports whether metadata is written after this outcome.
func (o Outcome) Persists() bool {
	return o == Created || o == Updated || o == UpToDate
}

// IsFailure reports whether the outcome represents an error the user should see.
func (o Outcome) IsFailure() bool {
	switch o {
	case FailedCreate, FailedUpdate, DownloadFailed, InvalidArchive, AmbiguousAsset, InvalidURL:
		return true
	default:
		return false
	}
}
