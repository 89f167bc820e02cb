package install

import (
	"fmt"

	"github.com/conn-castle/yaam/internal/messages"
)

// InvalidArchiveError reports an archive that cannot be read or is unsafe to extract.
type InvalidArchiveError struct {
	Reason string
	Err    error
}

func (e *InvalidArchiveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(messages.InstallInvalidArchiveCauseFmt, e.Reason, e.Err)
	}
	return fmt.Sprintf(messages.InstallInvalidArchiveFmt, e.Reason)
}

func (e *InvalidArchiveError) Unwrap() error { return e.Err }

// PartialWriteError reports a failure while moving content into the workspace.
// Files written before the failure may remain.
type PartialWriteError struct {
	Path string
	Err  error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf(messages.InstallPartialWriteFmt, e.Path, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }
