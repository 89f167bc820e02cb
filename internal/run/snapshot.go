package run

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/fsutil"
	"github.com/conn-castle/yaam/internal/messages"
)

// SnapshotFile is the last-run snapshot name inside the state directory.
const SnapshotFile = "last_run.json"

var osReadFile = os.ReadFile

// SnapshotPath returns the snapshot location under stateDir.
func SnapshotPath(stateDir string) string {
	return filepath.Join(stateDir, SnapshotFile)
}

// LoadSnapshot reads the last-run snapshot. A missing file yields an empty snapshot.
func LoadSnapshot(stateDir string) (addon.Snapshot, error) {
	path := SnapshotPath(stateDir)
	data, err := osReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return addon.Snapshot{}, nil
	}
	if err != nil {
		return addon.Snapshot{}, fmt.Errorf(messages.RunSnapshotReadFmt, path, err)
	}
	var s addon.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return addon.Snapshot{}, fmt.Errorf(messages.RunSnapshotDecodeFmt, path, err)
	}
	return s, nil
}

// SaveSnapshot atomically replaces the last-run snapshot.
func SaveSnapshot(stateDir string, s addon.Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf(messages.RunSnapshotEncodeFmt, err)
	}
	return fsutil.WriteFileAtomic(SnapshotPath(stateDir), append(data, '\n'), 0o644)
}
