package coveragerc

import (
	"fmt"

	"github.com/google/renameio/v2"
)

// WriteFileAtomic writes data to path through a pending file in the target
// directory: write, fsync, atomic rename. Readers observe either the old
// content or the new, never a torn file, and a crash mid-write leaves the
// target untouched.
func WriteFileAtomic(path string, data []byte) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending file for %s: %w", path, err)
	}
	defer func() {
		// Removes the temp file when the replace never happened.
		_ = pending.Cleanup()
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write pending file for %s: %w", path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
