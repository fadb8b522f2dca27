package verifier

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// writeUnit removes any stale artifact at path and serializes unit there.
// A removal failure aborts the write so the verifier never reads an old file.
func writeUnit(unit Unit, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing previous artifact %s: %w", path, err)
	}
	if err := unit.Serialize(path); err != nil {
		return fmt.Errorf("serializing unit to %s: %w", path, err)
	}
	return nil
}
