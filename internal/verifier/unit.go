package verifier

import (
	"fmt"
	"io"
	"os"
)

// Unit is a finished, closed code unit that can write its binary image.
// Serialize must create the file at path; it may assume no file exists there.
type Unit interface {
	Serialize(path string) error
}

// UnitFunc adapts a function to the Unit interface.
type UnitFunc func(path string) error

// Serialize calls f(path).
func (f UnitFunc) Serialize(path string) error {
	return f(path)
}

// FileUnit is a module image that already exists on disk. Serializing it
// copies the file to the artifact path.
type FileUnit struct {
	Path string
}

// Location returns the source file path.
func (u FileUnit) Location() string {
	return u.Path
}

// Serialize copies the module to path.
func (u FileUnit) Serialize(path string) error {
	src, err := os.Open(u.Path)
	if err != nil {
		return fmt.Errorf("opening module %s: %w", u.Path, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close() // Best-effort cleanup; returning copy error
		return fmt.Errorf("copying module to %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

var (
	_ Unit      = FileUnit{}
	_ Locatable = FileUnit{}
)
