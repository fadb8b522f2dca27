package verifier

import "path/filepath"

// ReferencePath is the absolute location of a binary dependency the verifier
// needs to resolve types used by the module. Existence is not checked; a
// missing reference surfaces as a verifier error.
type ReferencePath string

// NewReferencePath makes path absolute relative to the working directory.
func NewReferencePath(path string) (ReferencePath, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return ReferencePath(abs), nil
}

// String returns the path.
func (r ReferencePath) String() string {
	return string(r)
}

// Locatable is implemented by anything loaded from a file on disk, such as a
// module a generated unit depends on.
type Locatable interface {
	Location() string
}

// ReferenceFrom derives a reference from wherever l is loaded from.
func ReferenceFrom(l Locatable) (ReferencePath, error) {
	return NewReferencePath(l.Location())
}
