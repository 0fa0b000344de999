package pathutil

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a relative path would resolve outside its root.
var ErrOutsideRoot = errors.New("path escapes root directory")

// ResolveWithin joins rel onto root and returns the cleaned result.
// Leading slashes on rel are stripped, so "/docs/a.md" and "docs/a.md"
// name the same file. Paths that climb out of root with ".." are rejected
// with ErrOutsideRoot. Symlinks are not evaluated.
func ResolveWithin(root, rel string) (string, error) {
	rel = strings.TrimLeft(rel, "/"+string(filepath.Separator))
	root = filepath.Clean(root)
	joined := filepath.Join(root, rel)

	r, err := filepath.Rel(root, joined)
	if err != nil {
		return "", ErrOutsideRoot
	}
	if r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return joined, nil
}
