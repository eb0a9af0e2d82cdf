package conveyor

import (
	"fmt"
	"os"
	"path/filepath"
)

// Linker creates, removes and resolves the durable links behind persisted references.
type Linker interface {
	// Link records at as a durable pointer to origin. It fails if at already exists.
	Link(origin, at string) error
	// Unlink removes the pointer at at. It never removes canonical content.
	Unlink(at string) error
	// Resolve returns the absolute origin at points to. It fails if the origin does not exist.
	Resolve(at string) (string, error)
}

// SymlinkLinker backs durable links with relative symbolic links.
type SymlinkLinker struct{}

var _ Linker = SymlinkLinker{}

// Link implements Linker.
func (SymlinkLinker) Link(origin, at string) error {
	target, err := filepath.Abs(origin)
	if err != nil {
		return err
	}
	if dir, err := filepath.Abs(filepath.Dir(at)); err == nil {
		if rel, err := filepath.Rel(dir, target); err == nil {
			target = rel
		}
	}
	return os.Symlink(target, at)
}

// Unlink implements Linker.
func (SymlinkLinker) Unlink(at string) error {
	fi, err := os.Lstat(at)
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("%s is not a link", at)
	}
	return os.Remove(at)
}

// Resolve implements Linker.
func (SymlinkLinker) Resolve(at string) (string, error) {
	p, err := filepath.EvalSymlinks(at)
	if err != nil {
		return "", err
	}
	return filepath.Abs(p)
}
