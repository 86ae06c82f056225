// Package filex holds the small filesystem helpers used by the local store.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirPerm  os.FileMode = 0o700
	filePerm os.FileMode = 0o600
)

// EnsureDir creates dir, owner-only, resolving a relative path against the
// working directory, and returns the absolute path.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// EnsureParentDir creates the directory that will hold file.
func EnsureParentDir(file string) error {
	_, err := EnsureDir(filepath.Dir(file))
	return err
}

// EnsurePrivateFile creates file if it is missing and strips group and
// other permission bits from it.
func EnsurePrivateFile(file string) error {
	f, err := os.OpenFile(file, os.O_RDONLY|os.O_CREATE, filePerm)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	fi, err := f.Stat()
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("stat %s: %w", file, err)
	}

	if fi.Mode().Perm()&0o077 == 0 {
		return nil
	}
	if err := os.Chmod(file, fi.Mode().Perm()&filePerm); err != nil {
		return fmt.Errorf("chmod %s: %w", file, err)
	}
	return nil
}
