// Package fs is the file access used by the watch and export commands.
package fs

import (
	iofs "io/fs"
)

type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	FileExists(path string) bool
	WriteFile(path string, data []byte, perm iofs.FileMode) error
	MkdirAll(path string, perm iofs.FileMode) error
}

// ReadOptional returns the contents of path, or "" when it does not exist.
// A source file that is missing counts as an empty buffer.
func ReadOptional(fsys FileSystem, path string) (string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if isNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}
