package adapter

import (
	"os"
)

// FileSystem defines the file operations used to load registries from disk
//
//go:generate mockgen -source=filesystem.go -destination=../mocks/filesystem.go -package=mocks -mock_names=FileSystem=MockFileSystem
type FileSystem interface {
	// ReadFile reads the named file
	ReadFile(name string) ([]byte, error)

	// Exists reports whether the named file exists
	Exists(name string) bool
}

// RealFileSystem implements FileSystem using the standard os package
type RealFileSystem struct{}

// NewFileSystem creates a new real file system
func NewFileSystem() FileSystem {
	return &RealFileSystem{}
}

// ReadFile reads the named file
func (fs *RealFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) //nolint:gosec,G304 // trusted operator provided path
}

// Exists reports whether the named file exists
func (fs *RealFileSystem) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}
