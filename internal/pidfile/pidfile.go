// Package pidfile records the PID of the running server.
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	herrors "github.com/turtacn/hestia/pkg/errors"
)

// File is a PID marker at a fixed path.
type File struct {
	path string
}

func New(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

// Write records the current process ID, creating parent directories as needed.
func (f *File) Write() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return herrors.New(herrors.ErrCodePIDFileFailed, "pidfile", "cannot create directory for "+f.path, err)
	}
	data := []byte(strconv.Itoa(os.Getpid()) + "\n")
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return herrors.New(herrors.ErrCodePIDFileFailed, "pidfile", "cannot write "+f.path, err)
	}
	return nil
}

// Clear removes the marker. A missing marker is not an error.
func (f *File) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return herrors.New(herrors.ErrCodePIDFileFailed, "pidfile", "cannot remove "+f.path, err)
	}
	return nil
}

// Read returns the recorded PID.
func (f *File) Read() (int, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed pid file %s: %w", f.path, err)
	}
	return pid, nil
}

// Personal.AI order the ending
