// Package pidfile guards a long running status server against a second
// instance on the same host.
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type PIDFile struct {
	path string
	file *os.File
}

// New returns a handle for path. An empty path turns Acquire and Release
// into no-ops.
func New(path string) *PIDFile {
	return &PIDFile{
		path: path,
	}
}

func (f *PIDFile) Acquire() error {
	if f.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create pid file directory %q", filepath.Dir(f.path))
	}

	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(f.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		switch {
		case err == nil:
			if _, err := fmt.Fprintf(file, "%d", os.Getpid()); err != nil {
				_ = file.Close()
				return errors.Wrapf(err, "failed to write pid to pid file %q", f.path)
			}
			f.file = file
			log.WithFields(log.Fields{"kind": "pidfile", "name": f.path}).Info("acquired pid file")
			return nil
		case os.IsExist(err):
			if err := f.removeIfStale(); err != nil {
				return err
			}
		default:
			return errors.Wrapf(err, "failed to open pid file %q", f.path)
		}
	}

	return fmt.Errorf("pid file %q keeps reappearing", f.path)
}

func (f *PIDFile) removeIfStale() error {
	content, err := os.ReadFile(f.path)
	if err != nil {
		return errors.Wrapf(err, "failed to read pid file %q", f.path)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return errors.Wrapf(err, "failed to parse pid file %q", f.path)
	}

	if pid == os.Getpid() || processAlive(pid) {
		return fmt.Errorf("pid file %q already exists and contains the PID of a running process", f.path)
	}

	log.WithFields(log.Fields{"kind": "pidfile", "name": f.path, "pid": pid}).
		Info("existing pid file contains the PID of a non-running process; removing it")

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove pid file %q", f.path)
	}

	return nil
}

func (f *PIDFile) Release() error {
	if f.path == "" || f.file == nil {
		return nil
	}

	if err := f.file.Close(); err != nil {
		return errors.Wrapf(err, "failed to close pid file %q", f.path)
	}
	f.file = nil

	if err := os.Remove(f.path); err != nil {
		return errors.Wrapf(err, "failed to remove pid file %q", f.path)
	}

	log.WithFields(log.Fields{"kind": "pidfile", "name": f.path}).Info("released pid file")
	return nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
