package readiness

import (
	"os"

	"github.com/mittwald/pageprobe/internal/helper"
)

type filesystemProbe struct {
	path string
}

func NewFilesystemProbe(path string) *filesystemProbe {
	return &filesystemProbe{path: helper.ResolveEnv(path)}
}

func (f *filesystemProbe) Exec() error {
	_, err := os.ReadDir(f.path)
	return err
}
