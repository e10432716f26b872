package cmd

import (
	"context"
	"time"

	"github.com/mittwald/pageprobe/internal/config"
	"github.com/mittwald/pageprobe/pkg/readiness"
	"github.com/mittwald/pageprobe/pkg/suite"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	defaultWaitTimeout = time.Minute
	waitInterval       = time.Second
)

func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if err := cfg.GenerateFromConfigDir(configDir); err != nil {
		return nil, errors.Wrapf(err, "failed to load configuration from %q", configDir)
	}
	return cfg, nil
}

func loadSuites(names ...string) (*config.Config, []*suite.Suite, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	suites, err := suite.BuildAll(cfg, names...)
	if err != nil {
		return nil, nil, err
	}

	return cfg, suites, nil
}

// waitForDependencies blocks until every dependency flagged with wait is up.
// A zero timeout falls back to the configured default.
func waitForDependencies(ctx context.Context, cfg *config.Config, deps *readiness.Handler, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultWaitTimeout
		if raw := cfg.DefaultsOrEmpty().WaitTimeout; raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil {
				return errors.Wrapf(err, "invalid waitTimeout %q", raw)
			}
			timeout = parsed
		}
	}

	log.WithFields(log.Fields{"kind": "dependency", "names": deps.Names(), "timeout": timeout}).Debug("waiting for dependencies")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return deps.Wait(ctx, waitInterval)
}
