package suite_test

import (
	"testing"
	"time"

	"github.com/mittwald/pageprobe/internal/config"
	"github.com/mittwald/pageprobe/pkg/probe"
	"github.com/mittwald/pageprobe/pkg/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frontendSuite() *config.Suite {
	return &config.Suite{
		Name:    "frontend",
		Timeout: "3s",
		Headers: map[string]string{"User-Agent": "BantuDelice-Test/1.0"},
		Params:  map[string]interface{}{"base": "http://localhost:9595"},
		Targets: []config.Target{
			{
				Name:        "home",
				URL:         "{{ .Params.base }}/",
				ContentType: "text/html",
				Markers: []config.Marker{
					{Pattern: "orange-500", Label: "Couleur orange"},
					{Pattern: "dropdown", Label: "Menu déroulant"},
				},
			},
			{
				Name:      "colis",
				URL:       "ENV:COLIS_URL",
				Timeout:   "1s",
				Threshold: 1,
				Headers:   map[string]string{"Accept": "text/html"},
				Markers: []config.Marker{
					{Pattern: `bg-orange-\d+`, Label: "Fond orange", Regex: true},
				},
			},
		},
	}
}

func TestBuildAppliesDefaultsAndTemplates(t *testing.T) {
	t.Setenv("COLIS_URL", "http://localhost:9595/colis")

	s, err := suite.Build(frontendSuite(), config.Defaults{Threshold: 0.6, Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, "frontend", s.Name)
	assert.Equal(t, 2, s.Concurrency)
	require.Len(t, s.Checks, 2)

	home := s.Checks[0]
	assert.Equal(t, "http://localhost:9595/", home.Target.URL)
	assert.Equal(t, 3*time.Second, home.Target.Timeout)
	assert.Equal(t, "text/html", home.Target.ExpectContentType)
	assert.Equal(t, 0.6, home.Threshold)
	assert.Equal(t, map[string]string{"User-Agent": "BantuDelice-Test/1.0"}, home.Target.Headers)
	assert.Equal(t, probe.Checklist{
		{Pattern: "orange-500", Label: "Couleur orange"},
		{Pattern: "dropdown", Label: "Menu déroulant"},
	}, home.Checklist)

	colis := s.Checks[1]
	assert.Equal(t, "http://localhost:9595/colis", colis.Target.URL)
	assert.Equal(t, time.Second, colis.Target.Timeout)
	assert.Equal(t, 1.0, colis.Threshold)
	assert.Equal(t, "text/html", colis.Target.Headers["Accept"])
	assert.Equal(t, "BantuDelice-Test/1.0", colis.Target.Headers["User-Agent"])
	assert.True(t, colis.Checklist[0].Regexp)
	assert.Empty(t, colis.Target.ExpectContentType)
}

func TestBuildFallsBackToBuiltinDefaults(t *testing.T) {
	cfg := &config.Suite{
		Name:    "api",
		Targets: []config.Target{{Name: "health", URL: "http://localhost:3001/api/colis/health", Markers: []config.Marker{{Pattern: "ok"}}}},
	}

	s, err := suite.Build(cfg, config.Defaults{})
	require.NoError(t, err)

	assert.Equal(t, suite.DefaultConcurrency, s.Concurrency)
	assert.Equal(t, probe.DefaultTimeout, s.Checks[0].Target.Timeout)
	assert.Equal(t, probe.DefaultThreshold, s.Checks[0].Threshold)
	assert.Nil(t, s.Checks[0].Target.Headers)
}

func TestBuildRejectsBadTimeouts(t *testing.T) {
	cfg := frontendSuite()
	cfg.Timeout = "three seconds"
	_, err := suite.Build(cfg, config.Defaults{})
	assert.Error(t, err)

	cfg = frontendSuite()
	cfg.Targets[1].Timeout = "-"
	_, err = suite.Build(cfg, config.Defaults{})
	assert.Error(t, err)
}

func TestBuildAll(t *testing.T) {
	cfg := &config.Config{Suites: []config.Suite{*frontendSuite(), {
		Name:    "api",
		Targets: []config.Target{{Name: "health", URL: "http://localhost:3001/api/colis/health"}},
	}}}

	all, err := suite.BuildAll(cfg)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "frontend", all[0].Name)

	one, err := suite.BuildAll(cfg, "api")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "api", one[0].Name)

	_, err = suite.BuildAll(cfg, "missing")
	assert.Error(t, err)
}
