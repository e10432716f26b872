package readiness

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mittwald/pageprobe/internal/config"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	probes     map[string]Probe
	waitProbes map[string]Probe
}

func NewHandler(deps []config.Dependency) (*Handler, error) {
	probes, err := buildProbesFromConfig(deps)
	if err != nil {
		return nil, err
	}

	return &Handler{
		probes:     probes,
		waitProbes: filterWaitProbes(deps, probes),
	}, nil
}

// NewHandlerFromProbes is mostly useful for tests and for callers that build
// their own probes.
func NewHandlerFromProbes(probes map[string]Probe, wait ...string) *Handler {
	h := &Handler{
		probes:     probes,
		waitProbes: make(map[string]Probe),
	}
	for _, name := range wait {
		if p, ok := probes[name]; ok {
			h.waitProbes[name] = p
		}
	}
	return h
}

func (h *Handler) Names() []string {
	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Wait polls every dependency flagged with wait until all of them succeed in
// the same round or ctx is done.
func (h *Handler) Wait(ctx context.Context, interval time.Duration) error {
	if len(h.waitProbes) == 0 {
		return nil
	}

	log.Info("waiting for dependency readiness")

	if h.ready() {
		return nil
	}

	timer := time.NewTicker(interval)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			if h.ready() {
				return nil
			}
		case <-ctx.Done():
			return fmt.Errorf("readiness interrupted: %w", ctx.Err())
		}
	}
}

func (h *Handler) ready() bool {
	ready := true

	for name, p := range h.waitProbes {
		if err := p.Exec(); err != nil {
			log.WithFields(log.Fields{"kind": "dependency", "name": name, "err": err}).Warn("not ready yet")
			ready = false
		}
	}

	if ready {
		log.Info("all dependencies are ready")
	}

	return ready
}

// Status executes every dependency concurrently. Dependencies that do not
// answer within timeout are reported as timed out.
func (h *Handler) Status(timeout time.Duration) (*StatusResponse, bool) {
	response := &StatusResponse{
		Dependencies: make(map[string]*Result, len(h.probes)),
	}

	results := make(chan *Result, len(h.probes))
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for name := range h.probes {
		response.Dependencies[name] = &Result{Name: name, OK: false, Message: "timed out"}

		go func(p Probe, name string) {
			if err := p.Exec(); err != nil {
				results <- &Result{Name: name, OK: false, Message: err.Error()}
			} else {
				results <- &Result{Name: name, OK: true}
			}
		}(h.probes[name], name)
	}

	success := true

collect:
	for i := 0; i < len(h.probes); i++ {
		select {
		case result := <-results:
			response.Dependencies[result.Name] = result
			success = success && result.OK
		case <-deadline.C:
			success = false
			log.WithFields(log.Fields{"kind": "dependency"}).Error("timed out")
			break collect
		}
	}

	return response, success
}

func filterWaitProbes(deps []config.Dependency, probes map[string]Probe) map[string]Probe {
	result := make(map[string]Probe)
	for i := range deps {
		if deps[i].Wait {
			result[deps[i].Name] = probes[deps[i].Name]
		}
	}
	return result
}

func buildProbesFromConfig(deps []config.Dependency) (map[string]Probe, error) {
	result := make(map[string]Probe)
	for i := range deps {
		d := &deps[i]
		switch {
		case d.Filesystem != "":
			result[d.Name] = NewFilesystemProbe(d.Filesystem)
		case d.HTTP != nil:
			p, err := NewHttpProbe(d.HTTP)
			if err != nil {
				return nil, fmt.Errorf("dependency %q: %w", d.Name, err)
			}
			result[d.Name] = p
		case d.MySQL != nil:
			result[d.Name] = NewMySQLProbe(d.MySQL)
		case d.Redis != nil:
			result[d.Name] = NewRedisProbe(d.Redis)
		case d.MongoDB != nil:
			result[d.Name] = NewMongoDBProbe(d.MongoDB)
		case d.Amqp != nil:
			result[d.Name] = NewAmqpProbe(d.Amqp)
		case d.SMTP != nil:
			result[d.Name] = NewSmtpProbe(d.SMTP)
		default:
			return nil, fmt.Errorf("dependency %q has no kind configured", d.Name)
		}
	}
	return result, nil
}
