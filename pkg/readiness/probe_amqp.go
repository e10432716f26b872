package readiness

import (
	"fmt"
	"net"
	"net/url"

	"github.com/mittwald/pageprobe/internal/config"
	"github.com/mittwald/pageprobe/internal/helper"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const (
	defaultVirtualHost = "/"
)

type amqpProbe struct {
	user        string
	password    string
	hostname    string
	virtualHost string
	port        string
}

func NewAmqpProbe(cfg *config.Amqp) *amqpProbe {
	virtualHost := helper.ResolveEnv(cfg.VirtualHost)
	if virtualHost == "" {
		virtualHost = defaultVirtualHost
	}

	return &amqpProbe{
		user:        helper.ResolveEnv(cfg.User),
		password:    helper.ResolveEnv(cfg.Password),
		hostname:    helper.ResolveEnv(cfg.Hostname),
		virtualHost: virtualHost,
		port:        helper.SetDefaultPort(helper.ResolveEnv(cfg.Port), "5672", "amqp"),
	}
}

func (a *amqpProbe) url() *url.URL {
	u := &url.URL{
		Scheme: "amqp",
		Host:   net.JoinHostPort(a.hostname, a.port),
		Path:   a.virtualHost,
	}

	if a.user != "" && a.password != "" {
		u.User = url.UserPassword(a.user, a.password)
	}

	return u
}

func (a *amqpProbe) Exec() error {
	u := a.url()

	conn, err := amqp.Dial(u.String())
	if err != nil {
		return fmt.Errorf("failed to dial amqp with url '%s': %s", u.Redacted(), err.Error())
	}
	defer conn.Close()

	log.WithFields(log.Fields{"kind": "dependency", "name": "amqp", "status": "alive", "host": u.Host}).Debug()

	return nil
}
