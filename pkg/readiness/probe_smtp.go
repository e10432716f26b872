package readiness

import (
	"net"
	"net/smtp"

	"github.com/mittwald/pageprobe/internal/config"
	"github.com/mittwald/pageprobe/internal/helper"
	log "github.com/sirupsen/logrus"
)

type smtpProbe struct {
	addr string
}

func NewSmtpProbe(cfg *config.SMTP) *smtpProbe {
	hostname := helper.ResolveEnv(cfg.Hostname)
	port := helper.SetDefaultPort(helper.ResolveEnv(cfg.Port), "25", "smtp")

	return &smtpProbe{
		addr: net.JoinHostPort(hostname, port),
	}
}

func (s *smtpProbe) Exec() error {
	client, err := smtp.Dial(s.addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Noop(); err != nil {
		return err
	}

	if err := client.Quit(); err != nil {
		return err
	}

	log.WithFields(log.Fields{"kind": "dependency", "name": "smtp", "status": "alive", "host": s.addr}).Debug()

	return nil
}
