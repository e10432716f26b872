package readiness

import (
	"net"
	"time"

	"github.com/go-redis/redis"
	"github.com/mittwald/pageprobe/internal/config"
	"github.com/mittwald/pageprobe/internal/helper"
	log "github.com/sirupsen/logrus"
)

type redisProbe struct {
	addr     string
	password string
}

func NewRedisProbe(cfg *config.Redis) *redisProbe {
	hostname := helper.ResolveEnv(cfg.Hostname)
	port := helper.SetDefaultPort(helper.ResolveEnv(cfg.Port), "6379", "redis")

	return &redisProbe{
		addr:     net.JoinHostPort(hostname, port),
		password: helper.ResolveEnv(cfg.Password),
	}
}

func (r *redisProbe) Exec() error {
	client := redis.NewClient(&redis.Options{
		Addr:        r.addr,
		Password:    r.password,
		DialTimeout: 5 * time.Second,
	})
	defer client.Close()

	if _, err := client.Ping().Result(); err != nil {
		return err
	}

	log.WithFields(log.Fields{"kind": "dependency", "name": "redis", "status": "alive", "host": r.addr}).Debug()
	return nil
}
