package readiness

import (
	"context"
	"net"
	"net/url"
	"time"

	"github.com/mittwald/pageprobe/internal/config"
	"github.com/mittwald/pageprobe/internal/helper"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type mongoDBProbe struct {
	uri  string
	host string
}

func NewMongoDBProbe(cfg *config.MongoDB) *mongoDBProbe {
	if cfg.URL != "" {
		uri := helper.ResolveEnv(cfg.URL)
		return &mongoDBProbe{uri: uri, host: uri}
	}

	hostname := helper.ResolveEnv(cfg.Hostname)
	port := helper.SetDefaultPort(helper.ResolveEnv(cfg.Port), "27017", "mongodb")

	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(hostname, port),
		Path:   helper.ResolveEnv(cfg.Database),
	}

	user := helper.ResolveEnv(cfg.User)
	password := helper.ResolveEnv(cfg.Password)
	if user != "" && password != "" {
		u.User = url.UserPassword(user, password)
	}

	return &mongoDBProbe{
		uri:  u.String(),
		host: u.Host,
	}
}

func (m *mongoDBProbe) Exec() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(ctx) }()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return err
	}

	log.WithFields(log.Fields{"kind": "dependency", "name": "mongodb", "status": "alive", "host": m.host}).Debug()

	return nil
}
