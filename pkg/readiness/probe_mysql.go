package readiness

import (
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mittwald/pageprobe/internal/config"
	"github.com/mittwald/pageprobe/internal/helper"
	log "github.com/sirupsen/logrus"
)

type mySQLProbe struct {
	dsn  string
	addr string
}

func NewMySQLProbe(cfg *config.MySQL) *mySQLProbe {
	hostname := helper.ResolveEnv(cfg.Hostname)
	port := helper.SetDefaultPort(helper.ResolveEnv(cfg.Port), "3306", "mysql")
	addr := net.JoinHostPort(hostname, port)

	connCfg := mysql.NewConfig()
	connCfg.User = helper.ResolveEnv(cfg.User)
	connCfg.Passwd = helper.ResolveEnv(cfg.Password)
	connCfg.Net = "tcp"
	connCfg.Addr = addr
	connCfg.DBName = helper.ResolveEnv(cfg.Database)
	connCfg.Timeout = 5 * time.Second

	return &mySQLProbe{
		dsn:  connCfg.FormatDSN(),
		addr: addr,
	}
}

func (m *mySQLProbe) Exec() error {
	db, err := sql.Open("mysql", m.dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := db.Query("SELECT 1")
	if err != nil {
		return err
	}
	_ = r.Close()

	log.WithFields(log.Fields{"kind": "dependency", "name": "mysql", "status": "alive", "host": m.addr}).Debug()
	return nil
}
