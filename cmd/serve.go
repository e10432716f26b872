package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/mittwald/pageprobe/pkg/pidfile"
	"github.com/mittwald/pageprobe/pkg/readiness"
	"github.com/mittwald/pageprobe/pkg/server"
	"github.com/mittwald/pageprobe/pkg/suite"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveListenPort    int
	serveListenAddress string
	servePidFile       string
	serveWatchInterval time.Duration
	serveNoWait        bool
	serveWaitTimeout   time.Duration
)

func init() {
	serveCmd.Flags().IntVarP(&serveListenPort, "port", "p", 9102, "set the port to listen for status requests")
	serveCmd.Flags().StringVar(&serveListenAddress, "listen-address", "", "listen address, e.g. 127.0.0.1:9102 or unix:///var/run/pageprobe.sock (overrides --port)")
	serveCmd.Flags().StringVar(&servePidFile, "pidfile", "", "write pageprobes process id to this file")
	serveCmd.Flags().DurationVar(&serveWatchInterval, "watch-interval", server.DefaultWatchInterval, "how often watchers receive a fresh report")
	serveCmd.Flags().BoolVar(&serveNoWait, "no-wait", false, "do not wait for dependencies flagged with wait")
	serveCmd.Flags().DurationVar(&serveWaitTimeout, "wait-timeout", 0, "how long to wait for dependencies (default: defaults.waitTimeout or 1m)")

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve suite reports over HTTP",
	Long:  "This sub-command starts the status server. Suites are evaluated on every request.",
	RunE: func(cmd *cobra.Command, args []string) error {
		pidFileHandle := pidfile.New(servePidFile)
		if err := pidFileHandle.Acquire(); err != nil {
			return fmt.Errorf("failed to write pid file to %q: %w", servePidFile, err)
		}

		defer func() {
			if err := pidFileHandle.Release(); err != nil {
				log.Errorf("error while cleaning up the pid file: %s", err)
			}
		}()

		cfg, suites, err := loadSuites()
		if err != nil {
			return err
		}

		deps, err := readiness.NewHandler(cfg.Dependencies)
		if err != nil {
			return err
		}
		log.WithField("dependencies", deps.Names()).Info("dependency checks configured")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if !serveNoWait {
			if err := waitForDependencies(ctx, cfg, deps, serveWaitTimeout); err != nil {
				return err
			}
		}

		addr := serveListenAddress
		if addr == "" {
			addr = fmt.Sprintf(":%d", serveListenPort)
		}

		srv := server.New(suites, suite.NewRunner(nil),
			server.WithListenAddr(addr),
			server.WithWatchInterval(serveWatchInterval),
			server.WithDependencies(deps),
		)

		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("status server stopped with error: %w", err)
		}

		log.Info("status server stopped without error")
		return nil
	},
}
