package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mittwald/pageprobe/pkg/readiness"
	"github.com/mittwald/pageprobe/pkg/report"
	"github.com/mittwald/pageprobe/pkg/suite"
	"github.com/spf13/cobra"
)

var (
	runJSON        bool
	runNoWait      bool
	runWaitTimeout time.Duration
)

func init() {
	runCmd.Flags().BoolVarP(&runJSON, "json", "j", false, "print the reports as JSON")
	runCmd.Flags().BoolVar(&runNoWait, "no-wait", false, "do not wait for dependencies flagged with wait")
	runCmd.Flags().DurationVar(&runWaitTimeout, "wait-timeout", 0, "how long to wait for dependencies (default: defaults.waitTimeout or 1m)")

	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [suite...]",
	Short: "Run content probe suites once",
	Long: "This sub-command evaluates the configured suites once and prints a report.\n\n" +
		"Exit status is 0 when every probe passed, 1 when markers were missing and 2 when a probe could not run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, suites, err := loadSuites(args...)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if !runNoWait && len(cfg.Dependencies) > 0 {
			deps, err := readiness.NewHandler(cfg.Dependencies)
			if err != nil {
				return err
			}
			if err := waitForDependencies(ctx, cfg, deps, runWaitTimeout); err != nil {
				return err
			}
		}

		reports := suite.NewRunner(nil).RunAll(ctx, suites)

		if runJSON {
			if err := report.JSON(cmd.OutOrStdout(), !color.NoColor, reports...); err != nil {
				return err
			}
		} else {
			report.Text(cmd.OutOrStdout(), color.NoColor, reports...)
		}

		return exitWith(suite.ExitCode(reports...))
	},
}
