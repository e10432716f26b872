package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mittwald/pageprobe/pkg/cli"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:        "watch <suite>",
	Args:       cobra.ExactArgs(1),
	ArgAliases: []string{"suite"},
	Short:      "Stream reports of a suite from a running status server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		resp := cli.NewAPIClient(apiAddress, !color.NoColor).SuiteWatch(ctx, args[0])
		if err := resp.Print(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("failed to watch suite %s: %w", args[0], err)
		}
		return nil
	},
}
