package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/mittwald/pageprobe/pkg/cli"
	"github.com/mittwald/pageprobe/pkg/readiness"
	"github.com/mittwald/pageprobe/pkg/report"
	"github.com/mittwald/pageprobe/pkg/suite"
	"github.com/spf13/cobra"
)

const defaultAPIAddress = "http://localhost:9102"

var (
	apiAddress string
	statusJSON bool
)

func init() {
	statusCmd.Flags().StringVar(&apiAddress, "api-address", defaultAPIAddress, "address of a running 'pageprobe serve'")
	statusCmd.Flags().BoolVarP(&statusJSON, "json", "j", false, "print the status as JSON")
	watchCmd.Flags().StringVar(&apiAddress, "api-address", defaultAPIAddress, "address of a running 'pageprobe serve'")

	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:        "status [suite]",
	Args:       cobra.MaximumNArgs(1),
	ArgAliases: []string{"suite"},
	Short:      "Ask a running status server for reports",
	Long:       "This command queries a running 'pageprobe serve'. Without a suite name every suite and dependency is reported.",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiClient := cli.NewAPIClient(apiAddress, !color.NoColor)
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			resp := apiClient.SuiteStatus(args[0])
			if resp.Err() != nil {
				return fmt.Errorf("failed to get status of suite %s: %w", args[0], resp.Err())
			}

			if statusJSON {
				if err := resp.Print(out); err != nil {
					return fmt.Errorf("failed to print output: %w", err)
				}
			} else {
				report.Text(out, color.NoColor, &resp.Body)
			}
			return exitWith(suite.ExitCode(&resp.Body))
		}

		resp := apiClient.Status()
		if resp.Err() != nil {
			return fmt.Errorf("failed to get status: %w", resp.Err())
		}

		if statusJSON {
			if err := resp.Print(out); err != nil {
				return fmt.Errorf("failed to print output: %w", err)
			}
		} else {
			report.Text(out, color.NoColor, resp.Body.Suites...)
			printDependencies(out, resp.Body.Dependencies)
		}

		code := suite.ExitCode(resp.Body.Suites...)
		for _, dep := range resp.Body.Dependencies {
			if !dep.OK {
				code = suite.ExitErrored
			}
		}
		return exitWith(code)
	},
}

func printDependencies(w io.Writer, deps map[string]*readiness.Result) {
	if len(deps) == 0 {
		return
	}

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "Dependencies:")
	for _, name := range names {
		if dep := deps[name]; dep.OK {
			fmt.Fprintf(w, "  %s %s\n", colorReady("▶︎ READY"), colorHighlight(name))
		} else {
			fmt.Fprintf(w, "  %s %s: %s\n", colorFailed("◼︎ NOT READY"), colorHighlight(name), dep.Message)
		}
	}
}
