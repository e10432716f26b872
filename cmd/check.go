package cmd

import (
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mittwald/pageprobe/pkg/probe"
	"github.com/mittwald/pageprobe/pkg/report"
	"github.com/mittwald/pageprobe/pkg/suite"
	"github.com/spf13/cobra"
)

var (
	checkMarkers      []string
	checkRegexMarkers []string
	checkHeaders      []string
	checkThreshold    float64
	checkTimeout      time.Duration
	checkName         string
	checkContentType  string
	checkJSON         bool
)

const markerLabelSeparator = "::"

func init() {
	checkCmd.Flags().StringArrayVarP(&checkMarkers, "marker", "m", nil, "literal marker as pattern or pattern::label (repeatable)")
	checkCmd.Flags().StringArrayVar(&checkRegexMarkers, "regex-marker", nil, "regular expression marker as pattern or pattern::label (repeatable)")
	checkCmd.Flags().StringArrayVarP(&checkHeaders, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	checkCmd.Flags().Float64VarP(&checkThreshold, "threshold", "t", probe.DefaultThreshold, "share of markers that must be present, in (0, 1]")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", probe.DefaultTimeout, "fetch timeout")
	checkCmd.Flags().StringVar(&checkName, "name", "", "name shown in the report")
	checkCmd.Flags().StringVar(&checkContentType, "expect-content-type", "", "fail unless the response content type contains this value, e.g. text/html")
	checkCmd.Flags().BoolVarP(&checkJSON, "json", "j", false, "print the report as JSON")

	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Args:  cobra.ExactArgs(1),
	Short: "Probe a single URL for markers",
	Long: "This sub-command fetches one URL and checks the given markers against the body.\n\n" +
		"Markers are written as pattern or pattern::label; the label defaults to the pattern. " +
		"The first '::' separates the label, so patterns may contain '=' or a single ':'.",
	Example: "  pageprobe check http://localhost:9595/ -m 'orange-500::Couleur orange' -m 'dropdown::Menu déroulant' -m lang=fr",
	RunE: func(cmd *cobra.Command, args []string) error {
		checklist := make(probe.Checklist, 0, len(checkMarkers)+len(checkRegexMarkers))
		for _, raw := range checkMarkers {
			checklist = append(checklist, parseMarker(raw, false))
		}
		for _, raw := range checkRegexMarkers {
			checklist = append(checklist, parseMarker(raw, true))
		}

		headers, err := parseHeaders(checkHeaders)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		target := probe.Target{Name: checkName, URL: args[0], Headers: headers, ExpectContentType: checkContentType}
		res := probe.NewProber(probe.WithDefaultTimeout(checkTimeout)).Evaluate(ctx, target, checklist, checkThreshold)
		rep := suite.NewReport("check", []*probe.Result{res})

		if checkJSON {
			if err := report.JSON(cmd.OutOrStdout(), !color.NoColor, rep); err != nil {
				return err
			}
		} else {
			report.Text(cmd.OutOrStdout(), color.NoColor, rep)
		}

		return exitWith(suite.ExitCode(rep))
	},
}

func parseMarker(raw string, regex bool) probe.Marker {
	m := probe.Marker{Pattern: raw, Label: raw, Regexp: regex}
	if pattern, label, ok := strings.Cut(raw, markerLabelSeparator); ok && pattern != "" {
		m.Pattern = pattern
		m.Label = pattern
		if label != "" {
			m.Label = label
		}
	}
	return m
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("header %q is not of the form 'Name: value'", h)
		}
		headers[http.CanonicalHeaderKey(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
	return headers, nil
}
