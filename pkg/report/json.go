package report

import (
	"encoding/json"
	"io"

	"github.com/mittwald/pageprobe/pkg/suite"
	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
)

type document struct {
	Reports  []*suite.Report `json:"reports"`
	ExitCode int             `json:"exitCode"`
}

// JSON writes reports as an indented JSON document, colored when requested.
func JSON(w io.Writer, colored bool, reports ...*suite.Report) error {
	if reports == nil {
		reports = []*suite.Report{}
	}

	out, err := json.MarshalIndent(document{Reports: reports, ExitCode: suite.ExitCode(reports...)}, "", "    ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal reports as JSON")
	}

	if colored {
		out = pretty.Color(out, nil)
	}

	_, err = w.Write(append(out, '\n'))
	return err
}
