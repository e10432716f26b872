package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/pretty"
)

type APIResponse interface {
	Print(w io.Writer) error
	Err() error
}

func printJSON(w io.Writer, raw []byte, colored bool) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return err
	}

	out := buf.Bytes()
	if colored {
		out = pretty.Color(out, nil)
	}

	_, err := fmt.Fprintln(w, string(out))
	return err
}
