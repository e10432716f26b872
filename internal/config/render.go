package config

import (
	"bytes"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/mittwald/pageprobe/internal/helper"
	"github.com/pkg/errors"
)

type templateData struct {
	Env    map[string]string
	Params map[string]interface{}
}

// Render resolves a configuration value. Values prefixed with "ENV:" are
// read from the environment, values containing "{{" are executed as
// templates with the sprig function set.
func Render(name, value string, params map[string]interface{}) (string, error) {
	if !strings.Contains(value, "{{") {
		return helper.ResolveEnv(value), nil
	}

	tpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(value)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse template for %s", name)
	}

	data := templateData{
		Env:    make(map[string]string),
		Params: params,
	}

	for _, e := range os.Environ() {
		e := strings.SplitN(e, "=", 2)
		if len(e) > 1 {
			data.Env[e[0]] = e[1]
		}
	}

	var out bytes.Buffer
	if err := tpl.Execute(&out, &data); err != nil {
		return "", errors.Wrapf(err, "failed to render template for %s", name)
	}

	return out.String(), nil
}

// RenderMap renders every value of in; nil stays nil.
func RenderMap(name string, in map[string]string, params map[string]interface{}) (map[string]string, error) {
	if in == nil {
		return nil, nil
	}

	out := make(map[string]string, len(in))
	for k, v := range in {
		rendered, err := Render(name+"."+k, v, params)
		if err != nil {
			return nil, err
		}
		out[k] = rendered
	}

	return out, nil
}
