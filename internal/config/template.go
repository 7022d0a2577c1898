package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/andrewferrier/memy/internal/denylist"
)

//go:embed memy.toml.tmpl
var templateText string

var configTemplate = template.Must(template.New(FileName).Funcs(template.FuncMap{
	"join": strings.Join,
	"list": tomlList,
}).Parse(templateText))

// Template renders the commented configuration file printed by
// generate-config. Every setting appears commented out at its default.
func Template() (string, error) {
	data := struct {
		*Config
		Builtin []string
	}{
		Config:  Default(),
		Builtin: denylist.Builtin,
	}

	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render config template: %w", err)
	}
	return buf.String(), nil
}

func tomlList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = strconv.Quote(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
