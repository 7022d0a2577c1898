package config

import (
	_ "embed"
	"fmt"
	"math"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// Validate checks cfg against the configuration schema: value types, the
// denied-files policy enum and the [0,1] range of recency_bias.
func Validate(cfg *Config) error {
	if math.IsNaN(cfg.RecencyBias) || math.IsInf(cfg.RecencyBias, 0) {
		return &Error{Field: "recency_bias", Message: "must be a number between 0 and 1"}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	val := ctx.Encode(cfg)
	if err := val.Err(); err != nil {
		return &Error{Message: "cannot encode configuration", Err: err}
	}

	if err := def.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return &Error{Field: fieldOf(err), Message: "invalid value", Err: err}
	}
	return nil
}

// fieldOf returns the configuration key named by the first CUE error.
func fieldOf(err error) string {
	for _, e := range cueerrors.Errors(err) {
		if path := e.Path(); len(path) > 0 {
			return path[len(path)-1]
		}
	}
	return ""
}
