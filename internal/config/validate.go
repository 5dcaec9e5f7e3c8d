package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"go.uber.org/multierr"
)

//go:embed schema.cue
var schemaSource string

// Validate checks the configuration against the embedded CUE schema and
// the rules that span several keys. Every problem found is reported.
func (c *Config) Validate() error {
	var errs error

	ctx := cuecontext.New()
	def := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return &Error{Source: "schema", Err: err}
	}
	v := def.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		for _, e := range cueerrors.Errors(err) {
			errs = multierr.Append(errs, formatCUEError(e))
		}
	}

	if c.EVStatLimit > c.EVLimit {
		errs = multierr.Append(errs, fmt.Errorf("ev_stat_limit (%d) exceeds ev_limit (%d)", c.EVStatLimit, c.EVLimit))
	}
	if c.MaxOutboundBytes < c.MaxLineBytes {
		errs = multierr.Append(errs, fmt.Errorf("max_outbound_bytes (%d) is below max_line_bytes (%d)", c.MaxOutboundBytes, c.MaxLineBytes))
	}
	if _, ok := ParseVersion(c.GameVersion); !ok {
		errs = multierr.Append(errs, fmt.Errorf("game_version %q is not a version", c.GameVersion))
	}
	if err := requireDir("pbs_dir", c.PBSDir); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.LogDir != "" {
		if err := requireDir("log_dir", c.LogDir); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if errs != nil {
		return &Error{Source: "validation", Err: errs}
	}
	return nil
}

func requireDir(key, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %s is not a directory", key, path)
	}
	return nil
}

// formatCUEError makes sure a schema violation names the offending key.
func formatCUEError(err cueerrors.Error) error {
	msg := err.Error()
	if path := strings.Join(err.Path(), "."); path != "" && !strings.Contains(msg, path) {
		msg = path + ": " + msg
	}
	return errors.New(msg)
}
