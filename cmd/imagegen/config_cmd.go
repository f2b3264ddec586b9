package main

import (
	"fmt"

	"github.com/feBittar/image-gen-nextjs-sub003/internal/yamlutil"
)

// runConfig prints the effective configuration as YAML, after the config
// file, IMAGEGEN_* variables and flags have been applied.
func runConfig(args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("config", env.Stderr)
	addCommonFlags(fs, &common)

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}

	cfg, err := resolveConfig(fs, &common)
	if err != nil {
		return err
	}

	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(out)
	return err
}
