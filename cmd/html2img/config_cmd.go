package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-html2img/internal/config"
)

// redacted replaces secrets in printed configuration.
const redacted = "********"

// runConfigCmd prints the effective configuration as YAML.
func runConfigCmd(args []string, env *Environment) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var common commonFlags
	fs.StringVarP(&common.config, "config", "c", "", "config file name or path")
	defaults := fs.Bool("defaults", false, "print the built-in defaults only")
	fs.Usage = func() { printConfigUsage(env.Stderr) }
	if err := parseFlagSet(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: config takes no arguments, got %q", ErrUsage, fs.Args())
	}

	var cfg *config.Config
	if *defaults {
		cfg = config.DefaultConfig()
	} else {
		loaded, err := loadRunConfig(common.config, env)
		if err != nil {
			return err
		}
		if err := finalizeConfig(loaded); err != nil {
			return err
		}
		cfg = loaded
	}

	redactSecrets(cfg)
	out, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(out)
	return err
}

// redactSecrets masks credentials set in cfg.
func redactSecrets(cfg *config.Config) {
	s3 := &cfg.Storage.S3
	if s3.AccessKey != "" {
		s3.AccessKey = redacted
	}
	if s3.SecretKey != "" {
		s3.SecretKey = redacted
	}
}
