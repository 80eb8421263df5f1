package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-html2img"
)

// runPresetsCmd lists the frame presets, or with "match W H" prints the
// label the studio shows for those dimensions.
func runPresetsCmd(args []string, env *Environment) error {
	fs := flag.NewFlagSet("presets", flag.ContinueOnError)
	jsonOutput := fs.Bool("json", false, "print presets as JSON")
	fs.Usage = func() { printPresetsUsage(env.Stderr) }
	if err := parseFlagSet(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	registry := html2img.DefaultRegistry()
	rest := fs.Args()

	if len(rest) > 0 && rest[0] == "match" {
		if len(rest) != 3 {
			return fmt.Errorf("%w: presets match needs <width> <height>", ErrUsage)
		}
		w := html2img.ParseDimension(rest[1])
		h := html2img.ParseDimension(rest[2])
		label := registry.Reconcile(w, h)
		if *jsonOutput {
			return writeJSON(env.Stdout, map[string]any{"width": w, "height": h, "label": label})
		}
		fmt.Fprintln(env.Stdout, label)
		return nil
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: unknown presets argument %q", ErrUsage, rest[0])
	}

	if *jsonOutput {
		return writeJSON(env.Stdout, registry)
	}
	printPresetGroup(env.Stdout, "Social Media", registry.Social)
	fmt.Fprintln(env.Stdout)
	printPresetGroup(env.Stdout, "Device Views", registry.Device)
	return nil
}

// printPresetGroup prints one preset cluster with aligned dimensions.
func printPresetGroup(w io.Writer, title string, presets []html2img.DimensionPreset) {
	fmt.Fprintln(w, title)
	for _, p := range presets {
		fmt.Fprintf(w, "  %-20s %5d x %d\n", p.Name, p.Width, p.Height)
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
