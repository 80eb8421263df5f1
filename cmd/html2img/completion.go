package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-html2img"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags, comma separated
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Args        []string // fixed first arguments (e.g., shells, help topics)
	TakesFiles  bool     // accepts file arguments
	FilePattern string   // glob for file arguments (e.g., "*.html")
}

// completionHint enriches a FlagSet flag with value completion.
type completionHint struct {
	values []string
	glob   string
	dir    bool
}

// flagHints maps flag names to their value completion.
// Names, types and usage text come from the FlagSet itself.
var flagHints = map[string]completionHint{
	"format":   {values: formatValues()},
	"engine":   {values: html2img.Engines},
	"document": {values: html2img.DocumentEngines},
	"preset":   {values: html2img.DefaultRegistry().Names()},

	"config":      {glob: "*.yaml,*.yml"},
	"css":         {glob: "*.css"},
	"browser-bin": {glob: "*"},

	"output":     {dir: true},
	"asset-path": {dir: true},
	"source-dir": {dir: true},
}

func formatValues() []string {
	values := make([]string, len(html2img.Formats))
	for i, f := range html2img.Formats {
		values[i] = f.Extension()
	}
	return values
}

// kindOf maps a pflag value type to a completion type.
func kindOf(valueType string) flagType {
	switch {
	case valueType == "bool":
		return flagBool
	case strings.HasPrefix(valueType, "int"), strings.HasPrefix(valueType, "uint"):
		return flagInt
	default:
		return flagString
	}
}

// flagsOf lists the flags of fs in definition order.
func flagsOf(fs *flag.FlagSet) []flagDef {
	fs.SortFlags = false
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{Long: f.Name, Short: f.Shorthand, Desc: f.Usage, Type: kindOf(f.Value.Type())}
		hint := flagHints[f.Name]
		switch {
		case len(hint.values) > 0:
			fd.Type, fd.Values = flagEnum, hint.values
		case hint.glob != "":
			fd.Type, fd.FileGlob = flagFile, hint.glob
		case hint.dir:
			fd.Type = flagDir
		}
		flags = append(flags, fd)
	})
	return flags
}

// jsonFlag is the --json flag of presets and doctor.
var jsonFlag = flagDef{Long: "json", Type: flagBool, Desc: "print as JSON"}

// getCommands returns the command registry for completion.
// Flags are extracted from the real FlagSets.
func getCommands() []commandDef {
	exportFS, _ := newExportFlagSet()
	serveFS, _ := newServeFlagSet()

	return []commandDef{
		{
			Name:        "export",
			Desc:        "Export HTML to SVG, PNG, JPEG or PDF",
			Flags:       flagsOf(exportFS),
			TakesFiles:  true,
			FilePattern: "*.html,*.htm",
		},
		{
			Name:  "serve",
			Desc:  "Run the web studio",
			Flags: flagsOf(serveFS),
		},
		{
			Name:  "presets",
			Desc:  "List frame presets",
			Flags: []flagDef{jsonFlag},
			Args:  []string{"match"},
		},
		{
			Name:  "doctor",
			Desc:  "Check the export environment",
			Flags: []flagDef{jsonFlag},
		},
		{
			Name: "config",
			Desc: "Print the effective configuration",
			Flags: []flagDef{
				{Long: "config", Short: "c", Type: flagFile, FileGlob: "*.yaml,*.yml", Desc: "config file name or path"},
				{Long: "defaults", Type: flagBool, Desc: "print the built-in defaults only"},
			},
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: shellNames(),
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name: "help",
			Desc: "Show help for a command",
			Args: []string{"export", "serve", "presets", "doctor", "config", "completion", "version"},
		},
	}
}

// shellScript generates and documents one shell's completion.
type shellScript struct {
	shell    Shell
	desc     string
	generate func(io.Writer, []commandDef) error
	install  []string
}

var shellScripts = []shellScript{
	{
		shell:    ShellBash,
		desc:     "Bash completion script",
		generate: generateBash,
		install:  []string{"# Add to ~/.bashrc:", `eval "$(html2img completion bash)"`},
	},
	{
		shell:    ShellZsh,
		desc:     "Zsh completion script",
		generate: generateZsh,
		install:  []string{"# Add to ~/.zshrc (before compinit):", `eval "$(html2img completion zsh)"`},
	},
	{
		shell:    ShellFish,
		desc:     "Fish completion script",
		generate: generateFish,
		install:  []string{"html2img completion fish > ~/.config/fish/completions/html2img.fish"},
	},
	{
		shell:    ShellPowerShell,
		desc:     "PowerShell completion script",
		generate: generatePowerShell,
		install:  []string{"# Add to $PROFILE:", "html2img completion powershell | Out-String | Invoke-Expression"},
	},
}

func shellNames() []string {
	names := make([]string, len(shellScripts))
	for i, s := range shellScripts {
		names[i] = string(s.shell)
	}
	return names
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	for _, s := range shellScripts {
		if s.shell == shell {
			return s.generate(w, getCommands())
		}
	}
	return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedShell, shell, strings.Join(shellNames(), ", "))
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	switch len(args) {
	case 0:
		printCompletionUsage(env.Stdout)
		return nil
	case 1:
		return GenerateCompletion(env.Stdout, Shell(args[0]))
	default:
		return fmt.Errorf("%w: completion takes one shell, got %q", ErrUsage, args)
	}
}

func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2img completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	for _, s := range shellScripts {
		fmt.Fprintf(w, "  %-11s %s\n", s.shell, s.desc)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	for _, s := range shellScripts {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s:\n", s.desc[:strings.Index(s.desc, " ")])
		for _, line := range s.install {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}
