package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2img <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  export      Export HTML to SVG, PNG, JPEG or PDF")
	fmt.Fprintln(w, "  serve       Run the web studio")
	fmt.Fprintln(w, "  presets     List frame presets")
	fmt.Fprintln(w, "  doctor      Check the export environment")
	fmt.Fprintln(w, "  config      Print the effective configuration")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'html2img help <command>' for details on a specific command.")
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2img export [input...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export HTML files to images or PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    HTML file, directory, or - for stdin (default: a sample)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output directory, or - for stdout")
	fmt.Fprintln(w, "      --name <s>            Artifact filename stem (single input only)")
	fmt.Fprintln(w, "      --sample <s>          Sample exported when no input is given")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel studios (0 = auto, max 8)")
	fmt.Fprintln(w, "      --watch               Re-export inputs when they change")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Frame:")
	fmt.Fprintln(w, "  -W, --width <n>           Frame width in px (default 1080)")
	fmt.Fprintln(w, "  -H, --height <n>          Frame height in px (default 1080)")
	fmt.Fprintln(w, "      --preset <s>          Preset name, see 'html2img presets'")
	fmt.Fprintln(w, "  -f, --format <s>          Format: svg, png, jpg, pdf (default svg)")
	fmt.Fprintln(w, "      --quality <n>         JPEG quality 1-100 (default 95)")
	fmt.Fprintln(w)
	printMarkupUsage(w)
	printBrowserUsage(w)
	printStorageUsage(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing and debug logs")
	fmt.Fprintln(w, "      --metrics             Print export metrics to stderr on exit")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2img serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the web studio: edit markup, preview the frame, export.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <host:port>    Listen address (default 127.0.0.1:8080)")
	fmt.Fprintln(w, "      --open                Open the studio in the default browser")
	fmt.Fprintln(w, "      --name <s>            Artifact filename stem")
	fmt.Fprintln(w, "      --sample <s>          Initial editor sample")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	printMarkupUsage(w)
	printBrowserUsage(w)
	printStorageUsage(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w, "      --metrics             Print export metrics to stderr on exit")
}

func printMarkupUsage(w io.Writer) {
	fmt.Fprintln(w, "Markup:")
	fmt.Fprintln(w, "      --css <path>          CSS file injected before capture")
	fmt.Fprintln(w, "      --style <s>           Named style from the assets")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
	fmt.Fprintln(w, "      --source-dir <dir>    Base for relative references")
	fmt.Fprintln(w)
}

func printBrowserUsage(w io.Writer) {
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "      --engine <s>          Capture engine: rod, cdp (default rod)")
	fmt.Fprintln(w, "      --document <s>        PDF composer: fpdf, chrome (default fpdf)")
	fmt.Fprintln(w, "      --browser-bin <path>  Chrome/Chromium executable")
	fmt.Fprintln(w, "      --no-sandbox          Disable the Chrome sandbox")
	fmt.Fprintln(w, "  -t, --timeout <d>         Export timeout (default 30s)")
	fmt.Fprintln(w)
}

func printStorageUsage(w io.Writer) {
	fmt.Fprintln(w, "Storage:")
	fmt.Fprintln(w, "      --s3                  Also upload artifacts to S3")
	fmt.Fprintln(w, "      --s3-endpoint <host>  S3 endpoint (host:port)")
	fmt.Fprintln(w, "      --s3-bucket <s>       S3 bucket")
	fmt.Fprintln(w, "      --s3-prefix <s>       S3 key prefix")
	fmt.Fprintln(w, "                            Credentials: HTML2IMG_S3_ACCESS_KEY, HTML2IMG_S3_SECRET_KEY")
	fmt.Fprintln(w)
}

// printPresetsUsage prints usage for the presets command.
func printPresetsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2img presets [match <width> <height>] [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List social media and device presets, or print the label")
	fmt.Fprintln(w, "the studio shows for a width and height.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print as JSON")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2img doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, sandbox and temp directory setup.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print results as JSON")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2img config [--config <name>] [--defaults]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration an export would use, as YAML.")
	fmt.Fprintln(w, "Precedence: flags > HTML2IMG_* variables > config file > defaults.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --defaults            Print the built-in defaults only")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "export":
		printExportUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "presets":
		printPresetsUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: html2img version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: html2img help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}
