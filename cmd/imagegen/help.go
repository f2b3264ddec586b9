package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: imagegen <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Serve the asset and render HTTP API")
	fmt.Fprintln(w, "  render     Compose one page from a YAML/JSON input file")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check Chrome, environment and public directory")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'imagegen help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags shared by config-driven commands.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --public <dir>        Public directory holding fonts/ and logos/")
	fmt.Fprintln(w, "      --base-url <url>      Origin relative asset URLs resolve against")
	fmt.Fprintln(w, "  -t, --timeout <d>         Layout pass timeout (e.g. 30s)")
	fmt.Fprintln(w, "  -w, --workers <n>         Browser instances (0 = auto)")
	fmt.Fprintln(w, "      --log-level <s>       debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      json, console")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment: IMAGEGEN_CONFIG, IMAGEGEN_ADDR, IMAGEGEN_PUBLIC_DIR,")
	fmt.Fprintln(w, "IMAGEGEN_BASE_URL, IMAGEGEN_TIMEOUT, IMAGEGEN_WORKERS, IMAGEGEN_CORS_ORIGINS,")
	fmt.Fprintln(w, "IMAGEGEN_LOG_LEVEL, IMAGEGEN_LOG_FORMAT. Flags override environment,")
	fmt.Fprintln(w, "environment overrides the config file.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: imagegen serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the asset and render HTTP API until interrupted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :8080)")
	fmt.Fprintln(w, "      --cors-origin <url>   Allowed CORS origin (repeatable, default *)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: imagegen render <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compose one page and write its HTML.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    YAML or JSON page input file, or - for stdin")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output HTML file (default: stdout)")
	fmt.Fprintln(w, "      --css <path|css>      CSS file or inline CSS, applied last")
	fmt.Fprintln(w, "  -l, --layout              Run auto-fit and arrow spacing in headless Chrome")
	fmt.Fprintln(w, "      --width <px>          Canvas width")
	fmt.Fprintln(w, "      --height <px>         Canvas height")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "config":
		fmt.Fprintln(env.Stdout, "Usage: imagegen config [flags]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Print the effective configuration as YAML.")
		fmt.Fprintln(env.Stdout)
		printCommonUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: imagegen doctor [--json] [flags]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check Chrome, the environment and the public directory.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: imagegen version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: imagegen help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
