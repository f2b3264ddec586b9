package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/feBittar/image-gen-nextjs-sub003/internal/assets"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/config"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/fileutil"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/hints"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	Assets   assetInfo  `json:"assets"`
	Server   serverInfo `json:"server"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// assetInfo describes the public directory.
type assetInfo struct {
	PublicDir    string   `json:"public_dir"`
	Exists       bool     `json:"exists"`
	Fonts        int      `json:"fonts"`
	Logos        int      `json:"logos"`
	UnnamedFonts []string `json:"unnamed_fonts,omitempty"` // no family in the name table
}

// serverInfo reports whether serve could bind its address.
type serverInfo struct {
	Addr      string `json:"addr"`
	Available bool   `json:"available"`
}

type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

func (r *doctorResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// finish derives the overall status from the collected messages.
func (r *doctorResult) finish() {
	switch {
	case len(r.Errors) > 0:
		r.Status = statusErrors
	case len(r.Warnings) > 0:
		r.Status = statusWarnings
	default:
		r.Status = statusReady
	}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	var common commonFlags
	var jsonOutput bool
	fs := newFlagSet("doctor", env.Stderr)
	addCommonFlags(fs, &common)
	fs.BoolVar(&jsonOutput, "json", false, "machine-readable output")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	result := &doctorResult{
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	cfg, err := resolveConfig(fs, &common)
	if err != nil {
		result.fail("Config: %v", err)
		cfg = config.DefaultConfig()
	}

	checkChrome(result)
	checkEnvironment(result)
	checkPublicDir(result, cfg.Assets.PublicDir)
	checkAddr(result, cfg.Server.Addr)
	checkSystem(result)
	result.finish()

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// checkChrome looks for the browser the layout pass launches.
// Composition works without it, so absence is a warning.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		if chromePath, found = launcher.LookPath(); !found {
			result.warn("Chrome/Chromium not found, layout pass unavailable. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if !fileutil.FileExists(chromePath) {
		result.fail("ROD_BROWSER_BIN points to %s, which does not exist", chromePath)
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- browser path from launcher or operator env
	if err != nil {
		result.warn("Could not get Chrome version: %v", err)
		return
	}
	result.Chrome.Version = strings.TrimSpace(string(out))
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()
	result.Env.CI = hints.InCI() || os.Getenv("CIRCLECI") != ""

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" && result.Env.BrowserBin == "" {
		result.warn("Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer returns whether a container was detected and which signal
// gave it away.
func isContainer() (bool, string) {
	switch {
	case os.Getenv("IMAGEGEN_CONTAINER") == "1":
		return true, "IMAGEGEN_CONTAINER=1"
	case hints.IsInContainer():
		return true, "/.dockerenv"
	case os.Getenv("container") != "":
		return true, "container=" + os.Getenv("container")
	case os.Getenv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkPublicDir counts the assets serve would list. A missing directory is
// a warning: the first upload creates it.
func checkPublicDir(result *doctorResult, publicDir string) {
	result.Assets.PublicDir = publicDir
	if abs, err := filepath.Abs(publicDir); err == nil {
		result.Assets.PublicDir = abs
	}

	if !fileutil.DirExists(publicDir) {
		result.warn("Public directory %s does not exist yet", result.Assets.PublicDir)
		return
	}
	result.Assets.Exists = true

	dir, err := assets.NewDirectory(publicDir, assets.WithMetadata(true))
	if err != nil {
		result.fail("%v", err)
		return
	}

	for _, kind := range assets.Kinds() {
		records, err := dir.List(context.Background(), kind)
		if err != nil {
			result.fail("%v", err)
			continue
		}
		if kind == assets.KindLogos {
			result.Assets.Logos = len(records)
			continue
		}
		result.Assets.Fonts = len(records)
		for _, rec := range records {
			if rec.Family == "" && rec.Extension != ".woff" && rec.Extension != ".woff2" {
				result.Assets.UnnamedFonts = append(result.Assets.UnnamedFonts, rec.Filename)
			}
		}
	}

	switch {
	case result.Assets.Fonts == 0:
		result.warn("No fonts uploaded, pages use the browser default font")
	case len(result.Assets.UnnamedFonts) > 0:
		result.warn("Fonts without a readable family name: %s", strings.Join(result.Assets.UnnamedFonts, ", "))
	}
}

// checkAddr tries to bind the serve address and releases it immediately.
func checkAddr(result *doctorResult, addr string) {
	result.Server.Addr = addr
	if addr == "" {
		return
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		result.warn("Cannot listen on %s: %v", addr, err)
		return
	}
	_ = ln.Close()
	result.Server.Available = true
}

// checkSystem writes a page to the temp directory the way the layout pass does.
func checkSystem(result *doctorResult) {
	_, cleanup, err := fileutil.WriteTempFile("<!DOCTYPE html>", "html")
	if err != nil {
		result.fail("Temp directory not writable: %s", os.TempDir())
		return
	}
	cleanup()
	result.System.TempWritable = true
}

// Report line levels.
const (
	levelOK    = "OK"
	levelWarn  = "WARN"
	levelError = "ERROR"
)

type reportLine struct {
	level string
	text  string
}

func okLine(format string, args ...any) reportLine {
	return reportLine{levelOK, fmt.Sprintf(format, args...)}
}

// printSection writes a titled block of [LEVEL] lines.
func printSection(w io.Writer, title string, lines ...reportLine) {
	if len(lines) == 0 {
		return
	}
	if title != "" {
		fmt.Fprintln(w, title)
	}
	for _, l := range lines {
		fmt.Fprintf(w, "  [%s] %s\n", l.level, l.text)
	}
	fmt.Fprintln(w)
}

func messageLines(level string, msgs []string) []reportLine {
	lines := make([]reportLine, len(msgs))
	for i, m := range msgs {
		lines[i] = reportLine{level, m}
	}
	return lines
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "imagegen doctor")
	fmt.Fprintln(w)

	var chrome []reportLine
	if r.Chrome.Found {
		chrome = append(chrome, okLine("Found at %s", r.Chrome.Path))
		if r.Chrome.Version != "" {
			chrome = append(chrome, okLine("Version: %s", r.Chrome.Version))
		}
		if r.Chrome.Sandbox {
			chrome = append(chrome, okLine("Sandbox: enabled"))
		} else {
			chrome = append(chrome, okLine("Sandbox: disabled (ROD_NO_SANDBOX=1)"))
		}
	} else {
		chrome = append(chrome, reportLine{levelWarn, "Not found"})
	}
	printSection(w, "Chrome/Chromium", chrome...)

	environment := []reportLine{okLine("Platform: %s/%s", r.Env.OS, r.Env.Arch)}
	if r.Env.Container {
		environment = append(environment, okLine("Container: detected (%s)", r.Env.ContainerHint))
	}
	if r.Env.CI {
		environment = append(environment, okLine("CI: detected"))
	}
	printSection(w, "Environment", environment...)

	if r.Assets.Exists {
		printSection(w, "Assets",
			okLine("Public directory: %s", r.Assets.PublicDir),
			okLine("Fonts: %d, logos: %d", r.Assets.Fonts, r.Assets.Logos))
	} else {
		printSection(w, "Assets", reportLine{levelWarn, fmt.Sprintf("Public directory: %s (missing)", r.Assets.PublicDir)})
	}

	if r.Server.Addr != "" {
		if r.Server.Available {
			printSection(w, "Server", okLine("Address %s: available", r.Server.Addr))
		} else {
			printSection(w, "Server", reportLine{levelWarn, fmt.Sprintf("Address %s: in use", r.Server.Addr)})
		}
	}

	if r.System.TempWritable {
		printSection(w, "System", okLine("Temp directory: writable"))
	} else {
		printSection(w, "System", reportLine{levelError, "Temp directory: not writable"})
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		printSection(w, "", messageLines(levelWarn, r.Warnings)...)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		printSection(w, "", messageLines(levelError, r.Errors)...)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
