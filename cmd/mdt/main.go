package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"pkt.systems/mdt"
	"pkt.systems/mdt/internal/config"
	"pkt.systems/mdt/internal/logger"
	"pkt.systems/mdt/internal/ui"
	"pkt.systems/mdt/search"
)

const defaultWidth = 80

// version is stamped by the release build with -ldflags "-X main.version=...".
var version = "devel"

func main() {
	var (
		themeName   string
		widthFlag   int
		configPath  string
		noHighlight bool
		listThemes  bool
		plain       bool
		osc8Flag    string
		showHidden  bool
		showAll     bool
		logLevel    string
		logFile     string
		showVersion bool
	)

	flags := pflag.NewFlagSet("mdt", pflag.ExitOnError)
	flags.StringVarP(&themeName, "theme", "t", "", "Theme name (dark or light)")
	flags.IntVarP(&widthFlag, "width", "w", 0, "Output width override (0 uses terminal width if available)")
	flags.StringVarP(&configPath, "config", "c", "", "Config file path")
	flags.BoolVar(&noHighlight, "no-highlight", false, "Disable syntax highlighting in code blocks")
	flags.BoolVar(&listThemes, "list-themes", false, "List available themes")
	flags.BoolVarP(&plain, "plain", "b", false, "Generate non-ANSI output")
	flags.StringVarP(&osc8Flag, "osc8", "8", "auto", "OSC8 hyperlinks: auto|on|off")
	flags.BoolVar(&showHidden, "hidden", false, "Include files under hidden directories when browsing")
	flags.BoolVarP(&showAll, "all", "a", false, "Disable hidden and ignored directory filters when browsing")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error")
	flags.StringVar(&logFile, "log-file", "", "Log file path (default stderr)")
	flags.BoolVarP(&showVersion, "version", "V", false, "Print version and exit")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mdt [flags] [file|directory]\n")
		fmt.Fprintln(os.Stderr, "\nIf no input is provided, Markdown is read from stdin.")
		fmt.Fprintln(os.Stderr, "A directory argument opens the file browser.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(config.ExitUsage)
	}

	if showVersion {
		fmt.Println("mdt", version)
		return
	}

	if listThemes {
		printThemes()
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(config.ExitConfigErr)
	}

	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	if logFile == "" {
		logFile = cfg.LogFile
	}
	if err := logger.InitFile(logger.ParseLevel(logLevel), logFile); err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		os.Exit(config.ExitConfigErr)
	}

	if themeName == "" {
		themeName = cfg.Theme
	}
	theme, err := cfg.SelectTheme(themeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "theme: %v\n\n", err)
		printThemes()
		os.Exit(config.ExitUsage)
	}

	highlight := cfg.SyntaxHighlighting && !noHighlight

	osc8, err := resolveOSC8(osc8Flag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --osc8 %q: %v\n", osc8Flag, err)
		os.Exit(config.ExitUsage)
	}

	args := flags.Args()
	if len(args) > 1 {
		flags.Usage()
		os.Exit(config.ExitUsage)
	}

	searchOpts := search.Options{
		ShowHidden:  showHidden || cfg.HiddenFiles,
		ShowAll:     showAll,
		IgnoredDirs: cfg.IgnoredDirs,
	}

	uiOpts := ui.Options{
		Theme:      theme,
		Width:      widthFlag,
		Highlight:  highlight,
		OSC8:       osc8,
		SearchOpts: searchOpts,
	}

	interactive := isatty.IsTerminal(os.Stdout.Fd()) && !plain

	if len(args) == 1 {
		info, err := os.Stat(search.ExpandTilde(args[0]))
		if err != nil {
			fmt.Fprintf(os.Stderr, "open input: %v\n", err)
			os.Exit(1)
		}
		if info.IsDir() {
			if !interactive {
				fmt.Fprintln(os.Stderr, "directory browsing needs a terminal")
				os.Exit(config.ExitUsage)
			}
			uiOpts.Browse = args[0]
			if err := ui.Run(ui.NewBrowser(uiOpts)); err != nil {
				fmt.Fprintf(os.Stderr, "ui: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	path, source, err := readInput(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		os.Exit(1)
	}
	if err := mdt.ValidateInput([]byte(source)); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", displayName(path), err)
		os.Exit(config.ExitInvalid)
	}

	// Piped stdin plus a TTY on stdout still works interactively, but a
	// plain render is the less surprising default there.
	if interactive && path != "" {
		if err := ui.Run(ui.New(path, source, uiOpts)); err != nil {
			fmt.Fprintf(os.Stderr, "ui: %v\n", err)
			os.Exit(1)
		}
		return
	}

	width := widthFlag
	if width == 0 {
		width = terminalWidth(defaultWidth)
	}
	if width < mdt.MinWidth {
		width = mdt.MinWidth
	}
	if width > mdt.MaxWidth {
		width = mdt.MaxWidth
	}
	if err := renderToStdout(source, theme, width, highlight, plain, osc8); err != nil {
		if errors.Is(err, mdt.ErrInvalidWidth) {
			fmt.Fprintf(os.Stderr, "render: %v\n", err)
			os.Exit(config.ExitUsage)
		}
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}
}

func renderToStdout(source string, theme *mdt.Theme, width int, highlight, plain, osc8 bool) error {
	lines, diags, err := mdt.RenderDocument(context.Background(), source, theme, width,
		mdt.WithSyntaxHighlighting(highlight && !plain))
	if err != nil {
		return err
	}
	for _, d := range diags {
		logger.Debugf("%s", d)
	}
	out := io.Writer(os.Stdout)
	if plain {
		for _, line := range lines {
			fmt.Fprintln(out, line.Text())
		}
		return nil
	}
	_, err = io.WriteString(out, mdt.RenderANSI(lines, mdt.ANSIOptions{OSC8: osc8}))
	return err
}

func readInput(args []string) (path, source string, err error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return "", string(data), nil
	}
	path = search.ExpandTilde(args[0])
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return path, string(data), nil
}

func displayName(path string) string {
	if path == "" {
		return "(stdin)"
	}
	return path
}

func printThemes() {
	names := mdt.AvailableThemes()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(os.Stdout, name)
	}
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

func resolveOSC8(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return mdt.DetectOSC8Support(), nil
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected auto|on|off")
	}
}
