package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/handiism/geodata-downloader/internal/config"
	"github.com/handiism/geodata-downloader/internal/dataset"
	"github.com/handiism/geodata-downloader/internal/download"
	"github.com/handiism/geodata-downloader/internal/metrics"
	"github.com/handiism/geodata-downloader/internal/report"
)

const (
	exitOK          = 0
	exitFailed      = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one batch and returns the process exit code. Progress goes to
// stderr and the report to stdout, so JSON and CSV reports can be piped.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("geofetch", flag.ContinueOnError)
	flags.SetOutput(stderr)

	// Command line flags
	var (
		configFlag  = flags.String("config", "", "Path to config file (.json, .yml or .yaml)")
		presetFlag  = flags.String("preset", "", "Dataset preset: "+strings.Join(dataset.PresetNames(), ", "))
		rootFlag    = flags.String("root", "", "Path segment below the host (default \"Datasets\")")
		tokensFlag  = flags.String("tokens", "", "Comma-separated tokens or year ranges, e.g. 1948-1950,1965")
		concurrency = flags.Int("concurrency", 1, "Number of files fetched at once")
		retries     = flags.Int("retries", 0, "Retries per file after a network failure")
		skipFlag    = flags.Bool("skip-existing", false, "Skip files already present with the remote size")
		dupFlag     = flags.Bool("allow-duplicates", false, "Allow the same token more than once")
		verboseFlag = flags.Bool("verbose", false, "Show verbose output")
		dryRunFlag  = flags.Bool("dry-run", false, "Print URLs and destinations without downloading")
	)
	flags.String("host", "", "Host name, or a full base URL including the root path")
	flags.String("output", "", "Output directory; may contain {host}, {dataset} and {category}")
	flags.String("dataset", "", "Dataset identifier, e.g. ncep.reanalysis.dailyavgs")
	flags.String("category", "", "Dataset category, e.g. surface")
	flags.String("var", "", "Variable prefix of the file names, e.g. air.sig995.")
	flags.String("suffix", "", "File name suffix, e.g. .nc")
	flags.String("report", "", "Report format: text, json or csv")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file after the batch")

	flags.Usage = func() {
		fmt.Fprintln(stderr, "Geodata Downloader - fetch dataset files from public geodatabases")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  geofetch -preset ncep-r1-air-sig995 -tokens 1948-1950 [options]")
		fmt.Fprintln(stderr, "  geofetch -host downloads.psl.noaa.gov -dataset D -category C -var P -suffix .nc 1965,1966")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "For interactive mode, use: geofetch-tui")
		fmt.Fprintln(stderr)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return exitUsage
	}

	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if err := config.LoadEnvFiles(".env"); err != nil {
		fmt.Fprintf(stderr, "Error loading .env: %v\n", err)
		return exitFailed
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading config: %v\n", err)
			return exitFailed
		}
	}
	if err := settings.ApplyEnv(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	// Apply flags
	if set["preset"] {
		settings.Preset = *presetFlag
		if err := settings.ApplyPreset(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitUsage
		}
	}
	if set["root"] {
		settings.Template.Root = *rootFlag
	}
	for name, dst := range map[string]*string{
		"host":         &settings.Template.Host,
		"dataset":      &settings.Template.Dataset,
		"category":     &settings.Template.Category,
		"var":          &settings.Template.VariablePrefix,
		"suffix":       &settings.Template.Suffix,
		"output":       &settings.DownloadsPath,
		"report":       &settings.ReportFormat,
		"metrics-file": &settings.MetricsFile,
	} {
		if set[name] {
			*dst = flags.Lookup(name).Value.String()
		}
	}
	if set["concurrency"] {
		settings.MaxConcurrentDownloads = *concurrency
	}
	if set["retries"] {
		settings.DownloadMaxRetries = *retries
	}
	if set["skip-existing"] {
		settings.SkipExisting = *skipFlag
	}
	if set["allow-duplicates"] {
		settings.AllowDuplicateTokens = *dupFlag
	}

	// Get tokens
	spec := *tokensFlag
	if spec == "" && flags.NArg() > 0 {
		spec = strings.Join(flags.Args(), ",")
	}
	if spec != "" {
		settings.Tokens = []string{spec}
	}
	tokens, err := settings.ParsedTokens()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	if len(tokens) == 0 {
		flags.Usage()
		return exitUsage
	}
	if dups := dataset.Duplicates(tokens); len(dups) > 0 && !settings.AllowDuplicateTokens {
		fmt.Fprintf(stderr, "Error: duplicate tokens %s (use -allow-duplicates to fetch them anyway)\n", strings.Join(dups, ", "))
		return exitUsage
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid settings: %v\n", err)
		return exitUsage
	}
	format, err := report.ParseFormat(settings.ReportFormat)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	tmpl := settings.Template
	if *dryRunFlag {
		urls := dataset.BuildPaths(tmpl, tokens)
		items := dataset.Items(urls, dataset.LocalNames(tmpl, tokens), settings.DestDir())
		for _, item := range items {
			fmt.Fprintf(stdout, "%s -> %s\n", item.URL, item.Path)
		}
		return exitOK
	}

	recorder := metrics.New()
	manager := download.NewManager(settings, progressPrinter(stderr, *verboseFlag), download.WithObserver(recorder))

	rep := report.New(manager.DestDir(), time.Now())
	rep.Template = &tmpl

	results, err := manager.FetchTemplate(ctx, tmpl, tokens)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}
	rep.Results = results
	rep.Finished = time.Now()

	if rep.Listing, err = manager.List(); err != nil {
		fmt.Fprintf(stderr, "Error listing %s: %v\n", manager.DestDir(), err)
	}

	if err := report.NewWriter(format).Write(stdout, rep); err != nil {
		fmt.Fprintf(stderr, "Error writing report: %v\n", err)
		return exitFailed
	}

	if settings.MetricsFile != "" {
		if err := recorder.WriteTextfile(settings.MetricsFile); err != nil {
			fmt.Fprintf(stderr, "Error writing metrics: %v\n", err)
			return exitFailed
		}
	}

	switch {
	case ctx.Err() != nil:
		fmt.Fprintln(stderr, "Interrupted.")
		return exitInterrupted
	case !rep.OK():
		return exitFailed
	}
	return exitOK
}

// progressPrinter renders progress events as prefixed lines.
func progressPrinter(w io.Writer, verbose bool) func(download.ProgressEvent) {
	var mu sync.Mutex
	return func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !verbose {
			return
		}

		var prefix string
		switch event.Level {
		case download.LevelError:
			prefix = "✗ "
		case download.LevelWarning:
			prefix = "! "
		case download.LevelSuccess:
			prefix = "✓ "
		case download.LevelInfo:
			prefix = "› "
		default:
			prefix = "  "
		}

		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(w, prefix+event.Message)
	}
}
