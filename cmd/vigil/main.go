// Package main is the entry point for the vigil proctoring monitor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/vigil/internal/app"
	"github.com/dshills/vigil/internal/config"
	"github.com/dshills/vigil/internal/httpapi"
	"github.com/dshills/vigil/internal/ui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type flags struct {
	configPath string
	httpAddr   string
	logLevel   string
	headless   bool
	noHTTP     bool
	autoStart  bool
}

func main() {
	os.Exit(run())
}

func run() int {
	f := parseFlags()

	application, err := app.New(app.Options{
		ConfigPath: f.configPath,
		Overrides:  f.apply,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	slog.SetDefault(application.Slog())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := application.Config()
	var runners []app.Runner

	if cfg.HTTP.Enabled {
		handler := httpapi.New(application.Bus(), application.Logger(), application.Detector(),
			application.Registry(), application.Slog().With("module", "http"))
		srv := httpapi.NewServer(cfg.HTTP.Addr, httpapi.NewRouter(handler), application.Slog())
		runners = append(runners, srv.Run)
	}

	if !cfg.UI.Headless {
		screen, err := tcell.NewScreen()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
			return 1
		}
		runners = append(runners, ui.New(application, screen).Run)
	} else if len(runners) == 0 {
		runners = append(runners, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		})
	}

	if err := application.Run(ctx, runners...); err != nil {
		if errors.Is(err, ui.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() flags {
	var f flags
	var showVersion bool

	flag.StringVar(&f.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&f.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&f.httpAddr, "http-addr", "", "HTTP API listen address (overrides config)")
	flag.BoolVar(&f.noHTTP, "no-http", false, "Disable the HTTP API")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&f.headless, "headless", false, "Run without the terminal UI")
	flag.BoolVar(&f.autoStart, "start", false, "Start a proctoring session immediately")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "vigil - exam proctoring monitor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: vigil [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  %sSECTION_KEY overrides a config key, e.g. VIGIL_LOG_LEVEL=debug\n", config.EnvPrefix)
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("vigil %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch f.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", f.logLevel)
		os.Exit(1)
	}
	return f
}

// apply layers the command-line flags over a loaded configuration.
func (f flags) apply(c *config.Config) {
	if f.httpAddr != "" {
		c.HTTP.Addr = f.httpAddr
	}
	if f.noHTTP {
		c.HTTP.Enabled = false
	}
	if f.logLevel != "" {
		c.Log.Level = f.logLevel
	}
	if f.headless {
		c.UI.Headless = true
	}
	if f.autoStart {
		c.Proctor.AutoStart = true
	}
	// The console mirror would draw over the terminal UI.
	if !c.UI.Headless {
		c.Log.Console = false
	}
}
