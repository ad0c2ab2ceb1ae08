package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"webcal/internal/capture"
	"webcal/internal/clock"
	"webcal/internal/config"
	"webcal/internal/ics"
	appLog "webcal/internal/log"
	"webcal/internal/model"
	"webcal/internal/seed"
	"webcal/internal/store"
	"webcal/internal/view"
	"webcal/internal/web"
)

const version = "0.1.0"

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "webcal",
		Usage:   "Serve a month/week/day calendar over HTTP.",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "./webcal.yaml", Usage: "Path to config file", EnvVars: []string{"WEBCAL_CONFIG"}},
			&cli.StringFlag{Name: "listen", Usage: "HTTP listen address (overrides config if set)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info or error (overrides config if set)"},
			&cli.StringFlag{Name: "seed", Usage: "sample, none, an .ics path or an ICS feed URL (overrides config if set)"},
		},
		Action: serve,
		Commands: []*cli.Command{
			serveCommand(),
			snapshotCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		appLog.Error("webcal failed", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the web UI and JSON API (default).",
		Action: serve,
	}
}

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Capture the calendar UI as a PNG with headless Chromium.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "Page to capture; empty serves the seeded calendar on a loopback port"},
			&cli.StringFlag{Name: "out", Value: "webcal.png", Usage: "Output PNG path"},
			&cli.IntFlag{Name: "width", Value: capture.DefaultWidth},
			&cli.IntFlag{Name: "height", Value: capture.DefaultHeight},
			&cli.StringFlag{Name: "view", Usage: "month, week or day (default from config)"},
			&cli.DurationFlag{Name: "timeout", Value: capture.DefaultTimeout},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if v := c.String("view"); v != "" {
				g, err := model.ParseGranularity(v)
				if err != nil {
					return err
				}
				cfg.DefaultView = g
			}

			url := c.String("url")
			if url == "" {
				srv, err := buildServer(c.Context, cfg, nil)
				if err != nil {
					return err
				}
				ln, err := net.Listen("tcp", "127.0.0.1:0")
				if err != nil {
					return fmt.Errorf("listen loopback: %w", err)
				}
				httpSrv := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
				go func() { _ = httpSrv.Serve(ln) }()
				defer func() { _ = httpSrv.Close() }()
				url = "http://" + ln.Addr().String() + "/"
				if cfg.BasicAuth != nil && cfg.BasicAuth.Username != "" && cfg.BasicAuth.Password != "" {
					url = fmt.Sprintf("http://%s:%s@%s/", cfg.BasicAuth.Username, cfg.BasicAuth.Password, ln.Addr().String())
				}
			}

			return capture.CaptureViewPNG(c.Context, capture.Options{
				URL:        url,
				OutputPath: c.String("out"),
				Width:      c.Int("width"),
				Height:     c.Int("height"),
				Timeout:    c.Duration("timeout"),
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Print the seeded calendar as iCalendar.",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			now := time.Now()
			events, err := seed.Load(c.Context, cfg, now)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(c.App.Writer, ics.Export(events, now))
			return err
		},
	}
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	appLog.Info("webcal starting", "version", version)
	appLog.Info("effective config",
		"listen", cfg.Listen,
		"week_start", cfg.WeekStart,
		"default_view", string(cfg.DefaultView),
		"hour_height", cfg.HourHeight,
		"min_extent", cfg.MinExtent,
		"seed", cfg.Seed,
		"log_level", cfg.LogLevel,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ind := clock.NewIndicator(cfg.Mapper(), time.Now)
	srv, err := buildServer(ctx, cfg, ind)
	if err != nil {
		return err
	}

	if err := ind.Start(); err != nil {
		return fmt.Errorf("start time indicator: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ind.Stop(stopCtx)
	}()

	if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("webcal exiting")
	return nil
}

// loadConfig reads the config file, then applies the environment and the
// global flags on top, and configures logging from the result.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.ApplyEnv(os.Getenv)

	if v := c.String("listen"); v != "" {
		cfg.Listen = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := c.String("seed"); v != "" {
		cfg.Seed = v
	}

	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	if cfg.LogFormat == string(appLog.FormatJSON) {
		appLog.SetOutput(os.Stderr, appLog.FormatJSON)
	}
	return cfg, nil
}

// buildServer seeds a store and wires one controller session to it.
func buildServer(ctx context.Context, cfg *config.Config, ind *clock.Indicator) (*web.Server, error) {
	events, err := seed.Load(ctx, cfg, time.Now())
	if err != nil {
		return nil, fmt.Errorf("seed events: %w", err)
	}
	s := store.New(nil, events...)
	appLog.Info("store seeded", "seed", cfg.Seed, "events", s.Len())

	ctrl := view.NewController(s,
		view.WithWeekStart(cfg.Weekday()),
		view.WithGranularity(cfg.DefaultView),
	)
	return web.NewServer(cfg, s, ctrl, ind), nil
}
