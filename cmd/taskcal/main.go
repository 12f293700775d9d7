package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"taskcal/internal/config"
	appLog "taskcal/internal/log"
	"taskcal/internal/web"
)

// flagConfig holds CLI flag values; set flags win over the config file.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	view       string
	date       string
}

func main() {
	// .env is optional; real environment variables take precedence.
	if err := config.LoadDotEnv(); err != nil {
		appLog.Warn("failed to load .env", "error", err.Error())
	}

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	conf.ApplyEnv()

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	closeLog := setupLogging(conf.Log)
	defer closeLog()

	appLog.Info("taskcal starting", "version", "0.1.0")
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"default_view", conf.DefaultView,
		"tasks_file", conf.TasksFile,
		"events_file", conf.EventsFile,
		"mock_data", conf.MockData,
		"once", flags.once,
	)

	a, err := newApp(conf, flags.view, flags.date)
	if err != nil {
		appLog.Error("failed to initialise", err)
		os.Exit(1)
	}

	if flags.once {
		if err := a.printView(os.Stdout); err != nil {
			appLog.Error("render failed", err)
			os.Exit(1)
		}
		return
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	srv := web.NewServer(conf, a.store, a.nav, a.feed)
	if err := web.StartServer(ctx, conf.Listen, srv.Handler()); err != nil {
		appLog.Error("HTTP server failed", err, "listen", conf.Listen)
		os.Exit(1)
	}
	appLog.Info("taskcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	defaultConfig := os.Getenv(config.EnvConfig)
	if defaultConfig == "" {
		defaultConfig = "./taskcal.yaml"
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (env "+config.EnvConfig+")")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Print the current view and task panel to stdout and exit")
	flag.StringVar(&cfg.view, "view", "", "Initial view: month, week or day (overrides config if set)")
	flag.StringVar(&cfg.date, "date", "", "Reference date YYYY-MM-DD (default today)")

	flag.Parse()

	return cfg
}

// setupLogging applies the level and, when a file is configured, tees log
// output into a size-rotated file.
func setupLogging(lc config.LogConfig) (closeFn func()) {
	if lvl, err := appLog.ParseLevel(lc.Level); err != nil {
		appLog.Warn("unknown log level; keeping info", "level", lc.Level)
	} else {
		appLog.SetLevel(lvl)
	}

	if lc.File == "" {
		return func() {}
	}

	lj := &lumberjack.Logger{
		Filename:   lc.File,
		MaxSize:    lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
		MaxAge:     28,
		Compress:   true,
	}
	appLog.SetOutput(io.MultiWriter(os.Stderr, lj))
	return func() {
		appLog.SetOutput(os.Stderr)
		_ = lj.Close()
	}
}
