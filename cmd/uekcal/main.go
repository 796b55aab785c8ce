package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"uekcal/internal/config"
	appLog "uekcal/internal/log"
	"uekcal/internal/pipeline"
	"uekcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	source     string
	once       bool
	debug      bool
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("uekcal starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI overrides win over the config file.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.source != "" {
		conf.SourceURL = flags.source
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"source_url", conf.SourceURL,
		"timezone", conf.Timezone,
		"strategy", conf.Strategy,
		"fetch_timeout_s", conf.FetchTimeoutSeconds,
		"once", flags.once,
	)

	pipe, err := pipeline.New(conf)
	if err != nil {
		appLog.Error("failed to assemble pipeline", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		out, err := pipe.Run(ctx, conf.SourceURL)
		if err != nil {
			appLog.Error("one-shot run failed", err, "source", conf.SourceURL)
			os.Exit(1)
		}
		fmt.Print(out)
		return
	}

	if err := web.StartServer(ctx, conf, pipe); err != nil {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}
	appLog.Info("uekcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/uekcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.source, "src", "", "Schedule page URL (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Fetch once, print the ICS document to stdout and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
