package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"storagebench/benchmark"
	"storagebench/config"
	"storagebench/progress"
)

const (
	exitConfigFailure = 1
	exitReportFailure = 2
)

func main() {
	// Define command-line flags
	configFilePath := flag.String("config", "config.json", "Path to the benchmark config file")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	quiet := flag.Bool("quiet", false, "Disable the progress bar and console summary")

	flag.Parse()

	if err := setupLogging(*logLevel, *logFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfigFailure)
	}

	workDir, err := os.Getwd()
	if err != nil {
		logrus.WithError(err).Error("Failed to determine working directory")
		os.Exit(exitConfigFailure)
	}

	// Load and resolve the configuration; nothing can run without it
	cfg, err := config.Load(*configFilePath)
	if err != nil {
		logrus.WithError(err).Error("Failed to load config")
		os.Exit(exitConfigFailure)
	}

	plan, err := config.Resolve(cfg, workDir)
	if err != nil {
		logrus.WithError(err).Error("Failed to resolve config")
		os.Exit(exitConfigFailure)
	}

	logrus.WithFields(logrus.Fields{
		"storages":  len(plan.Storages),
		"files":     len(plan.Files),
		"downloads": len(plan.Downloads),
	}).Info("Configuration loaded")

	opts := []benchmark.RunnerOption{benchmark.WithRunnerLogger(logrus.StandardLogger())}
	if !*quiet {
		opts = append(opts,
			benchmark.WithProgress(func(total int64, caption string) benchmark.Progress {
				return progress.NewProgressBar(total, os.Stderr).SetCaption(caption)
			}),
			benchmark.WithSummary(os.Stdout),
		)
	}

	// Run the selected benchmarks
	if _, err := benchmark.NewRunner(plan, opts...).Run(context.Background()); err != nil {
		logrus.WithError(err).Error("Benchmark finished with errors")
		os.Exit(exitReportFailure)
	}
}

func setupLogging(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)

	switch format {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	return nil
}
