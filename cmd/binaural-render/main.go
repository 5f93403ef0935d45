// SPDX-License-Identifier: EPL-2.0

// Command binaural-render folds a 5 channel WAV file (FL, C, FR, RL, RR)
// down to binaural stereo with a directory of HRTF filters.
//
//	binaural-render [-config surround.yaml] <in.wav> <out.wav> <hrtf-dir>
//
// The directory argument may be omitted when render.filter_dir is set.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"

	"github.com/ik5/surround"
	"github.com/ik5/surround/internal/config"
	"github.com/ik5/surround/internal/observe"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to an optional YAML configuration file")
	logLevel := flag.String("log-level", "", "override log_level (debug, info, warn, error)")
	normalize := flag.Bool("normalize", false, "scale every filter to unit energy")
	taps := flag.Int("taps", 0, "override render.taps")
	strictRate := flag.Bool("strict-rate", false, "fail on filter files that are not 48 kHz")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <in.wav> <out.wav> <hrtf-dir>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 && flag.NArg() != 3 {
		flag.Usage()
		return surround.ExitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "binaural-render: %v\n", err)
		return surround.ExitUsage
	}
	if *normalize {
		cfg.Render.Normalize = true
	}
	if *strictRate {
		cfg.Render.StrictRate = true
	}
	if *taps != 0 {
		cfg.Render.Taps = *taps
	}
	if *logLevel != "" {
		cfg.LogLevel = config.LogLevel(*logLevel)
	}
	if flag.NArg() == 3 {
		cfg.Render.FilterDir = flag.Arg(2)
	}
	if cfg.Render.FilterDir == "" {
		flag.Usage()
		return surround.ExitUsage
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "binaural-render: %v\n", err)
		return surround.ExitUsage
	}

	logger := observe.NewLogger(os.Stderr, string(cfg.LogLevel))
	slog.SetDefault(logger)

	mp, reader := observe.NewProvider("binaural-render")
	defer func() { _ = mp.Shutdown(context.Background()) }()
	tp := observe.NewTracerProvider("binaural-render")
	defer func() { _ = tp.Shutdown(context.Background()) }()
	otel.SetTracerProvider(tp)
	met, err := observe.NewMetrics(mp)
	if err != nil {
		logger.Error("failed to create metrics", "err", err)
		return surround.ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = surround.RenderFile(ctx, cfg, flag.Arg(0), flag.Arg(1), cfg.Render.FilterDir, surround.Options{
		Logger:  logger,
		Metrics: met,
	})
	observe.LogSummary(ctx, logger, reader)
	if err != nil {
		logger.Error("render failed", "err", err)
		return surround.ExitCode(err)
	}
	return surround.ExitOK
}
