// SPDX-License-Identifier: EPL-2.0

// Command surround-decode expands a packet file written by surround-encode
// into a 5 channel WAV file (FL, C, FR, RL, RR).
//
//	surround-decode [-config surround.yaml] <in.bin> <out.wav>
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
	bitDepth := flag.Int("bits", 0, "override output.bit_depth (16, 24, 32)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <in.bin> <out.wav>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return surround.ExitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "surround-decode: %v\n", err)
		return surround.ExitUsage
	}
	if *bitDepth != 0 {
		cfg.Output.BitDepth = *bitDepth
	}
	if *logLevel != "" {
		cfg.LogLevel = config.LogLevel(*logLevel)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "surround-decode: %v\n", err)
		return surround.ExitUsage
	}

	logger := observe.NewLogger(os.Stderr, string(cfg.LogLevel))
	slog.SetDefault(logger)

	mp, reader := observe.NewProvider("surround-decode")
	defer func() { _ = mp.Shutdown(context.Background()) }()
	tp := observe.NewTracerProvider("surround-decode")
	defer func() { _ = tp.Shutdown(context.Background()) }()
	otel.SetTracerProvider(tp)
	met, err := observe.NewMetrics(mp)
	if err != nil {
		logger.Error("failed to create metrics", "err", err)
		return surround.ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = surround.DecodeFile(ctx, cfg, flag.Arg(0), flag.Arg(1), surround.Options{
		Logger:  logger,
		Metrics: met,
	})
	observe.LogSummary(ctx, logger, reader)
	if err != nil {
		logger.Error("decode failed", "err", err)
		return surround.ExitCode(err)
	}
	return surround.ExitOK
}
