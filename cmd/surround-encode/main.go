// SPDX-License-Identifier: EPL-2.0

// Command surround-encode packs five mono 48 kHz stems into an Opus
// multistream packet file.
//
//	surround-encode [-config surround.yaml] <out.bin> <FL> <C> <FR> <RL> <RR> <bitrate>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.opentelemetry.io/otel"

	"github.com/ik5/surround"
	"github.com/ik5/surround/internal/config"
	"github.com/ik5/surround/internal/observe"
)

func main() {
	os.Exit(run())
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <out.bin> <FL> <C> <FR> <RL> <RR> <bitrate>\n", os.Args[0])
	flag.PrintDefaults()
}

func run() int {
	configPath := flag.String("config", "", "path to an optional YAML configuration file")
	logLevel := flag.String("log-level", "", "override log_level (debug, info, warn, error)")
	downmix := flag.Bool("downmix", false, "fold multichannel stems to mono instead of rejecting them")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 7 {
		flag.Usage()
		return surround.ExitUsage
	}
	args := flag.Args()

	bitrate, err := strconv.Atoi(args[6])
	if err != nil {
		fmt.Fprintf(os.Stderr, "surround-encode: bitrate %q: %v\n", args[6], err)
		return surround.ExitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "surround-encode: %v\n", err)
		return surround.ExitUsage
	}
	cfg.Encode.Bitrate = bitrate
	if *downmix {
		cfg.Encode.DownmixInputs = true
	}
	if *logLevel != "" {
		cfg.LogLevel = config.LogLevel(*logLevel)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "surround-encode: %v\n", err)
		return surround.ExitUsage
	}

	logger := observe.NewLogger(os.Stderr, string(cfg.LogLevel))
	slog.SetDefault(logger)

	mp, reader := observe.NewProvider("surround-encode")
	defer func() { _ = mp.Shutdown(context.Background()) }()
	tp := observe.NewTracerProvider("surround-encode")
	defer func() { _ = tp.Shutdown(context.Background()) }()
	otel.SetTracerProvider(tp)
	met, err := observe.NewMetrics(mp)
	if err != nil {
		logger.Error("failed to create metrics", "err", err)
		return surround.ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = surround.EncodeFiles(ctx, cfg, args[0], args[1:6], surround.Options{
		Logger:  logger,
		Metrics: met,
	})
	observe.LogSummary(ctx, logger, reader)
	if err != nil {
		logger.Error("encode failed", "err", err)
		return surround.ExitCode(err)
	}
	return surround.ExitOK
}
