// Package main is the entry point for terrain-probe, which loads a heightfield
// from configuration and walks a probe across it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-heightfield/internal/config"
	"github.com/Faultbox/midgard-heightfield/internal/game"
	"github.com/Faultbox/midgard-heightfield/internal/logger"
)

var flagTicks = flag.Int("ticks", 300, "Simulation steps for the probe walk")

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Midgard Heightfield Probe ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, err := game.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to load terrain", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	defer g.Close()

	report, err := g.Run(ctx, *flagTicks)
	if err != nil {
		logger.Warn("probe walk interrupted", zap.Error(err), zap.Int("ticks", report.Ticks))
	}

	fmt.Printf("Ticks:    %d\n", report.Ticks)
	fmt.Printf("Distance: %.2f\n", report.Distance)
	fmt.Printf("Eye:      %.2f .. %.2f\n", report.MinHeight, report.MaxHeight)
	fmt.Printf("Trees:    %d\n", report.Trees)
	fmt.Printf("Terrain:  min %.3f  max %.3f  mean %.3f  stddev %.3f\n",
		report.Terrain.Min, report.Terrain.Max, report.Terrain.Mean, report.Terrain.StdDev)

	logger.Info("probe finished normally")
}
