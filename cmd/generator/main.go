package main

import (
	"context"
	"log/slog"
	"os"

	"influencerdash/internal/config"
	"influencerdash/internal/generator"
	"influencerdash/internal/infrastructure"
)

func main() {
	if err := run(infrastructure.EnsureTraceID(context.Background())); err != nil {
		slog.Error("Dataset generation failed", slog.String("error", err.Error()))
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
	infrastructure.CloseLogFile()
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", slog.String("error", err.Error()))
		cfg = config.Default()
	}

	paths, err := cfg.GetPaths()
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	logCfg := cfg.Logging
	if logCfg.Output != "console" {
		logCfg.FilePath = paths.GetLogPath(config.GeneratorLogFile)
	}
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "generator"))

	logger.InfoContext(ctx, "Generating dataset",
		slog.Int("seed", config.GeneratorSeed),
		slog.String("data_dir", paths.DataDir))

	return generator.WriteDataset(ctx, paths, generator.Generate(config.GeneratorSeed), logger)
}
