package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"PriceLabeler/internal/chart"
	"PriceLabeler/internal/collector"
	"PriceLabeler/internal/config"
	"PriceLabeler/internal/features"
	"PriceLabeler/internal/labeler"
	"PriceLabeler/internal/recorder"
	"PriceLabeler/internal/scheduler"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	lvl, _ := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	zerolog.SetGlobalLevel(lvl)

	// Init source and collector
	src, err := collector.NewSource(collector.SourceOptions{
		Path:          cfg.Data.Path,
		Format:        cfg.Data.Format,
		Sheet:         cfg.Data.Sheet,
		YahooSymbol:   cfg.Data.YahooSymbol,
		YahooInterval: cfg.Data.YahooInterval,
		YahooRange:    cfg.Data.YahooRange,
		Proxy:         cfg.Proxy,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init data source")
	}
	log.Info().Str("source", src.Name()).Str("path", cfg.Data.Path).Msg("data source ready")
	col := collector.NewCollector(src, cfg.Data.Symbol)

	// Init labeler
	origin, err := cfg.Origin()
	if err != nil {
		log.Fatal().Err(err).Msg("labeling origin")
	}
	lab, err := labeler.New(labeler.Options{
		Window:    cfg.Labeling.Window,
		Origin:    origin,
		TiePolicy: cfg.Labeling.TiePolicy,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init labeler")
	}

	pipeline := scheduler.NewPipeline(col, lab)
	pipeline.TopN = cfg.FeatureTopN()
	pipeline.LabelsPath = cfg.Output.LabelsPath
	if cfg.ChartEnabled() {
		pipeline.Renderer = chart.NewPlotRenderer(cfg.Chart.Path)
	}
	if cfg.Features.Enabled {
		pipeline.Finder = features.NewSearch(features.Options{Lookbacks: cfg.Features.Lookbacks})
	}

	// Init recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("init sqlite recorder")
		}
		pipeline.Recorder = sr
	}
	// os.Exit skips deferred calls, so every exit path closes the recorder itself.
	closeRecorder := func() {
		if err := pipeline.Recorder.Close(); err != nil {
			log.Error().Err(err).Msg("close recorder")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// One-shot mode: every failure is terminal.
	if cfg.Schedule.Cron == "" {
		if _, err := pipeline.Run(ctx); err != nil {
			log.Error().Err(err).Msg("pipeline failed")
			cancel()
			closeRecorder()
			os.Exit(1)
		}
		closeRecorder()
		return
	}

	sched := scheduler.NewScheduler(ctx, pipeline)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		closeRecorder()
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing pipeline now")
		go sched.RunNow()
	}

	log.Info().Str("cron", cfg.Schedule.Cron).Msg("PriceLabeler is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping...")
	sched.Stop()
	closeRecorder()
}
