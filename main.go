package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	appconfig "llm4time/config"
	"llm4time/internal/dashboard"
	"llm4time/internal/history"
	"llm4time/llm"
	"llm4time/logger"
	"llm4time/models"
	"llm4time/runner"
	"llm4time/writer"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := appconfig.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.LLM4Time.Name,
		"version": cfg.LLM4Time.Version,
	}).Info("starting llm4time")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}
	if cfg.Logging.DashboardName != "" {
		logger.InitCloudWatch(cfg.Storage.S3.Region, cfg.LLM4Time.Name, cfg.Logging.DashboardName)
	}

	client, err := llm.New(llm.Options{
		Provider:          models.Provider(cfg.Model.Provider),
		Model:             cfg.Model.Name,
		APIKey:            cfg.Model.APIKey,
		BaseURL:           cfg.Model.BaseURL,
		Temperature:       cfg.Model.Temperature,
		RequestsPerMinute: cfg.Model.RequestsPerMinute,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create model client")
		os.Exit(1)
	}

	var store *history.Store
	if cfg.Storage.History.Enabled {
		store, err = history.Open(cfg.Storage.History.Path)
		if err != nil {
			log.WithError(err).Error("Failed to open history store")
			os.Exit(1)
		}
		defer store.Close()
	}

	dash, err := dashboard.NewServer(cfg.Dashboard, store, log)
	if err != nil {
		log.WithError(err).Error("Failed to create dashboard server")
		os.Exit(1)
	}
	if dash != nil {
		go func() {
			if err := dash.Run(ctx, cfg.LLM4Time.Name); err != nil {
				log.WithError(err).Error("Dashboard server failed")
			}
		}()
		log.WithFields(logger.Fields{"address": dash.Address()}).Info("dashboard available")
	}

	var archiver *writer.RunArchiver
	if cfg.Storage.S3.Enabled {
		archiver, err = writer.NewRunArchiver(cfg)
		if err != nil {
			log.WithError(err).Error("Failed to create run archiver")
			os.Exit(1)
		}
	}

	run, err := runner.New(cfg, client, store, archiver).Run(ctx)
	if err != nil {
		log.WithError(err).Error("Benchmark run failed")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"run_id":        run.ID,
		"dataset":       run.Dataset,
		"model":         run.Model,
		"smape":         run.SMAPE,
		"mae":           run.MAE,
		"rmse":          run.RMSE,
		"response_time": run.ResponseTime,
	}).Info("benchmark run completed")

	fmt.Printf("run %s: SMAPE=%.2f MAE=%.2f RMSE=%.2f (%d predictions in %.2fs)\n",
		run.ID, run.SMAPE, run.MAE, run.RMSE, len(run.YPred), run.ResponseTime)

	// Keep the dashboard up for inspection until interrupted.
	if dash != nil {
		log.WithFields(logger.Fields{"address": dash.Address()}).Info("run finished, dashboard still serving")
		<-ctx.Done()
	}

	log.Info("llm4time stopped")
}
