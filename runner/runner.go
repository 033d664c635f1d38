// Package runner drives one end-to-end benchmark run: load, preprocess,
// assemble the prompt, call the model, parse the answer, score it and
// persist the outcome.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	appconfig "llm4time/config"
	"llm4time/codec"
	"llm4time/internal/history"
	"llm4time/llm"
	"llm4time/logger"
	"llm4time/models"
	"llm4time/processor"
	"llm4time/prompt"
	"llm4time/reader"
	"llm4time/sampler"
	"llm4time/stats"
	"llm4time/writer"
)

// Runner wires the pipeline components for one configured benchmark. The
// history store and archiver are optional; nil disables that sink.
type Runner struct {
	cfg      *appconfig.Config
	client   llm.Client
	codec    *codec.Codec
	store    *history.Store
	archiver *writer.RunArchiver
	log      *logger.Log
}

func New(cfg *appconfig.Config, client llm.Client, store *history.Store, archiver *writer.RunArchiver) *Runner {
	return &Runner{
		cfg:      cfg,
		client:   client,
		codec:    codec.New(),
		store:    store,
		archiver: archiver,
		log:      logger.GetLogger(),
	}
}

// Run executes the configured benchmark once and returns the scored run.
func (r *Runner) Run(ctx context.Context) (models.RunRecord, error) {
	run, err := r.run(ctx)
	if err != nil {
		logger.IncrementRunFailed()
		return models.RunRecord{}, err
	}
	logger.IncrementRunCompleted()
	return run, nil
}

func (r *Runner) run(ctx context.Context) (models.RunRecord, error) {
	log := r.log.WithComponent("runner")
	cfg := r.cfg

	prepStart := time.Now()
	train, yVal, freqLabel, err := r.prepareData()
	if err != nil {
		return models.RunRecord{}, err
	}
	logger.LogPerformanceEntry(log, "runner", "prepare_data", time.Since(prepStart), nil)
	log.WithFields(logger.Fields{
		"train_points": len(train),
		"val_points":   len(yVal),
	}).Info("data prepared")

	promptText, params, err := r.assemblePrompt(train, freqLabel)
	if err != nil {
		return models.RunRecord{}, err
	}

	resp, err := r.client.Predict(ctx, promptText)
	if err != nil {
		return models.RunRecord{}, err
	}

	parsed, err := r.codec.Parse(resp.Text, params.Format, params.ValueType)
	if err != nil {
		return models.RunRecord{}, fmt.Errorf("runner: parse response: %w", err)
	}
	if parsed.Fallback {
		log.Warn("response parsed through the array fallback")
	}
	yPred := parsed.Values
	if len(yPred) > cfg.Forecast.Periods {
		yPred = yPred[:cfg.Forecast.Periods]
	}

	metrics := stats.NewMetrics(yVal, yPred)

	run := models.RunRecord{
		ID:             uuid.New().String(),
		Dataset:        datasetName(cfg.Data.Path),
		Provider:       models.Provider(cfg.Model.Provider),
		Model:          cfg.Model.Name,
		Temperature:    cfg.Model.Temperature,
		StartDate:      cfg.Forecast.StartDate,
		EndDate:        cfg.Forecast.EndDate,
		Periods:        cfg.Forecast.Periods,
		Freq:           freqLabel,
		Prompt:         promptText,
		Strategy:       params.Strategy,
		Sampling:       params.Sampling,
		NumExamples:    params.NumExamples,
		Format:         params.Format,
		ValueType:      params.ValueType,
		YVal:           yVal,
		YPred:          yPred,
		SMAPE:          metrics.SMAPE(),
		MAE:            metrics.MAE(),
		RMSE:           metrics.RMSE(),
		PromptTokens:   resp.PromptTokens,
		ResponseTokens: resp.ResponseTokens,
		ResponseTime:   resp.ResponseTime,
		CreatedAt:      time.Now(),
	}

	log.WithFields(logger.Fields{
		"run_id": run.ID,
		"smape":  run.SMAPE,
		"mae":    run.MAE,
		"rmse":   run.RMSE,
	}).Info("run scored")

	r.persist(ctx, run)
	return run, nil
}

// prepareData loads, standardizes, regularizes, imputes and splits the
// configured dataset.
func (r *Runner) prepareData() (models.Series, []float64, string, error) {
	cfg := r.cfg

	tbl, err := reader.Load(cfg.Data.Path)
	if err != nil {
		return nil, nil, "", err
	}

	ts, err := processor.Standardize(tbl, cfg.Data.DateColumn, cfg.Data.ValueColumn,
		models.DuplicatePolicy(cfg.Data.Duplicates))
	if err != nil {
		return nil, nil, "", err
	}

	freqLabel := ""
	if cfg.Data.Frequency != "" {
		freq, err := processor.ParseFrequency(cfg.Data.Frequency)
		if err != nil {
			return nil, nil, "", err
		}
		freqLabel = freq.Label()
		if ts, err = processor.Regularize(ts, freq, "", ""); err != nil {
			return nil, nil, "", err
		}
	}

	if cfg.Data.Imputation != "" {
		strategy, err := models.ParseImputationStrategy(cfg.Data.Imputation)
		if err != nil {
			return nil, nil, "", err
		}
		if ts, err = processor.Impute(ts, strategy, cfg.Data.ImputeWindow); err != nil {
			return nil, nil, "", err
		}
	}

	train, yVal, err := processor.Split(ts, cfg.Forecast.StartDate, cfg.Forecast.EndDate, cfg.Forecast.Periods)
	if err != nil {
		return nil, nil, "", err
	}

	if cfg.Storage.Export.Enabled {
		if err := writer.SaveSeries(cfg.Storage.Export.Path, train); err != nil {
			return nil, nil, "", err
		}
	}
	return train, yVal, freqLabel, nil
}

func (r *Runner) assemblePrompt(train models.Series, freqLabel string) (string, prompt.Params, error) {
	cfg := r.cfg

	params := prompt.Params{
		Strategy:       models.PromptStrategy(cfg.Prompt.Strategy),
		Format:         models.Format(cfg.Prompt.Format),
		ValueType:      models.ValueType(cfg.Prompt.ValueType),
		Periods:        cfg.Forecast.Periods,
		Freq:           freqLabel,
		NumExamples:    cfg.Prompt.NumExamples,
		Sampling:       models.SamplingStrategy(cfg.Prompt.Sampling),
		WindowSize:     cfg.Prompt.WindowSize,
		Step:           cfg.Prompt.Step,
		SeasonalPeriod: cfg.Prompt.SeasonalPeriod,
	}
	if params.Strategy == models.PromptCustom {
		data, err := os.ReadFile(cfg.Prompt.TemplatePath)
		if err != nil {
			return "", params, fmt.Errorf("runner: read custom template: %w", err)
		}
		params.CustomTemplate = string(data)
	}

	text, err := prompt.NewAssembler(r.codec).Generate(train, params)
	if err != nil {
		return "", params, err
	}
	return text, params, nil
}

// persist writes the run to the enabled sinks. Sink failures are logged
// but do not fail an already-scored run.
func (r *Runner) persist(ctx context.Context, run models.RunRecord) {
	log := r.log.WithComponent("runner").WithFields(logger.Fields{"run_id": run.ID})

	if r.store != nil {
		if err := r.store.SaveRun(ctx, run); err != nil {
			log.WithError(err).Error("failed to save run to history")
		}
		if err := r.store.RegisterModel(ctx, run.Model, run.Provider); err != nil {
			log.WithError(err).Warn("failed to register model")
		}
		if run.Strategy == models.PromptCustom && r.cfg.Prompt.TemplatePath != "" {
			name := datasetName(r.cfg.Prompt.TemplatePath)
			if data, err := os.ReadFile(r.cfg.Prompt.TemplatePath); err == nil {
				if err := r.store.SavePrompt(ctx, name, string(data)); err != nil {
					log.WithError(err).Warn("failed to save custom prompt")
				}
			}
		}
	}
	if r.archiver != nil {
		if err := r.archiver.Archive(ctx, run); err != nil {
			log.WithError(err).Error("failed to archive run to S3")
		}
	}
}

func datasetName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// Examples previews the window pairs the configured sampling strategy
// would feed into the prompt, for inspection ahead of a run.
func (r *Runner) Examples(train models.Series) ([]models.WindowPair, error) {
	cfg := r.cfg
	windowSize := cfg.Prompt.WindowSize
	if windowSize <= 0 {
		windowSize = cfg.Forecast.Periods
	}
	return sampler.Sample(models.SamplingStrategy(cfg.Prompt.Sampling), train,
		windowSize, cfg.Prompt.NumExamples, cfg.Prompt.Step, nil)
}
