package models

import "time"

// RunRecord is the persisted outcome of one forecasting benchmark run:
// what was asked, what came back and how it scored.
type RunRecord struct {
	ID          string
	Dataset     string
	Provider    Provider
	Model       string
	Temperature float64

	StartDate string
	EndDate   string
	Periods   int
	Freq      string

	Prompt      string
	Strategy    PromptStrategy
	Sampling    SamplingStrategy
	NumExamples int
	Format      Format
	ValueType   ValueType

	YVal  []float64
	YPred []float64

	SMAPE float64
	MAE   float64
	RMSE  float64

	PromptTokens   int
	ResponseTokens int
	ResponseTime   float64

	CreatedAt time.Time
}
