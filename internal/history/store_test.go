package history

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm4time/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string) models.RunRecord {
	return models.RunRecord{
		ID:             id,
		Dataset:        "electricity",
		Provider:       models.ProviderOpenAI,
		Model:          "gpt-4o-mini",
		Temperature:    0.7,
		StartDate:      "2025-01-01",
		EndDate:        "2025-01-07",
		Periods:        3,
		Freq:           "day",
		Prompt:         "predict",
		Strategy:       models.PromptZeroShot,
		Sampling:       models.SamplingBack,
		Format:         models.FormatCSV,
		ValueType:      models.TypeNumeric,
		YVal:           []float64{8, 9, 10},
		YPred:          []float64{8, 9, 11},
		SMAPE:          3.17,
		MAE:            0.33,
		RMSE:           0.58,
		PromptTokens:   120,
		ResponseTokens: 15,
		ResponseTime:   1.2,
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, sampleRun("run-1")))

	second := sampleRun("run-2")
	second.CreatedAt = second.CreatedAt.Add(time.Hour)
	require.NoError(t, s.SaveRun(ctx, second))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, "electricity", runs[0].Dataset)
	assert.Equal(t, "ZERO_SHOT", runs[0].Strategy)
	assert.Equal(t, "CSV", runs[0].Format)
	assert.Equal(t, 3.17, runs[0].SMAPE)
}

func TestSaveRunDuplicateID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, sampleRun("run-1")))
	assert.Error(t, s.SaveRun(ctx, sampleRun("run-1")))
}

func TestSaveRunRejectsUnknownStrategy(t *testing.T) {
	s := openTestStore(t)

	run := sampleRun("run-bad")
	run.Strategy = "TAROT"
	assert.Error(t, s.SaveRun(context.Background(), run))
}

func TestSaveRunWithMissingValues(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := sampleRun("run-nan")
	run.YPred = []float64{math.NaN(), math.NaN()}
	require.NoError(t, s.SaveRun(ctx, run), "all-missing predictions store as NULL stats")

	runs, err := s.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestListRunsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		run := sampleRun("run-" + string(rune('a'+i)))
		run.CreatedAt = run.CreatedAt.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.SaveRun(ctx, run))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRegisterAndListModels(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RegisterModel(ctx, "gpt-4o-mini", models.ProviderOpenAI))
	require.NoError(t, s.RegisterModel(ctx, "gpt-4o-mini", models.ProviderOpenAI))
	require.NoError(t, s.RegisterModel(ctx, "gpt-4o-mini", models.ProviderAzure))
	require.NoError(t, s.RegisterModel(ctx, "qwen2.5", models.ProviderLMStudio))

	got, err := s.ListModels(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"gpt-4o-mini": {"AZURE", "OPENAI"},
		"qwen2.5":     {"LM_STUDIO"},
	}, got)
}

func TestSaveListDeletePrompts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePrompt(ctx, "weekly", "Forecast {{.periods}} values"))
	require.NoError(t, s.SavePrompt(ctx, "daily", "Predict {{.periods}}"))

	// Saving under the same name replaces the template.
	require.NoError(t, s.SavePrompt(ctx, "weekly", "Forecast {{.periods}} points"))

	prompts, err := s.ListPrompts(ctx)
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.Equal(t, "daily", prompts[0].Name)
	assert.Equal(t, "weekly", prompts[1].Name)
	assert.Equal(t, "Forecast {{.periods}} points", prompts[1].Template)

	require.NoError(t, s.DeletePrompt(ctx, "daily"))
	prompts, err = s.ListPrompts(ctx)
	require.NoError(t, err)
	require.Len(t, prompts, 1)

	assert.Error(t, s.DeletePrompt(ctx, "daily"))
}

func TestSavePromptRequiresNameAndTemplate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	assert.Error(t, s.SavePrompt(ctx, "", "template"))
	assert.Error(t, s.SavePrompt(ctx, "name", ""))
}
