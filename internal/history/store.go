// Package history persists benchmark runs and registered models in a local
// SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"llm4time/logger"
	"llm4time/models"
	"llm4time/stats"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS history (
  id TEXT PRIMARY KEY,
  model TEXT,
  provider TEXT,
  temperature REAL,
  dataset TEXT,
  start_date TEXT,
  end_date TEXT,
  periods INTEGER,
  freq TEXT,
  prompt TEXT,
  prompt_type TEXT CHECK(prompt_type IN ('ZERO_SHOT', 'FEW_SHOT', 'COT', 'COT_FEW', 'CUSTOM')),
  sampling TEXT,
  num_examples INTEGER,
  ts_format TEXT,
  ts_type TEXT,
  y_val TEXT,
  y_pred TEXT,
  smape REAL,
  mae REAL,
  rmse REAL,
  total_tokens_prompt INTEGER,
  total_tokens_response INTEGER,
  total_tokens INTEGER,
  response_time REAL,
  mean_val REAL,
  mean_pred REAL,
  median_val REAL,
  median_pred REAL,
  std_val REAL,
  std_pred REAL,
  min_val REAL,
  min_pred REAL,
  max_val REAL,
  max_pred REAL,
  created_at TEXT
)`

const modelsSchema = `
CREATE TABLE IF NOT EXISTS models (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  provider TEXT NOT NULL,
  UNIQUE(name, provider)
)`

const promptsSchema = `
CREATE TABLE IF NOT EXISTS prompts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  template TEXT NOT NULL,
  updated_at TEXT
)`

// Store wraps the SQLite database holding run history.
type Store struct {
	db  *sql.DB
	log *logger.Log
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)

	for _, schema := range []string{historySchema, modelsSchema, promptsSchema} {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: create schema: %w", err)
		}
	}

	log := logger.GetLogger()
	log.WithComponent("history").WithFields(logger.Fields{"path": path}).Info("history store opened")
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts one completed run, computing the descriptive statistics
// of both value lists for the comparison columns.
func (s *Store) SaveRun(ctx context.Context, run models.RunRecord) error {
	yVal, err := json.Marshal(run.YVal)
	if err != nil {
		return fmt.Errorf("history: marshal y_val: %w", err)
	}
	yPred, err := json.Marshal(run.YPred)
	if err != nil {
		return fmt.Errorf("history: marshal y_pred: %w", err)
	}

	valStats := stats.Describe(run.YVal)
	predStats := stats.Describe(run.YPred)

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO history (
  id, model, provider, temperature, dataset, start_date, end_date, periods, freq,
  prompt, prompt_type, sampling, num_examples, ts_format, ts_type,
  y_val, y_pred, smape, mae, rmse,
  total_tokens_prompt, total_tokens_response, total_tokens, response_time,
  mean_val, mean_pred, median_val, median_pred, std_val, std_pred,
  min_val, min_pred, max_val, max_pred, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Model, string(run.Provider), run.Temperature, run.Dataset,
		run.StartDate, run.EndDate, run.Periods, run.Freq,
		run.Prompt, string(run.Strategy), string(run.Sampling), run.NumExamples,
		string(run.Format), string(run.ValueType),
		string(yVal), string(yPred), run.SMAPE, run.MAE, run.RMSE,
		run.PromptTokens, run.ResponseTokens, run.PromptTokens+run.ResponseTokens, run.ResponseTime,
		nullableFloat(valStats.Mean), nullableFloat(predStats.Mean),
		nullableFloat(valStats.Median), nullableFloat(predStats.Median),
		nullableFloat(valStats.Std), nullableFloat(predStats.Std),
		nullableFloat(valStats.Min), nullableFloat(predStats.Min),
		nullableFloat(valStats.Max), nullableFloat(predStats.Max),
		createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}

	logger.IncrementHistoryWrite()
	s.log.WithComponent("history").WithFields(logger.Fields{
		"run_id":  run.ID,
		"dataset": run.Dataset,
		"model":   run.Model,
	}).Info("run saved")
	return nil
}

// Run is one row of the history table as listed back out.
type Run struct {
	ID           string
	Model        string
	Provider     string
	Dataset      string
	Strategy     string
	Format       string
	SMAPE        float64
	MAE          float64
	RMSE         float64
	ResponseTime float64
	CreatedAt    string
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, model, provider, dataset, prompt_type, ts_format,
       smape, mae, rmse, response_time, created_at
FROM history ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var smape, mae, rmse, rt sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.Model, &r.Provider, &r.Dataset, &r.Strategy, &r.Format,
			&smape, &mae, &rmse, &rt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.SMAPE, r.MAE, r.RMSE, r.ResponseTime = smape.Float64, mae.Float64, rmse.Float64, rt.Float64
		out = append(out, r)
	}
	return out, rows.Err()
}

// RegisterModel records a (name, provider) pair, ignoring duplicates.
func (s *Store) RegisterModel(ctx context.Context, name string, provider models.Provider) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO models (name, provider) VALUES (?, ?)`,
		name, string(provider))
	if err != nil {
		return fmt.Errorf("history: register model: %w", err)
	}
	return nil
}

// ListModels returns registered (name, provider) pairs ordered by name.
func (s *Store) ListModels(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, provider FROM models ORDER BY name, provider`)
	if err != nil {
		return nil, fmt.Errorf("history: list models: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var name, provider string
		if err := rows.Scan(&name, &provider); err != nil {
			return nil, fmt.Errorf("history: scan model: %w", err)
		}
		out[name] = append(out[name], provider)
	}
	return out, rows.Err()
}

// Prompt is a saved custom prompt template.
type Prompt struct {
	Name      string
	Template  string
	UpdatedAt string
}

// SavePrompt stores a named custom template, replacing any previous version
// under the same name.
func (s *Store) SavePrompt(ctx context.Context, name, template string) error {
	if name == "" || template == "" {
		return fmt.Errorf("history: prompt name and template are required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO prompts (name, template, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET template = excluded.template, updated_at = excluded.updated_at`,
		name, template, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("history: save prompt: %w", err)
	}
	return nil
}

// ListPrompts returns the saved custom templates ordered by name.
func (s *Store) ListPrompts(ctx context.Context) ([]Prompt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, template, updated_at FROM prompts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("history: list prompts: %w", err)
	}
	defer rows.Close()

	var out []Prompt
	for rows.Next() {
		var p Prompt
		var updated sql.NullString
		if err := rows.Scan(&p.Name, &p.Template, &updated); err != nil {
			return nil, fmt.Errorf("history: scan prompt: %w", err)
		}
		p.UpdatedAt = updated.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePrompt removes a saved template; deleting an unknown name is an error.
func (s *Store) DeletePrompt(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prompts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("history: delete prompt: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("history: prompt %q not found", name)
	}
	return nil
}

// nullableFloat maps NaN onto NULL so aggregate queries stay usable.
func nullableFloat(v float64) any {
	if v != v {
		return nil
	}
	return v
}
