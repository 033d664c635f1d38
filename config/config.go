package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"llm4time/models"
	"llm4time/processor"
)

type Config struct {
	LLM4Time  LLM4TimeConfig  `yaml:"llm4time"`
	Data      DataConfig      `yaml:"data"`
	Forecast  ForecastConfig  `yaml:"forecast"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Model     ModelConfig     `yaml:"model"`
	Storage   StorageConfig   `yaml:"storage"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type LLM4TimeConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type DataConfig struct {
	Path         string `yaml:"path"`
	DateColumn   string `yaml:"date_column"`
	ValueColumn  string `yaml:"value_column"`
	Duplicates   string `yaml:"duplicates"`
	Frequency    string `yaml:"frequency"`
	Imputation   string `yaml:"imputation"`
	ImputeWindow int    `yaml:"impute_window"`
}

type ForecastConfig struct {
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Periods   int    `yaml:"periods"`
}

type PromptConfig struct {
	Strategy       string `yaml:"strategy"`
	Format         string `yaml:"format"`
	ValueType      string `yaml:"value_type"`
	NumExamples    int    `yaml:"num_examples"`
	Sampling       string `yaml:"sampling"`
	WindowSize     int    `yaml:"window_size"`
	Step           int    `yaml:"step"`
	SeasonalPeriod int    `yaml:"seasonal_period"`
	TemplatePath   string `yaml:"template_path"`
}

type ModelConfig struct {
	Provider          string  `yaml:"provider"`
	Name              string  `yaml:"name"`
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	Temperature       float64 `yaml:"temperature"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
}

type StorageConfig struct {
	History HistoryConfig `yaml:"history"`
	Export  ExportConfig  `yaml:"export"`
	S3      S3Config      `yaml:"s3"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type ExportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// DashboardConfig controls the web dashboard over the run history.
// RefreshInterval is in seconds.
type DashboardConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Address         string `yaml:"address"`
	RefreshInterval int    `yaml:"refresh_interval"`
	LogHistory      int    `yaml:"log_history"`
	ResourceHistory int    `yaml:"resource_history"`
	RunsLimit       int    `yaml:"runs_limit"`
}

type LoggingConfig struct {
	Level         string                 `yaml:"level"`
	Format        string                 `yaml:"format"`
	Output        string                 `yaml:"output"`
	MaxAge        int                    `yaml:"max_age"`
	Fields        map[string]interface{} `yaml:"fields"`
	DashboardName string                 `yaml:"dashboard_name"`
}

const defaultConfigPath = "config/config.yml"

// Environment specific configuration files picked up when APP_ENV is set
// and the caller did not override the path.
var envConfigPaths = map[string]string{
	environmentProduction: "config/config.production.yml",
	environmentStaging:    "config/config.staging.yml",
}

func LoadConfig(path string) (*Config, error) {
	path = resolveEnvSpecificPath(path, defaultConfigPath, envConfigPaths)

	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Data: DataConfig{
			DateColumn:  "date",
			ValueColumn: "value",
		},
		Prompt: PromptConfig{
			Strategy:  string(models.PromptZeroShot),
			Format:    string(models.FormatCSV),
			ValueType: string(models.TypeNumeric),
			Sampling:  string(models.SamplingBack),
		},
		Model: ModelConfig{
			Temperature: 0.7,
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override credentials from environment variables if available
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		config.Model.APIKey = strings.TrimSpace(v)
	}
	if config.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}

	config.Storage.S3.Bucket = strings.TrimSpace(config.Storage.S3.Bucket)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.LLM4Time.Name == "" {
		return fmt.Errorf("llm4time.name is required")
	}
	if cfg.LLM4Time.Version == "" {
		return fmt.Errorf("llm4time.version is required")
	}

	if cfg.Data.Path == "" {
		return fmt.Errorf("data.path is required")
	}
	if cfg.Data.DateColumn == "" {
		return fmt.Errorf("data.date_column is required")
	}
	if cfg.Data.ValueColumn == "" {
		return fmt.Errorf("data.value_column is required")
	}
	if _, err := models.ParseDuplicatePolicy(cfg.Data.Duplicates); err != nil {
		return fmt.Errorf("data.duplicates: %w", err)
	}
	if cfg.Data.Frequency != "" {
		if _, err := processor.ParseFrequency(cfg.Data.Frequency); err != nil {
			return fmt.Errorf("data.frequency: %w", err)
		}
	}
	if cfg.Data.Imputation != "" {
		if _, err := models.ParseImputationStrategy(cfg.Data.Imputation); err != nil {
			return fmt.Errorf("data.imputation: %w", err)
		}
	}

	if cfg.Forecast.Periods <= 0 {
		return fmt.Errorf("forecast.periods must be greater than 0")
	}
	if cfg.Forecast.StartDate == "" || cfg.Forecast.EndDate == "" {
		return fmt.Errorf("forecast.start_date and forecast.end_date are required")
	}

	strategy, err := models.ParsePromptStrategy(cfg.Prompt.Strategy)
	if err != nil {
		return fmt.Errorf("prompt.strategy: %w", err)
	}
	if _, err := models.ParseFormat(cfg.Prompt.Format); err != nil {
		return fmt.Errorf("prompt.format: %w", err)
	}
	if _, err := models.ParseValueType(cfg.Prompt.ValueType); err != nil {
		return fmt.Errorf("prompt.value_type: %w", err)
	}
	if _, err := models.ParseSamplingStrategy(cfg.Prompt.Sampling); err != nil {
		return fmt.Errorf("prompt.sampling: %w", err)
	}
	if cfg.Prompt.NumExamples < 0 {
		return fmt.Errorf("prompt.num_examples must not be negative")
	}
	if strategy == models.PromptCustom && cfg.Prompt.TemplatePath == "" {
		return fmt.Errorf("prompt.template_path is required for the CUSTOM strategy")
	}

	provider, err := models.ParseProvider(cfg.Model.Provider)
	if err != nil {
		return fmt.Errorf("model.provider: %w", err)
	}
	if cfg.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	// LM Studio is a local endpoint and needs no real key.
	if IsProductionLike(AppEnvironment()) && provider != models.ProviderLMStudio && cfg.Model.APIKey == "" {
		return fmt.Errorf("model.api_key is required in the %s environment", AppEnvironment())
	}

	if cfg.Storage.History.Enabled && cfg.Storage.History.Path == "" {
		return fmt.Errorf("storage.history.path is required when history is enabled")
	}
	if cfg.Storage.Export.Enabled && cfg.Storage.Export.Path == "" {
		return fmt.Errorf("storage.export.path is required when export is enabled")
	}

	if cfg.Dashboard.Enabled && !cfg.Storage.History.Enabled {
		return fmt.Errorf("dashboard.enabled requires storage.history.enabled")
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when S3 is enabled")
		}
		if cfg.Storage.S3.AccessKeyID == "" || cfg.Storage.S3.SecretAccessKey == "" {
			return fmt.Errorf("storage.s3.access_key_id and storage.s3.secret_access_key are required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Storage.S3.Bucket) {
			return fmt.Errorf("storage.s3.bucket '%s' is invalid", cfg.Storage.S3.Bucket)
		}
	}

	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
