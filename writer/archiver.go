package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	parquetwriter "github.com/xitongsys/parquet-go/writer"

	appconfig "llm4time/config"
	"llm4time/logger"
	"llm4time/models"
)

// RunParquetRecord is the parquet row layout for one archived run. Value
// lists are stored as JSON arrays.
type RunParquetRecord struct {
	ID             string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Dataset        string  `parquet:"name=dataset, type=BYTE_ARRAY, convertedtype=UTF8"`
	Provider       string  `parquet:"name=provider, type=BYTE_ARRAY, convertedtype=UTF8"`
	Model          string  `parquet:"name=model, type=BYTE_ARRAY, convertedtype=UTF8"`
	Temperature    float64 `parquet:"name=temperature, type=DOUBLE"`
	StartDate      string  `parquet:"name=start_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	EndDate        string  `parquet:"name=end_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Periods        int32   `parquet:"name=periods, type=INT32"`
	Prompt         string  `parquet:"name=prompt, type=BYTE_ARRAY, convertedtype=UTF8"`
	Strategy       string  `parquet:"name=strategy, type=BYTE_ARRAY, convertedtype=UTF8"`
	Sampling       string  `parquet:"name=sampling, type=BYTE_ARRAY, convertedtype=UTF8"`
	Format         string  `parquet:"name=format, type=BYTE_ARRAY, convertedtype=UTF8"`
	ValueType      string  `parquet:"name=value_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	YVal           string  `parquet:"name=y_val, type=BYTE_ARRAY, convertedtype=UTF8"`
	YPred          string  `parquet:"name=y_pred, type=BYTE_ARRAY, convertedtype=UTF8"`
	SMAPE          float64 `parquet:"name=smape, type=DOUBLE"`
	MAE            float64 `parquet:"name=mae, type=DOUBLE"`
	RMSE           float64 `parquet:"name=rmse, type=DOUBLE"`
	PromptTokens   int32   `parquet:"name=prompt_tokens, type=INT32"`
	ResponseTokens int32   `parquet:"name=response_tokens, type=INT32"`
	ResponseTime   float64 `parquet:"name=response_time, type=DOUBLE"`
	CreatedAt      int64   `parquet:"name=created_at, type=INT64"`
}

// memoryFileWriter implements the ParquetFile interface for in-memory
// writing.
type memoryFileWriter struct {
	buffer *bytes.Buffer
}

func newMemoryFileWriter() *memoryFileWriter {
	return &memoryFileWriter{buffer: &bytes.Buffer{}}
}

func (mfw *memoryFileWriter) Create(name string) (source.ParquetFile, error) { return mfw, nil }
func (mfw *memoryFileWriter) Open(name string) (source.ParquetFile, error)  { return mfw, nil }
func (mfw *memoryFileWriter) Seek(offset int64, whence int) (int64, error) {
	return int64(mfw.buffer.Len()), nil
}
func (mfw *memoryFileWriter) Read(b []byte) (int, error)  { return mfw.buffer.Read(b) }
func (mfw *memoryFileWriter) Write(b []byte) (int, error) { return mfw.buffer.Write(b) }
func (mfw *memoryFileWriter) Close() error                { return nil }
func (mfw *memoryFileWriter) Bytes() []byte               { return mfw.buffer.Bytes() }

// RunArchiver uploads completed runs to S3 as single-row parquet files
// under a dataset/model/date partitioned prefix.
type RunArchiver struct {
	config   *appconfig.Config
	s3Client *s3.Client
	log      *logger.Log
}

// NewRunArchiver configures the AWS SDK and validates credentials.
func NewRunArchiver(cfg *appconfig.Config) (*RunArchiver, error) {
	log := logger.GetLogger()
	ctx := context.Background()

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Storage.S3.Region),
	}
	if cfg.Storage.S3.AccessKeyID != "" && cfg.Storage.S3.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Storage.S3.AccessKeyID,
				cfg.Storage.S3.SecretAccessKey,
				"",
			),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.WithComponent("run_archiver").WithError(err).Warn("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	creds, err := awsConfig.Credentials.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return nil, fmt.Errorf("aws credentials not found")
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Storage.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.S3.Endpoint)
		}
		o.UsePathStyle = cfg.Storage.S3.PathStyle
	})

	log.WithComponent("run_archiver").WithFields(logger.Fields{
		"bucket":     cfg.Storage.S3.Bucket,
		"region":     cfg.Storage.S3.Region,
		"endpoint":   cfg.Storage.S3.Endpoint,
		"path_style": cfg.Storage.S3.PathStyle,
	}).Info("run archiver initialized")

	return &RunArchiver{config: cfg, s3Client: s3Client, log: log}, nil
}

// Archive writes one run record to S3.
func (a *RunArchiver) Archive(ctx context.Context, run models.RunRecord) error {
	log := a.log.WithComponent("run_archiver").WithFields(logger.Fields{
		"run_id":  run.ID,
		"dataset": run.Dataset,
		"model":   run.Model,
	})

	key := a.generateS3Key(run)
	log = log.WithFields(logger.Fields{"s3_key": key})

	data, err := a.createParquetFile(run)
	if err != nil {
		log.WithError(err).Error("failed to create parquet file")
		return err
	}

	if err := a.uploadToS3(ctx, key, data); err != nil {
		log.WithError(err).
			WithFields(logger.Fields{"bucket": a.config.Storage.S3.Bucket}).
			Error("failed to upload to S3")
		return err
	}

	logger.IncrementS3Archive()
	log.WithFields(logger.Fields{"file_size": len(data)}).Info("run archived")
	return nil
}

func (a *RunArchiver) generateS3Key(run models.RunRecord) string {
	ts := run.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	key := filepath.Join(
		a.config.Storage.S3.Prefix,
		fmt.Sprintf("dataset=%s", run.Dataset),
		fmt.Sprintf("model=%s", run.Model),
		ts.UTC().Format("2006/01/02"),
		fmt.Sprintf("run_%s.parquet", run.ID),
	)
	return filepath.ToSlash(key)
}

func (a *RunArchiver) createParquetFile(run models.RunRecord) ([]byte, error) {
	fw := newMemoryFileWriter()

	pw, err := parquetwriter.NewParquetWriter(fw, new(RunParquetRecord), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	yVal, err := json.Marshal(run.YVal)
	if err != nil {
		return nil, fmt.Errorf("marshal y_val: %w", err)
	}
	yPred, err := json.Marshal(run.YPred)
	if err != nil {
		return nil, fmt.Errorf("marshal y_pred: %w", err)
	}

	record := RunParquetRecord{
		ID:             run.ID,
		Dataset:        run.Dataset,
		Provider:       string(run.Provider),
		Model:          run.Model,
		Temperature:    run.Temperature,
		StartDate:      run.StartDate,
		EndDate:        run.EndDate,
		Periods:        int32(run.Periods),
		Prompt:         run.Prompt,
		Strategy:       string(run.Strategy),
		Sampling:       string(run.Sampling),
		Format:         string(run.Format),
		ValueType:      string(run.ValueType),
		YVal:           string(yVal),
		YPred:          string(yPred),
		SMAPE:          run.SMAPE,
		MAE:            run.MAE,
		RMSE:           run.RMSE,
		PromptTokens:   int32(run.PromptTokens),
		ResponseTokens: int32(run.ResponseTokens),
		ResponseTime:   run.ResponseTime,
		CreatedAt:      run.CreatedAt.UnixMilli(),
	}
	if err := pw.Write(record); err != nil {
		pw.WriteStop()
		return nil, fmt.Errorf("failed to write parquet record: %w", err)
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet writing: %w", err)
	}
	return fw.Bytes(), nil
}

func (a *RunArchiver) uploadToS3(ctx context.Context, key string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.config.Storage.S3.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
		Metadata: map[string]string{
			"content-type": "parquet",
		},
	}
	if _, err := a.s3Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3 bucket %s: %w", a.config.Storage.S3.Bucket, err)
	}
	return nil
}
