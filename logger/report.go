package logger

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net" //cloudwatch

	"github.com/aws/aws-sdk-go-v2/aws"                              //cloudwatch
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types" //cloudwatch
)

type componentStat struct {
	errors int64
	warns  int64
}

var (
	llmRequests    int64
	llmFailures    int64
	promptTokens   int64
	responseTokens int64
	runsCompleted  int64
	runsFailed     int64
	datasetsLoaded int64
	historyWrites  int64
	s3Archives     int64
	components     sync.Map // map[string]*componentStat
)

func componentCounter(component string) *componentStat {
	v, _ := components.LoadOrStore(component, &componentStat{})
	return v.(*componentStat)
}

func recordWarn(component string) {
	atomic.AddInt64(&componentCounter(component).warns, 1)
}

func recordError(component string) {
	atomic.AddInt64(&componentCounter(component).errors, 1)
}

// IncrementLLMRequest records one model call and its token usage.
func IncrementLLMRequest(prompt, response int) {
	atomic.AddInt64(&llmRequests, 1)
	atomic.AddInt64(&promptTokens, int64(prompt))
	atomic.AddInt64(&responseTokens, int64(response))
}

// IncrementLLMFailure records a failed model call.
func IncrementLLMFailure() {
	atomic.AddInt64(&llmFailures, 1)
}

// IncrementRunCompleted records a finished benchmark run.
func IncrementRunCompleted() {
	atomic.AddInt64(&runsCompleted, 1)
}

// IncrementRunFailed records an aborted benchmark run.
func IncrementRunFailed() {
	atomic.AddInt64(&runsFailed, 1)
}

// IncrementDatasetLoaded records one dataset read from disk.
func IncrementDatasetLoaded() {
	atomic.AddInt64(&datasetsLoaded, 1)
}

// IncrementHistoryWrite records one run persisted to the history store.
func IncrementHistoryWrite() {
	atomic.AddInt64(&historyWrites, 1)
}

// IncrementS3Archive records one run uploaded to S3.
func IncrementS3Archive() {
	atomic.AddInt64(&s3Archives, 1)
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of system and run statistics.
// It exposes the internal startReport function for use by other packages.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")
	netStats, _ := gnet.IOCounters(false)

	componentData := map[string]map[string]int64{}
	components.Range(func(k, v any) bool {
		name := k.(string)
		cs := v.(*componentStat)
		componentData[name] = map[string]int64{
			"errors": atomic.LoadInt64(&cs.errors),
			"warns":  atomic.LoadInt64(&cs.warns),
		}
		return true
	})

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	bytesSent := uint64(0)
	bytesRecv := uint64(0)
	if len(netStats) > 0 {
		bytesSent = netStats[0].BytesSent
		bytesRecv = netStats[0].BytesRecv
	}

	fields := Fields{
		"llm_requests":    atomic.LoadInt64(&llmRequests),
		"llm_failures":    atomic.LoadInt64(&llmFailures),
		"prompt_tokens":   atomic.LoadInt64(&promptTokens),
		"response_tokens": atomic.LoadInt64(&responseTokens),
		"runs_completed":  atomic.LoadInt64(&runsCompleted),
		"runs_failed":     atomic.LoadInt64(&runsFailed),
		"datasets_loaded": atomic.LoadInt64(&datasetsLoaded),
		"history_writes":  atomic.LoadInt64(&historyWrites),
		"s3_archives":     atomic.LoadInt64(&s3Archives),
		"goroutines":      runtime.NumGoroutine(),
		"cpu_percent":     cpuPct,
		"memory_mb":       int64(memStats.Used) / 1024 / 1024,
		"disk_mb":         int64(diskStats.Used) / 1024 / 1024,
		"components":      componentData,
		"net_bytes_sent":  int64(bytesSent),
		"net_bytes_recv":  int64(bytesRecv),
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	var data []cwtypes.MetricDatum
	data = append(data,
		cwtypes.MetricDatum{MetricName: aws.String("CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		cwtypes.MetricDatum{MetricName: aws.String("MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("DiskMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(diskStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("LLMRequests"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["llm_requests"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("LLMFailures"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["llm_failures"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("PromptTokens"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["prompt_tokens"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("ResponseTokens"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["response_tokens"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("RunsCompleted"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["runs_completed"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("RunsFailed"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["runs_failed"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("DatasetsLoaded"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["datasets_loaded"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("HistoryWrites"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["history_writes"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("S3Archives"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["s3_archives"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("NetBytesSent"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesSent))},
		cwtypes.MetricDatum{MetricName: aws.String("NetBytesRecv"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesRecv))},
	)

	for name, stats := range componentData {
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("ComponentErrors"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Component"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["errors"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("ComponentWarns"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Component"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["warns"])),
			},
		)
	}

	publishMetrics(ctx, data)
}
