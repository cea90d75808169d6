package logger

import (
	"context"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

var (
	errorsReader int64
	errorsWriter int64
	warnsReader  int64
	warnsWriter  int64

	toasRead      int64
	toasPlaced    int64
	blocksWritten int64
	bytesWritten  int64
)

func recordWarn(component string) {
	if strings.Contains(component, "reader") {
		atomic.AddInt64(&warnsReader, 1)
	} else if strings.Contains(component, "writer") {
		atomic.AddInt64(&warnsWriter, 1)
	}
}

func recordError(component string) {
	if strings.Contains(component, "reader") {
		atomic.AddInt64(&errorsReader, 1)
	} else if strings.Contains(component, "writer") {
		atomic.AddInt64(&errorsWriter, 1)
	}
}

// AddTOAsRead counts TOAs loaded from the input source.
func AddTOAsRead(n int64) {
	atomic.AddInt64(&toasRead, n)
}

// AddTOAsPlaced counts TOAs placed into an output bin.
func AddTOAsPlaced(n int64) {
	atomic.AddInt64(&toasPlaced, n)
}

// AddBlockWritten counts one emitted output block and its size in bytes.
func AddBlockWritten(size int64) {
	atomic.AddInt64(&blocksWritten, 1)
	atomic.AddInt64(&bytesWritten, size)
}

// StartReport begins periodic logging of system and conversion statistics.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
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

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	fields := Fields{
		"errors_reader":  atomic.LoadInt64(&errorsReader),
		"errors_writer":  atomic.LoadInt64(&errorsWriter),
		"warns_reader":   atomic.LoadInt64(&warnsReader),
		"warns_writer":   atomic.LoadInt64(&warnsWriter),
		"toas_read":      atomic.LoadInt64(&toasRead),
		"toas_placed":    atomic.LoadInt64(&toasPlaced),
		"blocks_written": atomic.LoadInt64(&blocksWritten),
		"bytes_written":  atomic.LoadInt64(&bytesWritten),
		"goroutines":     runtime.NumGoroutine(),
		"cpu_percent":    cpuPct,
		"memory_mb":      int64(memStats.Used) / 1024 / 1024,
		"disk_mb":        int64(diskStats.Used) / 1024 / 1024,
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	data := []cwtypes.MetricDatum{
		{MetricName: aws.String("CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		{MetricName: aws.String("MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		{MetricName: aws.String("DiskMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(diskStats.Used) / 1024 / 1024)},
		{MetricName: aws.String("ErrorsReader"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&errorsReader)))},
		{MetricName: aws.String("ErrorsWriter"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&errorsWriter)))},
		{MetricName: aws.String("TOAsRead"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&toasRead)))},
		{MetricName: aws.String("TOAsPlaced"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&toasPlaced)))},
		{MetricName: aws.String("BlocksWritten"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&blocksWritten)))},
		{MetricName: aws.String("BytesWritten"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(atomic.LoadInt64(&bytesWritten)))},
	}

	publishMetrics(ctx, data)
}
