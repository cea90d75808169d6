package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	appconfig "toaflow/config"
	"toaflow/logger"
	"toaflow/models"
	"toaflow/processor"
	"toaflow/reader"
	"toaflow/writer"
)

type inputMode struct {
	text    bool
	float32 bool
}

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "", "Path to configuration file (built-in defaults when empty)")
	outPath := flag.String("o", "", "Output .dat file (defaults to the input name with a .dat suffix)")
	textMode := flag.Bool("text", false, "Input is ASCII text, one TOA per line")
	floatMode := flag.Bool("float", false, "Binary input holds 32-bit floats instead of 64-bit doubles")
	doubleMode := flag.Bool("double", false, "Binary input holds 64-bit doubles (the default)")
	dt := flag.Float64("dt", 0, "Width of each output bin in seconds")
	numout := flag.Int64("numout", 0, "Number of bins in the output series")
	t0 := flag.Float64("t0", 0, "Epoch (time origin) in raw TOA units")
	sec := flag.Bool("sec", false, "TOAs are in seconds rather than days")
	infFile := flag.String("inf", "", "Read dt, numout and epoch from this .inf description file")

	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: toaflow [options] <toafile>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	input := flag.Arg(0)

	modes := 0
	for _, set := range []bool{*textMode, *floatMode, *doubleMode} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		fmt.Fprintln(os.Stderr, "at most one of -text, -float and -double may be given")
		os.Exit(1)
	}

	cfg, err := appconfig.Load(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	t0Set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "t0" {
			t0Set = true
		}
	})

	params, err := appconfig.ResolveSeries(appconfig.SeriesOptions{
		BinWidth: *dt,
		NumOut:   *numout,
		Epoch:    *t0,
		EpochSet: t0Set,
		Seconds:  *sec,
		InfFile:  *infFile,
	})
	if err != nil {
		log.WithError(err).Error("failed to resolve series parameters")
		os.Exit(1)
	}

	output := *outPath
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".dat"
	}

	runID := uuid.New().String()
	rlog := log.WithFields(logger.Fields{
		"service": cfg.Toaflow.Name,
		"version": cfg.Toaflow.Version,
		"run_id":  runID,
	})
	rlog.Info("starting toaflow")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.InitCloudWatch("", cfg.Metrics.CloudWatchNamespace)
		logger.StartReport(ctx, log, cfg.Metrics.ReportInterval)
	}

	summary, err := run(ctx, cfg, params, input, output, runID, inputMode{text: *textMode, float32: *floatMode})
	if err != nil {
		rlog.WithError(err).Error("conversion failed")
		os.Exit(1)
	}

	rlog.WithFields(logger.Fields{
		"found":   summary.Found,
		"placed":  summary.Placed,
		"dropped": summary.Dropped,
		"blocks":  summary.Blocks,
		"bytes":   summary.Bytes,
		"output":  summary.Output,
	}).Info("conversion complete")
}

// run executes one conversion: load, normalize, bin and emit, then the
// optional parquet and S3 outputs. Stages run strictly in sequence; the
// TOA set passes by ownership from stage to stage.
func run(ctx context.Context, cfg *appconfig.Config, params models.SeriesParams, input, output, runID string, mode inputMode) (*models.Summary, error) {
	log := logger.GetLogger().WithComponent("run").WithFields(logger.Fields{"run_id": runID})

	in, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("failed to open TOA source '%s': %w", input, err)
	}
	defer in.Close()

	var toas []float64
	switch {
	case mode.text:
		toas, err = reader.LoadText(in)
	case mode.float32:
		toas, err = reader.LoadBinary(in, reader.Float32)
	default:
		toas, err = reader.LoadBinary(in, reader.Float64)
	}
	if err != nil {
		return nil, fmt.Errorf("reading '%s': %w", input, err)
	}
	log.WithFields(logger.Fields{"toas": len(toas), "source": input}).Info("TOAs loaded")

	origin := processor.Normalize(toas, params)
	log.WithFields(logger.Fields{
		"origin":  origin,
		"dt":      params.BinWidth,
		"numout":  params.NumOut,
		"seconds": params.Seconds,
	}).Info("TOAs normalized")

	out, err := os.Create(output)
	if err != nil {
		return nil, fmt.Errorf("failed to open output '%s': %w", output, err)
	}
	defer out.Close()

	dat := writer.NewDatWriter(out)
	var sink processor.BlockSink = dat

	var pq *writer.ParquetWriter
	if cfg.Writer.Formats.Parquet.Enabled {
		pq, err = writer.NewParquetWriter(params.BinWidth, cfg.Writer.Formats.Parquet.Compression)
		if err != nil {
			return nil, err
		}
		sink = writer.MultiSink{dat, pq}
	}

	binner := processor.NewBinner(params, cfg.Writer.BlockCapacity)
	placed, err := binner.Run(toas, sink)
	if err != nil {
		return nil, err
	}

	if err := dat.Flush(); err != nil {
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close output '%s': %w", output, err)
	}

	summary := &models.Summary{
		RunID:   runID,
		Input:   input,
		Output:  output,
		Found:   int64(len(toas)),
		Placed:  placed,
		Dropped: int64(len(toas)) - placed,
		Blocks:  binner.NumBlocks(),
		Bytes:   dat.BytesWritten(),
	}

	var parquetName string
	var parquetData []byte
	if pq != nil {
		parquetData, err = pq.Close()
		if err != nil {
			return nil, err
		}
		parquetName = strings.TrimSuffix(output, filepath.Ext(output)) + ".parquet"
		if err := os.WriteFile(parquetName, parquetData, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write parquet output '%s': %w", parquetName, err)
		}
		log.WithFields(logger.Fields{"output": parquetName, "bytes": len(parquetData)}).Info("parquet series written")
	}

	if cfg.Storage.S3.Enabled {
		uploader, err := writer.NewUploader(ctx, cfg.Storage.S3, runID)
		if err != nil {
			return nil, err
		}
		datData, err := os.ReadFile(output)
		if err != nil {
			return nil, fmt.Errorf("failed to read back output '%s': %w", output, err)
		}
		if err := uploader.Upload(ctx, output, datData); err != nil {
			return nil, err
		}
		if pq != nil {
			if err := uploader.Upload(ctx, parquetName, parquetData); err != nil {
				return nil, err
			}
		}
	}

	return summary, nil
}
