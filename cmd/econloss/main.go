package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iwvelando/econloss/internal/config"
	"github.com/iwvelando/econloss/internal/pipeline"
	"github.com/iwvelando/econloss/internal/profile"
	"github.com/iwvelando/econloss/pkg/constants"
	"github.com/iwvelando/econloss/pkg/output"
	"github.com/iwvelando/econloss/pkg/provenance"
	"github.com/iwvelando/econloss/pkg/refdata"
	"github.com/iwvelando/econloss/pkg/validation"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	// Process command line flags first to get config and profile locations
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	profileLocation := flag.String("profile", constants.DefaultProfileFile, "path to subject profile file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	// Load and validate the subject profile.
	subject, err := profile.Load(*profileLocation)
	if err != nil {
		logger.Fatal("failed to load subject profile",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	for _, warning := range validation.ProfileWarnings(subject.BirthDate, subject.PresentDate, subject.DeathDate, subject.Salary) {
		logger.Warn("Profile warning: "+warning,
			zap.String("op", "main"),
		)
	}

	// Build the reference data source: static tables, optionally layered
	// with a live treasury rate fetch.
	var source refdata.Source
	staticSource, err := refdata.NewStaticSource(conf.StaticConfig(), logger)
	if err != nil {
		logger.Fatal("failed to load reference data tables",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	source = staticSource
	if conf.Data.TreasuryURL != "" {
		source = refdata.NewTreasurySource(staticSource, conf.Data.TreasuryURL, conf.Data.LookupTimeout, logger)
	}

	// Run the pipeline to get the Report.
	recorder := provenance.NewRecorder()
	result, err := pipeline.New(source, logger).Run(context.Background(), *subject, recorder)
	if err != nil {
		logger.Fatal("failed to compute loss report",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, result)
	case constants.OutputFormatCSV:
		output.CsvFormat(os.Stdout, result)
	case constants.OutputFormatJSON:
		if err := output.JSONFormat(os.Stdout, result); err != nil {
			logger.Fatal("failed to serialize report",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}
