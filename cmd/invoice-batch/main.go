package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/finvoice-bridge/constants"
	"github.com/joseph-ayodele/finvoice-bridge/internal/common"
	"github.com/joseph-ayodele/finvoice-bridge/internal/export"
	"github.com/joseph-ayodele/finvoice-bridge/internal/ingest"
	"github.com/joseph-ayodele/finvoice-bridge/internal/pipeline"
	"github.com/joseph-ayodele/finvoice-bridge/internal/repository"
	"github.com/joseph-ayodele/finvoice-bridge/internal/template"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir       = flag.String("dir", "", "directory of extracted-text documents to process (required)")
		templates = flag.String("templates", "", "templates JSON file (defaults to TEMPLATES_PATH)")
		out       = flag.String("out", "", "output directory for XML and the review report (defaults to <dir>/out)")
		dbPath    = flag.String("db", "", "SQLite archive path (defaults to <out>/outcomes.db)")
		exts      = flag.String("ext", "txt", "comma-separated file extensions to include")
		workers   = flag.Int("workers", 0, "concurrent documents (defaults to PIPELINE_CONCURRENCY)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(*dir, "out")
	}
	if *dbPath == "" {
		*dbPath = filepath.Join(*out, "outcomes.db")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if *templates == "" {
		*templates = cfg.Templates.Path
	}
	if *workers <= 0 {
		*workers = cfg.Pipeline.Concurrency
	}

	ctx := context.Background()

	registry, err := template.LoadFile(*templates, logger)
	if err != nil {
		logger.Error("failed to load templates", "path", *templates, "error", err)
		os.Exit(1)
	}

	opts, err := pipeline.LoadOptions(cfg.Pipeline.OptionsPath)
	if err != nil {
		logger.Error("failed to load pipeline options", "error", err)
		os.Exit(1)
	}
	if opts.Normalization.DefaultCurrency == "" {
		opts.Normalization.DefaultCurrency = cfg.Pipeline.DefaultCurrency
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Error("failed to create output directory", "dir", *out, "error", err)
		os.Exit(1)
	}

	db, err := repository.Open(ctx, common.DatabaseConfig{DSN: *dbPath}, logger)
	if err != nil {
		logger.Error("failed to open archive database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	outcomes, err := repository.NewOutcomeRepository(db, logger)
	if err != nil {
		logger.Error("failed to init outcome repository", "error", err)
		os.Exit(1)
	}

	docs, _, stats, err := ingest.LoadDirectory(*dir, strings.Split(*exts, ","), true, logger)
	if err != nil {
		logger.Error("failed to load directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		printError("No documents found under %s\n", *dir)
		os.Exit(1)
	}

	processor := pipeline.NewProcessor(logger, registry, opts)
	results, batchStats := processor.ProcessBatch(ctx, docs, *workers)

	archived := 0
	for i := range results {
		o := &results[i]
		if err := outcomes.Save(ctx, o); err != nil {
			logger.Error("failed to archive outcome", "document_id", o.DocumentID, "error", err)
			continue
		}
		archived++
		if o.Status == constants.StatusSucceeded {
			name := strings.TrimSuffix(o.DocumentID, filepath.Ext(o.DocumentID)) + ".xml"
			if err := os.WriteFile(filepath.Join(*out, name), o.XML, 0o644); err != nil {
				logger.Error("failed to write XML", "document_id", o.DocumentID, "error", err)
			}
		}
	}

	reportPath := filepath.Join(*out, "review.xlsx")
	exporter := export.NewService(outcomes, logger)
	xlsx, err := exporter.ExportReviewXLSX(ctx, 0)
	if err != nil {
		logger.Error("failed to export review report", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(reportPath, xlsx, 0o644); err != nil {
		logger.Error("failed to write review report", "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"loaded", stats.Loaded,
		"deduplicated", stats.Deduplicated,
		"succeeded", batchStats.Succeeded,
		"needs_review", batchStats.NeedsReview,
		"rejected", batchStats.Rejected,
		"archived", archived,
		"report", reportPath,
	)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Documents processed: %d\n", batchStats.Total)
	fmt.Printf("- Succeeded: %d\n", batchStats.Succeeded)
	fmt.Printf("- Needs review: %d\n", batchStats.NeedsReview)
	fmt.Printf("- Rejected: %d\n", batchStats.Rejected)
	fmt.Printf("- Output: %s\n", *out)
}
