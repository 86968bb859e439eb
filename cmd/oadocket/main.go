package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JulianCode-PC/oa-docket/internal/common"
	"github.com/JulianCode-PC/oa-docket/internal/extract"
	"github.com/JulianCode-PC/oa-docket/internal/logger"
	"github.com/JulianCode-PC/oa-docket/internal/ocr"
	"github.com/JulianCode-PC/oa-docket/internal/pipeline"
	repo "github.com/JulianCode-PC/oa-docket/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(common.NewViper()).ExecuteContext(ctx)
	stop()
	if err != nil {
		printError("[ERROR] %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once the root has loaded config.
type app struct {
	cfg    *common.Config
	logger *slog.Logger
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "oadocket",
		Short: "Office Action docketing",
		Long: `oadocket reads patent office correspondence (PDF, image or text), decides whether it
is an Office Action, computes the response due date and schedules an internal task ahead of it.

- analyze: one file to a JSON or YAML record
- docket: one file to a case summary table
- batch: a directory to an XLSX docket report
- watch: a drop folder, processed as files arrive
- deadlines: pending stored deadlines due before a date
- dbhealth: connectivity and schema check for the docket database`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := common.LoadConfig(v, v.GetString("config"))
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger.Setup(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML config file")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "json", "log format: json or text")
	_ = v.BindPFlag("config", pf.Lookup("config"))
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log.format", pf.Lookup("log-format"))

	root.AddCommand(analyzeCmd(a))
	root.AddCommand(docketCmd(a))
	root.AddCommand(batchCmd(a))
	root.AddCommand(watchCmd(a))
	root.AddCommand(deadlinesCmd(a))
	root.AddCommand(dbhealthCmd(a))
	return root
}

// pipelineFlags are the per-run overrides shared by the processing commands.
type pipelineFlags struct {
	months     int
	days       int
	rule       string
	classifier string
	db         string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.months, "months", 0, "response period in months (months rule)")
	cmd.Flags().IntVar(&f.days, "days", 0, "response period in days (fixed_days rule)")
	cmd.Flags().StringVar(&f.rule, "rule", "", "deadline rule: months or fixed_days")
	cmd.Flags().StringVar(&f.classifier, "classifier", "", "classifier: weighted, localized or either")
	cmd.Flags().StringVar(&f.db, "db", "", "persist cases to this DSN (sqlite path or postgres URL)")
}

// apply copies the flags the user set onto cfg and revalidates it.
func (f *pipelineFlags) apply(cmd *cobra.Command, cfg *common.Config) error {
	flags := cmd.Flags()
	if flags.Changed("months") {
		cfg.Pipeline.Months = f.months
	}
	if flags.Changed("days") {
		cfg.Pipeline.FixedDays = f.days
	}
	if flags.Changed("rule") {
		cfg.Pipeline.DeadlineRule = strings.ToLower(f.rule)
	}
	if flags.Changed("classifier") {
		cfg.Pipeline.Classifier = strings.ToLower(f.classifier)
	}
	if flags.Changed("db") {
		cfg.Database.DSN = f.db
		cfg.Database.Driver = driverFor(f.db, cfg.Database.Driver)
	}
	return cfg.Validate()
}

// driverFor infers the driver from a DSN, keeping fallback when it is ambiguous.
func driverFor(dsn, fallback string) string {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return repo.DriverPostgres
	case strings.HasPrefix(lower, "file:"), strings.HasSuffix(lower, ".db"),
		strings.HasSuffix(lower, ".sqlite"), lower == ":memory:":
		return repo.DriverSQLite
	}
	return fallback
}

func ocrConfig(c common.OCRConfig) ocr.Config {
	return ocr.Config{
		Pdftotext:           c.Pdftotext,
		Pdftoppm:            c.Pdftoppm,
		Tesseract:           c.Tesseract,
		TesseractLang:       c.Lang,
		DPI:                 c.DPI,
		MaxPages:            c.MaxPages,
		TessdataDir:         c.TessdataDir,
		EnableFallback:      c.EnableFallback,
		EnableTSVConfidence: c.TSVConfidence,
	}
}

func repoConfig(c common.DatabaseConfig) repo.Config {
	return repo.Config{
		Driver:           c.Driver,
		DSN:              c.DSN,
		MaxConns:         c.MaxConns,
		MinConns:         c.MinConns,
		MaxConnLifetime:  c.MaxConnLifetime,
		MaxConnIdleTime:  c.MaxConnIdleTime,
		DialTimeout:      c.DialTimeout,
		StatementTimeout: c.StatementTimeout,
	}
}

// openStore opens and migrates the configured database. It returns a nil
// DB when no DSN is configured.
func (a *app) openStore(ctx context.Context) (*repo.DB, error) {
	if a.cfg.Database.DSN == "" {
		return nil, nil
	}
	db, err := repo.Open(ctx, repoConfig(a.cfg.Database), a.logger)
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "open database", fmt.Errorf("%w: %w", common.ErrDatabase, err))
	}
	if err := db.HealthCheck(ctx, a.cfg.Database.DialTimeout, a.logger); err != nil {
		db.Close(a.logger)
		return nil, common.NewAppError(common.CodeStorage, "database health check", fmt.Errorf("%w: %w", common.ErrDatabase, err))
	}
	if err := repo.Migrate(ctx, db, a.logger); err != nil {
		db.Close(a.logger)
		return nil, common.NewAppError(common.CodeStorage, "migrate database", fmt.Errorf("%w: %w", common.ErrDatabase, err))
	}
	return db, nil
}

// newProcessor wires extraction, the docket chain and the optional store.
// The returned cleanup closes the database, if one was opened.
func (a *app) newProcessor(ctx context.Context) (*pipeline.Processor, func(), error) {
	db, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {}
	var store pipeline.Store
	if db != nil {
		store = repo.NewDocketRepository(db, a.logger)
		cleanup = func() { db.Close(a.logger) }
	}

	tx := extract.NewOCRAdapter(ocr.NewExtractor(ocrConfig(a.cfg.OCR), a.logger), a.logger)
	proc, err := pipeline.NewProcessor(a.cfg.Pipeline, tx, store, a.logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return proc, cleanup, nil
}
