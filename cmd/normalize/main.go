package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prefeitura-rio/app-matriculas/internal/config"
	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"github.com/prefeitura-rio/app-matriculas/internal/observability"
	"github.com/prefeitura-rio/app-matriculas/internal/services"
	"github.com/prefeitura-rio/app-matriculas/internal/utils"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var (
	dryRun       bool
	ensureIndex  bool
	failOnReport bool
)

var rootCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Rewrite stored CPFs to canonical digits",
	Long: `Scans the people collection, removes blank CPFs, rewrites masked CPFs to
their 11 digits and reports invalid or duplicated values. Once the report is
clean the unique CPF index can be built.`,
	SilenceUsage: true,
	RunE:         runNormalize,
}

func init() {
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	rootCmd.Flags().BoolVar(&ensureIndex, "ensure-index", true, "create the unique CPF index when the run leaves no conflicts")
	rootCmd.Flags().BoolVar(&failOnReport, "fail-on-report", false, "exit non-zero when invalid or duplicated CPFs remain")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runNormalize(cmd *cobra.Command, args []string) error {
	if err := logging.InitLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logging.Logger.Sync()

	if err := config.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := observability.InitTracer(context.Background(), "normalize"); err != nil {
		logging.Logger.Warn("failed to initialize tracing", zap.Error(err))
	}
	defer observability.ShutdownTracer(context.Background())

	logging.Logger.Info("starting CPF normalization", zap.Bool("dry_run", dryRun))

	// Indexes may fail to build on legacy data; that is what this run fixes
	config.InitMongoDB()
	defer config.MongoDB.Client().Disconnect(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := services.NewMongoPersonStore(config.MongoDB.Collection(config.AppConfig.PersonCollection))
	normalizer := services.NewCPFNormalizer(store, logging.Logger.With(zap.String("component", "normalize")))

	ctx, span := otel.Tracer("").Start(ctx, "cpf_normalization")
	defer span.End()

	report, err := normalizer.Run(ctx, dryRun)
	if err != nil {
		utils.RecordErrorInSpan(span, err)
		logging.Logger.Error("CPF normalization failed", zap.Error(err))
		return err
	}

	for _, invalid := range report.Invalid {
		fmt.Fprintf(cmd.OutOrStdout(), "invalid\t%s\t%s\n", invalid.ID.Hex(), invalid.Masked)
	}
	for _, duplicate := range report.Duplicates {
		for _, id := range duplicate.DuplicateIDs {
			fmt.Fprintf(cmd.OutOrStdout(), "duplicate\t%s\t%s\tkept=%s\n", id.Hex(), duplicate.Masked, duplicate.KeptID.Hex())
		}
	}

	if !report.Clean() {
		logging.Logger.Warn("stored CPFs need manual review",
			zap.Int("invalid", len(report.Invalid)),
			zap.Int("duplicates", len(report.Duplicates)))
		if failOnReport {
			return fmt.Errorf("%d invalid and %d duplicated CPFs remain", len(report.Invalid), len(report.Duplicates))
		}
		return nil
	}

	if ensureIndex && !dryRun {
		if err := config.EnsureIndexes(ctx, config.MongoDB); err != nil {
			logging.Logger.Error("failed to create indexes after normalization", zap.Error(err))
			return err
		}
	}

	return nil
}
