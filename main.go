package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/bankmetrics/config"
	"github.com/epeers/bankmetrics/internal/database"
	"github.com/epeers/bankmetrics/internal/edgar"
	"github.com/epeers/bankmetrics/internal/repository"
	"github.com/epeers/bankmetrics/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// publishTimeout bounds dataset publication, which runs even after the run deadline hit
const publishTimeout = 2 * time.Minute

type pipelineFlags struct {
	bulk           bool
	reuseArchive   bool
	identitiesPath string
	outputPath     string
	auditPath      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags pipelineFlags

	rootCmd := &cobra.Command{
		Use:   "bankmetrics",
		Short: "Compute bank fundamentals from SEC XBRL company facts",
		Long: `bankmetrics resolves balance sheet and income statement figures for every bank in
the identity list, derives trailing-twelve-month flows and ratios, and publishes
the surviving records plus an audit trail of the facts behind each figure.

Facts come from the SEC companyfacts API, one request per bank, or with --bulk
from the nightly companyfacts archive extracted into ARCHIVE_DIR.

SEC_USER_AGENT must hold a contact string, for example "Jane Doe jane@example.com".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runPipeline(cmd.Context(), flags)
			if err != nil {
				log.Errorf("Pipeline failed: %v", err)
			}
			return err
		},
	}

	rootCmd.Flags().BoolVar(&flags.bulk, "bulk", false, "Read facts from the local bulk archive instead of the API")
	rootCmd.Flags().BoolVar(&flags.reuseArchive, "reuse-archive", false, "Skip the archive download when it is already extracted")
	rootCmd.Flags().StringVar(&flags.identitiesPath, "identities", "", "Identity list (JSON or CSV), overrides IDENTITIES_PATH")
	rootCmd.Flags().StringVar(&flags.outputPath, "output", "", "Records dataset path, overrides OUTPUT_PATH")
	rootCmd.Flags().StringVar(&flags.auditPath, "audit", "", "Audit dataset path, overrides AUDIT_PATH")

	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

func setupLogging(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

func runPipeline(parent context.Context, flags pipelineFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	if flags.identitiesPath != "" {
		cfg.IdentitiesPath = flags.identitiesPath
	}
	if flags.outputPath != "" {
		cfg.OutputPath = flags.outputPath
	}
	if flags.auditPath != "" {
		cfg.AuditPath = flags.auditPath
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	listings, err := edgar.LoadIdentityList(cfg.IdentitiesPath)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		return fmt.Errorf("%s: %w", cfg.IdentitiesPath, services.ErrNoIdentities)
	}

	source, err := factSource(ctx, cfg, flags)
	if err != nil {
		return err
	}

	catalog := services.NewConceptCatalog(services.DefaultMetrics())
	pipeline := services.NewPipelineService(source, catalog, services.PipelineOptions{
		Concurrency: cfg.Concurrency,
		Staleness: services.StalenessPolicy{
			ExcludeAfterDays: cfg.StaleDays,
			WarnAfterDays:    cfg.StaleWarnDays,
		},
	})

	result, err := pipeline.Run(ctx, listings, time.Now().UTC())
	if err != nil {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Warnf("Run deadline of %s reached, %d entities cancelled", cfg.RunTimeout, result.Summary.Cancelled)
	}

	// Completed records are still published after a deadline or signal
	pubCtx, pubCancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer pubCancel()

	sinks := []services.DatasetSink{repository.NewDatasetFileRepository(cfg.OutputPath, cfg.AuditPath)}
	if cfg.PGURL != "" {
		db, err := database.New(pubCtx, cfg.PGURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(pubCtx); err != nil {
			return err
		}
		sinks = append(sinks, repository.NewEntityRecordRepository(db.Pool))
	}

	return services.Publish(pubCtx, result, sinks...)
}

func factSource(ctx context.Context, cfg *config.Config, flags pipelineFlags) (services.FactSource, error) {
	if !flags.bulk {
		return edgar.NewClient(cfg.UserAgent, edgar.WithRequestDelay(cfg.RequestDelay)), nil
	}

	archive := edgar.NewArchive(cfg.ArchiveDir)
	if flags.reuseArchive && archive.Populated() {
		log.Infof("Reusing extracted archive in %s", archive.Dir())
		return archive, nil
	}
	if flags.reuseArchive {
		log.Warnf("Archive dir %s is empty, downloading", archive.Dir())
	}
	if err := archive.Download(ctx, edgar.BulkArchiveURL, cfg.UserAgent); err != nil {
		return nil, err
	}
	return archive, nil
}
