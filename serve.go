package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/bankmetrics/config"
	"github.com/epeers/bankmetrics/internal/cache"
	"github.com/epeers/bankmetrics/internal/database"
	"github.com/epeers/bankmetrics/internal/handlers"
	"github.com/epeers/bankmetrics/internal/middleware"
	"github.com/epeers/bankmetrics/internal/repository"
	"github.com/epeers/bankmetrics/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the last published dataset as a read-only JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runServe(cmd.Context())
			if err != nil {
				log.Errorf("Server failed: %v", err)
			}
			return err
		},
	}
}

func newRouter(entityHandler *handlers.EntityHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/entities", entityHandler.List)
	router.GET("/entities/:cik", entityHandler.Get)
	router.GET("/entities/:cik/audit", entityHandler.Audit)
	router.GET("/summary", entityHandler.Summary)

	return router
}

func runServe(parent context.Context) error {
	cfg, err := config.LoadServe()
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres when configured, otherwise the JSON files written by the pipeline
	var store services.DatasetStore = repository.NewDatasetFileRepository(cfg.OutputPath, cfg.AuditPath)
	if cfg.PGURL != "" {
		db, err := database.New(ctx, cfg.PGURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		store = repository.NewEntityRecordRepository(db.Pool)
	}

	memCache := cache.NewMemoryCache(cfg.CacheTTL)
	datasetSvc := services.NewDatasetService(store, memCache)
	entityHandler := handlers.NewEntityHandler(datasetSvc)

	// SIGHUP drops cached reads once a new dataset has been published
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go reloadOnSignal(ctx, hup, datasetSvc)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(entityHandler),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func reloadOnSignal(ctx context.Context, sig <-chan os.Signal, datasetSvc *services.DatasetService) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			datasetSvc.Invalidate()
			log.Info("Dataset cache cleared")
		}
	}
}
