package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"maintportal/internal/cache"
	"maintportal/internal/config"
	"maintportal/internal/handlers"
	"maintportal/internal/render"
	"maintportal/internal/router"
	"maintportal/internal/storage"
	"maintportal/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web portal (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

func serve(cfg *config.Config) error {
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreBackend,
	)

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	records, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer records.Close()

	// Every configured category gets a page even before its first record.
	if cfg.SeedCategories {
		if err := store.EnsureCategories(context.Background(), records, cat.Names()); err != nil {
			return err
		}
	}

	// Page cache: Valkey when configured, otherwise in process.
	var pages cache.Pages
	if cfg.CacheEnabled() {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return fmt.Errorf("connect valkey: %w", err)
		}
		defer valkeyClient.Close()
		pages = cache.NewPageCache(valkeyClient, cfg.CacheTTL)
	} else {
		pages = cache.NewMemoryCache(cache.DefaultMemoryEntries, cfg.CacheTTL)
		slog.Info("valkey not configured, using in-memory page cache")
	}

	// Object storage for PDFs is optional.
	objects, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
	if err != nil {
		return fmt.Errorf("initialize s3 storage: %w", err)
	}
	if objects != nil {
		slog.Info("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", objects.Bucket())
	} else {
		slog.Info("s3 storage not configured, pdfs are kept by the record store")
	}

	renderer, err := render.New()
	if err != nil {
		return fmt.Errorf("initialize template renderer: %w", err)
	}

	portal := handlers.NewPortal(renderer, records, cat, pages, objects)
	api := handlers.NewAPI(records, cat)

	r := router.New(portal, api, router.Options{
		SecureCookies: !cfg.IsDev(),
		// Leave room for the text fields around the PDF.
		MaxBodyBytes: cfg.MaxUploadBytes() + 64<<10,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
