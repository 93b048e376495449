package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/statusdesk/statusdesk/internal/app"
	catalogpostgres "github.com/statusdesk/statusdesk/internal/catalog/postgres"
	"github.com/statusdesk/statusdesk/internal/config"
	identitypostgres "github.com/statusdesk/statusdesk/internal/identity/postgres"
	incidentspostgres "github.com/statusdesk/statusdesk/internal/incidents/postgres"
	"github.com/statusdesk/statusdesk/internal/pkg/postgres"
	"github.com/statusdesk/statusdesk/internal/seed"
	"github.com/statusdesk/statusdesk/internal/version"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	runMigrations := flag.Bool("migrate", false, "apply database migrations before starting")
	migrationsPath := flag.String("migrations", "migrations", "path to migration files")
	runSeed := flag.Bool("seed", false, "load demo data into an empty database and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("statusdesk %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildDate)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if *runMigrations {
		if err := applyMigrations(*migrationsPath, cfg.Database.URL); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
	}

	if *runSeed {
		if err := seedDemoData(cfg); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
		return
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init app: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server: %v", err)
		}
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}

func applyMigrations(path, databaseURL string) error {
	migrator, err := migrate.New("file://"+path, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// seedDemoData connects, loads the demo dataset and returns. It is a
// one-shot operation, typically combined with -migrate on a fresh
// environment.
func seedDemoData(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()

	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	seeder := seed.New(
		identitypostgres.NewRepository(db),
		catalogpostgres.NewRepository(db),
		incidentspostgres.NewRepository(db),
	)
	return seeder.Run(context.Background())
}
