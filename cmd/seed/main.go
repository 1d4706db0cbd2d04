// Command seed writes the synthetic patient roster and slot grid into the
// configured data directory. Stores that already exist are not touched.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/jwalitptl/clinic-booking/config"
	"github.com/jwalitptl/clinic-booking/internal/app"
	"github.com/jwalitptl/clinic-booking/pkg/logger"
	"github.com/jwalitptl/clinic-booking/pkg/metrics"
)

func main() {
	configFile := pflag.StringP("config", "c", "", "path to config.yml (default: search . ./config /app/config)")
	dataDir := pflag.String("data-dir", "", "override storage.dir")
	pflag.Parse()

	log := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    true,
	})

	file := *configFile
	if file == "" {
		file = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.Load(file)
	if err != nil {
		log.Fatal(err, "failed to load config")
	}
	if *dataDir != "" {
		cfg.Storage.Dir = *dataDir
	}
	log = logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    cfg.Log.Console,
	})

	seeder, err := app.NewSeeder(cfg, metrics.New("seed"), log)
	if err != nil {
		log.Fatal(err, "failed to open stores")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := seeder.Ensure(ctx); err != nil {
		log.Fatal(err, "failed to seed", "dir", cfg.Storage.Dir)
	}
	log.Info("seed complete", "dir", cfg.Storage.Dir)
}
