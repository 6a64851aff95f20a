package app

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	appdb "github.com/tlakshman26/maas/internal/db"
	"github.com/tlakshman26/maas/internal/domain"
)

type Config struct {
	DSN     string
	Timeout time.Duration
}

func LoadConfig() Config {
	cfg := Config{
		DSN:     os.Getenv("DB_CONN"),
		Timeout: 30 * time.Second,
	}

	if cfg.DSN == "" {
		log.Fatal("missing required environment variable: DB_CONN")
	}
	return cfg
}

// Run fetches one configuration snapshot, computes per-subnet utilisation
// and writes the report as JSON to out. Scheduling and upload of the report
// belong to the caller.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	logger := slog.Default()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	pool, err := appdb.NewPool(ctx, cfg.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	repository := appdb.NewSnapshotRepository(pool)
	service := domain.NewLoggingNetworkService(logger, domain.NewNetworkService(repository))

	stats, err := service.SubnetUtilisation(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(stats)
}
