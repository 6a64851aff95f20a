package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/tlakshman26/maas/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := app.LoadConfig()

	if err := app.Run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("subnetstats: %v", err)
	}
}
