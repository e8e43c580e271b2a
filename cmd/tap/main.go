package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"kafkatap/internal/logging"
	"kafkatap/internal/tap"
	"kafkatap/record"
)

func main() {
	logging.InitFromEnv()

	specPath := "tap.yml"
	if len(os.Args) > 1 {
		specPath = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, err := tap.Bootstrap(specPath, func(p record.Pair) error {
		_, err := fmt.Printf("%s\t%s\n", p.Key, p.Value)
		return err
	})
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("tap: %v", err)
	}
}
