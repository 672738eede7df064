// Command server runs the language tutor HTTP API.
//
// Configuration comes from a YAML file (CONFIG_PATH, default ./config.yaml)
// and environment variables; a .env file in the working directory is loaded
// first if present.
//
// Exit codes: 0 = clean shutdown, 1 = startup or runtime error.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/heartmarshall/langtutor-backend/internal/app"
)

func main() {
	// Missing .env is not an error; real deployments set env directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
