package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/ivanmolchanov/shorturl/internal/app"
	"github.com/ivanmolchanov/shorturl/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}

	if err := app.Run(ctx, cfg); err != nil {
		panic(err)
	}
}
