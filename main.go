package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	docgate "github.com/docmill/docgate/app"
)

func main() {
	ctx, _ := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	app, err := docgate.New(ctx, nil)
	if err != nil {
		log.Fatalf("starting docgate: %v", err)
	}

	app.Start()
}
