package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tyrowin/sketchrelay/internal/room"
	"github.com/Tyrowin/sketchrelay/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fmt.Println("Starting sketch relay server...")

	config := server.NewConfigFromEnv()

	rooms, err := room.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to create room registry: %v", err)
	}

	app := server.New(config, rooms)
	app.Start()

	httpServer := server.CreateServer(app.Config().Port, app.Routes())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.StartServer(httpServer)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	}

	if err := app.Shutdown(httpServer, shutdownTimeout); err != nil {
		log.Printf("Shutdown finished with errors: %v", err)
		os.Exit(1)
	}
}
