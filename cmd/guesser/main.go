// Command guesser is a terminal client for the sketch relay. It joins a
// room, prints what happens in it, and sends each line typed on stdin as a
// guess. A line reading /clear clears the room's canvases instead.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Tyrowin/sketchrelay/pkg/sketchclient"
)

func main() {
	cfg := sketchclient.ConfigFromEnv()

	roomID := flag.String("room", "lobby", "room to join")
	flag.StringVar(&cfg.URL, "url", cfg.URL, "relay WebSocket URL (SKETCH_SERVER_URL)")
	flag.StringVar(&cfg.Origin, "origin", cfg.Origin, "Origin header to present (SKETCH_ORIGIN)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := sketchclient.NewClient(cfg)
	client.OnWord(func(word string) { fmt.Printf("* word is now %q\n", word) })
	client.OnStroke(func(s sketchclient.Stroke) {
		fmt.Printf("* stroke (%.0f,%.0f) -> (%.0f,%.0f)\n", s.X0, s.Y0, s.X1, s.Y1)
	})
	client.OnClear(func() { fmt.Println("* canvas cleared") })
	client.OnGuess(func(text string) { fmt.Printf("guess: %s\n", text) })
	client.OnCorrectGuess(func(text string) { fmt.Printf("* %q was correct!\n", text) })
	client.OnError(func(err error) { log.Printf("Relay error: %v", err) })

	if err := client.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.URL, err)
	}
	defer func() { _ = client.Close() }()

	if err := client.JoinRoom(ctx, *roomID); err != nil {
		log.Fatalf("Failed to join room %q: %v", *roomID, err)
	}
	fmt.Printf("Joined room %q at %s. Type a guess and press enter.\n", *roomID, cfg.URL)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-client.Done():
			log.Println("Connection closed by relay")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := handleLine(ctx, client, *roomID, line); err != nil {
				log.Printf("Send failed: %v", err)
			}
		}
	}
}

func handleLine(ctx context.Context, client *sketchclient.Client, roomID, line string) error {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return nil
	case "/clear":
		return client.Clear(ctx, roomID)
	default:
		return client.Guess(ctx, roomID, line)
	}
}
