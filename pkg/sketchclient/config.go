package sketchclient

import (
	"os"
	"time"
)

// DefaultURL is the relay endpoint used when SKETCH_SERVER_URL is unset.
const DefaultURL = "ws://localhost:4000/ws"

// Config controls how the client connects.
type Config struct {
	URL              string
	Origin           string // sent as the Origin header when set
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration // 0 waits forever; rooms can be quiet
	WriteTimeout     time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:              DefaultURL,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies SKETCH_SERVER_URL
// and SKETCH_ORIGIN.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if u := os.Getenv("SKETCH_SERVER_URL"); u != "" {
		cfg.URL = u
	}
	if o := os.Getenv("SKETCH_ORIGIN"); o != "" {
		cfg.Origin = o
	}
	return cfg
}
