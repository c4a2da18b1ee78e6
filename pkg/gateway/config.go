package gateway

import (
	"errors"
	"flag"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultPort = 8554

// Config holds the gateway configuration
type Config struct {
	// ListenAddr is the control listener address
	ListenAddr string
	// MediaServerURL is the media server WebSocket endpoint
	MediaServerURL string
	// SourceURI is the media locator played into every session
	SourceURI string
	// NegotiationTimeout bounds each media plane call made on behalf of a
	// control request
	NegotiationTimeout time.Duration
	// MetricsAddr serves the Prometheus endpoint; empty disables it
	MetricsAddr string
	// EnableMDNS advertises the control endpoint on the local network
	EnableMDNS bool
	LogLevel   string
}

// Load loads configuration from command line flags and environment variables
func Load() *Config {
	return load(flag.CommandLine, os.Args[1:])
}

func load(fs *flag.FlagSet, args []string) *Config {
	cfg := &Config{}

	fs.StringVar(&cfg.ListenAddr, "listen", ":8554", "control listen address")
	fs.StringVar(&cfg.MediaServerURL, "media-server", "ws://127.0.0.1:8888/kurento", "media server WebSocket URL")
	fs.StringVar(&cfg.SourceURI, "source", "", "source media URI played into each session")
	fs.DurationVar(&cfg.NegotiationTimeout, "negotiation-timeout", 10*time.Second, "media plane call deadline")
	fs.StringVar(&cfg.MetricsAddr, "metrics", ":9091", "metrics endpoint address (empty disables)")
	fs.BoolVar(&cfg.EnableMDNS, "mdns", false, "advertise the service via mDNS")
	fs.StringVar(&cfg.LogLevel, "loglevel", "info", "log level (debug, info, warn, error)")

	_ = fs.Parse(args)

	// Override with environment variables if set
	if listen := os.Getenv("LISTEN"); listen != "" {
		cfg.ListenAddr = listen
	}
	if mediaServer := os.Getenv("MEDIA_SERVER"); mediaServer != "" {
		cfg.MediaServerURL = mediaServer
	}
	if source := os.Getenv("SOURCE"); source != "" {
		cfg.SourceURI = source
	}
	if timeout := os.Getenv("NEGOTIATION_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.NegotiationTimeout = d
		}
	}
	if metrics, ok := os.LookupEnv("METRICS"); ok {
		cfg.MetricsAddr = metrics
	}
	if mdns := os.Getenv("MDNS"); mdns != "" {
		if b, err := strconv.ParseBool(mdns); err == nil {
			cfg.EnableMDNS = b
		}
	}
	if loglevel := os.Getenv("LOGLEVEL"); loglevel != "" {
		cfg.LogLevel = loglevel
	}

	return cfg
}

// Validate checks settings that have no workable default
func (c *Config) Validate() error {
	if c.SourceURI == "" {
		return errors.New("source media URI is required")
	}
	if c.NegotiationTimeout <= 0 {
		return errors.New("negotiation timeout must be positive")
	}
	return nil
}

// Port returns the numeric port of the listen address, for advertisement
func (c *Config) Port() int {
	_, portStr, err := net.SplitHostPort(c.ListenAddr)
	if err != nil {
		return defaultPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return defaultPort
	}
	return port
}

// SlogLevel maps the configured level name to a slog level
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
