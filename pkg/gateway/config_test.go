package gateway

import (
	"flag"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := load(fs, nil)

	assert.Equal(t, ":8554", cfg.ListenAddr)
	assert.Equal(t, "ws://127.0.0.1:8888/kurento", cfg.MediaServerURL)
	assert.Empty(t, cfg.SourceURI)
	assert.Equal(t, 10*time.Second, cfg.NegotiationTimeout)
	assert.Equal(t, ":9091", cfg.MetricsAddr)
	assert.False(t, cfg.EnableMDNS)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestConfigFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := load(fs, []string{
		"-listen", ":9554",
		"-media-server", "ws://media.local:8888/kurento",
		"-source", "rtsp://camera.local/stream",
		"-negotiation-timeout", "2s",
		"-metrics", "",
		"-mdns",
		"-loglevel", "debug",
	})

	assert.Equal(t, ":9554", cfg.ListenAddr)
	assert.Equal(t, "ws://media.local:8888/kurento", cfg.MediaServerURL)
	assert.Equal(t, "rtsp://camera.local/stream", cfg.SourceURI)
	assert.Equal(t, 2*time.Second, cfg.NegotiationTimeout)
	assert.Empty(t, cfg.MetricsAddr)
	assert.True(t, cfg.EnableMDNS)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("LISTEN", ":7777")
	t.Setenv("MEDIA_SERVER", "ws://other:8888/kurento")
	t.Setenv("SOURCE", "rtsp://env.camera/stream")
	t.Setenv("NEGOTIATION_TIMEOUT", "3s")
	t.Setenv("METRICS", "")
	t.Setenv("MDNS", "true")
	t.Setenv("LOGLEVEL", "warn")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := load(fs, []string{"-listen", ":9554"})

	assert.Equal(t, ":7777", cfg.ListenAddr, "environment wins over flags")
	assert.Equal(t, "ws://other:8888/kurento", cfg.MediaServerURL)
	assert.Equal(t, "rtsp://env.camera/stream", cfg.SourceURI)
	assert.Equal(t, 3*time.Second, cfg.NegotiationTimeout)
	assert.Empty(t, cfg.MetricsAddr, "empty METRICS disables the endpoint")
	assert.True(t, cfg.EnableMDNS)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{SourceURI: "rtsp://camera.local/stream", NegotiationTimeout: time.Second}
	require.NoError(t, cfg.Validate())

	cfg = &Config{NegotiationTimeout: time.Second}
	assert.Error(t, cfg.Validate())

	cfg = &Config{SourceURI: "rtsp://camera.local/stream"}
	assert.Error(t, cfg.Validate())
}

func TestConfigPort(t *testing.T) {
	tests := []struct {
		addr string
		want int
	}{
		{addr: ":8554", want: 8554},
		{addr: "0.0.0.0:9554", want: 9554},
		{addr: "bogus", want: defaultPort},
		{addr: "host:notaport", want: defaultPort},
	}

	for _, tt := range tests {
		cfg := &Config{ListenAddr: tt.addr}
		assert.Equal(t, tt.want, cfg.Port(), "addr %q", tt.addr)
	}
}

func TestConfigSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "info", want: slog.LevelInfo},
		{level: "WARN", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "unknown", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		assert.Equal(t, tt.want, cfg.SlogLevel(), "level %q", tt.level)
	}
}
