package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arzzra/rtsp_gateway/pkg/gateway"
	"github.com/arzzra/rtsp_gateway/pkg/mediaplane"
	"github.com/arzzra/rtsp_gateway/pkg/rtsp/server"
)

func main() {
	cfg := gateway.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("gateway failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *gateway.Config) error {
	dialCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mediaplane.Dial(dialCtx, cfg.MediaServerURL)
	if err != nil {
		return err
	}
	defer client.Close()

	gw := gateway.New(client, cfg.SourceURI)

	srv := server.New(server.Config{NegotiationTimeout: cfg.NegotiationTimeout})
	srv.OnSession(func(sess *server.Session) {
		gw.Attach(sess)
	})

	if err := srv.Listen(cfg.ListenAddr); err != nil {
		return err
	}
	defer srv.Close()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	if cfg.EnableMDNS {
		announcer := gateway.NewAnnouncer()
		if err := announcer.Start(instanceName(), cfg.Port()); err != nil {
			slog.Warn("mDNS advertisement failed", slog.String("error", err.Error()))
		} else {
			defer announcer.Shutdown()
		}
	}

	slog.Info("gateway started",
		slog.String("listen", cfg.ListenAddr),
		slog.String("media_server", cfg.MediaServerURL),
		slog.String("source", cfg.SourceURI))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("received signal, shutting down", slog.String("signal", sig.String()))

	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	slog.Info("metrics endpoint listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics endpoint failed", slog.String("error", err.Error()))
	}
}

func instanceName() string {
	host, err := os.Hostname()
	if err != nil {
		return "rtsp-gateway"
	}
	return "rtsp-gateway-" + host
}
