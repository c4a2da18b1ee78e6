package gateway

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/grandcat/zeroconf"
)

const (
	mdnsService = "_rtsp._tcp"
	mdnsDomain  = "local."
)

// ErrAlreadyAnnouncing is returned when Start is called twice
var ErrAlreadyAnnouncing = errors.New("service already announced")

// mdnsServer is the shutdown handle of an active registration
type mdnsServer interface {
	Shutdown()
}

// registerFunc creates an mDNS registration; replaced in tests
type registerFunc func(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (mdnsServer, error)

// Announcer publishes the control endpoint as an RTSP service on the local
// network so discovery browsers can find the stream.
type Announcer struct {
	register registerFunc
	server   mdnsServer
	log      *slog.Logger
}

func NewAnnouncer() *Announcer {
	return &Announcer{
		register: func(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (mdnsServer, error) {
			return zeroconf.Register(instance, service, domain, port, txt, ifaces)
		},
		log: slog.Default(),
	}
}

// Start registers the service under the given instance name.
func (a *Announcer) Start(instance string, port int) error {
	if a.server != nil {
		return ErrAlreadyAnnouncing
	}

	server, err := a.register(instance, mdnsService, mdnsDomain, port, []string{"txtvers=1"}, nil)
	if err != nil {
		return fmt.Errorf("mDNS registration failed: %w", err)
	}

	a.server = server
	a.log.Info("service advertised",
		slog.String("instance", instance),
		slog.String("service", mdnsService),
		slog.Int("port", port))
	return nil
}

// Shutdown withdraws the advertisement. Safe to call without a prior Start.
func (a *Announcer) Shutdown() {
	if a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
}
