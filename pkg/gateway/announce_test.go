package gateway

import (
	"errors"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMDNS struct {
	shutdowns int
}

func (f *fakeMDNS) Shutdown() { f.shutdowns++ }

func TestAnnouncer(t *testing.T) {
	handle := &fakeMDNS{}
	var gotInstance, gotService, gotDomain string
	var gotPort int

	a := &Announcer{
		register: func(instance, service, domain string, port int, _ []string, _ []net.Interface) (mdnsServer, error) {
			gotInstance, gotService, gotDomain, gotPort = instance, service, domain, port
			return handle, nil
		},
		log: slog.Default(),
	}

	require.NoError(t, a.Start("hall-camera", 8554))
	assert.Equal(t, "hall-camera", gotInstance)
	assert.Equal(t, "_rtsp._tcp", gotService)
	assert.Equal(t, "local.", gotDomain)
	assert.Equal(t, 8554, gotPort)

	assert.ErrorIs(t, a.Start("again", 8554), ErrAlreadyAnnouncing)

	a.Shutdown()
	assert.Equal(t, 1, handle.shutdowns)

	a.Shutdown()
	assert.Equal(t, 1, handle.shutdowns, "second shutdown is a no-op")

	require.NoError(t, a.Start("hall-camera", 8554), "restart after shutdown")
}

func TestAnnouncerStart_RegistrationFailure(t *testing.T) {
	a := &Announcer{
		register: func(string, string, string, int, []string, []net.Interface) (mdnsServer, error) {
			return nil, errors.New("no multicast route")
		},
		log: slog.Default(),
	}

	err := a.Start("hall-camera", 8554)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mDNS registration failed")
}
