// Package headers implements typed parsing and formatting for the RTSP
// headers that carry negotiation state, currently only Transport.
package headers

import (
	"fmt"
	"strconv"
	"strings"
)

// Transport describes the media transport a client requests in a SETUP
// Transport header: profile token, delivery mode and the client-side port
// pair. Ports stay empty when the client announced none.
type Transport struct {
	Profile     string
	Delivery    string
	ClientPorts []int
}

// ParseTransport parses a Transport header value. The first field is the
// profile, the second the delivery mode, the rest key=value attributes.
// Only client_port is interpreted; unknown attributes never produce an
// error, since rejecting unsupported profiles is negotiation policy and
// belongs to the dispatcher.
func ParseTransport(value string) Transport {
	var t Transport

	fields := strings.Split(value, ";")
	for i, field := range fields {
		field = strings.TrimSpace(field)

		switch {
		case i == 0:
			t.Profile = field
		case i == 1:
			t.Delivery = field
		default:
			key, val, ok := strings.Cut(field, "=")
			if !ok || key != "client_port" {
				continue
			}
			for _, p := range strings.Split(val, "-") {
				port, err := strconv.Atoi(strings.TrimSpace(p))
				if err != nil {
					continue
				}
				t.ClientPorts = append(t.ClientPorts, port)
			}
		}
	}

	return t
}

// IsReliable reports whether the profile requests a reliable transport
// (interleaved TCP). Only datagram delivery is supported, so this is the
// 461 Unsupported Transport trigger.
func (t Transport) IsReliable() bool {
	return strings.HasSuffix(strings.ToUpper(t.Profile), "/TCP")
}

// FormatResponse renders the Transport header for a successful SETUP
// response: profile, unicast delivery, the client's ports echoed back, the
// ports and synchronization source the media plane answered with, and the
// playback mode marker.
func (t Transport) FormatResponse(serverPorts []int, ssrc uint32) string {
	var sb strings.Builder

	sb.WriteString(t.Profile)
	sb.WriteString(";unicast")
	if len(t.ClientPorts) > 0 {
		fmt.Fprintf(&sb, ";client_port=%s", formatPortPair(t.ClientPorts))
	}
	if len(serverPorts) > 0 {
		fmt.Fprintf(&sb, ";server_port=%s", formatPortPair(serverPorts))
	}
	fmt.Fprintf(&sb, ";ssrc=%d", ssrc)
	sb.WriteString(`;mode="PLAY"`)

	return sb.String()
}

// formatPortPair renders one or two ports as n or n-m
func formatPortPair(ports []int) string {
	if len(ports) == 1 {
		return strconv.Itoa(ports[0])
	}
	return fmt.Sprintf("%d-%d", ports[0], ports[1])
}
