// Package sdp builds the session descriptions offered during negotiation
// and extracts the negotiated parameters from media-plane answers.
package sdp

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	psdp "github.com/pion/sdp/v3"
)

// Fixed media profile: one H264 video stream on dynamic payload type 97.
const (
	mediaKind   = "video"
	payloadType = 97
	codecName   = "H264"
	clockRate   = 90000
)

// OfferParams describes the offer to build. ClientPorts empty means
// capability discovery: the media port is 0 and no rtcp attribute is
// emitted.
type OfferParams struct {
	PeerAddr    string
	SessionID   uint64
	ClientPorts []int
}

// AnswerParams carries the transport parameters the media plane chose in
// its answer.
type AnswerParams struct {
	RTPPort  int
	RTCPPort int // 0 when the answer had no rtcp attribute
	SSRC     uint32
}

// BuildOffer constructs the description of what the server can receive:
// one video section, H264 at 90 kHz, receive-only from the server's point
// of view. The connection address is the peer the description is for, with
// the address family derived from it.
func BuildOffer(p OfferParams) *psdp.SessionDescription {
	addrType := addressType(p.PeerAddr)

	port := 0
	if len(p.ClientPorts) > 0 {
		port = p.ClientPorts[0]
	}

	attributes := []psdp.Attribute{
		psdp.NewAttribute("rtpmap", fmt.Sprintf("%d %s/%d", payloadType, codecName, clockRate)),
		psdp.NewPropertyAttribute("recvonly"),
	}
	if len(p.ClientPorts) > 1 {
		attributes = append(attributes, psdp.NewAttribute("rtcp", strconv.Itoa(p.ClientPorts[1])))
	}

	return &psdp.SessionDescription{
		Version: 0,
		Origin: psdp.Origin{
			Username:       "-",
			SessionID:      p.SessionID,
			SessionVersion: 0,
			NetworkType:    "IN",
			AddressType:    addrType,
			UnicastAddress: p.PeerAddr,
		},
		SessionName: "-",
		ConnectionInformation: &psdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: addrType,
			Address:     &psdp.Address{Address: p.PeerAddr},
		},
		TimeDescriptions: []psdp.TimeDescription{
			{
				Timing: psdp.Timing{
					StartTime: 0,
					StopTime:  0,
				},
			},
		},
		MediaDescriptions: []*psdp.MediaDescription{
			{
				MediaName: psdp.MediaName{
					Media:   mediaKind,
					Port:    psdp.RangedPort{Value: port},
					Protos:  []string{"RTP", "AVP"},
					Formats: []string{strconv.Itoa(payloadType)},
				},
				Attributes: attributes,
			},
		},
	}
}

// Parse decodes a session description
func Parse(data []byte) (*psdp.SessionDescription, error) {
	var desc psdp.SessionDescription
	if err := desc.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescription, err)
	}
	return &desc, nil
}

// ExtractAnswer reads the transport parameters from a media-plane answer.
// Exactly one media section with one synchronization source is assumed;
// a missing media section or ssrc attribute makes the answer malformed.
func ExtractAnswer(data []byte) (AnswerParams, error) {
	desc, err := Parse(data)
	if err != nil {
		return AnswerParams{}, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
	}

	if len(desc.MediaDescriptions) == 0 {
		return AnswerParams{}, fmt.Errorf("%w: no media section", ErrMalformedAnswer)
	}
	media := desc.MediaDescriptions[0]

	params := AnswerParams{
		RTPPort: media.MediaName.Port.Value,
	}

	if value, ok := media.Attribute("rtcp"); ok {
		port, err := strconv.Atoi(firstField(value))
		if err != nil {
			return AnswerParams{}, fmt.Errorf("%w: rtcp port %q", ErrMalformedAnswer, value)
		}
		params.RTCPPort = port
	}

	ssrc, ok := media.Attribute("ssrc")
	if !ok {
		return AnswerParams{}, fmt.Errorf("%w: no ssrc attribute", ErrMalformedAnswer)
	}
	id, err := strconv.ParseUint(firstField(ssrc), 10, 32)
	if err != nil {
		return AnswerParams{}, fmt.Errorf("%w: ssrc %q", ErrMalformedAnswer, ssrc)
	}
	params.SSRC = uint32(id)

	return params, nil
}

// addressType maps an address to its SDP family token, defaulting to IP4
func addressType(addr string) string {
	if ip := net.ParseIP(addr); ip != nil && ip.To4() == nil {
		return "IP6"
	}
	return "IP4"
}

// firstField returns the value up to the first space
func firstField(value string) string {
	if idx := strings.IndexByte(value, ' '); idx >= 0 {
		return value[:idx]
	}
	return value
}
