package sdp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOffer_Discovery(t *testing.T) {
	offer := BuildOffer(OfferParams{
		PeerAddr:  "10.0.0.5",
		SessionID: 12345678,
	})

	assert.Equal(t, "-", offer.Origin.Username)
	assert.Equal(t, uint64(12345678), offer.Origin.SessionID)
	assert.Equal(t, uint64(0), offer.Origin.SessionVersion)
	assert.Equal(t, "IP4", offer.Origin.AddressType)
	assert.Equal(t, "10.0.0.5", offer.Origin.UnicastAddress)

	require.NotNil(t, offer.ConnectionInformation)
	assert.Equal(t, "IP4", offer.ConnectionInformation.AddressType)
	assert.Equal(t, "10.0.0.5", offer.ConnectionInformation.Address.Address)

	require.Len(t, offer.MediaDescriptions, 1)
	media := offer.MediaDescriptions[0]
	assert.Equal(t, "video", media.MediaName.Media)
	assert.Equal(t, 0, media.MediaName.Port.Value)
	assert.Equal(t, []string{"97"}, media.MediaName.Formats)

	rtpmap, ok := media.Attribute("rtpmap")
	require.True(t, ok)
	assert.Equal(t, "97 H264/90000", rtpmap)

	_, ok = media.Attribute("recvonly")
	assert.True(t, ok)

	// Discovery offers carry no rtcp attribute
	_, ok = media.Attribute("rtcp")
	assert.False(t, ok)

	data, err := offer.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "m=video 0 RTP/AVP 97\r\n")
	assert.Contains(t, string(data), "o=- 12345678 0 IN IP4 10.0.0.5\r\n")
	assert.Contains(t, string(data), "t=0 0\r\n")
}

func TestBuildOffer_WithClientPorts(t *testing.T) {
	offer := BuildOffer(OfferParams{
		PeerAddr:    "10.0.0.5",
		SessionID:   42,
		ClientPorts: []int{5000, 5001},
	})

	require.Len(t, offer.MediaDescriptions, 1)
	media := offer.MediaDescriptions[0]
	assert.Equal(t, 5000, media.MediaName.Port.Value)

	rtcp, ok := media.Attribute("rtcp")
	require.True(t, ok)
	assert.Equal(t, "5001", rtcp)
}

func TestBuildOffer_SinglePort(t *testing.T) {
	offer := BuildOffer(OfferParams{
		PeerAddr:    "10.0.0.5",
		SessionID:   42,
		ClientPorts: []int{5000},
	})

	media := offer.MediaDescriptions[0]
	assert.Equal(t, 5000, media.MediaName.Port.Value)

	// Secondary port was not announced, so none is offered back
	_, ok := media.Attribute("rtcp")
	assert.False(t, ok)
}

func TestBuildOffer_IPv6(t *testing.T) {
	offer := BuildOffer(OfferParams{
		PeerAddr:  "2001:db8::1",
		SessionID: 42,
	})

	assert.Equal(t, "IP6", offer.Origin.AddressType)
	assert.Equal(t, "IP6", offer.ConnectionInformation.AddressType)
	assert.Equal(t, "2001:db8::1", offer.ConnectionInformation.Address.Address)
}

func TestRoundTrip(t *testing.T) {
	offer := BuildOffer(OfferParams{
		PeerAddr:    "10.0.0.5",
		SessionID:   12345678,
		ClientPorts: []int{5000, 5001},
	})

	data, err := offer.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, offer.Origin, parsed.Origin)
	assert.Equal(t, offer.SessionName, parsed.SessionName)
	require.NotNil(t, parsed.ConnectionInformation)
	assert.Equal(t, offer.ConnectionInformation.AddressType, parsed.ConnectionInformation.AddressType)
	assert.Equal(t, offer.ConnectionInformation.Address.Address, parsed.ConnectionInformation.Address.Address)
	require.Len(t, parsed.TimeDescriptions, 1)
	assert.Equal(t, offer.TimeDescriptions[0].Timing, parsed.TimeDescriptions[0].Timing)

	require.Len(t, parsed.MediaDescriptions, 1)
	assert.Equal(t, offer.MediaDescriptions[0].MediaName, parsed.MediaDescriptions[0].MediaName)
	assert.Equal(t, offer.MediaDescriptions[0].Attributes, parsed.MediaDescriptions[0].Attributes)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("this is not a session description"))
	require.ErrorIs(t, err, ErrInvalidDescription)
}

func TestExtractAnswer(t *testing.T) {
	answer := strings.Join([]string{
		"v=0",
		"o=- 3913844920 3913844920 IN IP4 192.168.1.100",
		"s=Kurento Media Server",
		"c=IN IP4 192.168.1.100",
		"t=0 0",
		"m=video 20000 RTP/AVP 97",
		"a=rtpmap:97 H264/90000",
		"a=sendonly",
		"a=rtcp:20001",
		"a=ssrc:12345 cname:user2495419@host-58c56d1e",
		"",
	}, "\r\n")

	params, err := ExtractAnswer([]byte(answer))
	require.NoError(t, err)

	assert.Equal(t, 20000, params.RTPPort)
	assert.Equal(t, 20001, params.RTCPPort)
	assert.Equal(t, uint32(12345), params.SSRC)
}

func TestExtractAnswer_NoRTCPAttribute(t *testing.T) {
	answer := strings.Join([]string{
		"v=0",
		"o=- 1 1 IN IP4 192.168.1.100",
		"s=-",
		"c=IN IP4 192.168.1.100",
		"t=0 0",
		"m=video 20000 RTP/AVP 97",
		"a=ssrc:99 cname:x",
		"",
	}, "\r\n")

	params, err := ExtractAnswer([]byte(answer))
	require.NoError(t, err)

	assert.Equal(t, 20000, params.RTPPort)
	assert.Equal(t, 0, params.RTCPPort)
	assert.Equal(t, uint32(99), params.SSRC)
}

func TestExtractAnswer_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{
			name:   "not a description",
			answer: "garbage",
		},
		{
			name: "no media section",
			answer: strings.Join([]string{
				"v=0",
				"o=- 1 1 IN IP4 127.0.0.1",
				"s=-",
				"t=0 0",
				"",
			}, "\r\n"),
		},
		{
			name: "no ssrc",
			answer: strings.Join([]string{
				"v=0",
				"o=- 1 1 IN IP4 127.0.0.1",
				"s=-",
				"c=IN IP4 127.0.0.1",
				"t=0 0",
				"m=video 20000 RTP/AVP 97",
				"a=rtpmap:97 H264/90000",
				"",
			}, "\r\n"),
		},
		{
			name: "unparsable ssrc",
			answer: strings.Join([]string{
				"v=0",
				"o=- 1 1 IN IP4 127.0.0.1",
				"s=-",
				"c=IN IP4 127.0.0.1",
				"t=0 0",
				"m=video 20000 RTP/AVP 97",
				"a=ssrc:banana cname:x",
				"",
			}, "\r\n"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractAnswer([]byte(tt.answer))
			require.ErrorIs(t, err, ErrMalformedAnswer)
		})
	}
}
