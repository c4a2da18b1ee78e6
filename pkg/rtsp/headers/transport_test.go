package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTransport(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  Transport
	}{
		{
			name:  "unicast with port pair",
			value: "RTP/AVP;unicast;client_port=5000-5001",
			want: Transport{
				Profile:     "RTP/AVP",
				Delivery:    "unicast",
				ClientPorts: []int{5000, 5001},
			},
		},
		{
			name:  "single client port",
			value: "RTP/AVP;unicast;client_port=5000",
			want: Transport{
				Profile:     "RTP/AVP",
				Delivery:    "unicast",
				ClientPorts: []int{5000},
			},
		},
		{
			name:  "no ports",
			value: "RTP/AVP;multicast",
			want: Transport{
				Profile:  "RTP/AVP",
				Delivery: "multicast",
			},
		},
		{
			name:  "unknown attributes are ignored",
			value: "RTP/AVP;unicast;destination=10.0.0.5;client_port=6000-6001;append;ttl=127",
			want: Transport{
				Profile:     "RTP/AVP",
				Delivery:    "unicast",
				ClientPorts: []int{6000, 6001},
			},
		},
		{
			name:  "tcp interleaved profile",
			value: "RTP/AVP/TCP;unicast;interleaved=0-1",
			want: Transport{
				Profile:  "RTP/AVP/TCP",
				Delivery: "unicast",
			},
		},
		{
			name:  "whitespace around fields",
			value: "RTP/AVP; unicast; client_port=5000-5001",
			want: Transport{
				Profile:     "RTP/AVP",
				Delivery:    "unicast",
				ClientPorts: []int{5000, 5001},
			},
		},
		{
			name:  "unparsable port tokens are skipped",
			value: "RTP/AVP;unicast;client_port=abc-5001",
			want: Transport{
				Profile:     "RTP/AVP",
				Delivery:    "unicast",
				ClientPorts: []int{5001},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTransport(tt.value)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransport_IsReliable(t *testing.T) {
	assert.False(t, ParseTransport("RTP/AVP;unicast;client_port=5000-5001").IsReliable())
	assert.False(t, ParseTransport("RTP/AVP/UDP;unicast").IsReliable())
	assert.True(t, ParseTransport("RTP/AVP/TCP;unicast;interleaved=0-1").IsReliable())
	assert.True(t, ParseTransport("rtp/avp/tcp;unicast").IsReliable())
}

func TestTransport_FormatResponse(t *testing.T) {
	tr := ParseTransport("RTP/AVP;unicast;client_port=5000-5001")

	got := tr.FormatResponse([]int{20000, 20001}, 12345)
	want := `RTP/AVP;unicast;client_port=5000-5001;server_port=20000-20001;ssrc=12345;mode="PLAY"`
	assert.Equal(t, want, got)
}

func TestTransport_FormatResponse_SinglePorts(t *testing.T) {
	tr := ParseTransport("RTP/AVP;unicast;client_port=5000")

	got := tr.FormatResponse([]int{20000}, 7)
	assert.Equal(t, `RTP/AVP;unicast;client_port=5000;server_port=20000;ssrc=7;mode="PLAY"`, got)
}
