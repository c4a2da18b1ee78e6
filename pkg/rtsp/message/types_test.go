package message

import (
	"strings"
	"testing"
)

func TestResponse_Bytes(t *testing.T) {
	resp := NewResponse(StatusOK)
	resp.SetHeader("CSeq", "3")
	resp.SetHeader("Date", "Tue, 25 Aug 2026 10:00:00 GMT")
	resp.SetHeader("Session", "12345678")
	resp.SetBody([]byte("v=0\r\n"))
	resp.SetHeader("Content-Length", "5")

	wire := string(resp.Bytes())

	if !strings.HasPrefix(wire, "RTSP/1.0 200 OK\r\n") {
		t.Errorf("Invalid status line: %q", wire)
	}

	// Headers keep insertion order
	cseqIdx := strings.Index(wire, "CSeq:")
	dateIdx := strings.Index(wire, "Date:")
	sessIdx := strings.Index(wire, "Session:")
	if cseqIdx == -1 || dateIdx == -1 || sessIdx == -1 {
		t.Fatalf("Missing headers: %q", wire)
	}
	if !(cseqIdx < dateIdx && dateIdx < sessIdx) {
		t.Error("Headers not in insertion order")
	}

	if !strings.HasSuffix(wire, "\r\n\r\nv=0\r\n") {
		t.Errorf("Body not appended after blank line: %q", wire)
	}
}

func TestResponse_StatusLines(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{StatusOK, "RTSP/1.0 200 OK"},
		{StatusNotAcceptable, "RTSP/1.0 406 Not Acceptable"},
		{StatusMethodNotValidInState, "RTSP/1.0 455 Method Not Valid in This State"},
		{StatusUnsupportedTransport, "RTSP/1.0 461 Unsupported Transport"},
		{StatusNotImplemented, "RTSP/1.0 501 Not Implemented"},
		{StatusGatewayTimeout, "RTSP/1.0 504 Gateway Time-out"},
	}

	for _, tt := range tests {
		resp := NewResponse(tt.code)
		wire := string(resp.Bytes())
		if !strings.HasPrefix(wire, tt.want+"\r\n") {
			t.Errorf("status %d: line = %q, want prefix %q", tt.code, wire, tt.want)
		}
	}
}

func TestRequest_String(t *testing.T) {
	req := NewRequest("describe", "rtsp://10.0.0.1:8554/stream")
	req.SetHeader("CSeq", "2")
	req.SetHeader("Accept", "application/sdp")

	wire := req.String()

	if !strings.HasPrefix(wire, "DESCRIBE rtsp://10.0.0.1:8554/stream RTSP/1.0\r\n") {
		t.Errorf("Invalid request line: %q", wire)
	}
	if !strings.Contains(wire, "CSeq: 2\r\n") {
		t.Error("Missing CSeq header")
	}
	if !strings.HasSuffix(wire, "\r\n\r\n") {
		t.Error("Missing header terminator")
	}
}

func TestMethods_PublicOrder(t *testing.T) {
	want := []string{"OPTIONS", "DESCRIBE", "SETUP", "TEARDOWN", "PLAY"}
	got := Methods()

	if len(got) != len(want) {
		t.Fatalf("Methods() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Methods()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
