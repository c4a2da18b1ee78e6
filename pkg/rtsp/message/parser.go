package message

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// Maximum sizes for security
	maxMessageSize = 65536 // 64KB
	maxHeaderSize  = 8192  // 8KB
	maxHeaders     = 100   // Maximum number of headers
)

// ReadMessage frames one complete message off the stream: the start line
// and headers up to the blank separator line, plus a body when a
// Content-Length header announces one. Stray blank lines between messages
// are skipped. The raw frame is returned for parsing.
func ReadMessage(r *bufio.Reader) ([]byte, error) {
	var buf bytes.Buffer
	contentLength := 0
	started := false

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}

		trimmed := strings.TrimRight(line, "\r\n")
		if !started {
			if trimmed == "" {
				continue
			}
			started = true
		}

		buf.WriteString(line)
		if buf.Len() > maxMessageSize {
			return nil, ErrMessageTooLarge
		}

		if trimmed == "" {
			break
		}

		// Header block: watch for Content-Length to know how much body
		// follows the blank line.
		if name, value, ok := splitHeaderLine(trimmed); ok && strings.EqualFold(name, "Content-Length") {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: Content-Length %q", ErrInvalidHeader, value)
			}
			contentLength = n
		}
	}

	if contentLength > 0 {
		if contentLength > maxMessageSize-buf.Len() {
			return nil, ErrMessageTooLarge
		}
		body := make([]byte, contentLength)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, err
		}
		buf.Write(body)
	}

	return buf.Bytes(), nil
}

// splitHeaderLine splits a header line at the first colon
func splitHeaderLine(line string) (name, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

// ParseRequest parses one framed RTSP request. Unknown methods are accepted
// here: rejecting them with 501 is the dispatcher's job, not the parser's.
// Body bytes after the header block are tolerated and discarded, since
// requests carry no modeled body.
func ParseRequest(data []byte) (*Request, error) {
	if len(data) == 0 {
		return nil, ErrInvalidMessage
	}

	if len(data) > maxMessageSize {
		return nil, ErrMessageTooLarge
	}

	// Find the end of headers (empty line)
	headerEnd := bytes.Index(data, []byte("\r\n\r\n"))
	if headerEnd == -1 {
		// Try with just \n\n for compatibility
		headerEnd = bytes.Index(data, []byte("\n\n"))
		if headerEnd == -1 {
			return nil, ErrInvalidMessage
		}
	}

	headerData := data[:headerEnd]

	// Split into lines
	lines := bytes.Split(headerData, []byte("\r\n"))
	if len(lines) == 1 {
		// Try with just \n for compatibility
		lines = bytes.Split(headerData, []byte("\n"))
	}

	// Parse request line: METHOD URI RTSP-VERSION
	firstLine := strings.TrimSpace(string(lines[0]))
	parts := strings.Fields(firstLine)
	if len(parts) != 3 {
		return nil, ErrInvalidRequestLine
	}

	if !strings.HasPrefix(parts[2], "RTSP/1.0") {
		return nil, ErrInvalidVersion
	}

	headers, err := parseHeaders(lines[1:])
	if err != nil {
		return nil, err
	}

	return &Request{
		Method:  strings.ToUpper(parts[0]),
		URI:     parts[1],
		Headers: headers,
	}, nil
}

// parseHeaders parses the header block
func parseHeaders(lines [][]byte) (*Headers, error) {
	headers := NewHeaders()

	if len(lines) > maxHeaders {
		return nil, fmt.Errorf("%w: %d", ErrTooManyHeaders, len(lines))
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if len(line) == 0 {
			continue
		}

		// Handle line folding (continuation lines)
		for i+1 < len(lines) && len(lines[i+1]) > 0 &&
			(lines[i+1][0] == ' ' || lines[i+1][0] == '\t') {
			i++
			// Append continuation line with a space
			line = append(line, ' ')
			line = append(line, bytes.TrimSpace(lines[i])...)
		}

		if len(line) > maxHeaderSize {
			return nil, ErrHeaderTooLarge
		}

		// Find colon separator
		colonIdx := bytes.IndexByte(line, ':')
		if colonIdx == -1 {
			continue // Skip malformed header
		}

		// Extract name and value
		name := string(bytes.TrimSpace(line[:colonIdx]))
		value := string(bytes.TrimSpace(line[colonIdx+1:]))

		if name == "" {
			continue
		}

		headers.Add(name, value)
	}

	return headers, nil
}
