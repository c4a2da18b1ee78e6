package message

import (
	"fmt"
	"strings"
)

// Request represents an RTSP request. Requests are produced by the parser
// and treated as immutable after decode.
type Request struct {
	Method  string
	URI     string
	Headers *Headers
}

// Response represents an RTSP response
type Response struct {
	StatusCode int
	Headers    *Headers
	body       []byte
}

// Headers manages RTSP headers with case-insensitive names
type Headers struct {
	headers map[string][]string // Normalized name -> values
	order   []string            // Original order of headers
}

// NewHeaders creates a new Headers instance
func NewHeaders() *Headers {
	return &Headers{
		headers: make(map[string][]string),
		order:   make([]string, 0),
	}
}

// normalizeHeaderName normalizes header name for case-insensitive comparison
func normalizeHeaderName(name string) string {
	return strings.ToLower(name)
}

// Get returns the first value of a header
func (h *Headers) Get(name string) string {
	values := h.GetAll(name)
	if len(values) > 0 {
		return values[0]
	}
	return ""
}

// GetAll returns all values of a header
func (h *Headers) GetAll(name string) []string {
	normalized := normalizeHeaderName(name)
	return h.headers[normalized]
}

// Has reports whether a header is present
func (h *Headers) Has(name string) bool {
	return len(h.GetAll(name)) > 0
}

// Set sets a header value (replaces existing)
func (h *Headers) Set(name, value string) {
	normalized := normalizeHeaderName(name)

	// Remove from order if exists
	for i, n := range h.order {
		if normalizeHeaderName(n) == normalized {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}

	h.headers[normalized] = []string{value}
	h.order = append(h.order, name)
}

// Add adds a header value (appends to existing)
func (h *Headers) Add(name, value string) {
	normalized := normalizeHeaderName(name)

	if _, exists := h.headers[normalized]; !exists {
		h.order = append(h.order, name)
	}

	h.headers[normalized] = append(h.headers[normalized], value)
}

// Remove removes all values of a header
func (h *Headers) Remove(name string) {
	normalized := normalizeHeaderName(name)
	delete(h.headers, normalized)

	// Remove from order
	newOrder := make([]string, 0, len(h.order))
	for _, n := range h.order {
		if normalizeHeaderName(n) != normalized {
			newOrder = append(newOrder, n)
		}
	}
	h.order = newOrder
}

// Clone creates a deep copy of headers
func (h *Headers) Clone() *Headers {
	clone := NewHeaders()
	clone.order = make([]string, len(h.order))
	copy(clone.order, h.order)

	for name, values := range h.headers {
		clone.headers[name] = make([]string, len(values))
		copy(clone.headers[name], values)
	}

	return clone
}

// write appends the headers to sb in their original order
func (h *Headers) write(sb *strings.Builder) {
	for _, name := range h.order {
		normalized := normalizeHeaderName(name)
		for _, value := range h.headers[normalized] {
			fmt.Fprintf(sb, "%s: %s\r\n", name, value)
		}
	}
}

// Request methods

// NewRequest creates a request with empty headers
func NewRequest(method, uri string) *Request {
	return &Request{
		Method:  strings.ToUpper(method),
		URI:     uri,
		Headers: NewHeaders(),
	}
}

// GetHeader returns the first value of a header
func (r *Request) GetHeader(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get(name)
}

// SetHeader sets a header value
func (r *Request) SetHeader(name, value string) {
	if r.Headers == nil {
		r.Headers = NewHeaders()
	}
	r.Headers.Set(name, value)
}

// String returns the wire representation
func (r *Request) String() string {
	var sb strings.Builder

	// Request line
	fmt.Fprintf(&sb, "%s %s %s\r\n", r.Method, r.URI, ProtocolVersion)

	// Headers
	if r.Headers != nil {
		r.Headers.write(&sb)
	}

	// Empty line
	sb.WriteString("\r\n")

	return sb.String()
}

// Response methods

// NewResponse creates a response with empty headers
func NewResponse(statusCode int) *Response {
	return &Response{
		StatusCode: statusCode,
		Headers:    NewHeaders(),
	}
}

// GetHeader returns the first value of a header
func (r *Response) GetHeader(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get(name)
}

// SetHeader sets a header value
func (r *Response) SetHeader(name, value string) {
	if r.Headers == nil {
		r.Headers = NewHeaders()
	}
	r.Headers.Set(name, value)
}

// Body returns the response body
func (r *Response) Body() []byte {
	return r.body
}

// SetBody sets the response body. Content-Length is not computed here: the
// dispatcher sets it immediately before the response is written, after the
// connection is known to still be open.
func (r *Response) SetBody(body []byte) {
	r.body = body
}

// Bytes returns the wire representation
func (r *Response) Bytes() []byte {
	var sb strings.Builder

	// Status line
	fmt.Fprintf(&sb, "%s %d %s\r\n", ProtocolVersion, r.StatusCode, StatusText(r.StatusCode))

	// Headers
	if r.Headers != nil {
		r.Headers.write(&sb)
	}

	// Empty line
	sb.WriteString("\r\n")

	// Body
	if len(r.body) > 0 {
		sb.Write(r.body)
	}

	return []byte(sb.String())
}

// String returns the wire representation
func (r *Response) String() string {
	return string(r.Bytes())
}
