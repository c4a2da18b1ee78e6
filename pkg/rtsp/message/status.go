package message

// ProtocolVersion is the version token on every request and status line.
const ProtocolVersion = "RTSP/1.0"

// Supported request methods
const (
	MethodOptions  = "OPTIONS"
	MethodDescribe = "DESCRIBE"
	MethodSetup    = "SETUP"
	MethodPlay     = "PLAY"
	MethodTeardown = "TEARDOWN"
)

// Methods returns the supported method set in the order advertised by the
// Public header.
func Methods() []string {
	return []string{MethodOptions, MethodDescribe, MethodSetup, MethodTeardown, MethodPlay}
}

// Status codes produced by the server
const (
	StatusOK                    = 200
	StatusBadRequest            = 400
	StatusNotFound              = 404
	StatusNotAcceptable         = 406
	StatusSessionNotFound       = 454
	StatusMethodNotValidInState = 455
	StatusUnsupportedTransport  = 461
	StatusInternalServerError   = 500
	StatusNotImplemented        = 501
	StatusGatewayTimeout        = 504
)

// StatusText returns the reason phrase for a status code
func StatusText(code int) string {
	switch code {
	case 100:
		return "Continue"
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 250:
		return "Low on Storage Space"
	case 300:
		return "Multiple Choices"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Moved Temporarily"
	case 303:
		return "See Other"
	case 305:
		return "Use Proxy"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 402:
		return "Payment Required"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 406:
		return "Not Acceptable"
	case 407:
		return "Proxy Authentication Required"
	case 408:
		return "Request Timeout"
	case 410:
		return "Gone"
	case 411:
		return "Length Required"
	case 412:
		return "Precondition Failed"
	case 413:
		return "Request Entity Too Large"
	case 414:
		return "Request-URI Too Long"
	case 415:
		return "Unsupported Media Type"
	case 451:
		return "Parameter Not Understood"
	case 452:
		return "Conference Not Found"
	case 453:
		return "Not Enough Bandwidth"
	case 454:
		return "Session Not Found"
	case 455:
		return "Method Not Valid in This State"
	case 456:
		return "Header Field Not Valid for Resource"
	case 457:
		return "Invalid Range"
	case 458:
		return "Parameter Is Read-Only"
	case 459:
		return "Aggregate Operation Not Allowed"
	case 460:
		return "Only Aggregate Operation Allowed"
	case 461:
		return "Unsupported Transport"
	case 462:
		return "Destination Unreachable"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	case 502:
		return "Bad Gateway"
	case 503:
		return "Service Unavailable"
	case 504:
		return "Gateway Time-out"
	case 505:
		return "RTSP Version Not Supported"
	case 551:
		return "Option Not Supported"
	default:
		return "Unknown"
	}
}
