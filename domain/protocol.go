package domain

import (
	"fmt"
	"net/http"
)

// Interface is the hosting gateway the server runs behind.
type Interface string

const (
	HTTP  Interface = "http"
	FCGI  Interface = "fcgi"
	CGI   Interface = "cgi"
	HTTP1 string    = "HTTP/1.1"
	HTTP0 string    = "HTTP/1.0"
)

// IsGateway reports whether status lines are sent as a Status: header.
func (i Interface) IsGateway() bool {
	return i == FCGI || i == CGI
}

// StatusLine renders the status line the way the hosting interface expects it.
// requestProto is used when it is HTTP/1.0 or HTTP/1.1, fallback otherwise.
func StatusLine(iface Interface, requestProto, fallback string, code int) string {
	if iface.IsGateway() {
		return fmt.Sprintf("Status: %d %s", code, http.StatusText(code))
	}
	proto := requestProto
	if proto != HTTP1 && proto != HTTP0 {
		proto = fallback
	}
	if proto != HTTP1 && proto != HTTP0 {
		proto = HTTP0
	}
	return fmt.Sprintf("%s %d %s", proto, code, http.StatusText(code))
}
