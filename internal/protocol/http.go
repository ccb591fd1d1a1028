package protocol

import (
	"fmt"
	"strings"
)

// RequestLine is the parsed first line of an HTTP request.
type RequestLine struct {
	Method  string
	Path    string
	Version string
}

// ParseRequestLine splits the first line of a raw HTTP request. ok is false
// when the line does not have the three expected fields; callers treat that as
// a 404 per the discovery handler contract.
func ParseRequestLine(request string) (line RequestLine, ok bool) {
	first, _, _ := strings.Cut(request, "\r\n")
	fields := strings.Fields(first)
	if len(fields) != 3 {
		return RequestLine{}, false
	}
	return RequestLine{Method: fields[0], Path: fields[1], Version: fields[2]}, true
}

// IsDiscoveryPath reports whether path is one of the Chrome DevTools
// discovery endpoints.
func IsDiscoveryPath(path string) bool {
	return path == "/json" || path == "/json/list"
}

// OKResponse builds a complete 200 response with CORS headers and
// Connection: close, the way DevTools frontends expect the discovery endpoint
// to answer.
func OKResponse(body, contentType string) string {
	var b strings.Builder
	b.WriteString("HTTP/1.1 200 OK\r\n")
	b.WriteString("Content-Type: " + contentType + "\r\n")
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(body))
	b.WriteString("Access-Control-Allow-Origin: *\r\n")
	b.WriteString("Access-Control-Allow-Methods: GET, POST, OPTIONS\r\n")
	b.WriteString("Access-Control-Allow-Headers: Content-Type\r\n")
	b.WriteString("Connection: close\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

// NotFoundResponse builds the 404 answer for any non-discovery HTTP request.
func NotFoundResponse() string {
	const body = "Not Found"
	var b strings.Builder
	b.WriteString("HTTP/1.1 404 Not Found\r\n")
	b.WriteString("Content-Type: text/plain\r\n")
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(body))
	b.WriteString("Connection: close\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}
