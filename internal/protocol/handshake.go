package protocol

import (
	"crypto/sha1"
	"encoding/base64"
	"strings"
)

// websocketGUID is the fixed key-derivation constant from RFC 6455 §1.3.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// IsUpgradeRequest reports whether a raw HTTP header block asks for a
// WebSocket upgrade. The check is case-insensitive per RFC 7230 header rules.
func IsUpgradeRequest(headerBlock string) bool {
	return strings.Contains(strings.ToLower(headerBlock), "upgrade: websocket")
}

// ExtractWebSocketKey pulls the Sec-WebSocket-Key value out of a raw HTTP
// header block. Returns "" when the header is absent.
func ExtractWebSocketKey(headerBlock string) string {
	for _, line := range strings.Split(headerBlock, "\r\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Sec-WebSocket-Key") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// AcceptKey derives the Sec-WebSocket-Accept value for a client key:
// Base64(SHA1(key + GUID)), byte-for-byte per RFC 6455 §4.2.2.
func AcceptKey(clientKey string) string {
	sum := sha1.Sum([]byte(clientKey + websocketGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// UpgradeResponse builds the complete 101 Switching Protocols response for a
// derived accept key.
func UpgradeResponse(acceptKey string) string {
	var b strings.Builder
	b.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	b.WriteString("Upgrade: websocket\r\n")
	b.WriteString("Connection: Upgrade\r\n")
	b.WriteString("Sec-WebSocket-Accept: " + acceptKey + "\r\n")
	b.WriteString("\r\n")
	return b.String()
}
