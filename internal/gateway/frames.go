package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// WebsocketURL converts a chat-platform base URL into the websocket gateway
// endpoint.
func WebsocketURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid gateway URL scheme: %q", u.Scheme)
	}

	u.Path = "/socket.io/"
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// splitFrames splits an engine.io packet on the 0x1e record separator.
func splitFrames(msg []byte) [][]byte {
	if bytes.IndexByte(msg, 0x1e) < 0 {
		return [][]byte{msg}
	}
	parts := bytes.Split(msg, []byte{0x1e})
	out := make([][]byte, 0, len(parts))
	for _, p := range parts {
		if len(p) == 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// emitFrame encodes a socket.io event frame.
func emitFrame(event string, payload any) (string, error) {
	frame, err := json.Marshal([]any{event, payload})
	if err != nil {
		return "", err
	}
	return "42" + string(frame), nil
}

func decodeEventPayload(raw []byte) (eventName string, payload json.RawMessage, ok bool, err error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return "", nil, false, err
	}
	if len(arr) == 0 {
		return "", nil, false, nil
	}
	if err := json.Unmarshal(arr[0], &eventName); err != nil {
		return "", nil, false, err
	}
	if strings.TrimSpace(eventName) == "" {
		return "", nil, false, nil
	}
	if len(arr) < 2 {
		return eventName, nil, true, nil
	}
	return eventName, arr[1], true, nil
}
