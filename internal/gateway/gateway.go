// Package gateway is the messaging transport: a socket.io-style websocket
// connection to the chat platform. Inbound text messages are delivered to a
// handler together with a send function for outbound replies; replies may
// carry quick-reply options.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// EventMessageCreate is the inbound event carrying a respondent message.
	EventMessageCreate = "MESSAGE_CREATE"
	// EventMessageSend is the outbound event for bot replies.
	EventMessageSend = "message/create"
)

// InboundMessage is a respondent message delivered by the platform.
type InboundMessage struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

// OutboundMessage is a bot reply. QuickReplies, when set, are rendered as a
// one-tap option keyboard; ClearReplies removes a previously shown keyboard.
type OutboundMessage struct {
	UserID       string   `json:"userId"`
	Content      string   `json:"content"`
	QuickReplies []string `json:"quickReplies,omitempty"`
	ClearReplies bool     `json:"clearReplies,omitempty"`
}

// SendFunc delivers one outbound message over the live connection.
type SendFunc func(msg OutboundMessage) error

// Handler processes one inbound message. A returned error tears down the
// connection; handlers that want to keep it alive swallow their own errors.
type Handler func(ctx context.Context, msg InboundMessage, send SendFunc) error

// Options tune one gateway connection. Zero values pick defaults.
type Options struct {
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration

	// SeenLimit bounds the duplicate-delivery window (inbound message IDs).
	SeenLimit int
}

func (o Options) withDefaults() Options {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 60 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.SeenLimit <= 0 {
		o.SeenLimit = 500
	}
	return o
}

// RunOnce connects, authenticates with token and pumps events until the
// connection drops or ctx is done. Duplicate inbound message IDs within the
// seen window are dropped before reaching the handler.
func RunOnce(ctx context.Context, wsURL, token string, handler Handler, opts Options) error {
	if strings.TrimSpace(wsURL) == "" {
		return fmt.Errorf("wsURL is required")
	}
	if handler == nil {
		return fmt.Errorf("handler is required")
	}

	opts = opts.withDefaults()
	seen := newSeenSet(opts.SeenLimit)

	dialer := websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout}
	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	var writeMu sync.Mutex
	sendText := func(payload string) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(opts.WriteTimeout))
		return conn.WriteMessage(websocket.TextMessage, []byte(payload))
	}

	send := func(msg OutboundMessage) error {
		frame, err := emitFrame(EventMessageSend, msg)
		if err != nil {
			return err
		}
		return sendText(frame)
	}

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"), time.Now().Add(2*time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()
	defer close(stop)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(opts.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		for _, frame := range splitFrames(msg) {
			s := string(frame)
			if s == "" {
				continue
			}

			switch s[0] {
			case '0': // engine.io open
				authPayload, _ := json.Marshal(map[string]string{"token": token})
				if err := sendText("40" + string(authPayload)); err != nil {
					return err
				}
			case '1': // engine.io close
				return errors.New("engine.io close")
			case '2': // ping
				if err := sendText("3"); err != nil {
					return err
				}
			case '4': // socket.io message
				if len(s) >= 2 && s[1] == '4' {
					return fmt.Errorf("socket.io error: %s", strings.TrimSpace(s))
				}
				if !strings.HasPrefix(s, "42") {
					continue
				}
				eventName, payload, ok, err := decodeEventPayload([]byte(s[2:]))
				if err != nil {
					return err
				}
				if !ok || eventName != EventMessageCreate || len(payload) == 0 {
					continue
				}

				var inbound InboundMessage
				if err := json.Unmarshal(payload, &inbound); err != nil {
					return err
				}
				if strings.TrimSpace(inbound.UserID) == "" {
					continue
				}
				if inbound.ID != "" && !seen.add(inbound.ID) {
					continue
				}
				if err := handler(ctx, inbound, send); err != nil {
					return err
				}
			default:
			}
		}
	}
}

// ReconnectOptions tune the reconnect loop around RunOnce.
type ReconnectOptions struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	OnDisconnect   func(err error, nextBackoff time.Duration)
}

// Run keeps one gateway connection alive, reconnecting with capped
// exponential backoff until ctx is done.
func Run(ctx context.Context, wsURL, token string, handler Handler, opts Options, reconnect ReconnectOptions) error {
	backoff := reconnect.InitialBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	maxBackoff := reconnect.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 10 * time.Second
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := RunOnce(ctx, wsURL, token, handler, opts)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if reconnect.OnDisconnect != nil {
			reconnect.OnDisconnect(err, backoff)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}
