package wsutil

import (
	"encoding/json"
	"log/slog"
)

// SafeSend sends data to a channel without blocking or panicking. A full
// channel drops the message; a closed channel is recovered and logged.
// It reports whether the message was queued.
func SafeSend(ch chan []byte, data []byte) (sent bool) {
	if ch == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("send on closed channel", "tag", "wsutil", "panic", r)
			sent = false
		}
	}()
	select {
	case ch <- data:
		return true
	default:
		slog.Warn("send buffer full, dropping message", "tag", "wsutil")
		return false
	}
}

// SendJSON marshals v and sends it with SafeSend.
func SendJSON(ch chan []byte, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshaling message", "tag", "wsutil", "err", err)
		return false
	}
	return SafeSend(ch, data)
}

// ErrorMsg is sent when a client action is invalid.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SendError sends an "error" message.
func SendError(ch chan []byte, message string) bool {
	return SendJSON(ch, ErrorMsg{Type: "error", Message: message})
}
