package handler

import "github.com/yourusername/httpwsd/internal/wsframe"

// EchoOnMessage implements the WebSocket demo callback of spec.md §8
// scenario 5: a Text frame "Hello" is answered with "Echo: Hello". Binary
// frames are echoed back unchanged. Ping/Pong/Close are handled by the
// WebSocket Session itself and never reach OnMessage.
func EchoOnMessage(f wsframe.Frame) (wsframe.Frame, bool) {
	switch f.Kind {
	case wsframe.KindText:
		return wsframe.NewText("Echo: " + f.Text), true
	case wsframe.KindBinary:
		return wsframe.NewBinary(f.Payload), true
	default:
		return wsframe.Frame{}, false
	}
}
