package wsframe

import "encoding/binary"

// Encode serializes f to wire bytes. Server-to-client frames are always
// FIN=1, RSV=0, MASK=0 per spec §4.5.
func Encode(f Frame) []byte {
	op, payload := encodeParts(f)
	return encodeFrame(op, payload)
}

func encodeParts(f Frame) (opcode, []byte) {
	switch f.Kind {
	case KindText:
		return opText, []byte(f.Text)
	case KindBinary:
		return opBinary, f.Payload
	case KindPing:
		return opPing, f.Payload
	case KindPong:
		return opPong, f.Payload
	case KindClose:
		if !f.HasClose {
			return opClose, nil
		}
		payload := make([]byte, 2+len(f.CloseReason))
		binary.BigEndian.PutUint16(payload, f.CloseCode)
		copy(payload[2:], f.CloseReason)
		return opClose, payload
	default:
		return opBinary, nil
	}
}

func encodeFrame(op opcode, payload []byte) []byte {
	first := byte(0x80) | byte(op&0x0F) // FIN=1, RSV=0

	n := len(payload)
	switch {
	case n < 126:
		out := make([]byte, 2, 2+n)
		out[0] = first
		out[1] = byte(n)
		return append(out, payload...)
	case n <= 0xFFFF:
		out := make([]byte, 4, 4+n)
		out[0] = first
		out[1] = 126
		binary.BigEndian.PutUint16(out[2:4], uint16(n))
		return append(out, payload...)
	default:
		out := make([]byte, 10, 10+n)
		out[0] = first
		out[1] = 127
		binary.BigEndian.PutUint64(out[2:10], uint64(n))
		return append(out, payload...)
	}
}
