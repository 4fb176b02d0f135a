package protocol

import "encoding/binary"

// Outgoing requests are fixed-shape: the envelope type code, the declared
// body length and, for Ping only, a nul-terminated name. Encoding them
// here keeps the wire knowledge in one package; transport is the caller's
// concern.

// ModelDefRequest encodes a request for the server's model definitions.
func ModelDefRequest() []byte {
	return encodeEmptyRequest(MsgTypeRequestModelDef)
}

// FrameOfDataRequest encodes a request for a single frame of data.
func FrameOfDataRequest() []byte {
	return encodeEmptyRequest(MsgTypeRequestFrameOfData)
}

// PingRequest encodes a ping carrying the local application name. The body
// is the nul-terminated name; if the encoded request would exceed the
// 65535-byte protocol limit the name is truncated and a trailing nul
// forced, so the result never exceeds 65535 bytes and always ends in nul.
func PingRequest(name string) []byte {
	const maxBody = maxRequestSize - envelopeSize

	body := len(name) + 1
	if body > maxBody {
		name = name[:maxBody-1]
		body = maxBody
	}

	buf := make([]byte, envelopeSize+body)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(MsgTypePing))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(body))
	copy(buf[envelopeSize:], name)
	// Last byte stays zero: the forced nul terminator.

	return buf
}

func encodeEmptyRequest(msgType MsgType) []byte {
	buf := make([]byte, envelopeSize)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(msgType))
	binary.LittleEndian.PutUint16(buf[2:4], 0)
	return buf
}
