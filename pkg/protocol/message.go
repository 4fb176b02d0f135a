package protocol

import (
	"io"

	"github.com/mocaptools/natnet-go/pkg/version"
)

// Response is a decoded NatNet message. It is a closed choice over
// *FrameOfData, Sender, CommandResponse, CommandString, ModelDefinitions,
// MessageString and UnrecognizedRequest.
type Response interface {
	response()
}

// CommandResponse is an integer reply to a command.
type CommandResponse int32

// CommandString is a textual reply to a command.
type CommandString string

// ModelDefinitions is the list of asset descriptions the server tracks.
type ModelDefinitions []ModelDef

// MessageString is a free-form text message from the server.
type MessageString string

// UnrecognizedRequest indicates the server did not understand a request.
type UnrecognizedRequest struct{}

func (CommandResponse) response()     {}
func (CommandString) response()       {}
func (ModelDefinitions) response()    {}
func (MessageString) response()       {}
func (UnrecognizedRequest) response() {}

// Decoder decodes NatNet messages produced at a fixed protocol version.
// It holds no other state and is safe for concurrent use on independent
// sources.
type Decoder struct {
	ver version.Version
}

// NewDecoder creates a decoder for streams produced at the given version.
func NewDecoder(ver version.Version) *Decoder {
	return &Decoder{ver: ver}
}

// Version returns the protocol version this decoder assumes.
func (d *Decoder) Version() version.Version {
	return d.ver
}

// Unpack decodes one complete message from src.
func (d *Decoder) Unpack(src io.Reader) (Response, error) {
	return UnpackWith(d.ver, src)
}

// UnpackType decodes one message only if its envelope type matches want.
// See UnpackTypeWith.
func (d *Decoder) UnpackType(want MsgType, src io.Reader) (Response, bool, error) {
	return UnpackTypeWith(want, d.ver, src)
}

// UnpackWith decodes one complete message from src, assuming it was
// produced at the given protocol version.
func UnpackWith(ver version.Version, src io.Reader) (Response, error) {
	r := newReader(src)

	msgType, err := r.uint16()
	if err != nil {
		return nil, err
	}
	numBytes, err := r.uint16()
	if err != nil {
		return nil, err
	}

	return unpackBody(MsgType(msgType), numBytes, ver, r)
}

// UnpackTypeWith reads the envelope and decodes the body only when the
// type code matches want. A mismatched type, or any failure reading the
// envelope itself, yields ok == false with no error: this call exists for
// probing, where a caller tries candidate versions against messages of a
// known kind and needs non-matches to be cheap. Once the type matches,
// body decode failures propagate normally.
func UnpackTypeWith(want MsgType, ver version.Version, src io.Reader) (Response, bool, error) {
	r := newReader(src)

	msgType, err := r.uint16()
	if err != nil {
		return nil, false, nil
	}
	numBytes, err := r.uint16()
	if err != nil {
		return nil, false, nil
	}
	if MsgType(msgType) != want {
		return nil, false, nil
	}

	resp, err := unpackBody(want, numBytes, ver, r)
	return resp, true, err
}

// unpackBody routes a message body to its decoder. The declared length is
// not used to bound decoding; its single load-bearing role is selecting
// between the integer and string forms of a Response body.
func unpackBody(msgType MsgType, numBytes uint16, ver version.Version, r *reader) (Response, error) {
	switch {
	case msgType == MsgTypeFrameOfData:
		return decodeFrame(ver, r)

	case msgType == MsgTypeModelDef:
		numModels, capHint, err := r.count()
		if err != nil {
			return nil, err
		}
		models := make(ModelDefinitions, 0, capHint)
		for i := 0; i < numModels; i++ {
			m, err := decodeModelDef(ver, r)
			if err != nil {
				return nil, err
			}
			models = append(models, m)
		}
		return models, nil

	case msgType == MsgTypePingResponse:
		return decodeSender(r)

	case msgType == MsgTypeMessageString:
		s, err := r.cstring()
		if err != nil {
			return nil, err
		}
		return MessageString(s), nil

	// A command response is an int32 when the declared length is exactly
	// 4 and a string otherwise. Inherited quirk, preserved as-is.
	case msgType == MsgTypeResponse && numBytes == 4:
		code, err := r.int32()
		if err != nil {
			return nil, err
		}
		return CommandResponse(code), nil

	case msgType == MsgTypeResponse:
		s, err := r.cstring()
		if err != nil {
			return nil, err
		}
		return CommandString(s), nil

	case msgType == MsgTypeUnrecognizedRequest:
		return UnrecognizedRequest{}, nil

	default:
		return nil, &UnknownMessageTypeError{Code: uint16(msgType)}
	}
}
