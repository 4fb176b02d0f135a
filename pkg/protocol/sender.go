package protocol

import "github.com/mocaptools/natnet-go/pkg/version"

// Sender identifies the application producing a NatNet stream. It arrives
// as the body of a PingResponse and is the only message that carries the
// protocol version on the wire, which makes it the natural probe target
// when the server's version is unknown.
type Sender struct {
	// Name of the sending application.
	Name string
	// Version is the application's own version.
	Version version.Version
	// NatNetVersion is the protocol version the sender speaks.
	NatNetVersion version.Version
}

func (Sender) response() {}

// decodeVersion reads the four-byte major/minor/patch/build shape used by
// both version fields of the Sender descriptor.
func decodeVersion(r *reader) (version.Version, error) {
	var fields [4]uint64
	for i := range fields {
		b, err := r.byte()
		if err != nil {
			return version.Version{}, err
		}
		fields[i] = uint64(b)
	}
	return version.Version{Major: fields[0], Minor: fields[1], Patch: fields[2], Build: fields[3]}, nil
}

func decodeSender(r *reader) (Sender, error) {
	var s Sender
	var err error

	if s.Name, err = r.cstring(); err != nil {
		return Sender{}, err
	}

	// The name occupies a fixed 256-byte slot. Drop the unused remainder
	// so the cursor lands exactly on the version fields; the nul read by
	// cstring accounts for one byte.
	if err = r.discard(senderNameSize - len(s.Name) - 1); err != nil {
		return Sender{}, err
	}

	if s.Version, err = decodeVersion(r); err != nil {
		return Sender{}, err
	}
	if s.NatNetVersion, err = decodeVersion(r); err != nil {
		return Sender{}, err
	}

	return s, nil
}
