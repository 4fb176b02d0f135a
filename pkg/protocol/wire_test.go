package protocol

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/mocaptools/natnet-go/pkg/version"
)

// wire builds little-endian test buffers field by field.
type wire struct {
	bytes.Buffer
}

func (w *wire) u8(v uint8) *wire {
	w.WriteByte(v)
	return w
}

func (w *wire) u16(v uint16) *wire {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.Write(b[:])
	return w
}

func (w *wire) i32(v int32) *wire {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.Write(b[:])
	return w
}

func (w *wire) u32(v uint32) *wire {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
	return w
}

func (w *wire) f32(v float32) *wire {
	return w.u32(math.Float32bits(v))
}

func (w *wire) f64(v float64) *wire {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.Write(b[:])
	return w
}

func (w *wire) cstr(s string) *wire {
	w.WriteString(s)
	w.WriteByte(0)
	return w
}

func (w *wire) marker(x, y, z float32) *wire {
	return w.f32(x).f32(y).f32(z)
}

// envelope prefixes body with a message header and returns the full frame.
func envelope(msgType MsgType, body []byte) []byte {
	var w wire
	w.u16(uint16(msgType)).u16(uint16(len(body)))
	w.Write(body)
	return w.Bytes()
}

// testFrameBody builds the canonical frame used across version-gating
// tests: two named marker sets, two loose markers, one rigid body, one
// single-bone skeleton, one labeled marker and (from 2.9) one force plate
// with ragged channels.
func testFrameBody(ver version.Version) []byte {
	var w wire

	w.i32(42) // frame number

	// Marker sets
	w.i32(2)
	w.cstr("all").i32(2).marker(1, 2, 3).marker(4, 5, 6)
	w.cstr("Rigid Body 1").i32(1).marker(7, 8, 9)

	// Other markers
	w.i32(2).marker(0.1, 0.2, 0.3).marker(0.4, 0.5, 0.6)

	// Rigid bodies
	w.i32(1)
	writeTestRigidBody(&w, ver)

	// Skeletons
	w.i32(1)
	w.i32(900) // skeleton id
	w.i32(1)   // one bone
	writeTestRigidBody(&w, ver)

	// Labeled markers
	w.i32(1)
	w.i32(77).marker(1.5, 2.5, 3.5).f32(0.02)
	if ver.Supports(version.FeatureTrackingFlags) {
		w.u16(paramOccluded | paramModelSolved)
	}

	if ver.Supports(version.FeatureForcePlates) {
		w.i32(1)
		w.i32(3) // plate id
		w.i32(2) // ragged channels
		w.i32(2).f32(10).f32(11)
		w.i32(1).f32(12)
	}

	w.f32(0.005)    // latency
	w.u32(7).u32(9) // timecode
	switch {
	case ver.Supports(version.FeatureTimestampDouble):
		w.f64(1234.5)
	case ver.Supports(version.FeatureTimestamp):
		w.f32(1234.5)
	}
	if ver.Supports(version.FeatureTrackingFlags) {
		w.u16(paramIsRecording | paramTrackedModelsChanged)
	}

	w.i32(0) // end-of-data sentinel

	return w.Bytes()
}

func writeTestRigidBody(w *wire, ver version.Version) {
	w.i32(101)
	w.marker(1, 1, 1)
	w.f32(0).f32(0).f32(0).f32(1) // orientation
	w.i32(2)                      // marker count
	w.marker(2, 2, 2).marker(3, 3, 3)
	w.i32(1).i32(2)     // marker ids
	w.f32(0.1).f32(0.2) // marker sizes
	w.f32(0.001)        // mean error
	if ver.Supports(version.FeatureTrackingFlags) {
		w.u16(paramValidTrack)
	}
}

// testSenderBody builds a Sender descriptor body with its fixed 256-byte
// name slot.
func testSenderBody(name string, appVer, natVer [4]byte) []byte {
	var w wire
	w.cstr(name)
	for i := len(name) + 1; i < senderNameSize; i++ {
		w.u8(0xAA) // slot filler that must be discarded
	}
	for _, b := range appVer {
		w.u8(b)
	}
	for _, b := range natVer {
		w.u8(b)
	}
	return w.Bytes()
}
