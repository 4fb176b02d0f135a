package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/mocaptools/natnet-go/pkg/version"
)

func decodeTestFrame(t *testing.T, ver version.Version, buf []byte) *FrameOfData {
	t.Helper()

	resp, err := UnpackWith(ver, bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("UnpackWith(%s) error = %v", ver, err)
	}
	frame, ok := resp.(*FrameOfData)
	if !ok {
		t.Fatalf("UnpackWith(%s) = %T, want *FrameOfData", ver, resp)
	}
	return frame
}

// TestFrameVersionMatrix decodes structurally identical frames at the
// versions bracketing every feature threshold and checks that exactly the
// gated fields appear.
func TestFrameVersionMatrix(t *testing.T) {
	tests := []struct {
		ver            string
		wantFlags      bool
		wantTimestamp  bool
		wantForcePlate bool
	}{
		{"2.5.0", false, false, false},
		{"2.6.0", true, true, false},
		{"2.7.0", true, true, false},
		{"2.9.0", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.ver, func(t *testing.T) {
			ver := version.MustParse(tt.ver)
			frame := decodeTestFrame(t, ver, envelope(MsgTypeFrameOfData, testFrameBody(ver)))

			if frame.FrameNumber != 42 {
				t.Errorf("FrameNumber = %d, want 42", frame.FrameNumber)
			}
			if len(frame.MarkerSets) != 2 {
				t.Errorf("len(MarkerSets) = %d, want 2", len(frame.MarkerSets))
			}
			if got := frame.MarkerSets["all"]; len(got) != 2 {
				t.Errorf(`MarkerSets["all"] has %d markers, want 2`, len(got))
			}
			if len(frame.OtherMarkers) != 2 {
				t.Errorf("len(OtherMarkers) = %d, want 2", len(frame.OtherMarkers))
			}
			if len(frame.RigidBodies) != 1 {
				t.Fatalf("len(RigidBodies) = %d, want 1", len(frame.RigidBodies))
			}
			if len(frame.Skeletons) != 1 || len(frame.Skeletons[0].Bones) != 1 {
				t.Errorf("Skeletons = %+v, want one skeleton with one bone", frame.Skeletons)
			}
			if len(frame.LabeledMarkers) != 1 {
				t.Fatalf("len(LabeledMarkers) = %d, want 1", len(frame.LabeledMarkers))
			}
			if frame.Latency != 0.005 {
				t.Errorf("Latency = %v, want 0.005", frame.Latency)
			}
			if frame.Timecode != 7 || frame.TimecodeSub != 9 {
				t.Errorf("Timecode = (%d, %d), want (7, 9)", frame.Timecode, frame.TimecodeSub)
			}

			if got := frame.IsRecording != nil; got != tt.wantFlags {
				t.Errorf("IsRecording present = %v, want %v", got, tt.wantFlags)
			}
			if got := frame.TrackedModelsChanged != nil; got != tt.wantFlags {
				t.Errorf("TrackedModelsChanged present = %v, want %v", got, tt.wantFlags)
			}
			if got := frame.Timestamp != nil; got != tt.wantTimestamp {
				t.Errorf("Timestamp present = %v, want %v", got, tt.wantTimestamp)
			}
			if got := frame.ForcePlates != nil; got != tt.wantForcePlate {
				t.Errorf("ForcePlates present = %v, want %v", got, tt.wantForcePlate)
			}

			if tt.wantFlags {
				if !*frame.IsRecording || !*frame.TrackedModelsChanged {
					t.Error("frame status bits not decoded from bitfield")
				}
				rb := frame.RigidBodies[0]
				if rb.ValidTrack == nil || !*rb.ValidTrack {
					t.Error("rigid body ValidTrack not decoded")
				}
				lm := frame.LabeledMarkers[0]
				if lm.Occluded == nil || !*lm.Occluded {
					t.Error("labeled marker Occluded not decoded")
				}
				if lm.PointCloudSolved == nil || *lm.PointCloudSolved {
					t.Error("labeled marker PointCloudSolved should be present and false")
				}
				if lm.ModelSolved == nil || !*lm.ModelSolved {
					t.Error("labeled marker ModelSolved not decoded")
				}
			} else {
				rb := frame.RigidBodies[0]
				if rb.ValidTrack != nil {
					t.Error("ValidTrack must be absent below 2.6")
				}
				lm := frame.LabeledMarkers[0]
				if lm.Occluded != nil || lm.PointCloudSolved != nil || lm.ModelSolved != nil {
					t.Error("labeled marker flags must be absent below 2.6")
				}
			}

			if tt.wantTimestamp && *frame.Timestamp != 1234.5 {
				t.Errorf("Timestamp = %v, want 1234.5", *frame.Timestamp)
			}
			if tt.wantForcePlate {
				fp := frame.ForcePlates[0]
				if fp.ID != 3 {
					t.Errorf("ForcePlate.ID = %d, want 3", fp.ID)
				}
				if len(fp.Channels) != 2 || len(fp.Channels[0]) != 2 || len(fp.Channels[1]) != 1 {
					t.Errorf("ragged channels = %v, want [2]float32 and [1]float32", fp.Channels)
				}
			}
		})
	}
}

// TestFrameTimestampFloatPromotion pins the 2.6.x-only case: a 32-bit
// timestamp promoted to float64.
func TestFrameTimestampFloatPromotion(t *testing.T) {
	ver := version.MustParse("2.6.0")
	frame := decodeTestFrame(t, ver, envelope(MsgTypeFrameOfData, testFrameBody(ver)))

	if frame.Timestamp == nil {
		t.Fatal("Timestamp absent at 2.6.0")
	}
	if *frame.Timestamp != float64(float32(1234.5)) {
		t.Errorf("Timestamp = %v, want float32 promotion of 1234.5", *frame.Timestamp)
	}
}

func TestFrameDecodeIdempotent(t *testing.T) {
	ver := version.MustParse("2.9.0")
	buf := envelope(MsgTypeFrameOfData, testFrameBody(ver))

	first := decodeTestFrame(t, ver, buf)
	second := decodeTestFrame(t, ver, buf)

	if !reflect.DeepEqual(first, second) {
		t.Error("decoding the same buffer twice produced different results")
	}
}

func TestFrameBadEndOfData(t *testing.T) {
	ver := version.MustParse("2.7.0")
	buf := envelope(MsgTypeFrameOfData, testFrameBody(ver))

	// The sentinel is the final 4 bytes.
	for _, b := range []byte{0x01, 0xFF} {
		buf[len(buf)-4] = b
		_, err := UnpackWith(ver, bytes.NewReader(buf))
		if !errors.Is(err, ErrStructuralMismatch) {
			t.Errorf("end-of-data %#x: error = %v, want ErrStructuralMismatch", b, err)
		}
	}
}

// TestFrameTruncatedAnywhere chops the frame at every possible length and
// requires a clean ErrTruncated, never a panic or fabricated frame.
func TestFrameTruncatedAnywhere(t *testing.T) {
	ver := version.MustParse("2.9.0")
	buf := envelope(MsgTypeFrameOfData, testFrameBody(ver))

	for n := envelopeSize; n < len(buf); n++ {
		_, err := UnpackWith(ver, bytes.NewReader(buf[:n]))
		if !errors.Is(err, ErrTruncated) {
			t.Fatalf("prefix %d/%d: error = %v, want ErrTruncated", n, len(buf), err)
		}
	}
}

// TestFrameVersionMismatchDetected decodes a 2.5.0 frame with a 2.9.0
// decoder; the extra gated reads must misalign and surface as an error,
// not as a silently wrong frame.
func TestFrameVersionMismatchDetected(t *testing.T) {
	buf := envelope(MsgTypeFrameOfData, testFrameBody(version.MustParse("2.5.0")))

	_, err := UnpackWith(version.MustParse("2.9.0"), bytes.NewReader(buf))
	if err == nil {
		t.Fatal("decoding with a newer version than the producer should fail")
	}
}

func TestFrameDuplicateMarkerSetName(t *testing.T) {
	var w wire
	w.i32(1) // frame number
	w.i32(2) // two sets, same name
	w.cstr("dup").i32(1).marker(1, 1, 1)
	w.cstr("dup").i32(1).marker(9, 9, 9)
	w.i32(0).i32(0).i32(0).i32(0) // others, bodies, skeletons, labeled
	w.f32(0).u32(0).u32(0)
	w.i32(0) // end of data

	frame := decodeTestFrame(t, version.MustParse("2.5.0"), envelope(MsgTypeFrameOfData, w.Bytes()))

	if len(frame.MarkerSets) != 1 {
		t.Fatalf("len(MarkerSets) = %d, want 1", len(frame.MarkerSets))
	}
	if got := frame.MarkerSets["dup"]; len(got) != 1 || got[0] != (Marker{9, 9, 9}) {
		t.Errorf(`MarkerSets["dup"] = %v, want last occurrence to win`, got)
	}
}
