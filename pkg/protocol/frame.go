package protocol

import (
	"fmt"

	"github.com/mocaptools/natnet-go/pkg/version"
)

// FrameOfData is one snapshot of tracked scene state.
//
// Pointer-typed fields are version-gated: they are nil when the stream's
// protocol version predates the field.
type FrameOfData struct {
	FrameNumber int32

	// MarkerSets maps marker set names to their markers. If a frame
	// repeats a name the last occurrence wins; that matches observed
	// server behavior but is not a documented protocol guarantee.
	MarkerSets map[string][]Marker

	// OtherMarkers are unlabeled markers outside any named set.
	OtherMarkers []Marker

	RigidBodies    []RigidBody
	Skeletons      []Skeleton
	LabeledMarkers []LabeledMarker

	// ForcePlates is nil below NatNet 2.9.
	ForcePlates []ForcePlate

	Latency float32

	// Timecode is the two-part SMPTE timecode (code, sub-frame).
	Timecode    uint32
	TimecodeSub uint32

	// Timestamp is nil below 2.6, decoded from a 32-bit float on 2.6.x
	// and from a 64-bit float from 2.7 on.
	Timestamp *float64

	// IsRecording and TrackedModelsChanged share one 16-bit bitfield,
	// NatNet >= 2.6 only.
	IsRecording          *bool
	TrackedModelsChanged *bool
}

func (*FrameOfData) response() {}

func decodeFrame(ver version.Version, r *reader) (*FrameOfData, error) {
	f := &FrameOfData{}
	var err error

	if f.FrameNumber, err = r.int32(); err != nil {
		return nil, err
	}

	numSets, _, err := r.count()
	if err != nil {
		return nil, err
	}
	f.MarkerSets = make(map[string][]Marker, min(numSets, maxPrealloc))
	for i := 0; i < numSets; i++ {
		name, err := r.cstring()
		if err != nil {
			return nil, err
		}
		numMarkers, capHint, err := r.count()
		if err != nil {
			return nil, err
		}
		markers := make([]Marker, 0, capHint)
		for j := 0; j < numMarkers; j++ {
			m, err := decodeMarker(r)
			if err != nil {
				return nil, err
			}
			markers = append(markers, m)
		}
		f.MarkerSets[name] = markers
	}

	if f.OtherMarkers, err = decodeMarkers(r); err != nil {
		return nil, err
	}

	numBodies, bodyCap, err := r.count()
	if err != nil {
		return nil, err
	}
	f.RigidBodies = make([]RigidBody, 0, bodyCap)
	for i := 0; i < numBodies; i++ {
		rb, err := decodeRigidBody(ver, r)
		if err != nil {
			return nil, err
		}
		f.RigidBodies = append(f.RigidBodies, rb)
	}

	numSkels, skelCap, err := r.count()
	if err != nil {
		return nil, err
	}
	f.Skeletons = make([]Skeleton, 0, skelCap)
	for i := 0; i < numSkels; i++ {
		s, err := decodeSkeleton(ver, r)
		if err != nil {
			return nil, err
		}
		f.Skeletons = append(f.Skeletons, s)
	}

	numLabeled, labeledCap, err := r.count()
	if err != nil {
		return nil, err
	}
	f.LabeledMarkers = make([]LabeledMarker, 0, labeledCap)
	for i := 0; i < numLabeled; i++ {
		lm, err := decodeLabeledMarker(ver, r)
		if err != nil {
			return nil, err
		}
		f.LabeledMarkers = append(f.LabeledMarkers, lm)
	}

	if ver.Supports(version.FeatureForcePlates) {
		numPlates, plateCap, err := r.count()
		if err != nil {
			return nil, err
		}
		f.ForcePlates = make([]ForcePlate, 0, plateCap)
		for i := 0; i < numPlates; i++ {
			fp, err := decodeForcePlate(r)
			if err != nil {
				return nil, err
			}
			f.ForcePlates = append(f.ForcePlates, fp)
		}
	}

	if f.Latency, err = r.float32(); err != nil {
		return nil, err
	}
	if f.Timecode, err = r.uint32(); err != nil {
		return nil, err
	}
	if f.TimecodeSub, err = r.uint32(); err != nil {
		return nil, err
	}

	// The timestamp widened from f32 to f64 in 2.7 and did not exist
	// before 2.6.
	switch {
	case ver.Supports(version.FeatureTimestampDouble):
		ts, err := r.float64()
		if err != nil {
			return nil, err
		}
		f.Timestamp = &ts
	case ver.Supports(version.FeatureTimestamp):
		ts32, err := r.float32()
		if err != nil {
			return nil, err
		}
		ts := float64(ts32)
		f.Timestamp = &ts
	}

	if ver.Supports(version.FeatureTrackingFlags) {
		params, err := r.uint16()
		if err != nil {
			return nil, err
		}
		f.IsRecording = flagPtr(params, paramIsRecording)
		f.TrackedModelsChanged = flagPtr(params, paramTrackedModelsChanged)
	}

	// End-of-data sentinel. Anything nonzero means the cursor drifted
	// somewhere above and the whole frame is garbage.
	eod, err := r.int32()
	if err != nil {
		return nil, err
	}
	if eod != 0 {
		return nil, fmt.Errorf("%w: end-of-data marker %#x, want 0", ErrStructuralMismatch, uint32(eod))
	}

	return f, nil
}

// decodeMarkers reads a count-prefixed list of plain markers.
func decodeMarkers(r *reader) ([]Marker, error) {
	num, capHint, err := r.count()
	if err != nil {
		return nil, err
	}

	markers := make([]Marker, 0, capHint)
	for i := 0; i < num; i++ {
		m, err := decodeMarker(r)
		if err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return markers, nil
}
