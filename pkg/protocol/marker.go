package protocol

import "github.com/mocaptools/natnet-go/pkg/version"

// Marker is a single tracked point in 3D space. It is also used for 3D
// offsets in model definitions.
type Marker struct {
	X float32
	Y float32
	Z float32
}

// LabeledMarker is a marker with an identity.
//
// The three status booleans are packed into one 16-bit field on the wire
// and exist only for NatNet >= 2.6; below that they are nil.
type LabeledMarker struct {
	ID       int32
	Position Marker
	Size     float32

	Occluded         *bool
	PointCloudSolved *bool
	ModelSolved      *bool
}

func decodeMarker(r *reader) (Marker, error) {
	var m Marker
	var err error

	if m.X, err = r.float32(); err != nil {
		return Marker{}, err
	}
	if m.Y, err = r.float32(); err != nil {
		return Marker{}, err
	}
	if m.Z, err = r.float32(); err != nil {
		return Marker{}, err
	}

	return m, nil
}

func decodeLabeledMarker(ver version.Version, r *reader) (LabeledMarker, error) {
	var lm LabeledMarker
	var err error

	if lm.ID, err = r.int32(); err != nil {
		return LabeledMarker{}, err
	}
	if lm.Position, err = decodeMarker(r); err != nil {
		return LabeledMarker{}, err
	}
	if lm.Size, err = r.float32(); err != nil {
		return LabeledMarker{}, err
	}

	if ver.Supports(version.FeatureTrackingFlags) {
		params, err := r.uint16()
		if err != nil {
			return LabeledMarker{}, err
		}
		lm.Occluded = flagPtr(params, paramOccluded)
		lm.PointCloudSolved = flagPtr(params, paramPointCloudSolved)
		lm.ModelSolved = flagPtr(params, paramModelSolved)
	}

	return lm, nil
}

// flagPtr extracts one bit of a status bitfield as an optional boolean.
func flagPtr(params, mask uint16) *bool {
	b := params&mask != 0
	return &b
}
