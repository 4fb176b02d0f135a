package protocol

import "github.com/mocaptools/natnet-go/pkg/version"

// Quaternion is an orientation in x, y, z, w wire order.
type Quaternion struct {
	X float32
	Y float32
	Z float32
	W float32
}

// RigidBody is a tracked object with a fixed marker constellation and a
// six-degree-of-freedom pose.
//
// Markers, MarkerIDs and MarkerSizes are parallel slices of equal length,
// stored in wire order (all positions, then all IDs, then all sizes); they
// are deliberately not zipped into per-marker records.
type RigidBody struct {
	ID          int32
	Position    Marker
	Orientation Quaternion

	Markers     []Marker
	MarkerIDs   []int32
	MarkerSizes []float32

	MeanError float32

	// ValidTrack reports whether the body was tracked this frame.
	// NatNet >= 2.6 only, nil below.
	ValidTrack *bool
}

func decodeQuaternion(r *reader) (Quaternion, error) {
	var q Quaternion
	var err error

	if q.X, err = r.float32(); err != nil {
		return Quaternion{}, err
	}
	if q.Y, err = r.float32(); err != nil {
		return Quaternion{}, err
	}
	if q.Z, err = r.float32(); err != nil {
		return Quaternion{}, err
	}
	if q.W, err = r.float32(); err != nil {
		return Quaternion{}, err
	}

	return q, nil
}

func decodeRigidBody(ver version.Version, r *reader) (RigidBody, error) {
	var rb RigidBody
	var err error

	if rb.ID, err = r.int32(); err != nil {
		return RigidBody{}, err
	}
	if rb.Position, err = decodeMarker(r); err != nil {
		return RigidBody{}, err
	}
	if rb.Orientation, err = decodeQuaternion(r); err != nil {
		return RigidBody{}, err
	}

	numMarkers, capHint, err := r.count()
	if err != nil {
		return RigidBody{}, err
	}

	rb.Markers = make([]Marker, 0, capHint)
	for i := 0; i < numMarkers; i++ {
		m, err := decodeMarker(r)
		if err != nil {
			return RigidBody{}, err
		}
		rb.Markers = append(rb.Markers, m)
	}

	rb.MarkerIDs = make([]int32, 0, capHint)
	for i := 0; i < numMarkers; i++ {
		id, err := r.int32()
		if err != nil {
			return RigidBody{}, err
		}
		rb.MarkerIDs = append(rb.MarkerIDs, id)
	}

	rb.MarkerSizes = make([]float32, 0, capHint)
	for i := 0; i < numMarkers; i++ {
		size, err := r.float32()
		if err != nil {
			return RigidBody{}, err
		}
		rb.MarkerSizes = append(rb.MarkerSizes, size)
	}

	if rb.MeanError, err = r.float32(); err != nil {
		return RigidBody{}, err
	}

	if ver.Supports(version.FeatureTrackingFlags) {
		params, err := r.uint16()
		if err != nil {
			return RigidBody{}, err
		}
		rb.ValidTrack = flagPtr(params, paramValidTrack)
	}

	return rb, nil
}
