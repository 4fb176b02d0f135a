package protocol

import "github.com/mocaptools/natnet-go/pkg/version"

// ModelDef is one entry of a model definition list: a description of a
// marker set, rigid body or skeleton tracked by the server. It is a closed
// choice; the concrete type is one of MarkerSetDef, RigidBodyDef or
// SkeletonDef.
type ModelDef interface {
	modelDef()
}

// MarkerSetDef describes a named marker set.
type MarkerSetDef struct {
	Name        string
	MarkerNames []string
}

// RigidBodyDef describes a rigid body and its placement in a hierarchy.
type RigidBodyDef struct {
	Name     string
	ID       int32
	ParentID int32
	// Offset from the parent body.
	Offset Marker
}

// SkeletonDef describes a skeleton as a list of rigid body descriptions.
type SkeletonDef struct {
	Name  string
	ID    int32
	Bones []RigidBodyDef
}

func (MarkerSetDef) modelDef() {}
func (RigidBodyDef) modelDef() {}
func (SkeletonDef) modelDef()  {}

// decodeModelDef dispatches on the leading discriminant. An unrecognized
// discriminant is fatal: the entry length is unknown, so there is no way
// to skip it.
func decodeModelDef(ver version.Version, r *reader) (ModelDef, error) {
	dtype, err := r.int32()
	if err != nil {
		return nil, err
	}

	switch dtype {
	case datasetMarkerSet:
		return decodeMarkerSetDef(r)
	case datasetRigidBody:
		return decodeRigidBodyDef(r)
	case datasetSkeleton:
		return decodeSkeletonDef(r)
	default:
		return nil, &UnknownDatasetTypeError{Code: dtype}
	}
}

func decodeMarkerSetDef(r *reader) (MarkerSetDef, error) {
	var d MarkerSetDef
	var err error

	if d.Name, err = r.cstring(); err != nil {
		return MarkerSetDef{}, err
	}

	numMarkers, capHint, err := r.count()
	if err != nil {
		return MarkerSetDef{}, err
	}

	d.MarkerNames = make([]string, 0, capHint)
	for i := 0; i < numMarkers; i++ {
		name, err := r.cstring()
		if err != nil {
			return MarkerSetDef{}, err
		}
		d.MarkerNames = append(d.MarkerNames, name)
	}

	return d, nil
}

func decodeRigidBodyDef(r *reader) (RigidBodyDef, error) {
	var d RigidBodyDef
	var err error

	if d.Name, err = r.cstring(); err != nil {
		return RigidBodyDef{}, err
	}
	if d.ID, err = r.int32(); err != nil {
		return RigidBodyDef{}, err
	}
	if d.ParentID, err = r.int32(); err != nil {
		return RigidBodyDef{}, err
	}
	if d.Offset, err = decodeMarker(r); err != nil {
		return RigidBodyDef{}, err
	}

	return d, nil
}

func decodeSkeletonDef(r *reader) (SkeletonDef, error) {
	var d SkeletonDef
	var err error

	if d.Name, err = r.cstring(); err != nil {
		return SkeletonDef{}, err
	}
	if d.ID, err = r.int32(); err != nil {
		return SkeletonDef{}, err
	}

	numBones, capHint, err := r.count()
	if err != nil {
		return SkeletonDef{}, err
	}

	d.Bones = make([]RigidBodyDef, 0, capHint)
	for i := 0; i < numBones; i++ {
		rb, err := decodeRigidBodyDef(r)
		if err != nil {
			return SkeletonDef{}, err
		}
		d.Bones = append(d.Bones, rb)
	}

	return d, nil
}
