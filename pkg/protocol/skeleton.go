package protocol

import "github.com/mocaptools/natnet-go/pkg/version"

// Skeleton is an ordered hierarchy of rigid bodies ("bones").
type Skeleton struct {
	ID    int32
	Bones []RigidBody
}

func decodeSkeleton(ver version.Version, r *reader) (Skeleton, error) {
	var s Skeleton
	var err error

	if s.ID, err = r.int32(); err != nil {
		return Skeleton{}, err
	}

	numBones, capHint, err := r.count()
	if err != nil {
		return Skeleton{}, err
	}

	s.Bones = make([]RigidBody, 0, capHint)
	for i := 0; i < numBones; i++ {
		rb, err := decodeRigidBody(ver, r)
		if err != nil {
			return Skeleton{}, err
		}
		s.Bones = append(s.Bones, rb)
	}

	return s, nil
}
