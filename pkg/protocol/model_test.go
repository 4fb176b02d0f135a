package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mocaptools/natnet-go/pkg/version"
)

func TestModelDefDecode(t *testing.T) {
	var w wire
	w.i32(3) // three definitions

	// Marker set
	w.i32(datasetMarkerSet)
	w.cstr("hand").i32(2).cstr("thumb").cstr("index")

	// Rigid body
	w.i32(datasetRigidBody)
	w.cstr("base").i32(4).i32(0).marker(0.5, 0, -0.5)

	// Skeleton with two bones
	w.i32(datasetSkeleton)
	w.cstr("actor").i32(9).i32(2)
	w.cstr("hip").i32(1).i32(0).marker(0, 0, 0)
	w.cstr("spine").i32(2).i32(1).marker(0, 0.3, 0)

	resp, err := UnpackWith(version.MustParse("2.9.0"), bytes.NewReader(envelope(MsgTypeModelDef, w.Bytes())))
	if err != nil {
		t.Fatalf("UnpackWith() error = %v", err)
	}

	models, ok := resp.(ModelDefinitions)
	if !ok {
		t.Fatalf("UnpackWith() = %T, want ModelDefinitions", resp)
	}
	if len(models) != 3 {
		t.Fatalf("len(models) = %d, want 3", len(models))
	}

	ms, ok := models[0].(MarkerSetDef)
	if !ok {
		t.Fatalf("models[0] = %T, want MarkerSetDef", models[0])
	}
	if ms.Name != "hand" || len(ms.MarkerNames) != 2 || ms.MarkerNames[1] != "index" {
		t.Errorf("MarkerSetDef = %+v", ms)
	}

	rb, ok := models[1].(RigidBodyDef)
	if !ok {
		t.Fatalf("models[1] = %T, want RigidBodyDef", models[1])
	}
	if rb.Name != "base" || rb.ID != 4 || rb.ParentID != 0 || rb.Offset != (Marker{0.5, 0, -0.5}) {
		t.Errorf("RigidBodyDef = %+v", rb)
	}

	sk, ok := models[2].(SkeletonDef)
	if !ok {
		t.Fatalf("models[2] = %T, want SkeletonDef", models[2])
	}
	if sk.Name != "actor" || sk.ID != 9 || len(sk.Bones) != 2 {
		t.Errorf("SkeletonDef = %+v", sk)
	}
	if sk.Bones[1].Name != "spine" || sk.Bones[1].ParentID != 1 {
		t.Errorf("SkeletonDef.Bones[1] = %+v", sk.Bones[1])
	}
}

func TestModelDefUnknownDiscriminant(t *testing.T) {
	var w wire
	w.i32(1)
	w.i32(37) // no such dataset type
	w.cstr("junk")

	_, err := UnpackWith(version.MustParse("2.9.0"), bytes.NewReader(envelope(MsgTypeModelDef, w.Bytes())))

	var unknownType *UnknownDatasetTypeError
	if !errors.As(err, &unknownType) {
		t.Fatalf("error = %v, want UnknownDatasetTypeError", err)
	}
	if unknownType.Code != 37 {
		t.Errorf("Code = %d, want 37", unknownType.Code)
	}
	if !errors.Is(err, ErrStructuralMismatch) {
		t.Error("unknown discriminant should classify as structural mismatch")
	}
}

func TestModelDefEmptyList(t *testing.T) {
	var w wire
	w.i32(0)

	resp, err := UnpackWith(version.MustParse("2.6.0"), bytes.NewReader(envelope(MsgTypeModelDef, w.Bytes())))
	if err != nil {
		t.Fatalf("UnpackWith() error = %v", err)
	}
	if models := resp.(ModelDefinitions); len(models) != 0 {
		t.Errorf("len(models) = %d, want 0", len(models))
	}
}
