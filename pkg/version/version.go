// Package version models NatNet protocol versions and the feature
// thresholds that gate optional wire fields.
//
// The NatNet byte stream is not self-describing: fields were added across
// releases with no schema, so a decoder must be told which version produced
// the bytes. This package keeps every version-dependent presence decision in
// one threshold table so gating logic can be tested independently of byte
// layout.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidVersion = errors.New("invalid version string")

// Version is a NatNet protocol or application version.
//
// Build carries the fourth byte of the wire representation (a numeric build
// tag). It is informational only and never participates in ordering.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
	Build uint64
}

// New creates a version from major.minor.patch components.
func New(major, minor, patch uint64) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// Parse parses a version of the form "major.minor.patch" with an optional
// ".build" fourth component.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 3 || len(parts) > 4 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	var fields [4]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		fields[i] = n
	}

	return Version{Major: fields[0], Minor: fields[1], Patch: fields[2], Build: fields[3]}, nil
}

// MustParse is like Parse but panics on malformed input. Intended for
// constants and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String formats the version as "major.minor.patch", appending ".build"
// when a build tag is set.
func (v Version) String() string {
	if v.Build != 0 {
		return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 ordering v against o. The build tag is
// ignored, matching semantic versioning.
func (v Version) Compare(o Version) int {
	pairs := [3][2]uint64{
		{v.Major, o.Major},
		{v.Minor, o.Minor},
		{v.Patch, o.Patch},
	}
	for _, p := range pairs {
		switch {
		case p[0] < p[1]:
			return -1
		case p[0] > p[1]:
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v >= o.
func (v Version) AtLeast(o Version) bool {
	return v.Compare(o) >= 0
}

// Feature identifies a version-gated part of the NatNet wire format.
type Feature int

const (
	// FeatureTrackingFlags covers the 16-bit status bitfields appended to
	// labeled markers, rigid bodies and frames.
	FeatureTrackingFlags Feature = iota
	// FeatureTimestamp covers the per-frame timestamp field.
	FeatureTimestamp
	// FeatureTimestampDouble marks the widening of the timestamp from a
	// 32-bit to a 64-bit float.
	FeatureTimestampDouble
	// FeatureForcePlates covers per-frame force plate samples.
	FeatureForcePlates
)

// featureThresholds is the single source of truth for which protocol
// version introduced each optional field.
var featureThresholds = map[Feature]Version{
	FeatureTrackingFlags:   {Major: 2, Minor: 6, Patch: 0},
	FeatureTimestamp:       {Major: 2, Minor: 6, Patch: 0},
	FeatureTimestampDouble: {Major: 2, Minor: 7, Patch: 0},
	FeatureForcePlates:     {Major: 2, Minor: 9, Patch: 0},
}

// Supports reports whether streams produced at version v contain the
// given feature. Unknown features are never supported.
func (v Version) Supports(f Feature) bool {
	min, ok := featureThresholds[f]
	if !ok {
		return false
	}
	return v.AtLeast(min)
}
