package protocol

// MsgType identifies a NatNet message on the wire.
type MsgType uint16

// Message type codes, fixed since the early NatNet releases.
const (
	MsgTypePing                MsgType = 0
	MsgTypePingResponse        MsgType = 1
	MsgTypeRequest             MsgType = 2
	MsgTypeResponse            MsgType = 3
	MsgTypeRequestModelDef     MsgType = 4
	MsgTypeModelDef            MsgType = 5
	MsgTypeRequestFrameOfData  MsgType = 6
	MsgTypeFrameOfData         MsgType = 7
	MsgTypeMessageString       MsgType = 8
	MsgTypeUnrecognizedRequest MsgType = 100
)

// Model definition discriminants (leading int32 of each ModelDef entry).
const (
	datasetMarkerSet int32 = 0
	datasetRigidBody int32 = 1
	datasetSkeleton  int32 = 2
)

// Bit assignments inside the 16-bit status bitfields (NatNet >= 2.6).
const (
	// Labeled marker params
	paramOccluded         uint16 = 0x01
	paramPointCloudSolved uint16 = 0x02
	paramModelSolved      uint16 = 0x04

	// Rigid body params
	paramValidTrack uint16 = 0x01

	// Frame params
	paramIsRecording          uint16 = 0x01
	paramTrackedModelsChanged uint16 = 0x02
)

// Sender descriptor layout: the application name occupies a fixed slot.
const senderNameSize = 256

// envelopeSize is the fixed message header: type code plus declared length.
const envelopeSize = 4

// maxRequestSize is the largest encoded request NatNet accepts.
const maxRequestSize = 0xFFFF
