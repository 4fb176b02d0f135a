// Package protocol implements a version-aware decoder for the NatNet
// motion-capture streaming protocol.
//
// NatNet is the binary protocol used by OptiTrack tracking servers to
// multicast per-frame scene state (markers, rigid bodies, skeletons, force
// plates) along with control messages (pings, model definitions, text
// responses). The format evolved across many releases without a
// self-describing schema: fields were appended, widened or gated on the
// producing version, so correct decoding requires the caller to state,
// out of band, which protocol version produced the bytes.
//
// # Message Envelope
//
// Every message starts with a 4-byte little-endian envelope:
//   - Type (2 bytes): message type code
//   - Length (2 bytes): declared body length
//
// The declared length is not used to bound decoding; body decoders consume
// exactly the bytes their layout requires. The single exception is the
// Response message, where a declared length of exactly 4 selects an integer
// body and any other length a string body. That quirk is inherited from the
// reference NatNet client and is preserved as-is.
//
// # Message Types
//
//   - Ping (0) / PingResponse (1): liveness probe; the response carries a
//     Sender descriptor identifying the application and its NatNet version
//   - Request (2) / Response (3): free-form commands and their replies
//   - RequestModelDef (4) / ModelDef (5): asset descriptions (marker sets,
//     rigid bodies, skeletons)
//   - RequestFrameOfData (6) / FrameOfData (7): one snapshot of tracked
//     scene state
//   - MessageString (8): text message from the server
//   - UnrecognizedRequest (100): the server did not understand a request
//
// # Version Gating
//
// Optional fields (status bitfields, timestamps, force plates) are decoded
// only when the caller-supplied version reaches the introducing release;
// thresholds live in the version package. A wrong version does not fail
// fast: it silently misaligns every subsequent read, which usually surfaces
// as ErrStructuralMismatch on the frame's end-of-data sentinel or as
// ErrTruncated when the source runs dry mid-primitive. Both errors should
// be read as "probable version mismatch" first and "corrupt stream" second.
//
// # Concurrency
//
// A Decoder holds only the negotiated version and is safe for concurrent
// use on independent byte sources. Decoding is synchronous and atomic: a
// call returns a complete message value or an error, never a partial
// result.
package protocol
