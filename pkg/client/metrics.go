package client

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mocaptools/natnet-go/pkg/protocol"
)

var (
	framesDecoded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "natnet",
		Name:      "frames_decoded_total",
		Help:      "Frames of data decoded successfully.",
	})

	decodeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "natnet",
		Name:      "decode_errors_total",
		Help:      "Messages that failed to decode, by error kind.",
	}, []string{"kind"})

	bytesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "natnet",
		Name:      "bytes_received_total",
		Help:      "Raw datagram bytes received.",
	})
)

func init() {
	prometheus.MustRegister(framesDecoded, decodeErrors, bytesReceived)
}

// errKind maps a decode failure onto its taxonomy bucket for the error
// counter label.
func errKind(err error) string {
	var unknownMsg *protocol.UnknownMessageTypeError
	var unknownDataset *protocol.UnknownDatasetTypeError

	switch {
	case errors.As(err, &unknownMsg):
		return "unknown_message_type"
	case errors.As(err, &unknownDataset):
		return "unknown_dataset_type"
	case errors.Is(err, protocol.ErrTruncated):
		return "truncated"
	case errors.Is(err, protocol.ErrStructuralMismatch):
		return "structural_mismatch"
	case errors.Is(err, protocol.ErrTextDecoding):
		return "text_decoding"
	case errors.Is(err, protocol.ErrTransport):
		return "transport"
	default:
		return "other"
	}
}
