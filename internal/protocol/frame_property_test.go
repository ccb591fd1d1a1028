package protocol

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any payload, decoding an encoded frame yields the original bytes,
// whether or not the client applied masking.
func TestFrameRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("unmasked frames round-trip", prop.ForAll(
		func(payload []byte) bool {
			frame, consumed, err := DecodeFrame(EncodeFrame(payload, OpText))
			return err == nil &&
				consumed == len(EncodeFrame(payload, OpText)) &&
				bytes.Equal(frame.Payload, payload)
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("masked frames round-trip", prop.ForAll(
		func(payload []byte, k0, k1, k2, k3 byte) bool {
			key := [4]byte{k0, k1, k2, k3}
			frame, _, err := DecodeFrame(buildMaskedFrame(payload, OpBinary, key))
			return err == nil && frame.Masked && bytes.Equal(frame.Payload, payload)
		},
		gen.SliceOf(gen.UInt8()),
		gen.UInt8(), gen.UInt8(), gen.UInt8(), gen.UInt8(),
	))

	properties.Property("masking is an involution", prop.ForAll(
		func(payload []byte, k0, k1, k2, k3 byte) bool {
			key := [4]byte{k0, k1, k2, k3}
			scratch := make([]byte, len(payload))
			copy(scratch, payload)
			MaskPayload(scratch, key)
			MaskPayload(scratch, key)
			return bytes.Equal(scratch, payload)
		},
		gen.SliceOf(gen.UInt8()),
		gen.UInt8(), gen.UInt8(), gen.UInt8(), gen.UInt8(),
	))

	properties.TestingRun(t)
}
