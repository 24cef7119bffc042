// Package anchor encodes the payloads this service commits on-chain. The
// full record stays off-chain; what gets registered is a small deterministic
// CBOR envelope around its digest, so identical records always anchor to
// identical bytes.
package anchor

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"anchorid/internal/chain"
)

// ErrTooLarge reports a payload exceeding the chain's registered-data bound.
var ErrTooLarge = errors.New("payload exceeds registered data size bound")

// Envelope is the on-chain shape of an anchor: a version byte, the digest of
// the encoded record, and optional caller-supplied public info carried
// verbatim. Public info counts against the size bound, so oversized input is
// a client error.
type Envelope struct {
	Version    uint8  `cbor:"v"`
	Digest     []byte `cbor:"d"`
	PublicInfo []byte `cbor:"p,omitempty"`
}

// EnvelopeVersion is bumped when the envelope layout changes.
const EnvelopeVersion = 1

// Codec performs deterministic CBOR encoding and enforces the registered-data
// size bound.
type Codec struct {
	enc      cbor.EncMode
	maxBytes int
}

// NewCodec builds a codec with core-deterministic encoding. maxBytes is the
// chain's registered-data bound.
func NewCodec(maxBytes int) (*Codec, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("build cbor encoder: %w", err)
	}
	return &Codec{enc: enc, maxBytes: maxBytes}, nil
}

// Encode serializes v with deterministic CBOR.
func (c *Codec) Encode(v any) ([]byte, error) {
	payload, err := c.enc.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cbor encode: %w", err)
	}
	return payload, nil
}

// Decode deserializes CBOR produced by Encode.
func (c *Codec) Decode(data []byte, v any) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cbor decode: %w", err)
	}
	return nil
}

// Digest computes the blake2b-256 digest of encoded bytes.
func (c *Codec) Digest(encoded []byte) []byte {
	sum := blake2b.Sum256(encoded)
	return sum[:]
}

// ToRegisteredData wraps encoded record bytes into the on-chain envelope,
// enforcing the size bound.
func (c *Codec) ToRegisteredData(encoded, publicInfo []byte) (chain.RegisteredData, error) {
	envelope := Envelope{
		Version:    EnvelopeVersion,
		Digest:     c.Digest(encoded),
		PublicInfo: publicInfo,
	}
	payload, err := c.Encode(envelope)
	if err != nil {
		return nil, err
	}
	if len(payload) > c.maxBytes {
		return nil, fmt.Errorf("envelope is %d bytes, bound is %d: %w", len(payload), c.maxBytes, ErrTooLarge)
	}
	return chain.RegisteredData(payload), nil
}
