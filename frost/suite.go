// Package frost implements FROST(Ed25519, SHA-512) two-round threshold Schnorr
// signatures on top of kyber's edwards25519 group. Signatures produced by
// Aggregate are plain Ed25519 signatures under the group verifying key.
package frost

import (
	"bytes"
	"crypto/cipher"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"

	"github.com/corestario/kyber"
	"github.com/corestario/kyber/group/edwards25519"
	"github.com/corestario/kyber/util/random"
	"lukechampine.com/frand"
)

const (
	// ContextString is the ciphersuite identifier mixed into every domain-separated hash.
	ContextString = "FROST-ED25519-SHA512-v1"

	ScalarSize    = 32
	ElementSize   = 32
	SignatureSize = 64
)

var suite = edwards25519.NewBlakeSHA256Ed25519()

var (
	ErrInvalidScalar  = errors.New("invalid scalar encoding")
	ErrInvalidElement = errors.New("invalid group element encoding")
)

// randomReader returns r, or the process CSPRNG when r is nil.
func randomReader(r io.Reader) io.Reader {
	if r == nil {
		return frand.Reader
	}
	return r
}

func randomStream(r io.Reader) cipher.Stream {
	return random.New(randomReader(r))
}

func newScalar() kyber.Scalar {
	return suite.Scalar()
}

func newPoint() kyber.Point {
	return suite.Point()
}

// EncodeScalar returns the 32-byte little-endian encoding of s.
func EncodeScalar(s kyber.Scalar) []byte {
	bz, err := s.MarshalBinary()
	if err != nil {
		// edwards25519 scalars always marshal
		panic(fmt.Sprintf("failed to marshal scalar: %v", err))
	}
	return bz
}

// DecodeScalar parses a canonical 32-byte little-endian scalar.
func DecodeScalar(bz []byte) (kyber.Scalar, error) {
	if len(bz) != ScalarSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidScalar, ScalarSize, len(bz))
	}
	s := newScalar().SetBytes(bz)
	if !bytes.Equal(EncodeScalar(s), bz) {
		return nil, fmt.Errorf("%w: value is not reduced", ErrInvalidScalar)
	}
	return s, nil
}

// EncodeElement returns the compressed 32-byte encoding of p.
func EncodeElement(p kyber.Point) []byte {
	bz, err := p.MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("failed to marshal point: %v", err))
	}
	return bz
}

// DecodeElement parses a compressed point. The identity element is rejected.
func DecodeElement(bz []byte) (kyber.Point, error) {
	if len(bz) != ElementSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidElement, ElementSize, len(bz))
	}
	p := newPoint()
	if err := p.UnmarshalBinary(bz); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidElement, err)
	}
	if p.Equal(newPoint().Null()) {
		return nil, fmt.Errorf("%w: identity element", ErrInvalidElement)
	}
	return p, nil
}

// PublicKeyFromScalar returns the encoded s·B.
func PublicKeyFromScalar(s kyber.Scalar) []byte {
	return EncodeElement(newPoint().Mul(s, nil))
}

// hashToScalar reduces SHA-512(ContextString || tag || parts...) modulo the group order.
// An empty tag hashes the parts alone, as Ed25519 does for its challenge.
func hashToScalar(tag string, parts ...[]byte) kyber.Scalar {
	return newScalar().SetBytes(hashBytes(tag, parts...))
}

func hashBytes(tag string, parts ...[]byte) []byte {
	h := sha512.New()
	if tag != "" {
		h.Write([]byte(ContextString))
		h.Write([]byte(tag))
	}
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

func h1(parts ...[]byte) kyber.Scalar { return hashToScalar("rho", parts...) }
func h2(parts ...[]byte) kyber.Scalar { return hashToScalar("", parts...) }
func h3(parts ...[]byte) kyber.Scalar { return hashToScalar("nonce", parts...) }
func h4(parts ...[]byte) []byte       { return hashBytes("msg", parts...) }
func h5(parts ...[]byte) []byte       { return hashBytes("com", parts...) }
