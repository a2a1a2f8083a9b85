package frost

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/corestario/kyber"
)

var (
	ErrInvalidShare      = errors.New("invalid signature share")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrMissingShare      = errors.New("missing signature share")
	ErrUnexpectedShare   = errors.New("signature share without a commitment")
)

// InvalidShareError names the participants whose shares failed verification.
type InvalidShareError struct {
	Culprits []Identifier
}

func (e *InvalidShareError) Error() string {
	names := make([]string, len(e.Culprits))
	for i, id := range e.Culprits {
		names[i] = id.String()
	}
	return fmt.Sprintf("%s from %s", ErrInvalidShare, strings.Join(names, ", "))
}

func (e *InvalidShareError) Is(target error) bool {
	return target == ErrInvalidShare
}

// Signature is a 64-byte Ed25519 signature R || z.
type Signature struct {
	R kyber.Point
	Z kyber.Scalar
}

func (s *Signature) Serialize() []byte {
	out := make([]byte, 0, SignatureSize)
	out = append(out, EncodeElement(s.R)...)
	return append(out, EncodeScalar(s.Z)...)
}

// Aggregate combines signature shares into a group signature. Every share is
// checked against its signer's verifying share first, so a bad share is
// attributed to its sender; the final signature is then verified under the
// group key before being returned.
func Aggregate(pkg *SigningPackage, shares map[Identifier]*SignatureShare, pubKeys *PublicKeyPackage) (*Signature, error) {
	if len(shares) != len(pkg.Commitments) {
		return nil, fmt.Errorf("%w: %d shares for %d commitments",
			ErrIncorrectNumberOfCommitments, len(shares), len(pkg.Commitments))
	}
	for id := range shares {
		if _, ok := pkg.Commitments[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedShare, id)
		}
	}
	for id := range pkg.Commitments {
		if shares[id] == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingShare, id)
		}
		if _, ok := pubKeys.VerifyingShares[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownIdentifier, id)
		}
	}

	bindingFactors := computeBindingFactors(pubKeys.VerifyingKey, pkg)
	groupCommitment := computeGroupCommitment(pkg, bindingFactors)
	challenge := computeChallenge(groupCommitment, pubKeys.VerifyingKey, pkg.Message)
	signers := SortedIdentifiers(pkg.Commitments)

	var culprits []Identifier
	for _, id := range signers {
		lambda := interpolatingValue(id, signers)
		if !verifyShare(shares[id].Share, pkg.Commitments[id], bindingFactors[id], lambda, challenge, pubKeys.VerifyingShares[id]) {
			culprits = append(culprits, id)
		}
	}
	if len(culprits) > 0 {
		return nil, &InvalidShareError{Culprits: culprits}
	}

	z := newScalar().Zero()
	for _, id := range signers {
		z.Add(z, shares[id].Share)
	}
	sig := &Signature{R: groupCommitment, Z: z}
	if !Verify(pubKeys.VerifyingKeyBytes(), pkg.Message, sig.Serialize()) {
		return nil, ErrInvalidSignature
	}
	return sig, nil
}

// verifyShare checks z_i·B == D_i + rho_i·E_i + (c·lambda_i)·Y_i.
func verifyShare(z kyber.Scalar, c *SigningCommitments, rho, lambda, challenge kyber.Scalar, verifyingShare kyber.Point) bool {
	lhs := newPoint().Mul(z, nil)
	rhs := newPoint().Mul(rho, c.Binding)
	rhs.Add(rhs, c.Hiding)
	rhs.Add(rhs, newPoint().Mul(newScalar().Mul(challenge, lambda), verifyingShare))
	return lhs.Equal(rhs)
}

// Verify checks an Ed25519 signature. Malformed inputs are reported as invalid.
func Verify(verifyingKey, msg, sig []byte) bool {
	if len(verifyingKey) != ed25519.PublicKeySize || len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(verifyingKey, msg, sig)
}

// SignWithScalar produces an Ed25519 signature from a raw secret scalar, for
// keys that exist only as a reconstructed scalar and have no seed. The
// deterministic nonce prefix of RFC 8032 is replaced by 32 bytes from rand.
func SignWithScalar(secret kyber.Scalar, msg []byte, rand io.Reader) ([]byte, error) {
	prefix := make([]byte, 32)
	if _, err := io.ReadFull(randomReader(rand), prefix); err != nil {
		return nil, fmt.Errorf("failed to read nonce prefix: %w", err)
	}
	publicKey := newPoint().Mul(secret, nil)
	r := h2(prefix, EncodeScalar(secret), msg)
	R := newPoint().Mul(r, nil)
	k := computeChallenge(R, publicKey, msg)
	s := newScalar().Mul(k, secret)
	s.Add(s, r)
	return (&Signature{R: R, Z: s}).Serialize(), nil
}
