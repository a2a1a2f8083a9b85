package frost

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/corestario/kyber"
)

var (
	ErrMissingCommitment            = errors.New("signer's commitment is missing from the signing package")
	ErrIncorrectCommitment          = errors.New("signing package commitment does not match the nonces")
	ErrIncorrectNumberOfCommitments = errors.New("incorrect number of commitments")
)

// SigningPackage is the coordinator's round two broadcast: the chosen
// signers' commitments and the message.
type SigningPackage struct {
	Commitments map[Identifier]*SigningCommitments
	Message     []byte
}

func NewSigningPackage(commitments map[Identifier]*SigningCommitments, message []byte) *SigningPackage {
	return &SigningPackage{Commitments: commitments, Message: message}
}

type signingPackageJSON struct {
	Header             Header                             `json:"header"`
	SigningCommitments map[Identifier]*SigningCommitments `json:"signing_commitments"`
	Message            string                             `json:"message"`
}

func (p *SigningPackage) MarshalJSON() ([]byte, error) {
	return json.Marshal(signingPackageJSON{
		Header:             defaultHeader(),
		SigningCommitments: p.Commitments,
		Message:            hex.EncodeToString(p.Message),
	})
}

func (p *SigningPackage) UnmarshalJSON(data []byte) error {
	var raw signingPackageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := raw.Header.validate(); err != nil {
		return err
	}
	msg, err := hex.DecodeString(raw.Message)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	for id, c := range raw.SigningCommitments {
		if c == nil {
			return fmt.Errorf("%w: null commitment for %s", ErrMissingCommitment, id)
		}
	}
	p.Commitments = raw.SigningCommitments
	p.Message = msg
	return nil
}

// SignatureShare is one participant's round two output.
type SignatureShare struct {
	Share kyber.Scalar
}

type signatureShareJSON struct {
	Header Header `json:"header"`
	Share  string `json:"share"`
}

func (s *SignatureShare) MarshalJSON() ([]byte, error) {
	return json.Marshal(signatureShareJSON{
		Header: defaultHeader(),
		Share:  hex.EncodeToString(EncodeScalar(s.Share)),
	})
}

func (s *SignatureShare) UnmarshalJSON(data []byte) error {
	var raw signatureShareJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := raw.Header.validate(); err != nil {
		return err
	}
	share, err := decodeHexScalar(raw.Share)
	if err != nil {
		return fmt.Errorf("failed to decode signature share: %w", err)
	}
	s.Share = share
	return nil
}

// Sign runs round two for a single participant. The nonces must be the ones
// whose commitments appear in pkg under the participant's identifier.
func Sign(pkg *SigningPackage, nonces *SigningNonces, keyPackage *KeyPackage) (*SignatureShare, error) {
	if len(pkg.Commitments) < int(keyPackage.MinSigners) {
		return nil, fmt.Errorf("%w: have %d, need at least %d",
			ErrIncorrectNumberOfCommitments, len(pkg.Commitments), keyPackage.MinSigners)
	}
	own, ok := pkg.Commitments[keyPackage.Identifier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingCommitment, keyPackage.Identifier)
	}
	if !own.Equal(nonces.commitments) {
		return nil, ErrIncorrectCommitment
	}

	bindingFactors := computeBindingFactors(keyPackage.VerifyingKey, pkg)
	groupCommitment := computeGroupCommitment(pkg, bindingFactors)
	challenge := computeChallenge(groupCommitment, keyPackage.VerifyingKey, pkg.Message)
	lambda := interpolatingValue(keyPackage.Identifier, SortedIdentifiers(pkg.Commitments))

	// z = d + e·rho + lambda·s·c
	z := newScalar().Mul(nonces.binding, bindingFactors[keyPackage.Identifier])
	z.Add(z, nonces.hiding)
	lsc := newScalar().Mul(lambda, keyPackage.SigningShare)
	lsc.Mul(lsc, challenge)
	z.Add(z, lsc)

	return &SignatureShare{Share: z}, nil
}

func encodeGroupCommitmentList(commitments map[Identifier]*SigningCommitments) []byte {
	ids := SortedIdentifiers(commitments)
	out := make([]byte, 0, len(ids)*(ScalarSize+2*ElementSize))
	for _, id := range ids {
		c := commitments[id]
		out = append(out, id.Serialize()...)
		out = append(out, EncodeElement(c.Hiding)...)
		out = append(out, EncodeElement(c.Binding)...)
	}
	return out
}

func computeBindingFactors(verifyingKey kyber.Point, pkg *SigningPackage) map[Identifier]kyber.Scalar {
	prefix := make([]byte, 0, ElementSize+2*64)
	prefix = append(prefix, EncodeElement(verifyingKey)...)
	prefix = append(prefix, h4(pkg.Message)...)
	prefix = append(prefix, h5(encodeGroupCommitmentList(pkg.Commitments))...)

	factors := make(map[Identifier]kyber.Scalar, len(pkg.Commitments))
	for id := range pkg.Commitments {
		factors[id] = h1(prefix, id.Serialize())
	}
	return factors
}

// computeGroupCommitment returns R = sum(D_i + rho_i·E_i).
func computeGroupCommitment(pkg *SigningPackage, bindingFactors map[Identifier]kyber.Scalar) kyber.Point {
	r := newPoint().Null()
	for id, c := range pkg.Commitments {
		r.Add(r, c.Hiding)
		r.Add(r, newPoint().Mul(bindingFactors[id], c.Binding))
	}
	return r
}

func computeChallenge(r, verifyingKey kyber.Point, msg []byte) kyber.Scalar {
	return h2(EncodeElement(r), EncodeElement(verifyingKey), msg)
}

// interpolatingValue returns the Lagrange coefficient of id at zero over the
// given signer set.
func interpolatingValue(id Identifier, signers []Identifier) kyber.Scalar {
	num := newScalar().One()
	den := newScalar().One()
	xi := id.Scalar()
	for _, j := range signers {
		if j == id {
			continue
		}
		xj := j.Scalar()
		num.Mul(num, xj)
		den.Mul(den, newScalar().Sub(xj, xi))
	}
	return num.Div(num, den)
}
