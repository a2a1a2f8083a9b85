package frost

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/corestario/kyber"
)

// SigningNonces are the secret hiding and binding nonces for one signing
// operation. They must be used for exactly one signature share.
type SigningNonces struct {
	hiding      kyber.Scalar
	binding     kyber.Scalar
	commitments *SigningCommitments
}

// SigningCommitments are the public images of a participant's nonces.
type SigningCommitments struct {
	Hiding  kyber.Point
	Binding kyber.Point
}

// Commit runs round one: fresh nonces are derived from rand and the signing
// share, and their commitments are returned for publication.
func Commit(signingShare kyber.Scalar, rand io.Reader) (*SigningNonces, *SigningCommitments, error) {
	rand = randomReader(rand)
	hiding, err := generateNonce(signingShare, rand)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate hiding nonce: %w", err)
	}
	binding, err := generateNonce(signingShare, rand)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate binding nonce: %w", err)
	}
	commitments := &SigningCommitments{
		Hiding:  newPoint().Mul(hiding, nil),
		Binding: newPoint().Mul(binding, nil),
	}
	return &SigningNonces{hiding: hiding, binding: binding, commitments: commitments}, commitments, nil
}

func generateNonce(secret kyber.Scalar, rand io.Reader) (kyber.Scalar, error) {
	randomBytes := make([]byte, 32)
	if _, err := io.ReadFull(rand, randomBytes); err != nil {
		return nil, err
	}
	return h3(randomBytes, EncodeScalar(secret)), nil
}

// Commitments returns the commitments these nonces were created with.
func (n *SigningNonces) Commitments() *SigningCommitments {
	return n.commitments
}

// Zeroize overwrites the secret nonces.
func (n *SigningNonces) Zeroize() {
	n.hiding.Zero()
	n.binding.Zero()
}

func (c *SigningCommitments) Equal(other *SigningCommitments) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Hiding.Equal(other.Hiding) && c.Binding.Equal(other.Binding)
}

type signingCommitmentsJSON struct {
	Header  Header `json:"header"`
	Hiding  string `json:"hiding"`
	Binding string `json:"binding"`
}

func (c *SigningCommitments) MarshalJSON() ([]byte, error) {
	return json.Marshal(signingCommitmentsJSON{
		Header:  defaultHeader(),
		Hiding:  hex.EncodeToString(EncodeElement(c.Hiding)),
		Binding: hex.EncodeToString(EncodeElement(c.Binding)),
	})
}

func (c *SigningCommitments) UnmarshalJSON(data []byte) error {
	var raw signingCommitmentsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := raw.Header.validate(); err != nil {
		return err
	}
	hiding, err := decodeHexElement(raw.Hiding)
	if err != nil {
		return fmt.Errorf("failed to decode hiding commitment: %w", err)
	}
	binding, err := decodeHexElement(raw.Binding)
	if err != nil {
		return fmt.Errorf("failed to decode binding commitment: %w", err)
	}
	c.Hiding, c.Binding = hiding, binding
	return nil
}
