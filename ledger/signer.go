package ledger

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/corestario/kyber"
	"github.com/gagliardetto/solana-go"

	"github.com/lidofinance/frostsig/coordinator"
	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/keystore"
)

// MessageSigner produces an Ed25519 signature over a transaction message for
// the account it controls.
type MessageSigner interface {
	PublicKey() solana.PublicKey
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}

type Coordinator interface {
	Sign(ctx context.Context, message []byte) (*coordinator.Result, error)
}

// ThresholdSigner signs through a coordinator run; no private key is ever
// assembled.
type ThresholdSigner struct {
	coordinator Coordinator
	publicKey   solana.PublicKey
}

func NewThresholdSigner(c Coordinator, groupKey []byte) *ThresholdSigner {
	return &ThresholdSigner{
		coordinator: c,
		publicKey:   solana.PublicKeyFromBytes(groupKey),
	}
}

func (s *ThresholdSigner) PublicKey() solana.PublicKey {
	return s.publicKey
}

func (s *ThresholdSigner) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	result, err := s.coordinator.Sign(ctx, message)
	if err != nil {
		return nil, err
	}
	return result.Signature, nil
}

// KeypairSigner signs locally with a reconstructed key: a raw scalar from
// matched reconstruction or an Ed25519 seed from generic reconstruction.
type KeypairSigner struct {
	secret     kyber.Scalar
	privateKey ed25519.PrivateKey
	publicKey  solana.PublicKey
}

func NewKeypairSigner(kp *keystore.Keypair) (*KeypairSigner, error) {
	if kp.IsSeed() {
		return &KeypairSigner{
			privateKey: kp.PrivateKey(),
			publicKey:  solana.PublicKeyFromBytes(kp.PublicKey()),
		}, nil
	}
	secret, err := kp.Scalar()
	if err != nil {
		return nil, fmt.Errorf("invalid keypair secret: %w", err)
	}
	derived := frost.PublicKeyFromScalar(secret)
	if !bytes.Equal(derived, kp.PublicKey()) {
		return nil, fmt.Errorf("keypair public key does not match its secret")
	}
	return &KeypairSigner{
		secret:    secret,
		publicKey: solana.PublicKeyFromBytes(derived),
	}, nil
}

func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.publicKey
}

func (s *KeypairSigner) SignMessage(_ context.Context, message []byte) ([]byte, error) {
	if s.privateKey != nil {
		return ed25519.Sign(s.privateKey, message), nil
	}
	return frost.SignWithScalar(s.secret, message, nil)
}
