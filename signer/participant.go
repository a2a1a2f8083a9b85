// Package signer holds one participant's key share and serves the two FROST
// rounds for it. Nonces live in memory only and are consumed by the first
// signing request for their message.
package signer

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/frost"
)

var (
	ErrNonceNotFound = errors.New("nonce not found")
	ErrEmptyMessage  = errors.New("message is empty")
)

type Service interface {
	RequestCommitment(message []byte) (*Commitment, error)
	RequestSignatureShare(pkg *frost.SigningPackage) (*frost.SignatureShare, error)
	Identity() *Identity
	PendingNonces() int
}

// Commitment is the round one answer: who we are and what we committed to.
type Commitment struct {
	ParticipantID frost.Identifier
	Commitments   *frost.SigningCommitments
}

type Identity struct {
	ParticipantID  frost.Identifier
	VerifyingShare []byte
	VerifyingKey   []byte
}

type Participant struct {
	keyPackage *frost.KeyPackage
	logger     common.Logger
	rand       io.Reader

	mu     sync.Mutex
	nonces map[string]*frost.SigningNonces
}

func NewParticipant(keyPackage *frost.KeyPackage, logger common.Logger) *Participant {
	return &Participant{
		keyPackage: keyPackage,
		logger:     logger,
		nonces:     make(map[string]*frost.SigningNonces),
	}
}

// WithRandom replaces the nonce randomness source.
func (p *Participant) WithRandom(r io.Reader) *Participant {
	p.rand = r
	return p
}

func nonceKey(message []byte) string {
	return hex.EncodeToString(message)
}

// RequestCommitment returns the commitment reserved for message, creating it
// on first call. Repeated calls for the same message return the same value.
func (p *Participant) RequestCommitment(message []byte) (*Commitment, error) {
	if len(message) == 0 {
		return nil, ErrEmptyMessage
	}
	key := nonceKey(message)

	if existing := p.lookup(key); existing != nil {
		return p.commitment(existing), nil
	}

	nonces, _, err := frost.Commit(p.keyPackage.SigningShare, p.rand)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonces: %w", err)
	}

	p.mu.Lock()
	if existing, ok := p.nonces[key]; ok {
		p.mu.Unlock()
		nonces.Zeroize()
		return p.commitment(existing), nil
	}
	p.nonces[key] = nonces
	pending := len(p.nonces)
	p.mu.Unlock()

	p.logger.Log("reserved nonce for message %s (%d pending)", shorten(key), pending)
	return p.commitment(nonces), nil
}

// RequestSignatureShare consumes the nonce reserved for the package's message
// and signs. The nonce is gone after this call whatever its outcome.
func (p *Participant) RequestSignatureShare(pkg *frost.SigningPackage) (*frost.SignatureShare, error) {
	key := nonceKey(pkg.Message)

	p.mu.Lock()
	nonces, ok := p.nonces[key]
	delete(p.nonces, key)
	p.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w for message %s", ErrNonceNotFound, shorten(key))
	}
	defer nonces.Zeroize()

	share, err := frost.Sign(pkg, nonces, p.keyPackage)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	p.logger.Log("signed message %s with %d signers", shorten(key), len(pkg.Commitments))
	return share, nil
}

func (p *Participant) Identity() *Identity {
	return &Identity{
		ParticipantID:  p.keyPackage.Identifier,
		VerifyingShare: frost.EncodeElement(p.keyPackage.VerifyingShare),
		VerifyingKey:   p.keyPackage.VerifyingKeyBytes(),
	}
}

func (p *Participant) PendingNonces() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.nonces)
}

func (p *Participant) lookup(key string) *frost.SigningNonces {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nonces[key]
}

func (p *Participant) commitment(nonces *frost.SigningNonces) *Commitment {
	return &Commitment{
		ParticipantID: p.keyPackage.Identifier,
		Commitments:   nonces.Commitments(),
	}
}

func shorten(key string) string {
	if len(key) > 16 {
		return key[:16] + "..."
	}
	return key
}
