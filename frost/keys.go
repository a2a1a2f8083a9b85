package frost

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/corestario/kyber"
	"github.com/corestario/kyber/share"
)

const (
	headerVersion     = 0
	headerCiphersuite = ContextString
)

var (
	ErrInvalidHeader         = errors.New("unsupported serialization header")
	ErrInvalidKeyPackage     = errors.New("invalid key package")
	ErrInconsistentGroupKeys = errors.New("key packages belong to different groups")
	ErrNotEnoughShares       = errors.New("not enough shares to reconstruct")
	ErrDuplicateIdentifier   = errors.New("duplicate identifier")
)

// Header tags every serialized object with its ciphersuite.
type Header struct {
	Version     uint8  `json:"version"`
	Ciphersuite string `json:"ciphersuite"`
}

func defaultHeader() Header {
	return Header{Version: headerVersion, Ciphersuite: headerCiphersuite}
}

func (h Header) validate() error {
	if h.Version != headerVersion || h.Ciphersuite != headerCiphersuite {
		return fmt.Errorf("%w: version %d, ciphersuite %q", ErrInvalidHeader, h.Version, h.Ciphersuite)
	}
	return nil
}

// KeyPackage is everything a single participant needs to sign.
type KeyPackage struct {
	Identifier     Identifier
	SigningShare   kyber.Scalar
	VerifyingShare kyber.Point
	VerifyingKey   kyber.Point
	MinSigners     uint16
}

type keyPackageJSON struct {
	Header         Header     `json:"header"`
	Identifier     Identifier `json:"identifier"`
	SigningShare   string     `json:"signing_share"`
	VerifyingShare string     `json:"verifying_share"`
	VerifyingKey   string     `json:"verifying_key"`
	MinSigners     uint16     `json:"min_signers"`
}

func (k *KeyPackage) MarshalJSON() ([]byte, error) {
	return json.Marshal(keyPackageJSON{
		Header:         defaultHeader(),
		Identifier:     k.Identifier,
		SigningShare:   hex.EncodeToString(EncodeScalar(k.SigningShare)),
		VerifyingShare: hex.EncodeToString(EncodeElement(k.VerifyingShare)),
		VerifyingKey:   hex.EncodeToString(EncodeElement(k.VerifyingKey)),
		MinSigners:     k.MinSigners,
	})
}

func (k *KeyPackage) UnmarshalJSON(data []byte) error {
	var raw keyPackageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := raw.Header.validate(); err != nil {
		return err
	}
	signingShare, err := decodeHexScalar(raw.SigningShare)
	if err != nil {
		return fmt.Errorf("failed to decode signing share: %w", err)
	}
	verifyingShare, err := decodeHexElement(raw.VerifyingShare)
	if err != nil {
		return fmt.Errorf("failed to decode verifying share: %w", err)
	}
	verifyingKey, err := decodeHexElement(raw.VerifyingKey)
	if err != nil {
		return fmt.Errorf("failed to decode verifying key: %w", err)
	}
	*k = KeyPackage{
		Identifier:     raw.Identifier,
		SigningShare:   signingShare,
		VerifyingShare: verifyingShare,
		VerifyingKey:   verifyingKey,
		MinSigners:     raw.MinSigners,
	}
	return k.Validate()
}

// Validate checks that the package is internally consistent.
func (k *KeyPackage) Validate() error {
	if k.Identifier == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidKeyPackage, ErrInvalidIdentifier)
	}
	if k.MinSigners < 2 {
		return fmt.Errorf("%w: min_signers must be at least 2", ErrInvalidKeyPackage)
	}
	if !newPoint().Mul(k.SigningShare, nil).Equal(k.VerifyingShare) {
		return fmt.Errorf("%w: verifying share does not match signing share", ErrInvalidKeyPackage)
	}
	return nil
}

// VerifyingKeyBytes returns the encoded group public key.
func (k *KeyPackage) VerifyingKeyBytes() []byte {
	return EncodeElement(k.VerifyingKey)
}

// PublicKeyPackage holds the group key and every participant's verifying share.
type PublicKeyPackage struct {
	VerifyingShares map[Identifier]kyber.Point
	VerifyingKey    kyber.Point
}

type publicKeyPackageJSON struct {
	Header          Header                `json:"header"`
	VerifyingShares map[Identifier]string `json:"verifying_shares"`
	VerifyingKey    string                `json:"verifying_key"`
}

func (p *PublicKeyPackage) MarshalJSON() ([]byte, error) {
	shares := make(map[Identifier]string, len(p.VerifyingShares))
	for id, vs := range p.VerifyingShares {
		shares[id] = hex.EncodeToString(EncodeElement(vs))
	}
	return json.Marshal(publicKeyPackageJSON{
		Header:          defaultHeader(),
		VerifyingShares: shares,
		VerifyingKey:    hex.EncodeToString(EncodeElement(p.VerifyingKey)),
	})
}

func (p *PublicKeyPackage) UnmarshalJSON(data []byte) error {
	var raw publicKeyPackageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := raw.Header.validate(); err != nil {
		return err
	}
	verifyingKey, err := decodeHexElement(raw.VerifyingKey)
	if err != nil {
		return fmt.Errorf("failed to decode verifying key: %w", err)
	}
	shares := make(map[Identifier]kyber.Point, len(raw.VerifyingShares))
	for id, vs := range raw.VerifyingShares {
		point, err := decodeHexElement(vs)
		if err != nil {
			return fmt.Errorf("failed to decode verifying share %s: %w", id, err)
		}
		shares[id] = point
	}
	p.VerifyingKey = verifyingKey
	p.VerifyingShares = shares
	return nil
}

// VerifyingKeyBytes returns the encoded group public key.
func (p *PublicKeyPackage) VerifyingKeyBytes() []byte {
	return EncodeElement(p.VerifyingKey)
}

// GenerateWithDealer runs trusted-dealer key generation: a random secret is
// split with a degree minSigners-1 polynomial and every share is checked
// against the public commitment before being handed out.
func GenerateWithDealer(maxSigners, minSigners uint16, rand io.Reader) (map[Identifier]*KeyPackage, *PublicKeyPackage, error) {
	if minSigners < 2 {
		return nil, nil, fmt.Errorf("min_signers must be at least 2, got %d", minSigners)
	}
	if maxSigners < minSigners {
		return nil, nil, fmt.Errorf("max_signers (%d) must not be less than min_signers (%d)", maxSigners, minSigners)
	}
	stream := randomStream(rand)
	secret := newScalar().Pick(stream)
	priPoly := share.NewPriPoly(suite, int(minSigners), secret, stream)
	pubPoly := priPoly.Commit(nil)
	verifyingKey := pubPoly.Commit()

	keyPackages := make(map[Identifier]*KeyPackage, maxSigners)
	pubKeys := &PublicKeyPackage{
		VerifyingShares: make(map[Identifier]kyber.Point, maxSigners),
		VerifyingKey:    verifyingKey,
	}
	for _, s := range priPoly.Shares(int(maxSigners)) {
		if !pubPoly.Check(s) {
			return nil, nil, fmt.Errorf("share %d does not match the polynomial commitment", s.I+1)
		}
		id := Identifier(s.I + 1)
		verifyingShare := newPoint().Mul(s.V, nil)
		keyPackages[id] = &KeyPackage{
			Identifier:     id,
			SigningShare:   s.V,
			VerifyingShare: verifyingShare,
			VerifyingKey:   verifyingKey,
			MinSigners:     minSigners,
		}
		pubKeys.VerifyingShares[id] = verifyingShare
	}
	return keyPackages, pubKeys, nil
}

// Reconstruct interpolates the group secret from at least MinSigners key
// packages. The result satisfies secret·B == VerifyingKey.
func Reconstruct(keyPackages []*KeyPackage) (kyber.Scalar, error) {
	if len(keyPackages) == 0 {
		return nil, fmt.Errorf("%w: no key packages", ErrNotEnoughShares)
	}
	first := keyPackages[0]
	if len(keyPackages) < int(first.MinSigners) {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughShares, len(keyPackages), first.MinSigners)
	}
	seen := make(map[Identifier]struct{}, len(keyPackages))
	shares := make([]*share.PriShare, 0, len(keyPackages))
	maxID := 0
	for _, kp := range keyPackages {
		if !kp.VerifyingKey.Equal(first.VerifyingKey) {
			return nil, ErrInconsistentGroupKeys
		}
		if _, ok := seen[kp.Identifier]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateIdentifier, kp.Identifier)
		}
		seen[kp.Identifier] = struct{}{}
		shares = append(shares, &share.PriShare{I: int(kp.Identifier) - 1, V: kp.SigningShare})
		if int(kp.Identifier) > maxID {
			maxID = int(kp.Identifier)
		}
	}
	secret, err := share.RecoverSecret(suite, shares, len(shares), maxID)
	if err != nil {
		return nil, fmt.Errorf("failed to recover secret: %w", err)
	}
	if !newPoint().Mul(secret, nil).Equal(first.VerifyingKey) {
		return nil, fmt.Errorf("%w: recovered secret does not match verifying key", ErrInvalidKeyPackage)
	}
	return secret, nil
}

// SortedIdentifiers returns the map's keys in ascending order.
func SortedIdentifiers[V any](m map[Identifier]V) []Identifier {
	ids := make([]Identifier, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func decodeHexScalar(s string) (kyber.Scalar, error) {
	bz, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScalar, err)
	}
	return DecodeScalar(bz)
}

func decodeHexElement(s string) (kyber.Point, error) {
	bz, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidElement, err)
	}
	return DecodeElement(bz)
}
