// Package keystore reads and writes the key material used by the signing
// tools: per-participant share files, the group public key file and
// reconstructed keypairs.
package keystore

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corestario/kyber"
	"github.com/mr-tron/base58"

	"github.com/lidofinance/frostsig/frost"
)

const (
	GroupKeyFilename = "group_public_key.json"
	KeypairSize      = 64
)

// ShareFilename returns the conventional file name of a participant's share.
func ShareFilename(id frost.Identifier) string {
	return fmt.Sprintf("s%d.json", id)
}

// ShareFile is the on-disk form of one participant's key share.
type ShareFile struct {
	ParticipantIndex uint16            `json:"participant_index"`
	KeyPackage       *frost.KeyPackage `json:"key_package"`
}

func (f *ShareFile) validate() error {
	if f.KeyPackage == nil {
		return fmt.Errorf("key_package is missing")
	}
	if f.ParticipantIndex != uint16(f.KeyPackage.Identifier) {
		return fmt.Errorf("participant_index %d does not match key package identifier %d",
			f.ParticipantIndex, f.KeyPackage.Identifier)
	}
	return nil
}

func NewShareFile(keyPackage *frost.KeyPackage) *ShareFile {
	return &ShareFile{
		ParticipantIndex: uint16(keyPackage.Identifier),
		KeyPackage:       keyPackage,
	}
}

func decodeShare(data []byte) (*ShareFile, error) {
	var share ShareFile
	if err := json.Unmarshal(data, &share); err != nil {
		return nil, fmt.Errorf("failed to unmarshal share: %w", err)
	}
	if err := share.validate(); err != nil {
		return nil, err
	}
	return &share, nil
}

// LoadShare reads and validates a share file.
func LoadShare(path string) (*ShareFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read share file %s: %w", path, err)
	}
	share, err := decodeShare(data)
	if err != nil {
		return nil, fmt.Errorf("invalid share file %s: %w", path, err)
	}
	return share, nil
}

func SaveShare(path string, share *ShareFile) error {
	return writeJSON(path, share, 0600)
}

// GroupKeyFile is the public key package plus fields derived from the
// verifying key for convenience.
type GroupKeyFile struct {
	*frost.PublicKeyPackage
	AddressBase58 string
	PublicKeyHex  string
}

type groupKeyExtras struct {
	AddressBase58 string `json:"address_base58"`
	PublicKeyHex  string `json:"public_key_hex"`
}

func NewGroupKeyFile(pubKeys *frost.PublicKeyPackage) *GroupKeyFile {
	vk := pubKeys.VerifyingKeyBytes()
	return &GroupKeyFile{
		PublicKeyPackage: pubKeys,
		AddressBase58:    base58.Encode(vk),
		PublicKeyHex:     hex.EncodeToString(vk),
	}
}

func (g *GroupKeyFile) MarshalJSON() ([]byte, error) {
	pkgJSON, err := json.Marshal(g.PublicKeyPackage)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(pkgJSON, &fields); err != nil {
		return nil, err
	}
	extras := NewGroupKeyFile(g.PublicKeyPackage)
	if fields["address_base58"], err = json.Marshal(extras.AddressBase58); err != nil {
		return nil, err
	}
	if fields["public_key_hex"], err = json.Marshal(extras.PublicKeyHex); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (g *GroupKeyFile) UnmarshalJSON(data []byte) error {
	var pubKeys frost.PublicKeyPackage
	if err := json.Unmarshal(data, &pubKeys); err != nil {
		return err
	}
	var extras groupKeyExtras
	if err := json.Unmarshal(data, &extras); err != nil {
		return err
	}
	derived := NewGroupKeyFile(&pubKeys)
	if extras.PublicKeyHex != "" && extras.PublicKeyHex != derived.PublicKeyHex {
		return fmt.Errorf("public_key_hex %s does not match verifying key", extras.PublicKeyHex)
	}
	if extras.AddressBase58 != "" && extras.AddressBase58 != derived.AddressBase58 {
		return fmt.Errorf("address_base58 %s does not match verifying key", extras.AddressBase58)
	}
	*g = *derived
	return nil
}

// LoadGroupKey reads the group public key file.
func LoadGroupKey(path string) (*GroupKeyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read group key file %s: %w", path, err)
	}
	var g GroupKeyFile
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("invalid group key file %s: %w", path, err)
	}
	return &g, nil
}

func SaveGroupKey(path string, pubKeys *frost.PublicKeyPackage) error {
	return writeJSON(path, NewGroupKeyFile(pubKeys), 0644)
}

// Keypair is a 32-byte secret followed by its 32-byte public key. The
// secret is either a raw scalar (matched reconstruction) or an Ed25519 seed
// (generic reconstruction), in which case the file is a standard Solana
// keypair.
type Keypair [KeypairSize]byte

// NewSeedKeypair builds a keypair from a 32-byte Ed25519 seed.
func NewSeedKeypair(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must have %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	var kp Keypair
	copy(kp[:], ed25519.NewKeyFromSeed(seed))
	return &kp, nil
}

// NewKeypair builds a keypair from a secret scalar.
func NewKeypair(secret kyber.Scalar) *Keypair {
	var kp Keypair
	copy(kp[:32], frost.EncodeScalar(secret))
	copy(kp[32:], frost.PublicKeyFromScalar(secret))
	return &kp
}

func (kp *Keypair) SecretBytes() []byte {
	return kp[:32]
}

func (kp *Keypair) PublicKey() []byte {
	return kp[32:]
}

// IsSeed reports whether the public half is derived from the secret half as
// an Ed25519 seed.
func (kp *Keypair) IsSeed() bool {
	priv := ed25519.NewKeyFromSeed(kp.SecretBytes())
	return bytes.Equal(priv.Public().(ed25519.PublicKey), kp.PublicKey())
}

// PrivateKey expands a seed keypair into an Ed25519 private key.
func (kp *Keypair) PrivateKey() ed25519.PrivateKey {
	return ed25519.NewKeyFromSeed(kp.SecretBytes())
}

// Scalar decodes the secret half of a scalar keypair. Seeds are usually not
// reduced scalars, in which case an error is returned.
func (kp *Keypair) Scalar() (kyber.Scalar, error) {
	return frost.DecodeScalar(kp.SecretBytes())
}

// MarshalJSON writes the keypair as an array of 64 integers.
func (kp *Keypair) MarshalJSON() ([]byte, error) {
	ints := make([]int, KeypairSize)
	for i, b := range kp {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

func (kp *Keypair) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	if len(ints) != KeypairSize {
		return fmt.Errorf("keypair must have %d bytes, got %d", KeypairSize, len(ints))
	}
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("keypair byte %d out of range: %d", i, v)
		}
		kp[i] = byte(v)
	}
	return nil
}

func LoadKeypair(path string) (*Keypair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file %s: %w", path, err)
	}
	var kp Keypair
	if err := json.Unmarshal(data, &kp); err != nil {
		return nil, fmt.Errorf("invalid keypair file %s: %w", path, err)
	}
	return &kp, nil
}

func SaveKeypair(path string, kp *Keypair) error {
	return writeJSON(path, kp, 0600)
}

func writeJSON(path string, v interface{}, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
