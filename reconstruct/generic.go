package reconstruct

import (
	"crypto/ed25519"
	"fmt"

	"github.com/corvus-ch/shamir"
	"lukechampine.com/frand"

	"github.com/lidofinance/frostsig/keystore"
)

// NewSeed returns a fresh random Ed25519 seed for SplitGeneric.
func NewSeed() []byte {
	return frand.Bytes(ed25519.SeedSize)
}

// SplitGeneric shares an Ed25519 seed byte-wise over GF(2^8) so that any
// threshold of the returned shares recombine to it with ReconstructGeneric.
func SplitGeneric(seed []byte, totalShares, threshold int) ([]*keystore.GenericShareFile, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must have %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	if threshold < 2 {
		return nil, fmt.Errorf("threshold must be at least 2, got %d", threshold)
	}
	if totalShares < threshold {
		return nil, fmt.Errorf("total shares (%d) must not be less than threshold (%d)", totalShares, threshold)
	}

	parts, err := shamir.Split(seed, totalShares, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split seed: %w", err)
	}
	shares := make([]*keystore.GenericShareFile, 0, len(parts))
	for index, value := range parts {
		shares = append(shares, keystore.NewGenericShareFile(index, value))
	}
	return shares, nil
}

// ReconstructGeneric recombines generic shares into the seed they were split
// from and derives the Ed25519 keypair of that seed.
func ReconstructGeneric(shares []*keystore.GenericShareFile) (*Result, error) {
	seed, err := combineGeneric(shares)
	if err != nil {
		return nil, err
	}
	kp, err := keystore.NewSeedKeypair(seed)
	if err != nil {
		return nil, fmt.Errorf("recovered secret is not a seed: %w", err)
	}
	return &Result{Strategy: StrategyGeneric, Keypair: kp}, nil
}

func combineGeneric(shares []*keystore.GenericShareFile) ([]byte, error) {
	if len(shares) < 2 {
		return nil, fmt.Errorf("%w: need at least 2, got %d", ErrNotEnoughShares, len(shares))
	}
	parts := make(map[byte][]byte, len(shares))
	for _, s := range shares {
		value, err := s.Value()
		if err != nil {
			return nil, err
		}
		if _, ok := parts[s.Index]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateIndex, s.Index)
		}
		parts[s.Index] = value
	}
	secret, err := shamir.Combine(parts)
	if err != nil {
		return nil, fmt.Errorf("failed to combine shares: %w", err)
	}
	return secret, nil
}
