// Package reconstruct recombines key shares into a signing keypair for
// offline use. Two strategies exist and the caller must name one: they are
// not interchangeable and the wrong one silently yields a different key.
package reconstruct

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/keystore"
)

type Strategy string

const (
	// StrategyMatched interpolates over the curve's scalar field using each
	// share's identifier. It reproduces the FROST group key.
	StrategyMatched Strategy = "matched"
	// StrategyGeneric recombines the raw share bytes with GF(2^8) Shamir and
	// treats the result as an Ed25519 seed. It is only correct for seeds split
	// by SplitGeneric.
	StrategyGeneric Strategy = "generic"
)

var (
	ErrUnknownStrategy = errors.New("unknown reconstruction strategy")
	ErrNotEnoughShares = errors.New("not enough shares")
	ErrDuplicateIndex  = errors.New("duplicate share index")
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyMatched, StrategyGeneric:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrUnknownStrategy, s, StrategyMatched, StrategyGeneric)
	}
}

type Result struct {
	Strategy Strategy
	Keypair  *keystore.Keypair
}

// MatchesGroupKey reports whether the reconstructed public key equals groupKey.
func (r *Result) MatchesGroupKey(groupKey []byte) bool {
	return bytes.Equal(r.Keypair.PublicKey(), groupKey)
}

// Reconstruct recombines at least two shares with the given strategy.
func Reconstruct(strategy Strategy, shares []*keystore.ShareFile) (*Result, error) {
	if len(shares) < 2 {
		return nil, fmt.Errorf("%w: need at least 2, got %d", ErrNotEnoughShares, len(shares))
	}

	var (
		kp  *keystore.Keypair
		err error
	)
	switch strategy {
	case StrategyMatched:
		kp, err = reconstructMatched(shares)
	case StrategyGeneric:
		kp, err = reconstructGeneric(shares)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	if err != nil {
		return nil, err
	}
	return &Result{Strategy: strategy, Keypair: kp}, nil
}

func reconstructMatched(shares []*keystore.ShareFile) (*keystore.Keypair, error) {
	keyPackages := make([]*frost.KeyPackage, len(shares))
	for i, s := range shares {
		keyPackages[i] = s.KeyPackage
	}
	secret, err := frost.Reconstruct(keyPackages)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct: %w", err)
	}
	return keystore.NewKeypair(secret), nil
}

func reconstructGeneric(shares []*keystore.ShareFile) (*keystore.Keypair, error) {
	generic := make([]*keystore.GenericShareFile, len(shares))
	for i, s := range shares {
		g, err := keystore.GenericShareFromFrost(s)
		if err != nil {
			return nil, err
		}
		generic[i] = g
	}
	result, err := ReconstructGeneric(generic)
	if err != nil {
		return nil, err
	}
	return result.Keypair, nil
}
