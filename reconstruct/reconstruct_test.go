package reconstruct_test

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/keystore"
	"github.com/lidofinance/frostsig/reconstruct"
)

func shareFiles(t *testing.T) (map[frost.Identifier]*keystore.ShareFile, *frost.PublicKeyPackage) {
	keyPackages, pubKeys, err := frost.GenerateWithDealer(3, 2, nil)
	require.NoError(t, err)
	files := make(map[frost.Identifier]*keystore.ShareFile)
	for id, kp := range keyPackages {
		files[id] = keystore.NewShareFile(kp)
	}
	return files, pubKeys
}

func TestMatchedStrategyReproducesGroupKey(t *testing.T) {
	req := require.New(t)

	files, pubKeys := shareFiles(t)
	for _, pair := range [][]frost.Identifier{{1, 2}, {1, 3}, {2, 3}} {
		result, err := reconstruct.Reconstruct(reconstruct.StrategyMatched,
			[]*keystore.ShareFile{files[pair[0]], files[pair[1]]})
		req.NoError(err)
		req.Equal(reconstruct.StrategyMatched, result.Strategy)
		req.True(result.MatchesGroupKey(pubKeys.VerifyingKeyBytes()), "pair %v", pair)

		secret, err := result.Keypair.Scalar()
		req.NoError(err)
		msg := []byte("offline transfer")
		sig, err := frost.SignWithScalar(secret, msg, nil)
		req.NoError(err)
		req.True(frost.Verify(pubKeys.VerifyingKeyBytes(), msg, sig))
	}
}

func TestGenericStrategyDoesNotMatchFrostShares(t *testing.T) {
	req := require.New(t)

	files, pubKeys := shareFiles(t)
	result, err := reconstruct.Reconstruct(reconstruct.StrategyGeneric,
		[]*keystore.ShareFile{files[1], files[2]})
	req.NoError(err)
	req.Len(result.Keypair.SecretBytes(), 32)
	req.True(result.Keypair.IsSeed())
	req.False(result.MatchesGroupKey(pubKeys.VerifyingKeyBytes()))
}

func TestReconstructRejectsBadInput(t *testing.T) {
	req := require.New(t)

	files, _ := shareFiles(t)

	_, err := reconstruct.Reconstruct(reconstruct.StrategyMatched, []*keystore.ShareFile{files[1]})
	req.ErrorIs(err, reconstruct.ErrNotEnoughShares)

	_, err = reconstruct.Reconstruct("lagrange", []*keystore.ShareFile{files[1], files[2]})
	req.ErrorIs(err, reconstruct.ErrUnknownStrategy)

	_, err = reconstruct.Reconstruct(reconstruct.StrategyGeneric, []*keystore.ShareFile{files[3], files[3]})
	req.ErrorIs(err, reconstruct.ErrDuplicateIndex)

	_, err = reconstruct.ParseStrategy("auto")
	req.ErrorIs(err, reconstruct.ErrUnknownStrategy)
	s, err := reconstruct.ParseStrategy("generic")
	req.NoError(err)
	req.Equal(reconstruct.StrategyGeneric, s)
}

func TestGenericStrategyRecoversSplitSeed(t *testing.T) {
	req := require.New(t)

	seed := reconstruct.NewSeed()
	expected := ed25519.NewKeyFromSeed(seed)
	shares, err := reconstruct.SplitGeneric(seed, 5, 3)
	req.NoError(err)
	req.Len(shares, 5)

	for _, subset := range [][]int{{0, 1, 2}, {4, 2, 0}, {1, 3, 4}, {0, 1, 2, 3, 4}} {
		picked := make([]*keystore.GenericShareFile, 0, len(subset))
		for _, i := range subset {
			picked = append(picked, shares[i])
		}
		result, err := reconstruct.ReconstructGeneric(picked)
		req.NoError(err)
		req.Equal(reconstruct.StrategyGeneric, result.Strategy)
		req.Equal(seed, result.Keypair.SecretBytes(), "subset %v", subset)
		req.True(result.Keypair.IsSeed())
		req.True(result.MatchesGroupKey(expected.Public().(ed25519.PublicKey)))

		msg := []byte("offline transfer")
		req.True(ed25519.Verify(result.Keypair.PublicKey(), msg, ed25519.Sign(result.Keypair.PrivateKey(), msg)))
	}

	result, err := reconstruct.ReconstructGeneric(shares[:2])
	req.NoError(err)
	req.False(bytes.Equal(seed, result.Keypair.SecretBytes()))

	_, err = reconstruct.SplitGeneric(seed, 2, 3)
	req.Error(err)
	_, err = reconstruct.SplitGeneric(seed[:16], 3, 2)
	req.Error(err)
	_, err = reconstruct.ReconstructGeneric(shares[:1])
	req.ErrorIs(err, reconstruct.ErrNotEnoughShares)
	_, err = reconstruct.ReconstructGeneric([]*keystore.GenericShareFile{shares[0], shares[0]})
	req.ErrorIs(err, reconstruct.ErrDuplicateIndex)
	_, err = reconstruct.ReconstructGeneric([]*keystore.GenericShareFile{
		shares[0], keystore.NewGenericShareFile(0, []byte{1}),
	})
	req.ErrorIs(err, keystore.ErrInvalidGenericShare)
}
