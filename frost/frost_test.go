package frost_test

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/corestario/kyber"
	"github.com/stretchr/testify/require"

	"github.com/lidofinance/frostsig/frost"
)

func signWith(t *testing.T, keyPackages map[frost.Identifier]*frost.KeyPackage, pubKeys *frost.PublicKeyPackage,
	signers []frost.Identifier, msg []byte) (*frost.Signature, error) {
	req := require.New(t)

	nonces := make(map[frost.Identifier]*frost.SigningNonces)
	commitments := make(map[frost.Identifier]*frost.SigningCommitments)
	for _, id := range signers {
		n, c, err := frost.Commit(keyPackages[id].SigningShare, nil)
		req.NoError(err)
		nonces[id], commitments[id] = n, c
	}
	pkg := frost.NewSigningPackage(commitments, msg)

	shares := make(map[frost.Identifier]*frost.SignatureShare)
	for _, id := range signers {
		share, err := frost.Sign(pkg, nonces[id], keyPackages[id])
		req.NoError(err)
		shares[id] = share
	}
	return frost.Aggregate(pkg, shares, pubKeys)
}

func TestEveryPairProducesValidSignature(t *testing.T) {
	req := require.New(t)

	keyPackages, pubKeys, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)
	req.Len(keyPackages, 3)

	msg := []byte{0xde, 0xad, 0xbe, 0xef}
	pairs := [][]frost.Identifier{{1, 2}, {1, 3}, {2, 3}}
	for _, pair := range pairs {
		sig, err := signWith(t, keyPackages, pubKeys, pair, msg)
		req.NoError(err, "pair %v", pair)
		req.True(ed25519.Verify(pubKeys.VerifyingKeyBytes(), msg, sig.Serialize()), "pair %v", pair)
		req.True(frost.Verify(pubKeys.VerifyingKeyBytes(), msg, sig.Serialize()))
	}

	sig, err := signWith(t, keyPackages, pubKeys, []frost.Identifier{1, 2, 3}, msg)
	req.NoError(err)
	req.True(frost.Verify(pubKeys.VerifyingKeyBytes(), msg, sig.Serialize()))
	req.False(frost.Verify(pubKeys.VerifyingKeyBytes(), []byte("other"), sig.Serialize()))
}

func TestSignRejectsForeignCommitments(t *testing.T) {
	req := require.New(t)

	keyPackages, _, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)

	nonces1, _, err := frost.Commit(keyPackages[1].SigningShare, nil)
	req.NoError(err)
	_, other, err := frost.Commit(keyPackages[1].SigningShare, nil)
	req.NoError(err)
	_, c2, err := frost.Commit(keyPackages[2].SigningShare, nil)
	req.NoError(err)

	pkg := frost.NewSigningPackage(map[frost.Identifier]*frost.SigningCommitments{1: other, 2: c2}, []byte("msg"))
	_, err = frost.Sign(pkg, nonces1, keyPackages[1])
	req.ErrorIs(err, frost.ErrIncorrectCommitment)

	pkg = frost.NewSigningPackage(map[frost.Identifier]*frost.SigningCommitments{2: c2, 3: other}, []byte("msg"))
	_, err = frost.Sign(pkg, nonces1, keyPackages[1])
	req.ErrorIs(err, frost.ErrMissingCommitment)

	pkg = frost.NewSigningPackage(map[frost.Identifier]*frost.SigningCommitments{1: nonces1.Commitments()}, []byte("msg"))
	_, err = frost.Sign(pkg, nonces1, keyPackages[1])
	req.ErrorIs(err, frost.ErrIncorrectNumberOfCommitments)
}

func TestAggregateNamesCulprit(t *testing.T) {
	req := require.New(t)

	keyPackages, pubKeys, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)

	msg := []byte("transfer")
	signers := []frost.Identifier{1, 3}
	nonces := make(map[frost.Identifier]*frost.SigningNonces)
	commitments := make(map[frost.Identifier]*frost.SigningCommitments)
	for _, id := range signers {
		n, c, err := frost.Commit(keyPackages[id].SigningShare, nil)
		req.NoError(err)
		nonces[id], commitments[id] = n, c
	}
	pkg := frost.NewSigningPackage(commitments, msg)
	shares := make(map[frost.Identifier]*frost.SignatureShare)
	for _, id := range signers {
		shares[id], err = frost.Sign(pkg, nonces[id], keyPackages[id])
		req.NoError(err)
	}

	one := keyPackages[1].SigningShare.Clone().One()
	shares[3].Share = shares[3].Share.Clone().Add(shares[3].Share, one)

	_, err = frost.Aggregate(pkg, shares, pubKeys)
	req.ErrorIs(err, frost.ErrInvalidShare)
	var shareErr *frost.InvalidShareError
	req.True(errors.As(err, &shareErr))
	req.Equal([]frost.Identifier{3}, shareErr.Culprits)

	delete(shares, 3)
	_, err = frost.Aggregate(pkg, shares, pubKeys)
	req.ErrorIs(err, frost.ErrIncorrectNumberOfCommitments)
}

func TestReconstructFromEveryPair(t *testing.T) {
	req := require.New(t)

	keyPackages, pubKeys, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)

	var secrets []kyber.Scalar
	for _, pair := range [][]frost.Identifier{{1, 2}, {1, 3}, {2, 3}} {
		secret, err := frost.Reconstruct([]*frost.KeyPackage{keyPackages[pair[0]], keyPackages[pair[1]]})
		req.NoError(err)
		req.Equal(pubKeys.VerifyingKeyBytes(), frost.PublicKeyFromScalar(secret))
		secrets = append(secrets, secret)
	}
	req.True(secrets[0].Equal(secrets[1]))
	req.True(secrets[1].Equal(secrets[2]))

	_, err = frost.Reconstruct([]*frost.KeyPackage{keyPackages[1]})
	req.ErrorIs(err, frost.ErrNotEnoughShares)

	_, err = frost.Reconstruct([]*frost.KeyPackage{keyPackages[2], keyPackages[2]})
	req.ErrorIs(err, frost.ErrDuplicateIdentifier)

	otherGroup, _, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)
	_, err = frost.Reconstruct([]*frost.KeyPackage{keyPackages[1], otherGroup[2]})
	req.ErrorIs(err, frost.ErrInconsistentGroupKeys)
}

func TestSignWithScalar(t *testing.T) {
	req := require.New(t)

	keyPackages, pubKeys, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)
	secret, err := frost.Reconstruct([]*frost.KeyPackage{keyPackages[1], keyPackages[3]})
	req.NoError(err)

	msg := []byte("solana message bytes")
	sig, err := frost.SignWithScalar(secret, msg, nil)
	req.NoError(err)
	req.Len(sig, frost.SignatureSize)
	req.True(ed25519.Verify(pubKeys.VerifyingKeyBytes(), msg, sig))
}

func TestGenerateWithDealerRejectsBadParameters(t *testing.T) {
	req := require.New(t)

	_, _, err := frost.GenerateWithDealer(3, 1, nil)
	req.Error(err)
	_, _, err = frost.GenerateWithDealer(2, 3, nil)
	req.Error(err)
}

func TestIdentifierWireFormat(t *testing.T) {
	req := require.New(t)

	req.Equal("0100000000000000000000000000000000000000000000000000000000000000", frost.Identifier(1).String())
	req.Equal("0201000000000000000000000000000000000000000000000000000000000000", frost.Identifier(258).String())

	for _, v := range []frost.Identifier{1, 2, 255, 256, 65535} {
		parsed, err := frost.ParseIdentifier(v.String())
		req.NoError(err)
		req.Equal(v, parsed)
	}

	parsed, err := frost.ParseIdentifier("0300")
	req.NoError(err)
	req.Equal(frost.Identifier(3), parsed)

	for _, bad := range []string{
		"",
		"01",
		"0000",
		"000000000000000000000000000000000000000000000000000000000000000000",
		"0100010000000000000000000000000000000000000000000000000000000000",
		"zz00",
	} {
		_, err := frost.ParseIdentifier(bad)
		req.ErrorIs(err, frost.ErrInvalidIdentifier, fmt.Sprintf("input %q", bad))
	}
}

func TestKeyPackageJSON(t *testing.T) {
	req := require.New(t)

	keyPackages, pubKeys, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)

	data, err := json.Marshal(keyPackages[2])
	req.NoError(err)
	var raw map[string]interface{}
	req.NoError(json.Unmarshal(data, &raw))
	req.Equal(frost.Identifier(2).String(), raw["identifier"])
	req.Equal(frost.ContextString, raw["header"].(map[string]interface{})["ciphersuite"])

	var decoded frost.KeyPackage
	req.NoError(json.Unmarshal(data, &decoded))
	req.Equal(frost.Identifier(2), decoded.Identifier)
	req.True(decoded.SigningShare.Equal(keyPackages[2].SigningShare))
	req.Equal(pubKeys.VerifyingKeyBytes(), decoded.VerifyingKeyBytes())

	data, err = json.Marshal(pubKeys)
	req.NoError(err)
	var decodedPub frost.PublicKeyPackage
	req.NoError(json.Unmarshal(data, &decodedPub))
	req.Len(decodedPub.VerifyingShares, 3)
	req.True(decodedPub.VerifyingShares[3].Equal(keyPackages[3].VerifyingShare))

	tampered := keyPackages[2]
	tampered.VerifyingShare = keyPackages[1].VerifyingShare
	data, err = json.Marshal(tampered)
	req.NoError(err)
	req.ErrorIs(json.Unmarshal(data, &decoded), frost.ErrInvalidKeyPackage)

	req.ErrorIs(json.Unmarshal([]byte(`{"header":{"version":0,"ciphersuite":"FROST-secp256k1-SHA256-v1"}}`), &decoded),
		frost.ErrInvalidHeader)
}

func TestSigningPackageJSON(t *testing.T) {
	req := require.New(t)

	keyPackages, _, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)
	_, c1, err := frost.Commit(keyPackages[1].SigningShare, nil)
	req.NoError(err)
	_, c2, err := frost.Commit(keyPackages[2].SigningShare, nil)
	req.NoError(err)

	pkg := frost.NewSigningPackage(map[frost.Identifier]*frost.SigningCommitments{1: c1, 2: c2}, []byte{0xde, 0xad})
	data, err := json.Marshal(pkg)
	req.NoError(err)
	req.Contains(string(data), `"message":"dead"`)
	req.Contains(string(data), frost.Identifier(2).String())

	var decoded frost.SigningPackage
	req.NoError(json.Unmarshal(data, &decoded))
	req.Equal(pkg.Message, decoded.Message)
	req.True(decoded.Commitments[1].Equal(c1))
	req.True(decoded.Commitments[2].Equal(c2))
}

func TestDecodeScalarRejectsNonCanonical(t *testing.T) {
	req := require.New(t)

	bz := make([]byte, frost.ScalarSize)
	for i := range bz {
		bz[i] = 0xff
	}
	_, err := frost.DecodeScalar(bz)
	req.ErrorIs(err, frost.ErrInvalidScalar)

	_, err = frost.DecodeScalar(bz[:31])
	req.ErrorIs(err, frost.ErrInvalidScalar)

	_, err = frost.DecodeElement(make([]byte, frost.ElementSize+1))
	req.ErrorIs(err, frost.ErrInvalidElement)
}
