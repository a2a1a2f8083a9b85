package signer_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/signer"
)

func newGroup(t *testing.T) (map[frost.Identifier]*frost.KeyPackage, *frost.PublicKeyPackage) {
	keyPackages, pubKeys, err := frost.GenerateWithDealer(3, 2, nil)
	require.NoError(t, err)
	return keyPackages, pubKeys
}

func TestRequestCommitmentIsIdempotent(t *testing.T) {
	req := require.New(t)

	keyPackages, _ := newGroup(t)
	p := signer.NewParticipant(keyPackages[1], common.NopLogger())

	msg := []byte{0xde, 0xad, 0xbe, 0xef}
	first, err := p.RequestCommitment(msg)
	req.NoError(err)
	second, err := p.RequestCommitment(msg)
	req.NoError(err)

	req.Equal(frost.Identifier(1), first.ParticipantID)
	req.True(first.Commitments.Equal(second.Commitments))
	req.Equal(1, p.PendingNonces())

	other, err := p.RequestCommitment([]byte("another message"))
	req.NoError(err)
	req.False(first.Commitments.Equal(other.Commitments))
	req.Equal(2, p.PendingNonces())
}

func TestSignatureShareConsumesNonce(t *testing.T) {
	req := require.New(t)

	keyPackages, pubKeys := newGroup(t)
	p1 := signer.NewParticipant(keyPackages[1], common.NopLogger())
	p2 := signer.NewParticipant(keyPackages[2], common.NopLogger())

	msg := []byte("pay 1 SOL")
	c1, err := p1.RequestCommitment(msg)
	req.NoError(err)
	c2, err := p2.RequestCommitment(msg)
	req.NoError(err)

	pkg := frost.NewSigningPackage(map[frost.Identifier]*frost.SigningCommitments{
		c1.ParticipantID: c1.Commitments,
		c2.ParticipantID: c2.Commitments,
	}, msg)

	s1, err := p1.RequestSignatureShare(pkg)
	req.NoError(err)
	s2, err := p2.RequestSignatureShare(pkg)
	req.NoError(err)
	req.Zero(p1.PendingNonces())

	sig, err := frost.Aggregate(pkg, map[frost.Identifier]*frost.SignatureShare{1: s1, 2: s2}, pubKeys)
	req.NoError(err)
	req.True(frost.Verify(pubKeys.VerifyingKeyBytes(), msg, sig.Serialize()))

	_, err = p1.RequestSignatureShare(pkg)
	req.ErrorIs(err, signer.ErrNonceNotFound)
}

func TestSignatureShareWithoutCommitment(t *testing.T) {
	req := require.New(t)

	keyPackages, _ := newGroup(t)
	p := signer.NewParticipant(keyPackages[1], common.NopLogger())

	_, err := p.RequestSignatureShare(frost.NewSigningPackage(nil, []byte("never committed")))
	req.ErrorIs(err, signer.ErrNonceNotFound)
}

func TestAlteredCommitmentIsRejectedAndNonceBurned(t *testing.T) {
	req := require.New(t)

	keyPackages, _ := newGroup(t)
	p1 := signer.NewParticipant(keyPackages[1], common.NopLogger())
	p3 := signer.NewParticipant(keyPackages[3], common.NopLogger())

	msg := []byte("tampered")
	_, err := p1.RequestCommitment(msg)
	req.NoError(err)
	c3, err := p3.RequestCommitment(msg)
	req.NoError(err)

	_, forged, err := frost.Commit(keyPackages[1].SigningShare, nil)
	req.NoError(err)
	pkg := frost.NewSigningPackage(map[frost.Identifier]*frost.SigningCommitments{
		1: forged,
		3: c3.Commitments,
	}, msg)

	_, err = p1.RequestSignatureShare(pkg)
	req.ErrorIs(err, frost.ErrIncorrectCommitment)

	_, err = p1.RequestSignatureShare(pkg)
	req.ErrorIs(err, signer.ErrNonceNotFound)
}

func TestConcurrentSignRequestsUseNonceOnce(t *testing.T) {
	req := require.New(t)

	keyPackages, _ := newGroup(t)
	p1 := signer.NewParticipant(keyPackages[1], common.NopLogger())
	p2 := signer.NewParticipant(keyPackages[2], common.NopLogger())

	msg := []byte("race")
	c1, err := p1.RequestCommitment(msg)
	req.NoError(err)
	c2, err := p2.RequestCommitment(msg)
	req.NoError(err)
	pkg := frost.NewSigningPackage(map[frost.Identifier]*frost.SigningCommitments{
		1: c1.Commitments,
		2: c2.Commitments,
	}, msg)

	const workers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		notFound  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p1.RequestSignatureShare(pkg)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if isNotFound(err) {
				notFound++
			}
		}()
	}
	wg.Wait()

	req.Equal(1, successes)
	req.Equal(workers-1, notFound)
}

func TestConcurrentCommitmentRequestsAgree(t *testing.T) {
	req := require.New(t)

	keyPackages, _ := newGroup(t)
	p := signer.NewParticipant(keyPackages[2], common.NopLogger())

	msg := []byte("same message")
	results := make([]*signer.Commitment, 16)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := p.RequestCommitment(msg)
			if err == nil {
				results[i] = c
			}
		}(i)
	}
	wg.Wait()

	for _, c := range results {
		req.NotNil(c)
		req.True(c.Commitments.Equal(results[0].Commitments))
	}
	req.Equal(1, p.PendingNonces())
}

func TestIdentity(t *testing.T) {
	req := require.New(t)

	keyPackages, pubKeys := newGroup(t)
	id := signer.NewParticipant(keyPackages[3], common.NopLogger()).Identity()

	req.Equal(frost.Identifier(3), id.ParticipantID)
	req.Equal(pubKeys.VerifyingKeyBytes(), id.VerifyingKey)
	req.Equal(frost.EncodeElement(pubKeys.VerifyingShares[3]), id.VerifyingShare)
}

func isNotFound(err error) bool {
	return errors.Is(err, signer.ErrNonceNotFound)
}

func TestRequestCommitmentRejectsEmptyMessage(t *testing.T) {
	req := require.New(t)

	keyPackages, _ := newGroup(t)
	p := signer.NewParticipant(keyPackages[1], common.NopLogger())

	_, err := p.RequestCommitment(nil)
	req.ErrorIs(err, signer.ErrEmptyMessage)
	_, err = p.RequestCommitment([]byte{})
	req.ErrorIs(err, signer.ErrEmptyMessage)
	req.Zero(p.PendingNonces())
}

func TestRequestCommitmentReportsRandomnessFailure(t *testing.T) {
	req := require.New(t)

	keyPackages, _ := newGroup(t)
	readErr := errors.New("entropy source unavailable")
	p := signer.NewParticipant(keyPackages[2], common.NopLogger()).WithRandom(iotest.ErrReader(readErr))

	_, err := p.RequestCommitment([]byte("msg"))
	req.ErrorIs(err, readErr)
	req.Zero(p.PendingNonces())

	seeded := func() *signer.Participant {
		return signer.NewParticipant(keyPackages[2], common.NopLogger()).WithRandom(bytes.NewReader(bytes.Repeat([]byte{7}, 64)))
	}
	first, err := seeded().RequestCommitment([]byte("msg"))
	req.NoError(err)
	second, err := seeded().RequestCommitment([]byte("msg"))
	req.NoError(err)
	req.True(first.Commitments.Equal(second.Commitments))
}
