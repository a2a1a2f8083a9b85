package coordinator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/coordinator"
	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/signer"
)

func TestLocalClientRunsFullProtocol(t *testing.T) {
	req := require.New(t)

	keyPackages, pubKeys, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)

	participants := map[string]signer.Service{
		coordinator.LocalEndpoint(2): signer.NewParticipant(keyPackages[2], common.NopLogger()),
		coordinator.LocalEndpoint(3): signer.NewParticipant(keyPackages[3], common.NopLogger()),
	}
	c, err := coordinator.New(coordinator.Config{
		Signers:        []string{coordinator.LocalEndpoint(2), coordinator.LocalEndpoint(3)},
		VerifyGroupKey: true,
	}, coordinator.NewLocalClient(participants), pubKeys, common.NopLogger())
	req.NoError(err)

	msg := []byte("local signing")
	result, err := c.Sign(context.Background(), msg)
	req.NoError(err)
	req.True(frost.Verify(pubKeys.VerifyingKeyBytes(), msg, result.Signature))
	req.Equal([]frost.Identifier{2, 3}, result.Signers)
	for _, p := range participants {
		req.Zero(p.PendingNonces())
	}
}

func TestLocalClientUnknownEndpoint(t *testing.T) {
	req := require.New(t)

	client := coordinator.NewLocalClient(map[string]signer.Service{})
	_, err := client.RequestCommitment(context.Background(), "local://9", []byte("m"))
	var signerErr *coordinator.SignerError
	req.True(errors.As(err, &signerErr))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Identity(ctx, "local://9")
	req.ErrorIs(err, context.Canceled)
}

func TestEmptyMessageIsRejectedBeforeAnyCall(t *testing.T) {
	req := require.New(t)

	keyPackages, pubKeys, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)
	p1 := signer.NewParticipant(keyPackages[1], common.NopLogger())
	participants := map[string]signer.Service{
		coordinator.LocalEndpoint(1): p1,
		coordinator.LocalEndpoint(2): signer.NewParticipant(keyPackages[2], common.NopLogger()),
	}
	client := coordinator.NewLocalClient(participants)
	c, err := coordinator.New(coordinator.Config{
		Signers: []string{coordinator.LocalEndpoint(1), coordinator.LocalEndpoint(2)},
	}, client, pubKeys, common.NopLogger())
	req.NoError(err)

	_, err = c.Sign(context.Background(), nil)
	req.ErrorIs(err, signer.ErrEmptyMessage)

	_, err = client.RequestCommitment(context.Background(), coordinator.LocalEndpoint(1), []byte{})
	req.ErrorIs(err, signer.ErrEmptyMessage)
	req.Zero(p1.PendingNonces())
}

func TestDuplicateIdentifierLeavesReservationForRetry(t *testing.T) {
	req := require.New(t)

	keyPackages, pubKeys, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)
	p1 := signer.NewParticipant(keyPackages[1], common.NopLogger())
	p2 := signer.NewParticipant(keyPackages[2], common.NopLogger())
	client := coordinator.NewLocalClient(map[string]signer.Service{
		"local://a": p1,
		"local://b": p1,
		"local://c": p2,
	})

	msg := []byte("retry after abort")
	broken, err := coordinator.New(coordinator.Config{Signers: []string{"local://a", "local://b"}},
		client, pubKeys, common.NopLogger())
	req.NoError(err)
	_, err = broken.Sign(context.Background(), msg)
	req.ErrorIs(err, coordinator.ErrDuplicateIdentifier)
	req.Equal(1, p1.PendingNonces())

	fixed, err := coordinator.New(coordinator.Config{Signers: []string{"local://a", "local://c"}},
		client, pubKeys, common.NopLogger())
	req.NoError(err)
	result, err := fixed.Sign(context.Background(), msg)
	req.NoError(err)
	req.True(frost.Verify(pubKeys.VerifyingKeyBytes(), msg, result.Signature))
	req.Zero(p1.PendingNonces())
	req.Zero(p2.PendingNonces())
}
