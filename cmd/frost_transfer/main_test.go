package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/golang/mock/gomock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/keystore"
	"github.com/lidofinance/frostsig/ledger"
	"github.com/lidofinance/frostsig/mocks/ledgerMocks"
)

var recipient = solana.MustPublicKeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")

func keypairSigner(t *testing.T) (ledger.MessageSigner, *keystore.Keypair) {
	keyPackages, _, err := frost.GenerateWithDealer(3, 2, nil)
	require.NoError(t, err)
	secret, err := frost.Reconstruct([]*frost.KeyPackage{keyPackages[1], keyPackages[2]})
	require.NoError(t, err)
	kp := keystore.NewKeypair(secret)
	s, err := ledger.NewKeypairSigner(kp)
	require.NoError(t, err)
	return s, kp
}

func TestSubmitTransferPrintsBalance(t *testing.T) {
	req := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	client := ledgerMocks.NewMockClient(ctrl)

	s, _ := keypairSigner(t)
	client.EXPECT().GetBalance(gomock.Any(), s.PublicKey()).Return(uint64(1500000000), nil)
	client.EXPECT().GetLatestBlockhash(gomock.Any()).Return(solana.Hash{7}, nil)
	client.EXPECT().SimulateTransaction(gomock.Any(), gomock.Any()).Return(nil)
	client.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
			return tx.Signatures[0], nil
		})

	var out bytes.Buffer
	sig, err := submitTransfer(context.Background(), &out, client, s, recipient, 1000, common.NopLogger())
	req.NoError(err)
	req.NotEqual(solana.Signature{}, sig)
	req.Contains(out.String(), "From:    "+s.PublicKey().String())
	req.Contains(out.String(), "Balance: 1.500000000 SOL (1500000000 lamports)")
}

func TestSubmitTransferPrintsBalanceWhenInsufficient(t *testing.T) {
	req := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	client := ledgerMocks.NewMockClient(ctrl)

	s, _ := keypairSigner(t)
	client.EXPECT().GetBalance(gomock.Any(), s.PublicKey()).Return(uint64(2000), nil)

	var out bytes.Buffer
	_, err := submitTransfer(context.Background(), &out, client, s, recipient, 1000, common.NopLogger())
	req.ErrorIs(err, ledger.ErrInsufficientBalance)
	req.Contains(out.String(), "Balance: 0.000002000 SOL (2000 lamports)")
}

func TestNewMessageSignerFromKeypairFile(t *testing.T) {
	req := require.New(t)

	_, kp := keypairSigner(t)
	path := filepath.Join(t.TempDir(), "keypair.json")
	req.NoError(keystore.SaveKeypair(path, kp))

	v := viper.New()
	v.Set(flagKeySource, keySourceKeypair)
	v.Set(flagKeypair, path)
	s, err := newMessageSigner(v, common.NopLogger())
	req.NoError(err)
	req.Equal(kp.PublicKey(), s.PublicKey().Bytes())

	v.Set(flagKeySource, "ledger")
	_, err = newMessageSigner(v, common.NopLogger())
	req.Error(err)
}
