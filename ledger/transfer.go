// Package ledger submits Solana system transfers whose signature is produced
// externally, either by a threshold signing run or a reconstructed key.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/frost"
)

// LamportsPerSignature is the base fee charged per transaction signature.
const LamportsPerSignature = 5000

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidSignature    = errors.New("signature does not verify for the sender")
	ErrNotPrepared         = errors.New("transfer is not prepared")
	ErrNotSigned           = errors.New("transfer is not signed")
)

type Transfer struct {
	client   Client
	from     solana.PublicKey
	to       solana.PublicKey
	lamports uint64
	logger   common.Logger

	balance      uint64
	balanceKnown bool

	tx      *solana.Transaction
	message []byte
	signed  bool
}

func NewTransfer(client Client, from, to solana.PublicKey, lamports uint64, logger common.Logger) *Transfer {
	return &Transfer{
		client:   client,
		from:     from,
		to:       to,
		lamports: lamports,
		logger:   logger,
	}
}

// Prepare checks the sender's balance and builds the unsigned transaction.
// The returned bytes are the message to sign.
func (t *Transfer) Prepare(ctx context.Context) ([]byte, error) {
	balance, err := t.client.GetBalance(ctx, t.from)
	if err != nil {
		return nil, err
	}
	t.balance, t.balanceKnown = balance, true
	if balance < t.lamports+LamportsPerSignature {
		return nil, fmt.Errorf("%w: %s has %d lamports, transfer needs %d plus fee",
			ErrInsufficientBalance, t.from, balance, t.lamports)
	}

	blockhash, err := t.client.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(t.lamports, t.from, t.to).Build(),
		},
		blockhash,
		solana.TransactionPayer(t.from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %w", err)
	}

	t.tx, t.message, t.signed = tx, message, false
	t.logger.Log("prepared transfer of %d lamports from %s to %s", t.lamports, t.from, t.to)
	return message, nil
}

// Balance returns the sender's balance as fetched by Prepare. It is known
// even when Prepare failed on insufficient funds.
func (t *Transfer) Balance() (uint64, bool) {
	return t.balance, t.balanceKnown
}

// AttachSignature sets the sender's signature after checking it verifies.
func (t *Transfer) AttachSignature(sig []byte) error {
	if t.tx == nil {
		return ErrNotPrepared
	}
	if len(sig) != frost.SignatureSize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, frost.SignatureSize, len(sig))
	}
	if !frost.Verify(t.from.Bytes(), t.message, sig) {
		return ErrInvalidSignature
	}
	t.tx.Signatures = []solana.Signature{solana.SignatureFromBytes(sig)}
	t.signed = true
	return nil
}

// Submit simulates and then sends the signed transaction.
func (t *Transfer) Submit(ctx context.Context) (solana.Signature, error) {
	if t.tx == nil {
		return solana.Signature{}, ErrNotPrepared
	}
	if !t.signed {
		return solana.Signature{}, ErrNotSigned
	}
	if err := t.client.SimulateTransaction(ctx, t.tx); err != nil {
		return solana.Signature{}, err
	}
	sig, err := t.client.SendTransaction(ctx, t.tx)
	if err != nil {
		return solana.Signature{}, err
	}
	t.logger.Log("submitted transaction %s", sig)
	return sig, nil
}

// SignAndSubmit signs the prepared message with signer and submits it.
func (t *Transfer) SignAndSubmit(ctx context.Context, signer MessageSigner) (solana.Signature, error) {
	if t.tx == nil {
		return solana.Signature{}, ErrNotPrepared
	}
	sig, err := signer.SignMessage(ctx, t.message)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction message: %w", err)
	}
	if err := t.AttachSignature(sig); err != nil {
		return solana.Signature{}, err
	}
	return t.Submit(ctx)
}

// Execute prepares, signs with signer and submits a transfer to `to`.
func Execute(ctx context.Context, client Client, signer MessageSigner, to solana.PublicKey, lamports uint64,
	logger common.Logger) (solana.Signature, error) {
	transfer := NewTransfer(client, signer.PublicKey(), to, lamports, logger)
	if _, err := transfer.Prepare(ctx); err != nil {
		return solana.Signature{}, err
	}
	return transfer.SignAndSubmit(ctx, signer)
}

// WaitForConfirmation polls until sig is confirmed or finalized, the
// transaction fails, or ctx is done.
func WaitForConfirmation(ctx context.Context, client Client, sig solana.Signature, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for confirmation of %s: %w", sig, ctx.Err())
		case <-ticker.C:
			status, err := client.GetSignatureStatus(ctx, sig)
			if err != nil || status == nil {
				continue
			}
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed: %v", sig, status.Err)
			}
			if status.ConfirmationStatus == "confirmed" || status.ConfirmationStatus == "finalized" {
				return nil
			}
		}
	}
}
