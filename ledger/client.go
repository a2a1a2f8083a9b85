package ledger

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Client is the subset of the Solana JSON-RPC API the transfer flow needs.
type Client interface {
	GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) error
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	GetSignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error)
}

// SignatureStatus of a submitted transaction; nil from GetSignatureStatus
// means the cluster has not seen it yet.
type SignatureStatus struct {
	ConfirmationStatus string
	Err                interface{}
}

type RPCClient struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
}

func NewRPCClient(endpoint string) *RPCClient {
	return &RPCClient{
		rpc:        rpc.New(endpoint),
		commitment: rpc.CommitmentFinalized,
	}
}

func (c *RPCClient) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	balance, err := c.rpc.GetBalance(ctx, account, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance of %s: %w", account, err)
	}
	return balance.Value, nil
}

func (c *RPCClient) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	latest, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return latest.Value.Blockhash, nil
}

func (c *RPCClient) SimulateTransaction(ctx context.Context, tx *solana.Transaction) error {
	result, err := c.rpc.SimulateTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to simulate transaction: %w", err)
	}
	if result.Value.Err != nil {
		return fmt.Errorf("simulation error: %v", result.Value.Err)
	}
	return nil
}

func (c *RPCClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

func (c *RPCClient) GetSignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error) {
	result, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to get signature status: %w", err)
	}
	if len(result.Value) == 0 || result.Value[0] == nil {
		return nil, nil
	}
	status := result.Value[0]
	return &SignatureStatus{
		ConfirmationStatus: string(status.ConfirmationStatus),
		Err:                status.Err,
	}, nil
}
