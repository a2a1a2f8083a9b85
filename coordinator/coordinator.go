// Package coordinator drives one FROST signing run across independently
// operated signer services: commitments are collected from every signer,
// the signing package is broadcast, and the returned shares are aggregated
// into an Ed25519 signature under the group key.
package coordinator

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"golang.org/x/sync/errgroup"

	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/signer"
)

var (
	ErrNotEnoughSigners    = errors.New("at least 2 signers are required")
	ErrDuplicateIdentifier = errors.New("two signers reported the same identifier")
	ErrUnknownSigner       = errors.New("signer is not part of the group")
	ErrGroupKeyMismatch    = errors.New("signer's key material does not match the group public key")
)

const minSigners = 2

type Coordinator struct {
	signers []string
	cfg     Config
	client  SignerClient
	pubKeys *frost.PublicKeyPackage
	logger  common.Logger
}

// Result of a successful run.
type Result struct {
	RunID     string
	Signature []byte
	Signers   []frost.Identifier
}

func New(cfg Config, client SignerClient, pubKeys *frost.PublicKeyPackage, logger common.Logger) (*Coordinator, error) {
	signers := distinctEndpoints(cfg.Signers)
	if len(signers) < minSigners {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughSigners, len(signers))
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Coordinator{
		signers: signers,
		cfg:     cfg,
		client:  client,
		pubKeys: pubKeys,
		logger:  logger,
	}, nil
}

func distinctEndpoints(endpoints []string) []string {
	seen := make(map[string]struct{}, len(endpoints))
	out := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		e = strings.TrimRight(strings.TrimSpace(e), "/")
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

type run struct {
	id      string
	machine *fsm.FSM
	logger  common.Logger
}

func (c *Coordinator) newRun() *run {
	id := uuid.New().String()
	logger := runLogger(c.logger, id)
	return &run{
		id:      id,
		machine: newRunFSM(logger),
		logger:  logger,
	}
}

func runLogger(l common.Logger, runID string) common.Logger {
	if withField, ok := l.(interface {
		With(key, value string) common.Logger
	}); ok {
		return withField.With("run_id", runID)
	}
	return &prefixLogger{prefix: runID[:8], next: l}
}

type prefixLogger struct {
	prefix string
	next   common.Logger
}

func (l *prefixLogger) Log(format string, args ...interface{}) {
	l.next.Log("[%s] %s", l.prefix, fmt.Sprintf(format, args...))
}

func (r *run) transition(ctx context.Context, event string) error {
	if err := r.machine.Event(ctx, event); err != nil {
		return fmt.Errorf("failed to transition run %s on %s: %w", r.id, event, err)
	}
	return nil
}

// State of the run's state machine.
func (r *run) state() string {
	return r.machine.Current()
}

// Sign runs both rounds for message and returns the aggregated signature.
// Any signer failure aborts the run; nothing is retried.
func (c *Coordinator) Sign(ctx context.Context, message []byte) (*Result, error) {
	if len(message) == 0 {
		return nil, signer.ErrEmptyMessage
	}
	r := c.newRun()
	r.logger.Log("signing %d-byte message with %d signers", len(message), len(c.signers))

	result, err := c.sign(ctx, r, message)
	if err != nil {
		state := r.state()
		if fsmErr := r.transition(ctx, eventFail); fsmErr != nil {
			r.logger.Log("%v", fsmErr)
		}
		r.logger.Log("run failed in %s: %v", state, err)
		return nil, fmt.Errorf("signing run %s failed in %s: %w", r.id, state, err)
	}
	return result, nil
}

func (c *Coordinator) sign(ctx context.Context, r *run, message []byte) (*Result, error) {
	if err := r.transition(ctx, eventStart); err != nil {
		return nil, err
	}

	if c.cfg.VerifyGroupKey {
		if err := c.verifySigners(ctx); err != nil {
			return nil, err
		}
	}

	commitments, endpoints, err := c.collectCommitments(ctx, r, message)
	if err != nil {
		return nil, err
	}
	if err := r.transition(ctx, eventCommitmentsCollected); err != nil {
		return nil, err
	}

	pkg := frost.NewSigningPackage(commitments, message)
	if err := r.transition(ctx, eventPackageBuilt); err != nil {
		return nil, err
	}

	shares, err := c.collectShares(ctx, r, pkg, endpoints)
	if err != nil {
		return nil, err
	}
	if err := r.transition(ctx, eventSharesCollected); err != nil {
		return nil, err
	}

	sig, err := frost.Aggregate(pkg, shares, c.pubKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate: %w", err)
	}
	if err := r.transition(ctx, eventAggregated); err != nil {
		return nil, err
	}

	r.logger.Log("signature %s", hex.EncodeToString(sig.Serialize()))
	return &Result{
		RunID:     r.id,
		Signature: sig.Serialize(),
		Signers:   frost.SortedIdentifiers(commitments),
	}, nil
}

// collectCommitments asks every signer in configured order. All answers must
// be in before the package can be built.
func (c *Coordinator) collectCommitments(ctx context.Context, r *run, message []byte) (
	map[frost.Identifier]*frost.SigningCommitments, map[frost.Identifier]string, error) {
	commitments := make(map[frost.Identifier]*frost.SigningCommitments, len(c.signers))
	endpoints := make(map[frost.Identifier]string, len(c.signers))

	for _, endpoint := range c.signers {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		resp, err := c.client.RequestCommitment(callCtx, endpoint, message)
		cancel()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get commitment from %s: %w", endpoint, err)
		}

		id := resp.ParticipantID
		if prev, ok := endpoints[id]; ok {
			// prev keeps its reserved nonce until that process restarts
			return nil, nil, fmt.Errorf("%w: %s reported by %s and %s", ErrDuplicateIdentifier, id, prev, endpoint)
		}
		if _, ok := c.pubKeys.VerifyingShares[id]; !ok {
			return nil, nil, fmt.Errorf("%w: %s reported %s", ErrUnknownSigner, endpoint, id)
		}
		commitments[id] = resp.Commitments
		endpoints[id] = endpoint
		r.logger.Log("commitment from %s (participant %d)", endpoint, uint16(id))
	}
	return commitments, endpoints, nil
}

// collectShares sends the package to every signer concurrently and waits for
// all of them.
func (c *Coordinator) collectShares(ctx context.Context, r *run, pkg *frost.SigningPackage,
	endpoints map[frost.Identifier]string) (map[frost.Identifier]*frost.SignatureShare, error) {
	var (
		mu     sync.Mutex
		shares = make(map[frost.Identifier]*frost.SignatureShare, len(endpoints))
	)

	g, gctx := errgroup.WithContext(ctx)
	for id, endpoint := range endpoints {
		id, endpoint := id, endpoint
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, c.cfg.CallTimeout)
			defer cancel()
			share, err := c.client.RequestSignatureShare(callCtx, endpoint, pkg)
			if err != nil {
				return fmt.Errorf("failed to get signature share from %s: %w", endpoint, err)
			}
			mu.Lock()
			shares[id] = share
			mu.Unlock()
			r.logger.Log("share from %s (participant %d)", endpoint, uint16(id))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return shares, nil
}

// verifySigners checks each signer's key material against the local group
// public key before any nonce is reserved.
func (c *Coordinator) verifySigners(ctx context.Context) error {
	expectedKey := c.pubKeys.VerifyingKeyBytes()
	for _, endpoint := range c.signers {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		identity, err := c.client.Identity(callCtx, endpoint)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to get identity from %s: %w", endpoint, err)
		}

		verifyingKey, err := hex.DecodeString(identity.VerifyingKey)
		if err != nil || !bytes.Equal(verifyingKey, expectedKey) {
			return fmt.Errorf("%w: %s reports group key %s", ErrGroupKeyMismatch, endpoint, identity.VerifyingKey)
		}
		expectedShare, ok := c.pubKeys.VerifyingShares[identity.ParticipantID]
		if !ok {
			return fmt.Errorf("%w: %s reported %s", ErrUnknownSigner, endpoint, identity.ParticipantID)
		}
		verifyingShare, err := hex.DecodeString(identity.VerifyingShare)
		if err != nil || !bytes.Equal(verifyingShare, frost.EncodeElement(expectedShare)) {
			return fmt.Errorf("%w: %s verifying share differs", ErrGroupKeyMismatch, endpoint)
		}
	}
	return nil
}
